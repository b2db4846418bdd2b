// Package models contains GORM persistence models for the ledger tables.
// Domain aggregates carry no ORM tags; each model converts to and from its
// aggregate with ToDomain and FromDomain.
package models
