package models

import (
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JournalEntryModel is the persistence model for journal entry headers
type JournalEntryModel struct {
	TenantAggregateModel
	EntryDate      time.Time          `gorm:"type:date;not null;index"`
	Reference      string             `gorm:"type:varchar(100)"`
	Memo           string             `gorm:"type:text"`
	Status         ledger.EntryStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	FiscalPeriodID *uuid.UUID         `gorm:"type:uuid"`
	PostedBy       *uuid.UUID         `gorm:"type:uuid"`
	PostedAt       *time.Time
	VoidedAt       *time.Time
	SourceType     ledger.SourceType  `gorm:"type:varchar(20);not null;default:'manual';index:idx_journal_entries_source,priority:1"`
	SourceID       *uuid.UUID         `gorm:"type:uuid;index:idx_journal_entries_source,priority:2"`
	DeletedAt      gorm.DeletedAt     `gorm:"index"`
	Lines          []JournalLineModel `gorm:"foreignKey:EntryID;references:ID"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// JournalLineModel is the persistence model for journal entry lines
type JournalLineModel struct {
	ID           uuid.UUID            `gorm:"type:uuid;primaryKey"`
	EntryID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	LineNumber   int                  `gorm:"not null"`
	AccountID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	Debit        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Credit       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Currency     valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate decimal.Decimal      `gorm:"type:decimal(18,8);not null;default:1"`
	BaseDebit    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	BaseCredit   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Description  string               `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (JournalLineModel) TableName() string {
	return "journal_lines"
}

// ToDomain converts the persistence model to a domain JournalEntry
func (m *JournalEntryModel) ToDomain() *ledger.JournalEntry {
	e := &ledger.JournalEntry{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		EntryDate:           m.EntryDate.UTC(),
		Reference:           m.Reference,
		Memo:                m.Memo,
		Status:              m.Status,
		FiscalPeriodID:      m.FiscalPeriodID,
		PostedBy:            m.PostedBy,
		PostedAt:            m.PostedAt,
		VoidedAt:            m.VoidedAt,
		SourceType:          m.SourceType,
		SourceID:            m.SourceID,
		Lines:               make([]ledger.JournalLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		e.Lines[i] = ledger.JournalLine{
			ID:           l.ID,
			EntryID:      l.EntryID,
			LineNumber:   l.LineNumber,
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Currency:     l.Currency,
			ExchangeRate: l.ExchangeRate,
			BaseDebit:    l.BaseDebit,
			BaseCredit:   l.BaseCredit,
			Description:  l.Description,
		}
	}
	return e
}

// JournalEntryModelFromDomain creates a persistence model from a domain JournalEntry
func JournalEntryModelFromDomain(e *ledger.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{
		EntryDate:      e.EntryDate,
		Reference:      e.Reference,
		Memo:           e.Memo,
		Status:         e.Status,
		FiscalPeriodID: e.FiscalPeriodID,
		PostedBy:       e.PostedBy,
		PostedAt:       e.PostedAt,
		VoidedAt:       e.VoidedAt,
		SourceType:     e.SourceType,
		SourceID:       e.SourceID,
		Lines:          make([]JournalLineModel, len(e.Lines)),
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	for i, l := range e.Lines {
		m.Lines[i] = JournalLineModel{
			ID:           l.ID,
			EntryID:      e.ID,
			LineNumber:   l.LineNumber,
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Currency:     l.Currency,
			ExchangeRate: l.ExchangeRate,
			BaseDebit:    l.BaseDebit,
			BaseCredit:   l.BaseCredit,
			Description:  l.Description,
		}
	}
	return m
}

// PostedTotalsRow is the scan target of the balance aggregation queries
type PostedTotalsRow struct {
	AccountID  uuid.UUID
	BaseDebit  decimal.Decimal
	BaseCredit decimal.Decimal
}

// ToDomain converts the row into ledger.PostedTotals
func (r PostedTotalsRow) ToDomain() ledger.PostedTotals {
	return ledger.PostedTotals{
		AccountID:  r.AccountID,
		BaseDebit:  r.BaseDebit,
		BaseCredit: r.BaseCredit,
	}
}

