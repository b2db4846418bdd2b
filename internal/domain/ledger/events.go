package ledger

import (
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type names used on domain events
const (
	AggregateTypeJournalEntry = "JournalEntry"
	AggregateTypeInvoice      = "Invoice"
	AggregateTypeBill         = "Bill"
)

// Event types
const (
	EventTypeJournalEntryCreated = "JournalEntryCreated"
	EventTypeJournalEntryPosted  = "JournalEntryPosted"
	EventTypeInvoiceCreated      = "InvoiceCreated"
	EventTypePaymentRecorded     = "PaymentRecorded"
	EventTypeBillCreated         = "BillCreated"
)

// JournalEntryCreatedEvent is raised when an entry is recorded
type JournalEntryCreatedEvent struct {
	shared.BaseDomainEvent
	LineCount   int             `json:"line_count"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	SourceType  SourceType      `json:"source_type"`
}

// NewJournalEntryCreatedEvent creates the event from the entry
func NewJournalEntryCreatedEvent(e *JournalEntry) *JournalEntryCreatedEvent {
	return &JournalEntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryCreated, AggregateTypeJournalEntry, e.ID, e.TenantID),
		LineCount:       len(e.Lines),
		TotalDebit:      e.TotalDebit(),
		TotalCredit:     e.TotalCredit(),
		SourceType:      e.SourceType,
	}
}

// JournalEntryPostedEvent is raised when a draft entry is posted
type JournalEntryPostedEvent struct {
	shared.BaseDomainEvent
	PostedBy   *uuid.UUID `json:"posted_by,omitempty"`
	SourceType SourceType `json:"source_type"`
}

// NewJournalEntryPostedEvent creates the event from the entry
func NewJournalEntryPostedEvent(e *JournalEntry) *JournalEntryPostedEvent {
	return &JournalEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryPosted, AggregateTypeJournalEntry, e.ID, e.TenantID),
		PostedBy:        e.PostedBy,
		SourceType:      e.SourceType,
	}
}

// InvoiceCreatedEvent is raised when an invoice is issued
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
}

// NewInvoiceCreatedEvent creates the event from the invoice
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		Total:           inv.Total,
		Currency:        inv.Currency.String(),
	}
}

// PaymentRecordedEvent is raised when a payment is applied to an invoice
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	Amount     decimal.Decimal `json:"amount"`
	BalanceDue decimal.Decimal `json:"balance_due"`
	Status     InvoiceStatus   `json:"status"`
	Currency   string          `json:"currency"`
}

// NewPaymentRecordedEvent creates the event from the invoice after the payment was applied
func NewPaymentRecordedEvent(inv *Invoice, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeInvoice, inv.ID, inv.TenantID),
		PaymentID:       p.ID,
		Amount:          p.Amount,
		BalanceDue:      inv.BalanceDue,
		Status:          inv.Status,
		Currency:        p.Currency.String(),
	}
}

// BillCreatedEvent is raised when a vendor bill is recorded
type BillCreatedEvent struct {
	shared.BaseDomainEvent
	VendorID uuid.UUID       `json:"vendor_id"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// NewBillCreatedEvent creates the event from the bill
func NewBillCreatedEvent(b *Bill) *BillCreatedEvent {
	return &BillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillCreated, AggregateTypeBill, b.ID, b.TenantID),
		VendorID:        b.VendorID,
		Total:           b.Total,
		Currency:        b.Currency.String(),
	}
}
