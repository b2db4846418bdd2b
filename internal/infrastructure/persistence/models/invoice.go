package models

import (
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for client invoices
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber  string               `gorm:"type:varchar(50);not null"`
	InvoiceDate    time.Time            `gorm:"type:date;not null;index"`
	DueDate        time.Time            `gorm:"type:date;not null"`
	Status         ledger.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate   decimal.Decimal      `gorm:"type:decimal(18,8);not null;default:1"`
	Subtotal       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	TaxAmount      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Total          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountPaid     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	BalanceDue     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	CompanyID      *uuid.UUID           `gorm:"type:uuid;index"`
	DealID         *uuid.UUID           `gorm:"type:uuid;index"`
	ContactID      *uuid.UUID           `gorm:"type:uuid"`
	PaymentTerms   string               `gorm:"type:varchar(100)"`
	Notes          string               `gorm:"type:text"`
	JournalEntryID *uuid.UUID           `gorm:"type:uuid"`
	Lines          []InvoiceLineModel   `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments       []PaymentModel       `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineModel is the persistence model for invoice lines
type InvoiceLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber  int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AccountID   *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// PaymentModel is the persistence model for payments received against invoices
type PaymentModel struct {
	BaseModel
	TenantID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	InvoiceID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	PaymentDate    time.Time            `gorm:"type:date;not null"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate   decimal.Decimal      `gorm:"type:decimal(18,8);not null;default:1"`
	Method         string               `gorm:"type:varchar(50)"`
	BankReference  string               `gorm:"type:varchar(100)"`
	Notes          string               `gorm:"type:text"`
	JournalEntryID *uuid.UUID           `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	inv := &ledger.Invoice{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		InvoiceDate:         m.InvoiceDate.UTC(),
		DueDate:             m.DueDate.UTC(),
		Status:              m.Status,
		Currency:            m.Currency,
		ExchangeRate:        m.ExchangeRate,
		Subtotal:            m.Subtotal,
		TaxAmount:           m.TaxAmount,
		Total:               m.Total,
		AmountPaid:          m.AmountPaid,
		BalanceDue:          m.BalanceDue,
		CompanyID:           m.CompanyID,
		DealID:              m.DealID,
		ContactID:           m.ContactID,
		PaymentTerms:        m.PaymentTerms,
		Notes:               m.Notes,
		JournalEntryID:      m.JournalEntryID,
		Lines:               make([]ledger.InvoiceLine, len(m.Lines)),
		Payments:            make([]ledger.Payment, len(m.Payments)),
	}
	for i, l := range m.Lines {
		inv.Lines[i] = ledger.InvoiceLine{
			ID:          l.ID,
			InvoiceID:   l.InvoiceID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			LineTotal:   l.LineTotal,
			TaxAmount:   l.TaxAmount,
			AccountID:   l.AccountID,
		}
	}
	for i := range m.Payments {
		inv.Payments[i] = *m.Payments[i].ToDomain()
	}
	return inv
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice.
// Payments are stored separately through PaymentModelFromDomain.
func InvoiceModelFromDomain(inv *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber:  inv.InvoiceNumber,
		InvoiceDate:    inv.InvoiceDate,
		DueDate:        inv.DueDate,
		Status:         inv.Status,
		Currency:       inv.Currency,
		ExchangeRate:   inv.ExchangeRate,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		Total:          inv.Total,
		AmountPaid:     inv.AmountPaid,
		BalanceDue:     inv.BalanceDue,
		CompanyID:      inv.CompanyID,
		DealID:         inv.DealID,
		ContactID:      inv.ContactID,
		PaymentTerms:   inv.PaymentTerms,
		Notes:          inv.Notes,
		JournalEntryID: inv.JournalEntryID,
		Lines:          make([]InvoiceLineModel, len(inv.Lines)),
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	for i, l := range inv.Lines {
		m.Lines[i] = InvoiceLineModel{
			ID:          l.ID,
			InvoiceID:   inv.ID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			LineTotal:   l.LineTotal,
			TaxAmount:   l.TaxAmount,
			AccountID:   l.AccountID,
		}
	}
	return m
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		BaseEntity:     m.BaseModel.ToDomain(),
		TenantID:       m.TenantID,
		InvoiceID:      m.InvoiceID,
		PaymentDate:    m.PaymentDate.UTC(),
		Amount:         m.Amount,
		Currency:       m.Currency,
		ExchangeRate:   m.ExchangeRate,
		Method:         m.Method,
		BankReference:  m.BankReference,
		Notes:          m.Notes,
		JournalEntryID: m.JournalEntryID,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{
		TenantID:       p.TenantID,
		InvoiceID:      p.InvoiceID,
		PaymentDate:    p.PaymentDate,
		Amount:         p.Amount,
		Currency:       p.Currency,
		ExchangeRate:   p.ExchangeRate,
		Method:         p.Method,
		BankReference:  p.BankReference,
		Notes:          p.Notes,
		JournalEntryID: p.JournalEntryID,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

var _ shared.Entity = (*ledger.Payment)(nil)
