package models

import (
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorModel is the persistence model for vendors
type VendorModel struct {
	TenantAggregateModel
	Name         string `gorm:"type:varchar(200);not null;index"`
	ContactEmail string `gorm:"type:varchar(200)"`
	Phone        string `gorm:"type:varchar(50)"`
	Address      string `gorm:"type:text"`
	TaxID        string `gorm:"type:varchar(50)"`
	PaymentTerms string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the persistence model to a domain Vendor
func (m *VendorModel) ToDomain() *ledger.Vendor {
	return &ledger.Vendor{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		ContactEmail:        m.ContactEmail,
		Phone:               m.Phone,
		Address:             m.Address,
		TaxID:               m.TaxID,
		PaymentTerms:        m.PaymentTerms,
	}
}

// VendorModelFromDomain creates a persistence model from a domain Vendor
func VendorModelFromDomain(v *ledger.Vendor) *VendorModel {
	m := &VendorModel{
		Name:         v.Name,
		ContactEmail: v.ContactEmail,
		Phone:        v.Phone,
		Address:      v.Address,
		TaxID:        v.TaxID,
		PaymentTerms: v.PaymentTerms,
	}
	m.FromDomainTenantAggregateRoot(v.TenantAggregateRoot)
	return m
}

// BillModel is the persistence model for vendor bills
type BillModel struct {
	TenantAggregateModel
	VendorID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	BillNumber     string               `gorm:"type:varchar(100)"`
	BillDate       time.Time            `gorm:"type:date;not null;index"`
	DueDate        time.Time            `gorm:"type:date;not null"`
	Status         ledger.BillStatus    `gorm:"type:varchar(20);not null;default:'draft';index"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	Subtotal       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	TaxAmount      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Total          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountPaid     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	DealID         *uuid.UUID           `gorm:"type:uuid;index"`
	Notes          string               `gorm:"type:text"`
	JournalEntryID *uuid.UUID           `gorm:"type:uuid"`
	Lines          []BillLineModel      `gorm:"foreignKey:BillID;references:ID"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// BillLineModel is the persistence model for bill lines. Tax is kept on the
// bill header only.
type BillLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber  int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AccountID   *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BillLineModel) TableName() string {
	return "bill_lines"
}

// ToDomain converts the persistence model to a domain Bill
func (m *BillModel) ToDomain() *ledger.Bill {
	b := &ledger.Bill{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		VendorID:            m.VendorID,
		BillNumber:          m.BillNumber,
		BillDate:            m.BillDate.UTC(),
		DueDate:             m.DueDate.UTC(),
		Status:              m.Status,
		Currency:            m.Currency,
		Subtotal:            m.Subtotal,
		TaxAmount:           m.TaxAmount,
		Total:               m.Total,
		AmountPaid:          m.AmountPaid,
		DealID:              m.DealID,
		Notes:               m.Notes,
		JournalEntryID:      m.JournalEntryID,
		Lines:               make([]ledger.BillLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		b.Lines[i] = ledger.BillLine{
			ID:          l.ID,
			BillID:      l.BillID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			LineTotal:   l.LineTotal,
			AccountID:   l.AccountID,
		}
	}
	return b
}

// BillModelFromDomain creates a persistence model from a domain Bill
func BillModelFromDomain(b *ledger.Bill) *BillModel {
	m := &BillModel{
		VendorID:       b.VendorID,
		BillNumber:     b.BillNumber,
		BillDate:       b.BillDate,
		DueDate:        b.DueDate,
		Status:         b.Status,
		Currency:       b.Currency,
		Subtotal:       b.Subtotal,
		TaxAmount:      b.TaxAmount,
		Total:          b.Total,
		AmountPaid:     b.AmountPaid,
		DealID:         b.DealID,
		Notes:          b.Notes,
		JournalEntryID: b.JournalEntryID,
		Lines:          make([]BillLineModel, len(b.Lines)),
	}
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	for i, l := range b.Lines {
		m.Lines[i] = BillLineModel{
			ID:          l.ID,
			BillID:      b.ID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			LineTotal:   l.LineTotal,
			AccountID:   l.AccountID,
		}
	}
	return m
}
