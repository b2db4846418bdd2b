package ledger

import (
	"net/mail"
	"strings"
	"time"

	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorDetails carries the caller-supplied vendor fields
type VendorDetails struct {
	Name         string
	ContactEmail string
	Phone        string
	Address      string
	TaxID        string
	PaymentTerms string
}

// Vendor is a supplier the firm receives bills from
type Vendor struct {
	shared.TenantAggregateRoot
	Name         string
	ContactEmail string
	Phone        string
	Address      string
	TaxID        string
	PaymentTerms string
}

// NewVendor creates a new vendor
func NewVendor(tenantID uuid.UUID, d VendorDetails) (*Vendor, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_VENDOR_NAME", "vendor name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_VENDOR_NAME", "vendor name cannot exceed 200 characters")
	}
	email := strings.TrimSpace(d.ContactEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, shared.NewValidationError("INVALID_VENDOR_EMAIL", "invalid contact email %q", email)
		}
	}
	return &Vendor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		ContactEmail:        email,
		Phone:               strings.TrimSpace(d.Phone),
		Address:             strings.TrimSpace(d.Address),
		TaxID:               strings.TrimSpace(d.TaxID),
		PaymentTerms:        strings.TrimSpace(d.PaymentTerms),
	}, nil
}

// BillStatus is the lifecycle state of a vendor bill
type BillStatus string

const (
	BillStatusDraft         BillStatus = "draft"
	BillStatusApproved      BillStatus = "approved"
	BillStatusPartiallyPaid BillStatus = "partially_paid"
	BillStatusPaid          BillStatus = "paid"
	BillStatusVoid          BillStatus = "void"
)

// ParseBillStatus parses an optional status filter value
func ParseBillStatus(s string) (BillStatus, error) {
	status := BillStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case BillStatusDraft, BillStatusApproved, BillStatusPartiallyPaid, BillStatusPaid, BillStatusVoid:
		return status, nil
	}
	return "", shared.NewValidationError("INVALID_BILL_STATUS", "invalid bill status %q", s)
}

// BillHeader carries the non-computed bill fields
type BillHeader struct {
	BillNumber string
	BillDate   time.Time
	DueDate    time.Time
	Currency   valueobject.Currency
	DealID     *uuid.UUID
	Notes      string
}

// BillLine is a priced line of a vendor bill. Tax is aggregated on the bill
// header only; no per-line tax amount is kept.
type BillLine struct {
	ID          uuid.UUID
	BillID      uuid.UUID
	LineNumber  int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	LineTotal   decimal.Decimal
	AccountID   *uuid.UUID
}

// Bill is a payable owed to a vendor
type Bill struct {
	shared.TenantAggregateRoot
	VendorID       uuid.UUID
	BillNumber     string
	BillDate       time.Time
	DueDate        time.Time
	Status         BillStatus
	Currency       valueobject.Currency
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	AmountPaid     decimal.Decimal
	DealID         *uuid.UUID
	Notes          string
	JournalEntryID *uuid.UUID
	Lines          []BillLine
}

// NewBill prices the lines and builds a draft bill for the vendor
func NewBill(vendor *Vendor, header BillHeader, specs []ItemSpec) (*Bill, error) {
	if vendor == nil {
		return nil, shared.NewNotFoundError("VENDOR_NOT_FOUND", "vendor not found")
	}
	if err := validateDocumentDates(header.BillDate, header.DueDate); err != nil {
		return nil, err
	}
	if !header.Currency.IsValid() {
		return nil, shared.NewValidationError("INVALID_CURRENCY", "invalid currency %q", header.Currency)
	}

	items, subtotal, tax, err := priceItems(specs, header.Currency)
	if err != nil {
		return nil, err
	}

	bill := &Bill{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(vendor.TenantID),
		VendorID:            vendor.ID,
		BillNumber:          strings.TrimSpace(header.BillNumber),
		BillDate:            truncateToDate(header.BillDate),
		DueDate:             truncateToDate(header.DueDate),
		Status:              BillStatusDraft,
		Currency:            header.Currency,
		Subtotal:            subtotal,
		TaxAmount:           tax,
		Total:               subtotal.Add(tax),
		AmountPaid:          decimal.Zero,
		DealID:              header.DealID,
		Notes:               strings.TrimSpace(header.Notes),
		Lines:               make([]BillLine, 0, len(items)),
	}
	for i, item := range items {
		bill.Lines = append(bill.Lines, BillLine{
			ID:          uuid.New(),
			BillID:      bill.ID,
			LineNumber:  i + 1,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			LineTotal:   item.LineTotal,
			AccountID:   item.AccountID,
		})
	}

	bill.AddDomainEvent(NewBillCreatedEvent(bill))
	return bill, nil
}

// LinkJournalEntry stores the GL entry recognising the payable
func (b *Bill) LinkJournalEntry(entryID uuid.UUID) {
	b.JournalEntryID = &entryID
}
