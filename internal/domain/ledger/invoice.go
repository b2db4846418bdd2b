package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusVoid          InvoiceStatus = "void"
)

// IsValid checks if the status is a known value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusVoid:
		return true
	}
	return false
}

// CanApplyPayment reports whether payments may be recorded in this status
func (s InvoiceStatus) CanApplyPayment() bool {
	return s != InvoiceStatusVoid
}

// ParseInvoiceStatus parses an optional status filter value
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	status := InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewValidationError("INVALID_INVOICE_STATUS", "invalid invoice status %q", s)
	}
	return status, nil
}

// FormatInvoiceNumber renders a sequence value as PREFIX-00001
func FormatInvoiceNumber(prefix string, seq int64) string {
	if prefix == "" {
		prefix = "INV"
	}
	return fmt.Sprintf("%s-%05d", prefix, seq)
}

// InvoiceLine is an immutable priced line of an invoice
type InvoiceLine struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	LineNumber  int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	LineTotal   decimal.Decimal
	TaxAmount   decimal.Decimal
	AccountID   *uuid.UUID
}

// InvoiceHeader carries the non-computed invoice fields
type InvoiceHeader struct {
	InvoiceDate  time.Time
	DueDate      time.Time
	Currency     valueobject.Currency
	ExchangeRate decimal.Decimal
	CompanyID    *uuid.UUID
	DealID       *uuid.UUID
	ContactID    *uuid.UUID
	PaymentTerms string
	Notes        string
}

// Invoice is a receivable issued to a client.
//
// Invariants: Total == Subtotal + TaxAmount and BalanceDue == Total - AmountPaid.
// Status is derived on the payment path and never set directly by callers.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string
	InvoiceDate    time.Time
	DueDate        time.Time
	Status         InvoiceStatus
	Currency       valueobject.Currency
	ExchangeRate   decimal.Decimal
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	AmountPaid     decimal.Decimal
	BalanceDue     decimal.Decimal
	CompanyID      *uuid.UUID
	DealID         *uuid.UUID
	ContactID      *uuid.UUID
	PaymentTerms   string
	Notes          string
	JournalEntryID *uuid.UUID
	Lines          []InvoiceLine
	Payments       []Payment
}

// NewInvoice prices the lines and builds a draft invoice
func NewInvoice(tenantID uuid.UUID, number string, header InvoiceHeader, specs []ItemSpec) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_INVOICE_NUMBER", "invoice number is required")
	}
	rate, err := invoiceRate(header)
	if err != nil {
		return nil, err
	}

	items, subtotal, tax, err := priceItems(specs, header.Currency)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       number,
		InvoiceDate:         truncateToDate(header.InvoiceDate),
		DueDate:             truncateToDate(header.DueDate),
		Status:              InvoiceStatusDraft,
		Currency:            header.Currency,
		ExchangeRate:        rate,
		Subtotal:            subtotal,
		TaxAmount:           tax,
		Total:               subtotal.Add(tax),
		AmountPaid:          decimal.Zero,
		CompanyID:           header.CompanyID,
		DealID:              header.DealID,
		ContactID:           header.ContactID,
		PaymentTerms:        strings.TrimSpace(header.PaymentTerms),
		Notes:               strings.TrimSpace(header.Notes),
		Lines:               make([]InvoiceLine, 0, len(items)),
	}
	inv.BalanceDue = inv.Total

	for i, item := range items {
		inv.Lines = append(inv.Lines, InvoiceLine{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			LineNumber:  i + 1,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			LineTotal:   item.LineTotal,
			TaxAmount:   item.TaxAmount,
			AccountID:   item.AccountID,
		})
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// ValidateInvoice runs every check NewInvoice makes on the header and lines,
// so a caller can reject a document before allocating its number
func ValidateInvoice(header InvoiceHeader, specs []ItemSpec) error {
	if _, err := invoiceRate(header); err != nil {
		return err
	}
	_, _, _, err := priceItems(specs, header.Currency)
	return err
}

// invoiceRate validates dates and currency and returns the exchange rate,
// 1 when unset
func invoiceRate(header InvoiceHeader) (decimal.Decimal, error) {
	if err := validateDocumentDates(header.InvoiceDate, header.DueDate); err != nil {
		return decimal.Zero, err
	}
	if !header.Currency.IsValid() {
		return decimal.Zero, shared.NewValidationError("INVALID_CURRENCY", "invalid currency %q", header.Currency)
	}
	rate := header.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	if rate.IsNegative() {
		return decimal.Zero, shared.NewValidationError("INVALID_EXCHANGE_RATE", "exchange rate must be positive")
	}
	return rate, nil
}

// ApplyPayment records a payment and re-derives the balance and status.
//
// With allowOverpayment false, a payment larger than the balance due is
// rejected. With it true, the balance goes negative and the invoice is paid.
func (inv *Invoice) ApplyPayment(p *Payment, allowOverpayment bool) error {
	if p == nil {
		return shared.NewValidationError("INVALID_PAYMENT", "payment is required")
	}
	if !inv.Status.CanApplyPayment() {
		return shared.NewStateError("INVALID_STATE_TRANSITION", "cannot record a payment on a %s invoice", inv.Status)
	}
	if p.InvoiceID != inv.ID {
		return shared.NewValidationError("INVALID_PAYMENT", "payment belongs to another invoice")
	}
	if !allowOverpayment && p.Amount.GreaterThan(inv.BalanceDue) {
		return shared.NewValidationError("OVERPAYMENT",
			"payment of %s exceeds balance due of %s", p.Amount.String(), inv.BalanceDue.String())
	}

	inv.AmountPaid = inv.AmountPaid.Add(p.Amount)
	inv.BalanceDue = inv.Total.Sub(inv.AmountPaid)
	if inv.BalanceDue.LessThanOrEqual(decimal.Zero) {
		inv.Status = InvoiceStatusPaid
	} else {
		inv.Status = InvoiceStatusPartiallyPaid
	}
	inv.Payments = append(inv.Payments, *p)
	inv.IncrementVersion()
	inv.AddDomainEvent(NewPaymentRecordedEvent(inv, p))
	return nil
}

// LinkJournalEntry stores the GL entry recognising the receivable
func (inv *Invoice) LinkJournalEntry(entryID uuid.UUID) {
	inv.JournalEntryID = &entryID
}

// PaymentDetails carries the caller-supplied payment fields
type PaymentDetails struct {
	PaymentDate   time.Time
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	ExchangeRate  decimal.Decimal
	Method        string
	BankReference string
	Notes         string
}

// Payment is money received against an invoice
type Payment struct {
	shared.BaseEntity
	TenantID       uuid.UUID
	InvoiceID      uuid.UUID
	PaymentDate    time.Time
	Amount         decimal.Decimal
	Currency       valueobject.Currency
	ExchangeRate   decimal.Decimal
	Method         string
	BankReference  string
	Notes          string
	JournalEntryID *uuid.UUID
}

// NewPayment validates a payment against the invoice it settles.
// Currency defaults to the invoice currency and must match it. The amount must
// be expressible in the currency's minor units. A zero rate inherits the
// invoice rate so the receivable clears in base currency.
func NewPayment(inv *Invoice, details PaymentDetails) (*Payment, error) {
	if inv == nil {
		return nil, shared.NewNotFoundError("INVOICE_NOT_FOUND", "invoice not found")
	}
	if details.PaymentDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_PAYMENT", "payment date is required")
	}
	if !details.Amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_PAYMENT", "payment amount must be positive")
	}
	currency := details.Currency
	if currency == "" {
		currency = inv.Currency
	}
	if currency != inv.Currency {
		return nil, shared.NewValidationError("CURRENCY_MISMATCH",
			"payment currency %s does not match invoice currency %s", currency, inv.Currency)
	}
	if !valueobject.RoundAmount(details.Amount, currency).Equal(details.Amount) {
		return nil, shared.NewValidationError("INVALID_PAYMENT",
			"payment amount %s has more decimals than %s allows", details.Amount.String(), currency)
	}
	rate := details.ExchangeRate
	if rate.IsZero() {
		rate = inv.ExchangeRate
	}
	if rate.IsNegative() {
		return nil, shared.NewValidationError("INVALID_EXCHANGE_RATE", "exchange rate must be positive")
	}

	return &Payment{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      inv.TenantID,
		InvoiceID:     inv.ID,
		PaymentDate:   truncateToDate(details.PaymentDate),
		Amount:        details.Amount,
		Currency:      currency,
		ExchangeRate:  rate,
		Method:        strings.TrimSpace(details.Method),
		BankReference: strings.TrimSpace(details.BankReference),
		Notes:         strings.TrimSpace(details.Notes),
	}, nil
}

// LinkJournalEntry stores the GL entry recording the receipt
func (p *Payment) LinkJournalEntry(entryID uuid.UUID) {
	p.JournalEntryID = &entryID
}
