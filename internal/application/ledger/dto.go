package ledger

import (
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ListResult is one page of a list query
type ListResult[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

// ===================== Accounts =====================

// CreateAccountInput carries the fields of a new account
type CreateAccountInput struct {
	Code        string
	Name        string
	AccountType string
	ParentID    *uuid.UUID
	Description string
	// Currency defaults to the base currency
	Currency string
	IsHeader bool
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	AccountType string     `json:"account_type"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Description string     `json:"description,omitempty"`
	Currency    string     `json:"currency"`
	IsHeader    bool       `json:"is_header"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BalanceResponse is the posted balance of one account in base currency
type BalanceResponse struct {
	AccountID   uuid.UUID       `json:"account_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
}

// TrialBalanceLine is the posted activity of one account
type TrialBalanceLine struct {
	AccountID   uuid.UUID       `json:"account_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"account_type"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceResponse lists every account with posted activity
type TrialBalanceResponse struct {
	Currency    string             `json:"currency"`
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
}

// ToAccountResponse converts a domain Account
func ToAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Code:        a.Code,
		Name:        a.Name,
		AccountType: string(a.Type),
		ParentID:    a.ParentID,
		Description: a.Description,
		Currency:    a.Currency.String(),
		IsHeader:    a.IsHeader,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ToAccountResponses converts a list of domain Accounts
func ToAccountResponses(accounts []ledger.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out
}

// ===================== Journal entries =====================

// EntryLineInput is one caller-supplied journal line
type EntryLineInput struct {
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Currency    string
	// ExchangeRate converts the line to base currency; zero means 1
	ExchangeRate decimal.Decimal
	Description  string
}

// CreateEntryInput carries a manual journal entry
type CreateEntryInput struct {
	EntryDate  time.Time
	Reference  string
	Memo       string
	SourceType string
	SourceID   *uuid.UUID
	Lines      []EntryLineInput
	AutoPost   bool
	UserID     *uuid.UUID
}

// EntryListFilter selects a page of journal entries
type EntryListFilter struct {
	Offset int
	Limit  int
	Status string
}

// JournalLineResponse represents a journal line in API responses
type JournalLineResponse struct {
	ID           uuid.UUID       `json:"id"`
	LineNumber   int             `json:"line_number"`
	AccountID    uuid.UUID       `json:"account_id"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	BaseDebit    decimal.Decimal `json:"base_debit"`
	BaseCredit   decimal.Decimal `json:"base_credit"`
	Description  string          `json:"description,omitempty"`
}

// JournalEntryResponse represents a journal entry in API responses
type JournalEntryResponse struct {
	ID          uuid.UUID             `json:"id"`
	EntryDate   string                `json:"entry_date"`
	Reference   string                `json:"reference,omitempty"`
	Memo        string                `json:"memo,omitempty"`
	Status      string                `json:"status"`
	SourceType  string                `json:"source_type"`
	SourceID    *uuid.UUID            `json:"source_id,omitempty"`
	PostedBy    *uuid.UUID            `json:"posted_by,omitempty"`
	PostedAt    *time.Time            `json:"posted_at,omitempty"`
	CreatedBy   *uuid.UUID            `json:"created_by,omitempty"`
	TotalDebit  decimal.Decimal       `json:"total_debit"`
	TotalCredit decimal.Decimal       `json:"total_credit"`
	Lines       []JournalLineResponse `json:"lines"`
	CreatedAt   time.Time             `json:"created_at"`
	Version     int                   `json:"version"`
}

// ToJournalEntryResponse converts a domain JournalEntry
func ToJournalEntryResponse(e *ledger.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			ID:           l.ID,
			LineNumber:   l.LineNumber,
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Currency:     l.Currency.String(),
			ExchangeRate: l.ExchangeRate,
			BaseDebit:    l.BaseDebit,
			BaseCredit:   l.BaseCredit,
			Description:  l.Description,
		}
	}
	return JournalEntryResponse{
		ID:          e.ID,
		EntryDate:   formatDate(e.EntryDate),
		Reference:   e.Reference,
		Memo:        e.Memo,
		Status:      string(e.Status),
		SourceType:  string(e.SourceType),
		SourceID:    e.SourceID,
		PostedBy:    e.PostedBy,
		PostedAt:    e.PostedAt,
		CreatedBy:   e.CreatedBy,
		TotalDebit:  e.TotalDebit(),
		TotalCredit: e.TotalCredit(),
		Lines:       lines,
		CreatedAt:   e.CreatedAt,
		Version:     e.Version,
	}
}

// ===================== Invoices =====================

// DocumentLineInput is one caller-supplied invoice or bill line
type DocumentLineInput struct {
	Description string
	// Quantity defaults to 1 when nil
	Quantity  *decimal.Decimal
	UnitPrice decimal.Decimal
	// TaxRate is a percentage between 0 and 100
	TaxRate   decimal.Decimal
	AccountID *uuid.UUID
}

// CreateInvoiceInput carries a new invoice
type CreateInvoiceInput struct {
	InvoiceDate time.Time
	DueDate     time.Time
	// Currency defaults to the base currency
	Currency string
	// ExchangeRate to base currency; zero looks up the latest stored rate, else 1
	ExchangeRate decimal.Decimal
	CompanyID    *uuid.UUID
	DealID       *uuid.UUID
	ContactID    *uuid.UUID
	PaymentTerms string
	Notes        string
	Lines        []DocumentLineInput
	UserID       *uuid.UUID
}

// RecordPaymentInput carries a payment against an invoice
type RecordPaymentInput struct {
	PaymentDate   time.Time
	Amount        decimal.Decimal
	Currency      string
	ExchangeRate  decimal.Decimal
	Method        string
	BankReference string
	Notes         string
	UserID        *uuid.UUID
}

// InvoiceListFilter selects a page of invoices
type InvoiceListFilter struct {
	Offset int
	Limit  int
	Status string
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	AccountID   *uuid.UUID      `json:"account_id,omitempty"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID             uuid.UUID       `json:"id"`
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	PaymentDate    string          `json:"payment_date"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	Method         string          `json:"method,omitempty"`
	BankReference  string          `json:"bank_reference,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	JournalEntryID *uuid.UUID      `json:"journal_entry_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	InvoiceNumber  string                `json:"invoice_number"`
	InvoiceDate    string                `json:"invoice_date"`
	DueDate        string                `json:"due_date"`
	Status         string                `json:"status"`
	Currency       string                `json:"currency"`
	ExchangeRate   decimal.Decimal       `json:"exchange_rate"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	Total          decimal.Decimal       `json:"total"`
	AmountPaid     decimal.Decimal       `json:"amount_paid"`
	BalanceDue     decimal.Decimal       `json:"balance_due"`
	CompanyID      *uuid.UUID            `json:"company_id,omitempty"`
	DealID         *uuid.UUID            `json:"deal_id,omitempty"`
	ContactID      *uuid.UUID            `json:"contact_id,omitempty"`
	PaymentTerms   string                `json:"payment_terms,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	JournalEntryID *uuid.UUID            `json:"journal_entry_id,omitempty"`
	CreatedBy      *uuid.UUID            `json:"created_by,omitempty"`
	Lines          []InvoiceLineResponse `json:"lines"`
	Payments       []PaymentResponse     `json:"payments"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`
}

// ToPaymentResponse converts a domain Payment
func ToPaymentResponse(p *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		InvoiceID:      p.InvoiceID,
		PaymentDate:    formatDate(p.PaymentDate),
		Amount:         p.Amount,
		Currency:       p.Currency.String(),
		ExchangeRate:   p.ExchangeRate,
		Method:         p.Method,
		BankReference:  p.BankReference,
		Notes:          p.Notes,
		JournalEntryID: p.JournalEntryID,
		CreatedAt:      p.CreatedAt,
	}
}

// ToInvoiceResponse converts a domain Invoice with its lines and payments
func ToInvoiceResponse(inv *ledger.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineResponse{
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
	payments := make([]PaymentResponse, len(inv.Payments))
	for i := range inv.Payments {
		payments[i] = ToPaymentResponse(&inv.Payments[i])
	}
	return InvoiceResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		InvoiceDate:    formatDate(inv.InvoiceDate),
		DueDate:        formatDate(inv.DueDate),
		Status:         string(inv.Status),
		Currency:       inv.Currency.String(),
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
		CreatedBy:      inv.CreatedBy,
		Lines:          lines,
		Payments:       payments,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Version:        inv.Version,
	}
}

// ===================== Vendors and bills =====================

// CreateVendorInput carries a new vendor
type CreateVendorInput struct {
	Name         string
	ContactEmail string
	Phone        string
	Address      string
	TaxID        string
	PaymentTerms string
}

// CreateBillInput carries a new vendor bill
type CreateBillInput struct {
	BillNumber string
	BillDate   time.Time
	DueDate    time.Time
	Currency   string
	DealID     *uuid.UUID
	Notes      string
	Lines      []DocumentLineInput
	UserID     *uuid.UUID
}

// BillListFilter selects a page of bills
type BillListFilter struct {
	VendorID *uuid.UUID
	Status   string
	Offset   int
	Limit    int
}

// VendorResponse represents a vendor in API responses
type VendorResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	TaxID        string    `json:"tax_id,omitempty"`
	PaymentTerms string    `json:"payment_terms,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BillLineResponse represents a bill line in API responses
type BillLineResponse struct {
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
	AccountID   *uuid.UUID      `json:"account_id,omitempty"`
}

// BillResponse represents a vendor bill in API responses
type BillResponse struct {
	ID             uuid.UUID          `json:"id"`
	VendorID       uuid.UUID          `json:"vendor_id"`
	BillNumber     string             `json:"bill_number,omitempty"`
	BillDate       string             `json:"bill_date"`
	DueDate        string             `json:"due_date"`
	Status         string             `json:"status"`
	Currency       string             `json:"currency"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	Total          decimal.Decimal    `json:"total"`
	AmountPaid     decimal.Decimal    `json:"amount_paid"`
	DealID         *uuid.UUID         `json:"deal_id,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	JournalEntryID *uuid.UUID         `json:"journal_entry_id,omitempty"`
	CreatedBy      *uuid.UUID         `json:"created_by,omitempty"`
	Lines          []BillLineResponse `json:"lines"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ToVendorResponse converts a domain Vendor
func ToVendorResponse(v *ledger.Vendor) VendorResponse {
	return VendorResponse{
		ID:           v.ID,
		Name:         v.Name,
		ContactEmail: v.ContactEmail,
		Phone:        v.Phone,
		Address:      v.Address,
		TaxID:        v.TaxID,
		PaymentTerms: v.PaymentTerms,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

// ToBillResponse converts a domain Bill with its lines
func ToBillResponse(b *ledger.Bill) BillResponse {
	lines := make([]BillLineResponse, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = BillLineResponse{
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			LineTotal:   l.LineTotal,
			AccountID:   l.AccountID,
		}
	}
	return BillResponse{
		ID:             b.ID,
		VendorID:       b.VendorID,
		BillNumber:     b.BillNumber,
		BillDate:       formatDate(b.BillDate),
		DueDate:        formatDate(b.DueDate),
		Status:         string(b.Status),
		Currency:       b.Currency.String(),
		Subtotal:       b.Subtotal,
		TaxAmount:      b.TaxAmount,
		Total:          b.Total,
		AmountPaid:     b.AmountPaid,
		DealID:         b.DealID,
		Notes:          b.Notes,
		JournalEntryID: b.JournalEntryID,
		CreatedBy:      b.CreatedBy,
		Lines:          lines,
		CreatedAt:      b.CreatedAt,
	}
}

// ===================== Exchange rates =====================

// CreateRateInput carries a new exchange rate
type CreateRateInput struct {
	From     string
	To       string
	Rate     decimal.Decimal
	RateDate time.Time
	Source   string
}

// RateListFilter selects a page of exchange rates
type RateListFilter struct {
	From   string
	To     string
	Offset int
	Limit  int
}

// ExchangeRateResponse represents an exchange rate in API responses
type ExchangeRateResponse struct {
	ID        uuid.UUID       `json:"id"`
	From      string          `json:"from_currency"`
	To        string          `json:"to_currency"`
	Rate      decimal.Decimal `json:"rate"`
	RateDate  string          `json:"rate_date"`
	Source    string          `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToExchangeRateResponse converts a domain ExchangeRate
func ToExchangeRateResponse(r *ledger.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ID:        r.ID,
		From:      r.From.String(),
		To:        r.To.String(),
		Rate:      r.Rate,
		RateDate:  formatDate(r.RateDate),
		Source:    r.Source,
		CreatedAt: r.CreatedAt,
	}
}
