package handler

import (
	appledger "github.com/dealledger/backend/internal/application/ledger"
	"github.com/dealledger/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Accounts =====================

// CreateAccountRequest is the body of POST /ledger/accounts
type CreateAccountRequest struct {
	Code        string     `json:"code" binding:"required,max=20"`
	Name        string     `json:"name" binding:"required,max=200"`
	AccountType string     `json:"account_type" binding:"required"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Description string     `json:"description" binding:"max=500"`
	Currency    string     `json:"currency" binding:"omitempty,currency_code"`
	IsHeader    bool       `json:"is_header"`
}

// ToInput converts the request to the service input
func (r CreateAccountRequest) ToInput() appledger.CreateAccountInput {
	return appledger.CreateAccountInput{
		Code:        r.Code,
		Name:        r.Name,
		AccountType: r.AccountType,
		ParentID:    r.ParentID,
		Description: r.Description,
		Currency:    r.Currency,
		IsHeader:    r.IsHeader,
	}
}

// AccountListQuery filters GET /ledger/accounts
type AccountListQuery struct {
	AccountType string `form:"account_type"`
}

// ===================== Journal entries =====================

// JournalLineRequest is one line of a manual journal entry
type JournalLineRequest struct {
	AccountID    uuid.UUID       `json:"account_id" binding:"required"`
	Debit        decimal.Decimal `json:"debit" binding:"decimal_gte0"`
	Credit       decimal.Decimal `json:"credit" binding:"decimal_gte0"`
	Currency     string          `json:"currency" binding:"omitempty,currency_code"`
	ExchangeRate decimal.Decimal `json:"exchange_rate" binding:"decimal_gte0"`
	Description  string          `json:"description" binding:"max=500"`
}

// CreateJournalEntryRequest is the body of POST /ledger/journal-entries
type CreateJournalEntryRequest struct {
	EntryDate string               `json:"entry_date" binding:"required,datetime=2006-01-02"`
	Reference string               `json:"reference" binding:"max=100"`
	Memo      string               `json:"memo" binding:"max=1000"`
	Lines     []JournalLineRequest `json:"lines" binding:"required,dive"`
	AutoPost  bool                 `json:"auto_post"`
}

// ToInput converts the request to the service input
func (r CreateJournalEntryRequest) ToInput(userID *uuid.UUID) appledger.CreateEntryInput {
	lines := make([]appledger.EntryLineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = appledger.EntryLineInput{
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Currency:     l.Currency,
			ExchangeRate: l.ExchangeRate,
			Description:  l.Description,
		}
	}
	return appledger.CreateEntryInput{
		EntryDate:  parseDate(r.EntryDate),
		Reference:  r.Reference,
		Memo:       r.Memo,
		SourceType: "manual",
		Lines:      lines,
		AutoPost:   r.AutoPost,
		UserID:     userID,
	}
}

// EntryListQuery filters GET /ledger/journal-entries
type EntryListQuery struct {
	dto.ListQuery
	Status string `form:"status"`
}

// ===================== Invoices =====================

// DocumentLineRequest is one line of an invoice or bill
type DocumentLineRequest struct {
	Description string           `json:"description" binding:"required,max=500"`
	Quantity    *decimal.Decimal `json:"quantity" binding:"omitempty,decimal_gte0"`
	UnitPrice   decimal.Decimal  `json:"unit_price" binding:"decimal_gte0"`
	TaxRate     decimal.Decimal  `json:"tax_rate" binding:"decimal_gte0"`
	AccountID   *uuid.UUID       `json:"account_id"`
}

func toDocumentLines(lines []DocumentLineRequest) []appledger.DocumentLineInput {
	out := make([]appledger.DocumentLineInput, len(lines))
	for i, l := range lines {
		out[i] = appledger.DocumentLineInput{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			AccountID:   l.AccountID,
		}
	}
	return out
}

// CreateInvoiceRequest is the body of POST /ledger/invoices
type CreateInvoiceRequest struct {
	InvoiceDate  string                `json:"invoice_date" binding:"required,datetime=2006-01-02"`
	DueDate      string                `json:"due_date" binding:"required,datetime=2006-01-02"`
	Currency     string                `json:"currency" binding:"omitempty,currency_code"`
	ExchangeRate decimal.Decimal       `json:"exchange_rate" binding:"decimal_gte0"`
	CompanyID    *uuid.UUID            `json:"company_id"`
	DealID       *uuid.UUID            `json:"deal_id"`
	ContactID    *uuid.UUID            `json:"contact_id"`
	PaymentTerms string                `json:"payment_terms" binding:"max=100"`
	Notes        string                `json:"notes" binding:"max=2000"`
	Lines        []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToInput converts the request to the service input
func (r CreateInvoiceRequest) ToInput(userID *uuid.UUID) appledger.CreateInvoiceInput {
	return appledger.CreateInvoiceInput{
		InvoiceDate:  parseDate(r.InvoiceDate),
		DueDate:      parseDate(r.DueDate),
		Currency:     r.Currency,
		ExchangeRate: r.ExchangeRate,
		CompanyID:    r.CompanyID,
		DealID:       r.DealID,
		ContactID:    r.ContactID,
		PaymentTerms: r.PaymentTerms,
		Notes:        r.Notes,
		Lines:        toDocumentLines(r.Lines),
		UserID:       userID,
	}
}

// RecordPaymentRequest is the body of POST /ledger/invoices/:id/payments
type RecordPaymentRequest struct {
	PaymentDate   string          `json:"payment_date" binding:"required,datetime=2006-01-02"`
	Amount        decimal.Decimal `json:"amount" binding:"decimal_gte0"`
	Currency      string          `json:"currency" binding:"omitempty,currency_code"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate" binding:"decimal_gte0"`
	Method        string          `json:"method" binding:"max=50"`
	BankReference string          `json:"bank_reference" binding:"max=100"`
	Notes         string          `json:"notes" binding:"max=1000"`
}

// ToInput converts the request to the service input
func (r RecordPaymentRequest) ToInput(userID *uuid.UUID) appledger.RecordPaymentInput {
	return appledger.RecordPaymentInput{
		PaymentDate:   parseDate(r.PaymentDate),
		Amount:        r.Amount,
		Currency:      r.Currency,
		ExchangeRate:  r.ExchangeRate,
		Method:        r.Method,
		BankReference: r.BankReference,
		Notes:         r.Notes,
		UserID:        userID,
	}
}

// InvoiceListQuery filters GET /ledger/invoices
type InvoiceListQuery struct {
	dto.ListQuery
	Status string `form:"status"`
}

// ===================== Vendors and bills =====================

// CreateVendorRequest is the body of POST /ledger/vendors
type CreateVendorRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	Phone        string `json:"phone" binding:"max=50"`
	Address      string `json:"address" binding:"max=500"`
	TaxID        string `json:"tax_id" binding:"max=50"`
	PaymentTerms string `json:"payment_terms" binding:"max=100"`
}

// ToInput converts the request to the service input
func (r CreateVendorRequest) ToInput() appledger.CreateVendorInput {
	return appledger.CreateVendorInput{
		Name:         r.Name,
		ContactEmail: r.ContactEmail,
		Phone:        r.Phone,
		Address:      r.Address,
		TaxID:        r.TaxID,
		PaymentTerms: r.PaymentTerms,
	}
}

// CreateBillRequest is the body of POST /ledger/vendors/:id/bills
type CreateBillRequest struct {
	BillNumber string                `json:"bill_number" binding:"max=100"`
	BillDate   string                `json:"bill_date" binding:"required,datetime=2006-01-02"`
	DueDate    string                `json:"due_date" binding:"required,datetime=2006-01-02"`
	Currency   string                `json:"currency" binding:"omitempty,currency_code"`
	DealID     *uuid.UUID            `json:"deal_id"`
	Notes      string                `json:"notes" binding:"max=2000"`
	Lines      []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToInput converts the request to the service input
func (r CreateBillRequest) ToInput(userID *uuid.UUID) appledger.CreateBillInput {
	return appledger.CreateBillInput{
		BillNumber: r.BillNumber,
		BillDate:   parseDate(r.BillDate),
		DueDate:    parseDate(r.DueDate),
		Currency:   r.Currency,
		DealID:     r.DealID,
		Notes:      r.Notes,
		Lines:      toDocumentLines(r.Lines),
		UserID:     userID,
	}
}

// BillListQuery filters GET /ledger/bills
type BillListQuery struct {
	dto.ListQuery
	VendorID string `form:"vendor_id" binding:"omitempty,uuid"`
	Status   string `form:"status"`
}

// ===================== Exchange rates =====================

// CreateExchangeRateRequest is the body of POST /ledger/exchange-rates
type CreateExchangeRateRequest struct {
	From     string          `json:"from_currency" binding:"required,currency_code"`
	To       string          `json:"to_currency" binding:"required,currency_code"`
	Rate     decimal.Decimal `json:"rate" binding:"decimal_gte0"`
	RateDate string          `json:"rate_date" binding:"required,datetime=2006-01-02"`
	Source   string          `json:"source" binding:"max=50"`
}

// ToInput converts the request to the service input
func (r CreateExchangeRateRequest) ToInput() appledger.CreateRateInput {
	return appledger.CreateRateInput{
		From:     r.From,
		To:       r.To,
		Rate:     r.Rate,
		RateDate: parseDate(r.RateDate),
		Source:   r.Source,
	}
}

// RateListQuery filters GET /ledger/exchange-rates
type RateListQuery struct {
	dto.ListQuery
	From string `form:"from" binding:"omitempty,currency_code"`
	To   string `form:"to" binding:"omitempty,currency_code"`
}

// LatestRateQuery selects GET /ledger/exchange-rates/latest
type LatestRateQuery struct {
	From string `form:"from" binding:"required,currency_code"`
	To   string `form:"to" binding:"required,currency_code"`
	AsOf string `form:"as_of" binding:"omitempty,datetime=2006-01-02"`
}
