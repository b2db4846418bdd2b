package ledger

import (
	"context"
	"time"

	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Every repository below is bound to a single tenant when it is constructed.
// Reads never cross tenants and writes reject aggregates of another tenant.

// AccountFilter defines filtering options for account queries
type AccountFilter struct {
	Type       *AccountType
	ActiveOnly bool
}

// AccountRepository defines the interface for chart of accounts persistence
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Account, error)
	FindByCode(ctx context.Context, code string) (*Account, error)
	// FindAll returns accounts ordered by code
	FindAll(ctx context.Context, filter AccountFilter) ([]Account, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, account *Account) error
	SaveBatch(ctx context.Context, accounts []*Account) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// JournalEntryFilter defines filtering options for journal entry queries
type JournalEntryFilter struct {
	shared.Pagination
	Status     *EntryStatus
	SourceType *SourceType
	SourceID   *uuid.UUID
}

// PostedTotals aggregates base amounts of posted lines for one account
type PostedTotals struct {
	AccountID  uuid.UUID
	BaseDebit  decimal.Decimal
	BaseCredit decimal.Decimal
}

// Balance returns debit minus credit
func (t PostedTotals) Balance() decimal.Decimal {
	return t.BaseDebit.Sub(t.BaseCredit)
}

// JournalEntryRepository defines the interface for journal entry persistence
type JournalEntryRepository interface {
	// FindByID loads the entry with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*JournalEntry, error)
	// FindAll returns entries ordered by entry date descending, lines preloaded
	FindAll(ctx context.Context, filter JournalEntryFilter) ([]JournalEntry, error)
	Count(ctx context.Context, filter JournalEntryFilter) (int64, error)
	// Create inserts the header and all lines
	Create(ctx context.Context, entry *JournalEntry) error
	// UpdateStatus persists status, posting and void fields with a version check
	UpdateStatus(ctx context.Context, entry *JournalEntry) error
	// PostedTotals sums base amounts over posted, non-deleted entries for an account
	PostedTotals(ctx context.Context, accountID uuid.UUID) (PostedTotals, error)
	// TrialBalance returns PostedTotals for every account with posted activity
	TrialBalance(ctx context.Context) ([]PostedTotals, error)
}

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Pagination
	Status *InvoiceStatus
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID loads the invoice with lines and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate is FindByID with a row lock inside a transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	Count(ctx context.Context, status *InvoiceStatus) (int64, error)
	// Create inserts the header and all lines. A duplicate invoice number
	// yields a conflict error.
	Create(ctx context.Context, invoice *Invoice) error
	// UpdateTotals persists amount paid, balance due, status and GL link
	UpdateTotals(ctx context.Context, invoice *Invoice) error
	CreatePayment(ctx context.Context, payment *Payment) error
}

// InvoiceSequence allocates the next invoice sequence value for a tenant
type InvoiceSequence interface {
	Next(ctx context.Context) (int64, error)
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	FindAll(ctx context.Context, page shared.Pagination) ([]Vendor, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, vendor *Vendor) error
}

// BillFilter defines filtering options for bill queries
type BillFilter struct {
	shared.Pagination
	VendorID *uuid.UUID
	Status   *BillStatus
}

// BillRepository defines the interface for vendor bill persistence
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	FindAll(ctx context.Context, filter BillFilter) ([]Bill, error)
	Count(ctx context.Context, filter BillFilter) (int64, error)
	// Create inserts the header and all lines
	Create(ctx context.Context, bill *Bill) error
}

// ExchangeRateFilter defines filtering options for exchange rate queries
type ExchangeRateFilter struct {
	shared.Pagination
	From *string
	To   *string
}

// ExchangeRateRepository defines the interface for exchange rate persistence
type ExchangeRateRepository interface {
	// FindLatest returns the most recent rate on or before asOf
	FindLatest(ctx context.Context, from, to string, asOf time.Time) (*ExchangeRate, error)
	FindAll(ctx context.Context, filter ExchangeRateFilter) ([]ExchangeRate, error)
	Count(ctx context.Context, filter ExchangeRateFilter) (int64, error)
	// Create inserts the rate; a duplicate (from, to, date) yields a conflict error
	Create(ctx context.Context, rate *ExchangeRate) error
}

// Repositories groups the tenant-bound repositories and the unit of work
type Repositories struct {
	Accounts      AccountRepository
	Entries       JournalEntryRepository
	Invoices      InvoiceRepository
	Sequence      InvoiceSequence
	Vendors       VendorRepository
	Bills         BillRepository
	ExchangeRates ExchangeRateRepository
	Tx            shared.TxManager
}
