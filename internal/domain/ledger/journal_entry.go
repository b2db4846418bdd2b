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

// EntryStatus is the lifecycle state of a journal entry
type EntryStatus string

const (
	EntryStatusDraft  EntryStatus = "draft"
	EntryStatusPosted EntryStatus = "posted"
	EntryStatusVoid   EntryStatus = "void"
)

// IsValid checks if the status is a known value
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusDraft, EntryStatusPosted, EntryStatusVoid:
		return true
	}
	return false
}

// ParseEntryStatus parses an optional status filter value
func ParseEntryStatus(s string) (EntryStatus, error) {
	status := EntryStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewValidationError("INVALID_ENTRY_STATUS", "invalid journal entry status %q", s)
	}
	return status, nil
}

// SourceType tags the business event that produced a journal entry
type SourceType string

const (
	SourceManual  SourceType = "manual"
	SourceInvoice SourceType = "invoice"
	SourcePayment SourceType = "payment"
	SourceBill    SourceType = "bill"
)

// IsValid checks if the source type is a known value
func (s SourceType) IsValid() bool {
	switch s {
	case SourceManual, SourceInvoice, SourcePayment, SourceBill:
		return true
	}
	return false
}

// ErrUnbalancedEntry is the category of UnbalancedEntryError
var ErrUnbalancedEntry = shared.NewValidationError("UNBALANCED_ENTRY", "journal entry is out of balance")

// UnbalancedEntryError reports debit and credit totals that do not match
type UnbalancedEntryError struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry is out of balance: debits %s != credits %s",
		e.DebitTotal.String(), e.CreditTotal.String())
}

// Unwrap exposes a DomainError carrying the detailed message
func (e *UnbalancedEntryError) Unwrap() error {
	return shared.NewValidationError(ErrUnbalancedEntry.Code, "%s", e.Error())
}

// LineSpec is the caller-supplied shape of one journal line
type LineSpec struct {
	AccountID    uuid.UUID
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	Currency     valueobject.Currency
	ExchangeRate decimal.Decimal
	Description  string
}

// JournalLine is one debit or credit leg of a journal entry
type JournalLine struct {
	ID           uuid.UUID
	EntryID      uuid.UUID
	LineNumber   int
	AccountID    uuid.UUID
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	Currency     valueobject.Currency
	ExchangeRate decimal.Decimal
	BaseDebit    decimal.Decimal
	BaseCredit   decimal.Decimal
	Description  string
}

// JournalEntry is a balanced set of debit and credit lines.
//
// Lifecycle: draft -> posted -> void. Posting happens exactly once; void is
// only reachable from posted.
type JournalEntry struct {
	shared.TenantAggregateRoot
	EntryDate      time.Time
	Reference      string
	Memo           string
	Status         EntryStatus
	FiscalPeriodID *uuid.UUID
	PostedBy       *uuid.UUID
	PostedAt       *time.Time
	VoidedAt       *time.Time
	SourceType     SourceType
	SourceID       *uuid.UUID
	Lines          []JournalLine
}

// EntryDetails carries the header fields of a new journal entry
type EntryDetails struct {
	EntryDate  time.Time
	Reference  string
	Memo       string
	SourceType SourceType
	SourceID   *uuid.UUID
}

// NewJournalEntry validates the lines and builds a draft entry.
//
// Every line must carry exactly one positive side. Debits and credits must sum
// to the same total in line currency before any exchange-rate conversion.
// Base amounts are line amount times rate, rounded to the base currency.
func NewJournalEntry(tenantID uuid.UUID, details EntryDetails, baseCurrency valueobject.Currency, specs []LineSpec) (*JournalEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	if details.EntryDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_ENTRY_DATE", "entry date is required")
	}
	if len(specs) == 0 {
		return nil, shared.NewValidationError("EMPTY_ENTRY", "journal entry must have at least one line")
	}
	sourceType := details.SourceType
	if sourceType == "" {
		sourceType = SourceManual
	}
	if !sourceType.IsValid() {
		return nil, shared.NewValidationError("INVALID_SOURCE_TYPE", "invalid source type %q", sourceType)
	}

	entry := &JournalEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntryDate:           truncateToDate(details.EntryDate),
		Reference:           strings.TrimSpace(details.Reference),
		Memo:                strings.TrimSpace(details.Memo),
		Status:              EntryStatusDraft,
		SourceType:          sourceType,
		SourceID:            details.SourceID,
		Lines:               make([]JournalLine, 0, len(specs)),
	}

	debitTotal := decimal.Zero
	creditTotal := decimal.Zero
	for i, spec := range specs {
		line, err := newJournalLine(entry.ID, i+1, spec, baseCurrency)
		if err != nil {
			return nil, err
		}
		debitTotal = debitTotal.Add(line.Debit)
		creditTotal = creditTotal.Add(line.Credit)
		entry.Lines = append(entry.Lines, line)
	}

	if !debitTotal.Equal(creditTotal) {
		return nil, &UnbalancedEntryError{DebitTotal: debitTotal, CreditTotal: creditTotal}
	}

	entry.AddDomainEvent(NewJournalEntryCreatedEvent(entry))
	return entry, nil
}

func newJournalLine(entryID uuid.UUID, number int, spec LineSpec, baseCurrency valueobject.Currency) (JournalLine, error) {
	if spec.AccountID == uuid.Nil {
		return JournalLine{}, shared.NewValidationError("INVALID_LINE", "line %d: account is required", number)
	}
	if spec.Debit.IsNegative() || spec.Credit.IsNegative() {
		return JournalLine{}, shared.NewValidationError("INVALID_LINE", "line %d: debit and credit cannot be negative", number)
	}
	if spec.Debit.IsPositive() == spec.Credit.IsPositive() {
		return JournalLine{}, shared.NewValidationError("INVALID_LINE",
			"line %d: exactly one of debit or credit must be positive", number)
	}

	rate := spec.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	if rate.IsNegative() {
		return JournalLine{}, shared.NewValidationError("INVALID_LINE", "line %d: exchange rate must be positive", number)
	}
	currency := spec.Currency
	if currency == "" {
		currency = baseCurrency
	}
	if !currency.IsValid() {
		return JournalLine{}, shared.NewValidationError("INVALID_CURRENCY", "line %d: invalid currency %q", number, currency)
	}

	return JournalLine{
		ID:           uuid.New(),
		EntryID:      entryID,
		LineNumber:   number,
		AccountID:    spec.AccountID,
		Debit:        spec.Debit,
		Credit:       spec.Credit,
		Currency:     currency,
		ExchangeRate: rate,
		BaseDebit:    valueobject.RoundAmount(spec.Debit.Mul(rate), baseCurrency),
		BaseCredit:   valueobject.RoundAmount(spec.Credit.Mul(rate), baseCurrency),
		Description:  strings.TrimSpace(spec.Description),
	}, nil
}

// AccountIDs returns the distinct accounts referenced by the lines
func (e *JournalEntry) AccountIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(e.Lines))
	ids := make([]uuid.UUID, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// TotalDebit sums line debits in line currency
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums line credits in line currency
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}
	return total
}

// Post moves a draft entry to posted
func (e *JournalEntry) Post(userID *uuid.UUID, at time.Time) error {
	if e.Status != EntryStatusDraft {
		return shared.NewStateError("INVALID_STATE_TRANSITION",
			"cannot post journal entry in %s status", e.Status)
	}
	e.Status = EntryStatusPosted
	e.PostedBy = userID
	e.PostedAt = &at
	e.IncrementVersion()
	e.AddDomainEvent(NewJournalEntryPostedEvent(e))
	return nil
}

// Void moves a posted entry to the terminal void state
func (e *JournalEntry) Void(at time.Time) error {
	if e.Status != EntryStatusPosted {
		return shared.NewStateError("INVALID_STATE_TRANSITION",
			"cannot void journal entry in %s status", e.Status)
	}
	e.Status = EntryStatusVoid
	e.VoidedAt = &at
	e.IncrementVersion()
	return nil
}

// IsPosted reports whether the entry counts toward account balances
func (e *JournalEntry) IsPosted() bool {
	return e.Status == EntryStatusPosted
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
