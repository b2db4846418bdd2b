package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var one = decimal.NewFromInt(1)

// parseCurrency resolves an optional currency code, defaulting to base
func (b *base) parseCurrency(code string) (valueobject.Currency, error) {
	if strings.TrimSpace(code) == "" {
		return b.settings.BaseCurrency, nil
	}
	cur, err := valueobject.ParseCurrency(code)
	if err != nil {
		return "", shared.NewValidationError("INVALID_CURRENCY", "%s", err.Error())
	}
	return cur, nil
}

// rateToBase returns the conversion rate from currency to the base currency
// on date: 1 for the base currency, else the latest stored rate, else 1.
func (b *base) rateToBase(ctx context.Context, currency valueobject.Currency, on time.Time) (decimal.Decimal, error) {
	if currency == b.settings.BaseCurrency {
		return one, nil
	}
	rate, err := b.repos.ExchangeRates.FindLatest(ctx, currency.String(), b.settings.BaseCurrency.String(), on)
	if errors.Is(err, shared.ErrNotFound) {
		b.log(ctx).Debug("No stored exchange rate, using 1",
			zap.String("from", currency.String()),
			zap.String("to", b.settings.BaseCurrency.String()))
		return one, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Rate, nil
}

// requirePostable loads the accounts and checks each exists and accepts postings
func (b *base) requirePostable(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	accounts, err := b.repos.Accounts.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]*ledger.Account, len(accounts))
	for i := range accounts {
		found[accounts[i].ID] = &accounts[i]
	}
	for _, id := range ids {
		acct, ok := found[id]
		if !ok {
			return shared.NewNotFoundError("ACCOUNT_NOT_FOUND", "account %s not found", id)
		}
		if err := acct.EnsurePostable(); err != nil {
			return err
		}
	}
	return nil
}

// lineAccountIDs collects the distinct explicit accounts of document lines
func lineAccountIDs(lines []DocumentLineInput) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, l := range lines {
		if l.AccountID != nil && !seen[*l.AccountID] {
			seen[*l.AccountID] = true
			ids = append(ids, *l.AccountID)
		}
	}
	return ids
}

func itemSpecs(lines []DocumentLineInput) []ledger.ItemSpec {
	specs := make([]ledger.ItemSpec, len(lines))
	for i, l := range lines {
		specs[i] = ledger.ItemSpec{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			AccountID:   l.AccountID,
		}
	}
	return specs
}

// postingAccount resolves a default-chart account used by automatic postings
func (b *base) postingAccount(ctx context.Context, code string) (uuid.UUID, error) {
	acct, err := b.repos.Accounts.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return uuid.Nil, shared.NewNotFoundError("POSTING_ACCOUNT_MISSING",
				"account %s required for automatic posting is missing from the chart of accounts", code)
		}
		return uuid.Nil, err
	}
	if err := acct.EnsurePostable(); err != nil {
		return uuid.Nil, err
	}
	return acct.ID, nil
}

// lineBook accumulates automatic posting lines, merging amounts per account
// and side in first-seen order. Zero amounts are dropped.
type lineBook struct {
	currency valueobject.Currency
	rate     decimal.Decimal
	specs    []ledger.LineSpec
	index    map[bookKey]int
}

type bookKey struct {
	account uuid.UUID
	debit   bool
}

func newLineBook(currency valueobject.Currency, rate decimal.Decimal) *lineBook {
	return &lineBook{currency: currency, rate: rate, index: make(map[bookKey]int)}
}

func (lb *lineBook) add(account uuid.UUID, amount decimal.Decimal, debit bool, description string) {
	if !amount.IsPositive() {
		return
	}
	key := bookKey{account: account, debit: debit}
	if i, ok := lb.index[key]; ok {
		if debit {
			lb.specs[i].Debit = lb.specs[i].Debit.Add(amount)
		} else {
			lb.specs[i].Credit = lb.specs[i].Credit.Add(amount)
		}
		return
	}
	spec := ledger.LineSpec{
		AccountID:    account,
		Currency:     lb.currency,
		ExchangeRate: lb.rate,
		Description:  description,
	}
	if debit {
		spec.Debit = amount
	} else {
		spec.Credit = amount
	}
	lb.index[key] = len(lb.specs)
	lb.specs = append(lb.specs, spec)
}

func (lb *lineBook) debit(account uuid.UUID, amount decimal.Decimal, description string) {
	lb.add(account, amount, true, description)
}

func (lb *lineBook) credit(account uuid.UUID, amount decimal.Decimal, description string) {
	lb.add(account, amount, false, description)
}

func (lb *lineBook) empty() bool {
	return len(lb.specs) == 0
}

// postAutomatic records and immediately posts a system-generated entry. The
// caller runs it inside its transaction.
func (b *base) postAutomatic(ctx context.Context, details ledger.EntryDetails, book *lineBook, userID *uuid.UUID) (*ledger.JournalEntry, error) {
	entry, err := ledger.NewJournalEntry(b.tenantID, details, b.settings.BaseCurrency, book.specs)
	if err != nil {
		return nil, err
	}
	if userID != nil {
		entry.SetCreatedBy(*userID)
	}
	if err := entry.Post(userID, b.now()); err != nil {
		return nil, err
	}
	if err := b.repos.Entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
