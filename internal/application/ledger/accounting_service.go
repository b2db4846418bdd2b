package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountingService manages the chart of accounts and journal entries of one tenant
type AccountingService struct {
	*base
}

// ===================== Chart of accounts =====================

// SeedDefaults installs the default chart when the tenant has no accounts
// and returns the tenant's accounts ordered by code
func (s *AccountingService) SeedDefaults(ctx context.Context) ([]AccountResponse, error) {
	accounts, err := s.seedDefaults(ctx)
	if err != nil {
		return nil, err
	}
	return ToAccountResponses(accounts), nil
}

// CreateAccount adds an account to the chart
func (s *AccountingService) CreateAccount(ctx context.Context, input CreateAccountInput) (*AccountResponse, error) {
	accountType, err := ledger.ParseAccountType(input.AccountType)
	if err != nil {
		return nil, err
	}
	currency, err := s.parseCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	account, err := ledger.NewAccount(s.tenantID, input.Code, input.Name, accountType, currency)
	if err != nil {
		return nil, err
	}
	account.Description = strings.TrimSpace(input.Description)
	if input.IsHeader {
		account.MarkHeader()
	}

	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.repos.Accounts.ExistsByCode(ctx, account.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("ACCOUNT_CODE_EXISTS", "account code %s already exists", account.Code)
		}
		exists, err = s.repos.Accounts.ExistsByName(ctx, account.Name)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("ACCOUNT_NAME_EXISTS", "account name %q already exists", account.Name)
		}

		if input.ParentID != nil {
			parent, err := s.repos.Accounts.FindByID(ctx, *input.ParentID)
			if err != nil {
				return err
			}
			if err := account.AttachTo(parent); err != nil {
				return err
			}
		}
		return s.repos.Accounts.Save(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("Account created",
		zap.String("account_id", account.ID.String()),
		zap.String("code", account.Code),
		zap.String("account_type", string(account.Type)))

	resp := ToAccountResponse(account)
	return &resp, nil
}

// ListAccounts returns accounts ordered by code, optionally of one type
func (s *AccountingService) ListAccounts(ctx context.Context, accountType string) ([]AccountResponse, error) {
	filter := ledger.AccountFilter{}
	if strings.TrimSpace(accountType) != "" {
		t, err := ledger.ParseAccountType(accountType)
		if err != nil {
			return nil, err
		}
		filter.Type = &t
	}
	accounts, err := s.repos.Accounts.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToAccountResponses(accounts), nil
}

// GetAccount returns one account
func (s *AccountingService) GetAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.repos.Accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// GetBalance returns debit minus credit over posted lines of the account, in
// base currency. Credit-normal accounts come out negative.
func (s *AccountingService) GetBalance(ctx context.Context, accountID uuid.UUID) (valueobject.Money, error) {
	if _, err := s.repos.Accounts.FindByID(ctx, accountID); err != nil {
		return valueobject.Money{}, err
	}
	totals, err := s.repos.Entries.PostedTotals(ctx, accountID)
	if err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.NewMoney(totals.Balance(), s.settings.BaseCurrency)
}

// AccountBalance is GetBalance with the account details attached
func (s *AccountingService) AccountBalance(ctx context.Context, accountID uuid.UUID) (*BalanceResponse, error) {
	account, err := s.repos.Accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	balance, err := s.GetBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{
		AccountID:   account.ID,
		Code:        account.Code,
		Name:        account.Name,
		AccountType: string(account.Type),
		Balance:     balance.Amount(),
		Currency:    balance.Currency().String(),
	}, nil
}

// TrialBalance lists posted debit and credit totals of every account with
// activity, ordered by account code
func (s *AccountingService) TrialBalance(ctx context.Context) (*TrialBalanceResponse, error) {
	totals, err := s.repos.Entries.TrialBalance(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(totals))
	for i, t := range totals {
		ids[i] = t.AccountID
	}
	accounts, err := s.repos.Accounts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*ledger.Account, len(accounts))
	for i := range accounts {
		byID[accounts[i].ID] = &accounts[i]
	}

	resp := &TrialBalanceResponse{
		Currency:    s.settings.BaseCurrency.String(),
		Lines:       make([]TrialBalanceLine, 0, len(totals)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, t := range totals {
		line := TrialBalanceLine{
			AccountID: t.AccountID,
			Debit:     t.BaseDebit,
			Credit:    t.BaseCredit,
			Balance:   t.Balance(),
		}
		// soft-deleted accounts keep their history
		if acct, ok := byID[t.AccountID]; ok {
			line.Code = acct.Code
			line.Name = acct.Name
			line.AccountType = string(acct.Type)
		}
		resp.Lines = append(resp.Lines, line)
		resp.TotalDebit = resp.TotalDebit.Add(t.BaseDebit)
		resp.TotalCredit = resp.TotalCredit.Add(t.BaseCredit)
	}
	sort.SliceStable(resp.Lines, func(i, j int) bool {
		return resp.Lines[i].Code < resp.Lines[j].Code
	})
	return resp, nil
}

// ===================== Journal entries =====================

// CreateEntry validates and records a journal entry, posting it at once when
// AutoPost is set. Nothing is persisted when validation fails.
func (s *AccountingService) CreateEntry(ctx context.Context, input CreateEntryInput) (*JournalEntryResponse, error) {
	specs := make([]ledger.LineSpec, len(input.Lines))
	for i, l := range input.Lines {
		var currency valueobject.Currency
		if strings.TrimSpace(l.Currency) != "" {
			cur, err := valueobject.ParseCurrency(l.Currency)
			if err != nil {
				return nil, shared.NewValidationError("INVALID_CURRENCY", "line %d: %s", i+1, err.Error())
			}
			currency = cur
		}
		specs[i] = ledger.LineSpec{
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Currency:     currency,
			ExchangeRate: l.ExchangeRate,
			Description:  l.Description,
		}
	}

	entry, err := ledger.NewJournalEntry(s.tenantID, ledger.EntryDetails{
		EntryDate:  input.EntryDate,
		Reference:  input.Reference,
		Memo:       input.Memo,
		SourceType: ledger.SourceType(strings.ToLower(strings.TrimSpace(input.SourceType))),
		SourceID:   input.SourceID,
	}, s.settings.BaseCurrency, specs)
	if err != nil {
		return nil, err
	}
	if input.UserID != nil {
		entry.SetCreatedBy(*input.UserID)
	}

	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requirePostable(ctx, entry.AccountIDs()); err != nil {
			return err
		}
		if input.AutoPost {
			if err := entry.Post(input.UserID, s.now()); err != nil {
				return err
			}
		}
		return s.repos.Entries.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("Journal entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("status", string(entry.Status)),
		zap.Int("line_count", len(entry.Lines)),
		zap.String("total", entry.TotalDebit().String()))

	resp := ToJournalEntryResponse(entry)
	s.publish(ctx, entry)
	return &resp, nil
}

// PostEntry moves a draft entry to posted. The referenced accounts must still
// accept postings.
func (s *AccountingService) PostEntry(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*JournalEntryResponse, error) {
	var entry *ledger.JournalEntry
	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.repos.Entries.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := entry.Post(userID, s.now()); err != nil {
			return err
		}
		if err := s.requirePostable(ctx, entry.AccountIDs()); err != nil {
			return err
		}
		return s.repos.Entries.UpdateStatus(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("Journal entry posted", zap.String("entry_id", entry.ID.String()))

	resp := ToJournalEntryResponse(entry)
	s.publish(ctx, entry)
	return &resp, nil
}

// ListEntries returns entries newest first with their lines
func (s *AccountingService) ListEntries(ctx context.Context, filter EntryListFilter) (*ListResult[JournalEntryResponse], error) {
	query := ledger.JournalEntryFilter{
		Pagination: shared.Pagination{Offset: filter.Offset, Limit: filter.Limit}.Normalize(),
	}
	if strings.TrimSpace(filter.Status) != "" {
		status, err := ledger.ParseEntryStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		query.Status = &status
	}

	entries, err := s.repos.Entries.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Entries.Count(ctx, query)
	if err != nil {
		return nil, err
	}

	items := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		items[i] = ToJournalEntryResponse(&entries[i])
	}
	return &ListResult[JournalEntryResponse]{
		Items:  items,
		Total:  total,
		Offset: query.Offset,
		Limit:  query.Limit,
	}, nil
}

// GetEntry returns one entry with its lines
func (s *AccountingService) GetEntry(ctx context.Context, id uuid.UUID) (*JournalEntryResponse, error) {
	entry, err := s.repos.Entries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToJournalEntryResponse(entry)
	return &resp, nil
}
