package ledger

import (
	"strings"

	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AccountType classifies an account in the chart of accounts
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// AllAccountTypes returns every valid account type
func AllAccountTypes() []AccountType {
	return []AccountType{
		AccountTypeAsset,
		AccountTypeLiability,
		AccountTypeEquity,
		AccountTypeRevenue,
		AccountTypeExpense,
	}
}

// IsValid checks if the account type is one of the five kinds
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// IsDebitNormal reports whether the account normally carries a debit balance.
// Balances are always reported as debit minus credit, so credit-normal accounts
// (liability, equity, revenue) show negative figures for normal activity.
func (t AccountType) IsDebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// ParseAccountType parses a string into an AccountType
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewValidationError("INVALID_ACCOUNT_TYPE",
			"account type must be one of asset, liability, equity, revenue, expense; got %q", s)
	}
	return t, nil
}

// Account is a node in the tenant's chart of accounts
type Account struct {
	shared.TenantAggregateRoot
	Code        string
	Name        string
	Type        AccountType
	ParentID    *uuid.UUID
	Description string
	Currency    valueobject.Currency
	IsHeader    bool
	IsActive    bool
}

// NewAccount creates a new active, postable account
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType, currency valueobject.Currency) (*Account, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("INVALID_ACCOUNT_CODE", "account code cannot be empty")
	}
	if len(code) > 20 {
		return nil, shared.NewValidationError("INVALID_ACCOUNT_CODE", "account code cannot exceed 20 characters")
	}
	if name == "" {
		return nil, shared.NewValidationError("INVALID_ACCOUNT_NAME", "account name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_ACCOUNT_NAME", "account name cannot exceed 200 characters")
	}
	if !accountType.IsValid() {
		return nil, shared.NewValidationError("INVALID_ACCOUNT_TYPE", "invalid account type %q", accountType)
	}
	if !currency.IsValid() {
		return nil, shared.NewValidationError("INVALID_CURRENCY", "invalid currency %q", currency)
	}

	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                accountType,
		Currency:            currency,
		IsActive:            true,
	}, nil
}

// MarkHeader turns the account into a non-postable grouping node
func (a *Account) MarkHeader() {
	a.IsHeader = true
}

// AttachTo places the account under a header account of the same tenant
func (a *Account) AttachTo(parent *Account) error {
	if parent == nil {
		a.ParentID = nil
		return nil
	}
	if parent.TenantID != a.TenantID {
		return shared.NewValidationError("INVALID_PARENT_ACCOUNT", "parent account belongs to another tenant")
	}
	if parent.ID == a.ID {
		return shared.NewValidationError("INVALID_PARENT_ACCOUNT", "account cannot be its own parent")
	}
	if !parent.IsHeader {
		return shared.NewValidationError("INVALID_PARENT_ACCOUNT", "parent account %s is not a header account", parent.Code)
	}
	id := parent.ID
	a.ParentID = &id
	return nil
}

// IsPostable reports whether journal lines may reference this account
func (a *Account) IsPostable() bool {
	return a.IsActive && !a.IsHeader
}

// EnsurePostable returns a validation error for header or inactive accounts
func (a *Account) EnsurePostable() error {
	if a.IsHeader {
		return shared.NewValidationError("ACCOUNT_NOT_POSTABLE", "account %s is a header account and cannot be posted to", a.Code)
	}
	if !a.IsActive {
		return shared.NewValidationError("ACCOUNT_NOT_POSTABLE", "account %s is inactive", a.Code)
	}
	return nil
}

// Deactivate stops further postings to the account
func (a *Account) Deactivate() {
	if !a.IsActive {
		return
	}
	a.IsActive = false
	a.IncrementVersion()
}
