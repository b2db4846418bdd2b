package ledger

import (
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Well-known account codes of the default chart used by automatic postings
const (
	CodeCash               = "1010"
	CodeAccountsReceivable = "1100"
	CodeAccountsPayable    = "2100"
	CodeTaxPayable         = "2300"
	CodeAdvisoryFees       = "4010"
	CodeProfessionalFees   = "5020"
)

// AccountTemplate describes one row of the default chart of accounts
type AccountTemplate struct {
	Code       string
	Name       string
	Type       AccountType
	IsHeader   bool
	ParentCode string
}

var defaultChart = []AccountTemplate{
	{Code: "1000", Name: "Cash and Bank", Type: AccountTypeAsset, IsHeader: true},
	{Code: "1010", Name: "Checking Account", Type: AccountTypeAsset, ParentCode: "1000"},
	{Code: "1100", Name: "Accounts Receivable", Type: AccountTypeAsset, ParentCode: "1000"},
	{Code: "1200", Name: "Prepaid Expenses", Type: AccountTypeAsset, ParentCode: "1000"},
	{Code: "2000", Name: "Current Liabilities", Type: AccountTypeLiability, IsHeader: true},
	{Code: "2100", Name: "Accounts Payable", Type: AccountTypeLiability, ParentCode: "2000"},
	{Code: "2200", Name: "Accrued Expenses", Type: AccountTypeLiability, ParentCode: "2000"},
	{Code: "2300", Name: "Tax Payable", Type: AccountTypeLiability, ParentCode: "2000"},
	{Code: "3000", Name: "Equity", Type: AccountTypeEquity, IsHeader: true},
	{Code: "3100", Name: "Retained Earnings", Type: AccountTypeEquity, ParentCode: "3000"},
	{Code: "4000", Name: "Revenue", Type: AccountTypeRevenue, IsHeader: true},
	{Code: "4010", Name: "Advisory Fees", Type: AccountTypeRevenue, ParentCode: "4000"},
	{Code: "4020", Name: "Retainer Fees", Type: AccountTypeRevenue, ParentCode: "4000"},
	{Code: "4030", Name: "Success Fees", Type: AccountTypeRevenue, ParentCode: "4000"},
	{Code: "4090", Name: "Other Revenue", Type: AccountTypeRevenue, ParentCode: "4000"},
	{Code: "5000", Name: "Operating Expenses", Type: AccountTypeExpense, IsHeader: true},
	{Code: "5010", Name: "Salaries & Wages", Type: AccountTypeExpense, ParentCode: "5000"},
	{Code: "5020", Name: "Professional Services", Type: AccountTypeExpense, ParentCode: "5000"},
	{Code: "5030", Name: "Travel & Entertainment", Type: AccountTypeExpense, ParentCode: "5000"},
	{Code: "5040", Name: "Office Expenses", Type: AccountTypeExpense, ParentCode: "5000"},
	{Code: "5050", Name: "Technology & Software", Type: AccountTypeExpense, ParentCode: "5000"},
	{Code: "5090", Name: "Miscellaneous Expenses", Type: AccountTypeExpense, ParentCode: "5000"},
}

// DefaultChart returns a copy of the default chart of accounts catalog
func DefaultChart() []AccountTemplate {
	out := make([]AccountTemplate, len(defaultChart))
	copy(out, defaultChart)
	return out
}

// BuildDefaultChart materialises the default catalog for a tenant with parent
// links resolved. Headers precede their children in the catalog.
func BuildDefaultChart(tenantID uuid.UUID, currency valueobject.Currency) ([]*Account, error) {
	byCode := make(map[string]*Account, len(defaultChart))
	accounts := make([]*Account, 0, len(defaultChart))
	for _, tpl := range defaultChart {
		acct, err := NewAccount(tenantID, tpl.Code, tpl.Name, tpl.Type, currency)
		if err != nil {
			return nil, err
		}
		if tpl.IsHeader {
			acct.MarkHeader()
		}
		if tpl.ParentCode != "" {
			if err := acct.AttachTo(byCode[tpl.ParentCode]); err != nil {
				return nil, err
			}
		}
		byCode[tpl.Code] = acct
		accounts = append(accounts, acct)
	}
	return accounts, nil
}
