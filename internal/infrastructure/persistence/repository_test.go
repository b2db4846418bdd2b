package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/dealledger/backend/internal/infrastructure/persistence"
	"github.com/dealledger/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func qty(s string) *decimal.Decimal {
	q := decimal.RequireFromString(s)
	return &q
}

func date(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

func tenantRepos(t *testing.T, db *gorm.DB, tenantID uuid.UUID) ledger.Repositories {
	t.Helper()
	repos, err := persistence.NewRepositoryFactory(db, nil).ForTenant(tenantID)
	require.NoError(t, err)
	return repos
}

func seedChart(t *testing.T, repos ledger.Repositories, tenantID uuid.UUID) map[string]*ledger.Account {
	t.Helper()
	chart, err := ledger.BuildDefaultChart(tenantID, valueobject.EUR)
	require.NoError(t, err)
	require.NoError(t, repos.Accounts.SaveBatch(context.Background(), chart))
	byCode := make(map[string]*ledger.Account, len(chart))
	for _, a := range chart {
		byCode[a.Code] = a
	}
	return byCode
}

func TestRepositoryFactory_RequiresTenant(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	_, err := persistence.NewRepositoryFactory(db, nil).ForTenant(uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrTenantRequired)

	_, err = persistence.NewGormAccountRepository(db, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrTenantRequired)
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	tenantA, tenantB := uuid.New(), uuid.New()
	reposA := tenantRepos(t, db, tenantA)
	reposB := tenantRepos(t, db, tenantB)

	chart := seedChart(t, reposA, tenantA)
	seedChart(t, reposB, tenantB)

	t.Run("count and ordering", func(t *testing.T) {
		n, err := reposA.Accounts.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(len(chart)), n)

		all, err := reposA.Accounts.FindAll(ctx, ledger.AccountFilter{})
		require.NoError(t, err)
		require.Len(t, all, len(chart))
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].Code, all[i].Code)
		}
	})

	t.Run("filter by type", func(t *testing.T) {
		revenue := ledger.AccountTypeRevenue
		accounts, err := reposA.Accounts.FindAll(ctx, ledger.AccountFilter{Type: &revenue})
		require.NoError(t, err)
		require.NotEmpty(t, accounts)
		for _, a := range accounts {
			assert.Equal(t, ledger.AccountTypeRevenue, a.Type)
		}
	})

	t.Run("find by code and id", func(t *testing.T) {
		cash, err := reposA.Accounts.FindByCode(ctx, ledger.CodeCash)
		require.NoError(t, err)
		assert.Equal(t, chart[ledger.CodeCash].ID, cash.ID)
		assert.Equal(t, tenantA, cash.TenantID)
		assert.Equal(t, valueobject.EUR, cash.Currency)
		assert.NotNil(t, cash.ParentID)

		byID, err := reposA.Accounts.FindByID(ctx, cash.ID)
		require.NoError(t, err)
		assert.Equal(t, cash.Code, byID.Code)

		found, err := reposA.Accounts.FindByIDs(ctx, []uuid.UUID{cash.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("tenant isolation", func(t *testing.T) {
		_, err := reposB.Accounts.FindByID(ctx, chart[ledger.CodeCash].ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		other, err := ledger.NewAccount(tenantA, "9999", "Foreign", ledger.AccountTypeAsset, valueobject.EUR)
		require.NoError(t, err)
		err = reposB.Accounts.Save(ctx, other)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("duplicate code is a conflict", func(t *testing.T) {
		exists, err := reposA.Accounts.ExistsByCode(ctx, ledger.CodeCash)
		require.NoError(t, err)
		assert.True(t, exists)

		dup, err := ledger.NewAccount(tenantA, ledger.CodeCash, "Another cash", ledger.AccountTypeAsset, valueobject.EUR)
		require.NoError(t, err)
		err = reposA.Accounts.Save(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("soft delete frees the code", func(t *testing.T) {
		acct, err := ledger.NewAccount(tenantA, "6999", "Temporary", ledger.AccountTypeExpense, valueobject.EUR)
		require.NoError(t, err)
		require.NoError(t, reposA.Accounts.Save(ctx, acct))
		require.NoError(t, reposA.Accounts.SoftDelete(ctx, acct.ID))

		exists, err := reposA.Accounts.ExistsByName(ctx, "Temporary")
		require.NoError(t, err)
		assert.False(t, exists)

		again, err := ledger.NewAccount(tenantA, "6999", "Temporary", ledger.AccountTypeExpense, valueobject.EUR)
		require.NoError(t, err)
		assert.NoError(t, reposA.Accounts.Save(ctx, again))

		assert.ErrorIs(t, reposA.Accounts.SoftDelete(ctx, uuid.New()), shared.ErrNotFound)
	})
}

func createEntry(t *testing.T, repos ledger.Repositories, tenantID uuid.UUID, day int, debit, credit *ledger.Account, amount string) *ledger.JournalEntry {
	t.Helper()
	entry, err := ledger.NewJournalEntry(tenantID, ledger.EntryDetails{EntryDate: date(day)}, valueobject.EUR, []ledger.LineSpec{
		{AccountID: debit.ID, Debit: d(amount)},
		{AccountID: credit.ID, Credit: d(amount)},
	})
	require.NoError(t, err)
	require.NoError(t, repos.Entries.Create(context.Background(), entry))
	return entry
}

func TestJournalEntryRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	tenantID := uuid.New()
	repos := tenantRepos(t, db, tenantID)
	chart := seedChart(t, repos, tenantID)
	cash, ar, fees := chart[ledger.CodeCash], chart[ledger.CodeAccountsReceivable], chart[ledger.CodeAdvisoryFees]

	posted := createEntry(t, repos, tenantID, 1, ar, fees, "1000")
	require.NoError(t, posted.Post(nil, time.Now()))
	require.NoError(t, repos.Entries.UpdateStatus(ctx, posted))

	receipt := createEntry(t, repos, tenantID, 5, cash, ar, "400")
	require.NoError(t, receipt.Post(nil, time.Now()))
	require.NoError(t, repos.Entries.UpdateStatus(ctx, receipt))

	createEntry(t, repos, tenantID, 10, ar, fees, "999")

	t.Run("find by id loads ordered lines", func(t *testing.T) {
		got, err := repos.Entries.FindByID(ctx, posted.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.EntryStatusPosted, got.Status)
		assert.Equal(t, 2, got.Version)
		require.Len(t, got.Lines, 2)
		assert.Equal(t, 1, got.Lines[0].LineNumber)
		assert.True(t, got.Lines[0].Debit.Equal(d("1000")))
		assert.Equal(t, date(1), got.EntryDate)
	})

	t.Run("list newest first", func(t *testing.T) {
		entries, err := repos.Entries.FindAll(ctx, ledger.JournalEntryFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, date(10), entries[0].EntryDate)
		assert.Equal(t, date(1), entries[2].EntryDate)

		status := ledger.EntryStatusDraft
		n, err := repos.Entries.Count(ctx, ledger.JournalEntryFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("posted totals ignore drafts", func(t *testing.T) {
		totals, err := repos.Entries.PostedTotals(ctx, ar.ID)
		require.NoError(t, err)
		assert.True(t, totals.BaseDebit.Equal(d("1000")), totals.BaseDebit.String())
		assert.True(t, totals.BaseCredit.Equal(d("400")), totals.BaseCredit.String())
		assert.True(t, totals.Balance().Equal(d("600")))

		none, err := repos.Entries.PostedTotals(ctx, chart[ledger.CodeAccountsPayable].ID)
		require.NoError(t, err)
		assert.True(t, none.Balance().IsZero())
	})

	t.Run("trial balance nets to zero", func(t *testing.T) {
		rows, err := repos.Entries.TrialBalance(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
		sum := decimal.Zero
		for _, r := range rows {
			sum = sum.Add(r.Balance())
		}
		assert.True(t, sum.IsZero())
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		stale, err := repos.Entries.FindByID(ctx, posted.ID)
		require.NoError(t, err)
		stale.Status = ledger.EntryStatusVoid
		// version not advanced, so the row no longer matches
		err = repos.Entries.UpdateStatus(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("unknown entry", func(t *testing.T) {
		_, err := repos.Entries.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func newInvoice(t *testing.T, tenantID uuid.UUID, number string) *ledger.Invoice {
	t.Helper()
	inv, err := ledger.NewInvoice(tenantID, number, ledger.InvoiceHeader{
		InvoiceDate: date(1),
		DueDate:     date(31),
		Currency:    valueobject.EUR,
	}, []ledger.ItemSpec{
		{Description: "Sell-side mandate retainer", Quantity: qty("1"), UnitPrice: d("5000"), TaxRate: d("20")},
	})
	require.NoError(t, err)
	return inv
}

func TestInvoiceRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	tenantID := uuid.New()
	repos := tenantRepos(t, db, tenantID)

	inv := newInvoice(t, tenantID, "INV-00001")
	require.NoError(t, repos.Invoices.Create(ctx, inv))

	t.Run("duplicate number is a conflict", func(t *testing.T) {
		err := repos.Invoices.Create(ctx, newInvoice(t, tenantID, "INV-00001"))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		// numbers are unique per tenant only
		other := uuid.New()
		otherRepos := tenantRepos(t, db, other)
		assert.NoError(t, otherRepos.Invoices.Create(ctx, newInvoice(t, other, "INV-00001")))
	})

	t.Run("count sequence", func(t *testing.T) {
		next, err := repos.Sequence.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), next)
	})

	t.Run("payment updates totals", func(t *testing.T) {
		err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
			locked, err := repos.Invoices.FindByIDForUpdate(ctx, inv.ID)
			if err != nil {
				return err
			}
			p, err := ledger.NewPayment(locked, ledger.PaymentDetails{PaymentDate: date(15), Amount: d("2000")})
			if err != nil {
				return err
			}
			if err := locked.ApplyPayment(p, false); err != nil {
				return err
			}
			if err := repos.Invoices.CreatePayment(ctx, p); err != nil {
				return err
			}
			return repos.Invoices.UpdateTotals(ctx, locked)
		})
		require.NoError(t, err)

		got, err := repos.Invoices.FindByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.InvoiceStatusPartiallyPaid, got.Status)
		assert.True(t, got.Total.Equal(d("6000")))
		assert.True(t, got.AmountPaid.Equal(d("2000")))
		assert.True(t, got.BalanceDue.Equal(d("4000")))
		require.Len(t, got.Lines, 1)
		require.Len(t, got.Payments, 1)
		assert.True(t, got.Payments[0].Amount.Equal(d("2000")))

		status := ledger.InvoiceStatusPartiallyPaid
		n, err := repos.Invoices.Count(ctx, &status)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("failed unit of work rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := repos.Invoices.Create(ctx, newInvoice(t, tenantID, "INV-00099")); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		n, err := repos.Invoices.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("list", func(t *testing.T) {
		list, err := repos.Invoices.FindAll(ctx, ledger.InvoiceFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "INV-00001", list[0].InvoiceNumber)
	})
}

func TestVendorAndBillRepositories(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	tenantID := uuid.New()
	repos := tenantRepos(t, db, tenantID)

	vendor, err := ledger.NewVendor(tenantID, ledger.VendorDetails{Name: "Data Room Co", ContactEmail: "billing@dataroom.example"})
	require.NoError(t, err)
	require.NoError(t, repos.Vendors.Save(ctx, vendor))

	bill, err := ledger.NewBill(vendor, ledger.BillHeader{
		BillNumber: "DR-77",
		BillDate:   date(3),
		DueDate:    date(30),
		Currency:   valueobject.EUR,
	}, []ledger.ItemSpec{
		{Description: "Virtual data room", Quantity: qty("1"), UnitPrice: d("1500"), TaxRate: d("20")},
	})
	require.NoError(t, err)
	require.NoError(t, repos.Bills.Create(ctx, bill))

	got, err := repos.Bills.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, vendor.ID, got.VendorID)
	assert.True(t, got.Total.Equal(d("1800")))
	require.Len(t, got.Lines, 1)

	bills, err := repos.Bills.FindAll(ctx, ledger.BillFilter{VendorID: &vendor.ID})
	require.NoError(t, err)
	assert.Len(t, bills, 1)

	otherVendor := uuid.New()
	n, err := repos.Bills.Count(ctx, ledger.BillFilter{VendorID: &otherVendor})
	require.NoError(t, err)
	assert.Zero(t, n)

	vendors, err := repos.Vendors.FindAll(ctx, shared.Pagination{})
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "billing@dataroom.example", vendors[0].ContactEmail)

	_, err = repos.Vendors.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestExchangeRateRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	tenantID := uuid.New()
	repos := tenantRepos(t, db, tenantID)

	for day, rate := range map[int]string{1: "1.08", 10: "1.09"} {
		r, err := ledger.NewExchangeRate(tenantID, "EUR", "USD", d(rate), date(day), "")
		require.NoError(t, err)
		require.NoError(t, repos.ExchangeRates.Create(ctx, r))
	}

	latest, err := repos.ExchangeRates.FindLatest(ctx, "eur", "usd", date(5))
	require.NoError(t, err)
	assert.True(t, latest.Rate.Equal(d("1.08")))

	latest, err = repos.ExchangeRates.FindLatest(ctx, "EUR", "USD", date(20))
	require.NoError(t, err)
	assert.True(t, latest.Rate.Equal(d("1.09")))

	_, err = repos.ExchangeRates.FindLatest(ctx, "EUR", "GBP", date(20))
	assert.ErrorIs(t, err, shared.ErrNotFound)

	dup, err := ledger.NewExchangeRate(tenantID, "EUR", "USD", d("1.10"), date(10), "ecb")
	require.NoError(t, err)
	assert.ErrorIs(t, repos.ExchangeRates.Create(ctx, dup), shared.ErrAlreadyExists)

	from := "EUR"
	all, err := repos.ExchangeRates.FindAll(ctx, ledger.ExchangeRateFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := repos.ExchangeRates.Count(ctx, ledger.ExchangeRateFilter{From: &from})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
