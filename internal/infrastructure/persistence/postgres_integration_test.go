//go:build integration

package persistence_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	appledger "github.com/dealledger/backend/internal/application/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/infrastructure/cache"
	"github.com/dealledger/backend/internal/infrastructure/migration"
	"github.com/dealledger/backend/internal/infrastructure/persistence"
	"github.com/dealledger/backend/migrations"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a PostgreSQL container and applies the embedded migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := persistence.Open(gormpostgres.Open(dsn), gormlogger.Discard)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.NewWithSource(sqlDB, migrations.FS, ".", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	st, err := m.Status()
	require.NoError(t, err)
	require.False(t, st.Dirty)

	return db
}

func TestPostgres_MigrationsRoundTrip(t *testing.T) {
	db := newPostgresDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := migration.NewWithSource(sqlDB, migrations.FS, ".", zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, m.Down())
	st, err := m.Status()
	require.NoError(t, err)
	assert.False(t, st.Applied)

	require.NoError(t, m.Up())
	st, err = m.Status()
	require.NoError(t, err)
	assert.True(t, st.Applied)
	assert.Equal(t, uint(20260105090400), st.Version)
}

func TestPostgres_LedgerFlow(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	settings := appledger.DefaultSettings()
	settings.PostToGL = true
	factory := appledger.NewFactory(persistence.NewRepositoryFactory(db, nil), settings)

	tenantA, tenantB := uuid.New(), uuid.New()
	svcA, err := factory.ForTenant(tenantA)
	require.NoError(t, err)
	svcB, err := factory.ForTenant(tenantB)
	require.NoError(t, err)

	chart, err := svcA.Accounting.SeedDefaults(ctx)
	require.NoError(t, err)
	require.Len(t, chart, 22)
	byCode := map[string]uuid.UUID{}
	for _, a := range chart {
		byCode[a.Code] = a.ID
	}

	inv, err := svcA.Invoices.CreateInvoice(ctx, appledger.CreateInvoiceInput{
		InvoiceDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Lines: []appledger.DocumentLineInput{
			{Description: "Sell-side advisory", UnitPrice: decimal.NewFromInt(10000), TaxRate: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", inv.InvoiceNumber)
	require.NotNil(t, inv.JournalEntryID)

	_, err = svcA.Invoices.RecordPayment(ctx, inv.ID, appledger.RecordPaymentInput{
		PaymentDate: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(4000),
	})
	require.NoError(t, err)

	got, err := svcA.Invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "partially_paid", got.Status)
	assert.True(t, got.BalanceDue.Equal(decimal.NewFromInt(8000)))

	receivable, err := svcA.Accounting.AccountBalance(ctx, byCode["1100"])
	require.NoError(t, err)
	assert.True(t, receivable.Balance.Equal(decimal.NewFromInt(8000)), receivable.Balance.String())

	tb, err := svcA.Accounting.TrialBalance(ctx)
	require.NoError(t, err)
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))
	assert.True(t, tb.TotalDebit.Equal(decimal.NewFromInt(16000)), tb.TotalDebit.String())

	t.Run("tenants are isolated", func(t *testing.T) {
		_, err := svcB.Invoices.GetInvoice(ctx, inv.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		accounts, err := svcB.Accounting.SeedDefaults(ctx)
		require.NoError(t, err)
		assert.Len(t, accounts, 22)
		for _, a := range accounts {
			assert.NotEqual(t, byCode[a.Code], a.ID)
		}
	})

	t.Run("duplicate rate hits the unique index", func(t *testing.T) {
		in := appledger.CreateRateInput{
			From: "USD", To: "EUR", Rate: decimal.RequireFromString("0.92"),
			RateDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}
		_, err := svcA.ExchangeRates.CreateRate(ctx, in)
		require.NoError(t, err)
		_, err = svcA.ExchangeRates.CreateRate(ctx, in)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		_, err = svcB.ExchangeRates.CreateRate(ctx, in)
		assert.NoError(t, err, "same pair and date in another tenant")
	})
}

func TestPostgres_ConcurrentInvoiceNumbers(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	factory := appledger.NewFactory(
		persistence.NewRepositoryFactory(db, cache.NewSequenceFactory(client)),
		appledger.DefaultSettings(),
	)
	svc, err := factory.ForTenant(uuid.New())
	require.NoError(t, err)

	create := func() (string, error) {
		inv, err := svc.Invoices.CreateInvoice(ctx, appledger.CreateInvoiceInput{
			InvoiceDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
			Lines:       []appledger.DocumentLineInput{{Description: "Retainer", UnitPrice: decimal.NewFromInt(500)}},
		})
		if err != nil {
			return "", err
		}
		return inv.InvoiceNumber, nil
	}

	first, err := create()
	require.NoError(t, err)
	require.Equal(t, "INV-00001", first)

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = []string{first}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := create()
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers = append(numbers, n)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Strings(numbers)
	want := make([]string, 0, workers+1)
	for i := 1; i <= workers+1; i++ {
		want = append(want, fmt.Sprintf("INV-%05d", i))
	}
	assert.Equal(t, want, numbers)

	count, err := svc.Invoices.CountInvoices(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(workers+1), count)
}
