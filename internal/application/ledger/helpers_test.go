package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/infrastructure/persistence"
	"github.com/dealledger/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func qty(s string) *decimal.Decimal {
	q := decimal.RequireFromString(s)
	return &q
}

func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

// fixture wires services for one tenant over an in-memory database
type fixture struct {
	db        *gorm.DB
	tenantID  uuid.UUID
	publisher *testutil.RecordingPublisher
	services  *Services
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	settings  Settings
	sequences persistence.SequenceFactory
}

func withSettings(fn func(*Settings)) fixtureOption {
	return func(c *fixtureConfig) { fn(&c.settings) }
}

func withSequence(seq ledger.InvoiceSequence) fixtureOption {
	return func(c *fixtureConfig) {
		c.sequences = func(uuid.UUID, ledger.InvoiceSequence) ledger.InvoiceSequence { return seq }
	}
}

func withSequenceFactory(sequences persistence.SequenceFactory) fixtureOption {
	return func(c *fixtureConfig) { c.sequences = sequences }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{settings: DefaultSettings()}
	for _, opt := range opts {
		opt(&cfg)
	}

	db := testutil.NewSQLiteDB(t)
	publisher := testutil.NewRecordingPublisher()
	factory := NewFactory(
		persistence.NewRepositoryFactory(db, cfg.sequences),
		cfg.settings,
		WithEventPublisher(publisher),
		WithClock(func() time.Time { return fixedNow }),
	)
	tenantID := uuid.New()
	services, err := factory.ForTenant(tenantID)
	require.NoError(t, err)

	return &fixture{db: db, tenantID: tenantID, publisher: publisher, services: services}
}

// accountsByCode seeds the default chart and indexes it by code
func (f *fixture) accountsByCode(t *testing.T) map[string]AccountResponse {
	t.Helper()
	accounts, err := f.services.Accounting.SeedDefaults(context.Background())
	require.NoError(t, err)
	out := make(map[string]AccountResponse, len(accounts))
	for _, a := range accounts {
		out[a.Code] = a
	}
	return out
}

func (f *fixture) balance(t *testing.T, accountID uuid.UUID) decimal.Decimal {
	t.Helper()
	m, err := f.services.Accounting.GetBalance(context.Background(), accountID)
	require.NoError(t, err)
	return m.Amount()
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a DomainError, got %T: %v", err, err)
	require.Equal(t, code, de.Code)
}

// mockSequence is a scripted invoice sequence that can also resync
type mockSequence struct {
	mock.Mock
}

func (m *mockSequence) Next(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSequence) Resync(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
