package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/dealledger/backend/internal/infrastructure/config"
	"github.com/dealledger/backend/internal/infrastructure/persistence"
	"github.com/dealledger/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSettingsFromConfig(t *testing.T) {
	s, err := SettingsFromConfig(config.LedgerConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	s, err = SettingsFromConfig(config.LedgerConfig{
		BaseCurrency:     "usd",
		InvoicePrefix:    " DL ",
		AllowOverpayment: true,
		PostToGL:         true,
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.Currency("USD"), s.BaseCurrency)
	assert.Equal(t, "DL", s.InvoicePrefix)
	assert.True(t, s.AllowOverpayment)
	assert.True(t, s.PostToGL)

	_, err = SettingsFromConfig(config.LedgerConfig{BaseCurrency: "dollars"})
	requireCode(t, err, "INVALID_CURRENCY")
}

func TestFactory_ForTenant(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	factory := NewFactory(persistence.NewRepositoryFactory(db, nil), DefaultSettings())

	_, err := factory.ForTenant(uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrTenantRequired)

	acme, err := factory.ForTenant(uuid.New())
	require.NoError(t, err)
	globex, err := factory.ForTenant(uuid.New())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = acme.Accounting.SeedDefaults(ctx)
	require.NoError(t, err)

	accounts, err := globex.Accounting.ListAccounts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, accounts, "charts are per tenant")
}

func TestFactory_PublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	publisher := testutil.NewRecordingPublisher()
	publisher.SetError(errors.New("broker unavailable"))

	db := testutil.NewSQLiteDB(t)
	factory := NewFactory(persistence.NewRepositoryFactory(db, nil), DefaultSettings(),
		WithEventPublisher(publisher),
		WithLogger(zap.New(core)),
	)
	services, err := factory.ForTenant(uuid.New())
	require.NoError(t, err)

	inv, err := services.Invoices.CreateInvoice(context.Background(), advisoryInvoice())
	require.NoError(t, err, "the invoice is committed before events are published")
	assert.Equal(t, "INV-00001", inv.InvoiceNumber)

	assert.Equal(t, []string{ledger.EventTypeInvoiceCreated}, publisher.Types())
	entries := logs.FilterMessage("Failed to publish ledger events").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "broker unavailable", entries[0].ContextMap()["error"])
}
