package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/dealledger/backend/internal/infrastructure/config"
	"github.com/dealledger/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Settings holds the accounting policy applied by the services
type Settings struct {
	BaseCurrency     valueobject.Currency
	InvoicePrefix    string
	AllowOverpayment bool
	// PostToGL makes invoices, payments and bills write their own journal entries
	PostToGL bool
}

// DefaultSettings returns EUR base currency, INV prefix and no automatic postings
func DefaultSettings() Settings {
	return Settings{BaseCurrency: valueobject.EUR, InvoicePrefix: "INV"}
}

// SettingsFromConfig validates the ledger section of the configuration
func SettingsFromConfig(cfg config.LedgerConfig) (Settings, error) {
	s := DefaultSettings()
	if cfg.BaseCurrency != "" {
		cur, err := valueobject.ParseCurrency(cfg.BaseCurrency)
		if err != nil {
			return Settings{}, shared.NewValidationError("INVALID_CURRENCY", "ledger.base_currency: %s", err.Error())
		}
		s.BaseCurrency = cur
	}
	if p := strings.TrimSpace(cfg.InvoicePrefix); p != "" {
		s.InvoicePrefix = p
	}
	s.AllowOverpayment = cfg.AllowOverpayment
	s.PostToGL = cfg.PostToGL
	return s, nil
}

// RepositoryProvider binds repositories to a tenant
type RepositoryProvider interface {
	ForTenant(tenantID uuid.UUID) (ledger.Repositories, error)
}

// Services groups the tenant-bound application services
type Services struct {
	Accounting    *AccountingService
	Invoices      *InvoiceService
	Vendors       *VendorService
	ExchangeRates *ExchangeRateService
}

// Factory builds tenant-bound services. It is safe for concurrent use and is
// meant to be created once per process.
type Factory struct {
	repos     RepositoryProvider
	settings  Settings
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
	seeds     *singleflight.Group
}

// FactoryOption is a functional option for configuring Factory
type FactoryOption func(*Factory)

// WithEventPublisher sets the publisher that receives domain events after commit
func WithEventPublisher(p shared.EventPublisher) FactoryOption {
	return func(f *Factory) {
		if p != nil {
			f.publisher = p
		}
	}
}

// WithLogger sets the logger used when the request context carries none
func WithLogger(l *zap.Logger) FactoryOption {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithClock overrides the time source, mainly for tests
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFactory creates a Factory
func NewFactory(repos RepositoryProvider, settings Settings, opts ...FactoryOption) *Factory {
	f := &Factory{
		repos:     repos,
		settings:  settings,
		publisher: shared.NopEventPublisher{},
		logger:    zap.NewNop(),
		now:       time.Now,
		seeds:     &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Settings returns the policy the factory applies
func (f *Factory) Settings() Settings {
	return f.settings
}

// ForTenant returns services bound to tenantID. uuid.Nil is rejected.
func (f *Factory) ForTenant(tenantID uuid.UUID) (*Services, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	repos, err := f.repos.ForTenant(tenantID)
	if err != nil {
		return nil, err
	}

	b := &base{
		tenantID:  tenantID,
		repos:     repos,
		settings:  f.settings,
		publisher: f.publisher,
		logger:    f.logger,
		now:       f.now,
		seeds:     f.seeds,
	}
	return &Services{
		Accounting:    &AccountingService{base: b},
		Invoices:      &InvoiceService{base: b},
		Vendors:       &VendorService{base: b},
		ExchangeRates: &ExchangeRateService{base: b},
	}, nil
}

// base carries what every tenant-bound service shares
type base struct {
	tenantID  uuid.UUID
	repos     ledger.Repositories
	settings  Settings
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
	seeds     *singleflight.Group
}

// eventSource is an aggregate with pending domain events
type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

func (b *base) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, b.logger)
}

// publish hands pending events to the publisher once the unit of work has
// committed. A publish failure is logged; the ledger write stands.
func (b *base) publish(ctx context.Context, sources ...eventSource) {
	var events []shared.DomainEvent
	for _, src := range sources {
		events = append(events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
	if len(events) == 0 {
		return
	}
	if err := b.publisher.Publish(ctx, events...); err != nil {
		b.log(ctx).Warn("Failed to publish ledger events",
			zap.String("tenant_id", b.tenantID.String()),
			zap.Int("event_count", len(events)),
			zap.Error(err))
	}
}

// seedDefaults installs the default chart once per tenant and returns the
// tenant's accounts ordered by code. Concurrent callers share one seeding run.
func (b *base) seedDefaults(ctx context.Context) ([]ledger.Account, error) {
	v, err, _ := b.seeds.Do(b.tenantID.String(), func() (any, error) {
		var accounts []ledger.Account
		// every waiting caller shares this run, so it outlives the first caller's cancellation
		seedCtx := context.WithoutCancel(ctx)
		err := b.repos.Tx.WithinTx(seedCtx, func(ctx context.Context) error {
			n, err := b.repos.Accounts.Count(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				chart, err := ledger.BuildDefaultChart(b.tenantID, b.settings.BaseCurrency)
				if err != nil {
					return err
				}
				if err := b.repos.Accounts.SaveBatch(ctx, chart); err != nil {
					return err
				}
				b.log(ctx).Info("Seeded default chart of accounts",
					zap.String("tenant_id", b.tenantID.String()),
					zap.Int("account_count", len(chart)))
			}
			accounts, err = b.repos.Accounts.FindAll(ctx, ledger.AccountFilter{})
			return err
		})
		return accounts, err
	})
	if err != nil {
		return nil, err
	}
	seeded := v.([]ledger.Account)
	out := make([]ledger.Account, len(seeded))
	copy(out, seeded)
	return out, nil
}
