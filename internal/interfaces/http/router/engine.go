package router

import (
	"github.com/dealledger/backend/internal/infrastructure/logger"
	"github.com/dealledger/backend/internal/interfaces/http/handler"
	"github.com/dealledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps request bodies when EngineConfig leaves it unset
const DefaultMaxBodyBytes int64 = 1 << 20

// EngineConfig holds everything the HTTP engine needs besides the handlers
type EngineConfig struct {
	ServiceName    string
	APIVersion     string
	Logger         *zap.Logger
	TracingEnabled bool
	TracerProvider trace.TracerProvider
	// Meter enables request metrics when set
	Meter metric.Meter
	// TokenValidator enables bearer token authentication when set
	TokenValidator middleware.TokenValidator
	AllowOrigins   []string
	TrustedProxies []string
	MaxBodyBytes   int64
	Development    bool
}

// New builds the gin engine with the full middleware chain, the health
// endpoints and every ledger route under /api/<version>/ledger.
func New(cfg EngineConfig, services handler.ServicesProvider, health *handler.HealthHandler) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v1"
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.TracingEnabled,
			TracerProvider: cfg.TracerProvider,
		}),
	)
	if cfg.TokenValidator != nil {
		jwtCfg := middleware.DefaultJWTConfig(cfg.TokenValidator)
		jwtCfg.Logger = log
		engine.Use(middleware.JWTAuthWithConfig(jwtCfg))
	}

	security := middleware.DefaultSecurityConfig()
	security.IsDevelopment = cfg.Development
	engine.Use(
		middleware.Tenant(),
		middleware.TracingAttributes(),
		middleware.HTTPMetrics(cfg.Meter),
		middleware.SecureWithConfig(security),
		middleware.CORS(cfg.AllowOrigins...),
		middleware.BodyLimit(cfg.MaxBodyBytes),
	)

	engine.GET("/health", health.Health)

	NewRouter(engine, WithAPIVersion(cfg.APIVersion)).
		Register(NewDomainGroup("system", "").GET("/health", health.Health)).
		Register(LedgerRoutes(services)).
		Setup()

	return engine, nil
}

// LedgerRoutes groups the account, journal, invoice, vendor and rate routes
func LedgerRoutes(services handler.ServicesProvider) *DomainGroup {
	accounts := handler.NewAccountHandler(services)
	entries := handler.NewJournalEntryHandler(services)
	invoices := handler.NewInvoiceHandler(services)
	vendors := handler.NewVendorHandler(services)
	rates := handler.NewExchangeRateHandler(services)

	ledger := NewDomainGroup("ledger", "/ledger")
	ledger.GET("/trial-balance", accounts.TrialBalance)

	ledger.Group("accounts", "/accounts").
		GET("", accounts.ListAccounts).
		POST("", accounts.CreateAccount).
		GET("/:id", accounts.GetAccount).
		GET("/:id/balance", accounts.GetBalance)

	ledger.Group("journal-entries", "/journal-entries").
		POST("", entries.CreateEntry).
		GET("", entries.ListEntries).
		GET("/:id", entries.GetEntry).
		POST("/:id/post", entries.PostEntry)

	ledger.Group("invoices", "/invoices").
		POST("", invoices.CreateInvoice).
		GET("", invoices.ListInvoices).
		GET("/count", invoices.CountInvoices).
		GET("/:id", invoices.GetInvoice).
		POST("/:id/payments", invoices.RecordPayment)

	ledger.Group("vendors", "/vendors").
		POST("", vendors.CreateVendor).
		GET("", vendors.ListVendors).
		GET("/:id", vendors.GetVendor).
		POST("/:id/bills", vendors.CreateBill).
		GET("/:id/bills", vendors.ListVendorBills)

	ledger.Group("bills", "/bills").
		GET("", vendors.ListBills).
		GET("/:id", vendors.GetBill)

	ledger.Group("exchange-rates", "/exchange-rates").
		POST("", rates.CreateRate).
		GET("", rates.ListRates).
		GET("/latest", rates.LatestRate)

	return ledger
}
