// Command server runs the DealLedger HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appledger "github.com/dealledger/backend/internal/application/ledger"
	"github.com/dealledger/backend/internal/infrastructure/auth"
	"github.com/dealledger/backend/internal/infrastructure/cache"
	"github.com/dealledger/backend/internal/infrastructure/config"
	"github.com/dealledger/backend/internal/infrastructure/event"
	"github.com/dealledger/backend/internal/infrastructure/logger"
	"github.com/dealledger/backend/internal/infrastructure/persistence"
	"github.com/dealledger/backend/internal/infrastructure/telemetry"
	"github.com/dealledger/backend/internal/interfaces/http/handler"
	"github.com/dealledger/backend/internal/interfaces/http/middleware"
	"github.com/dealledger/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog, _ := logger.NewForEnvironment("development")
		bootLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	// Once the OTLP log exporter is up, every zap entry is also shipped to the collector
	log := bootLog
	if providers.Logs.IsEnabled() {
		log, err = logger.New(logCfg, providers.Logs.ZapCore(cfg.App.Name, logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			bootLog.Fatal("Failed to attach log exporter", zap.Error(err))
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if db.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}

	if err := telemetry.InstrumentGorm(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL && !cfg.App.IsProduction(),
	}, providers.Tracer.Provider(), log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}

	var (
		sequences    persistence.SequenceFactory
		healthChecks []handler.HealthCheck
	)
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() { _ = client.Close() }()

		sequences = cache.NewSequenceFactory(client, cache.WithLogger(log))
		healthChecks = append(healthChecks, handler.HealthCheck{
			Name:  "redis",
			Probe: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
		log.Info("Redis invoice sequences enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	bus := event.NewBus(log)
	bus.Subscribe(event.NewAuditLogHandler(log))
	ledgerMetrics, err := telemetry.NewLedgerMetrics(providers.Meter.Meter("dealledger/ledger"))
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}
	bus.Subscribe(ledgerMetrics)

	settings, err := appledger.SettingsFromConfig(cfg.Ledger)
	if err != nil {
		log.Fatal("Invalid ledger settings", zap.Error(err))
	}
	services := appledger.NewFactory(
		persistence.NewRepositoryFactory(db.DB, sequences),
		settings,
		appledger.WithEventPublisher(bus),
		appledger.WithLogger(log),
	)

	engineCfg := router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Logger:         log,
		TracingEnabled: providers.Tracer.IsEnabled(),
		TracerProvider: providers.Tracer.Provider(),
		Meter:          providers.Meter.Meter("dealledger/http"),
		AllowOrigins:   cfg.HTTP.AllowOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Development:    !cfg.App.IsProduction(),
	}
	if cfg.JWT.Enabled {
		engineCfg.TokenValidator = auth.NewJWTService(cfg.JWT)
		log.Info("Bearer token authentication enabled", zap.String("issuer", cfg.JWT.Issuer))
	}

	engine, err := router.New(engineCfg, services, handler.NewHealthHandler(db, healthChecks...))
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.HTTP))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func shutdownTimeout(cfg config.HTTPConfig) time.Duration {
	if cfg.ShutdownTimeout > 0 {
		return cfg.ShutdownTimeout
	}
	return 30 * time.Second
}
