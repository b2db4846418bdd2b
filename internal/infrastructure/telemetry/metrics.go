package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const defaultMetricsInterval = 60 * time.Second

// MeterProvider wraps the SDK MeterProvider with lifecycle management
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider exports metrics over OTLP gRPC on a periodic reader
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Meter returns a named meter, falling back to the global provider
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// Shutdown flushes pending metrics
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	return shutdownWithTimeout(ctx, "MeterProvider", mp.logger, mp.provider.Shutdown)
}

// Attribute keys shared by the ledger instruments
var (
	AttrTenantID   = attribute.Key("tenant_id")
	AttrSourceType = attribute.Key("source_type")
	AttrCurrency   = attribute.Key("currency")
	AttrStatus     = attribute.Key("status")
)

// LedgerMetrics counts ledger activity from domain events
type LedgerMetrics struct {
	entriesCreated   metric.Int64Counter
	entriesPosted    metric.Int64Counter
	invoicesCreated  metric.Int64Counter
	paymentsRecorded metric.Int64Counter
	billsCreated     metric.Int64Counter
	invoicedAmount   metric.Float64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	counters := []struct {
		dst         *metric.Int64Counter
		name, descr string
	}{
		{&m.entriesCreated, "ledger.journal_entries.created", "Journal entries recorded"},
		{&m.entriesPosted, "ledger.journal_entries.posted", "Journal entries posted"},
		{&m.invoicesCreated, "ledger.invoices.created", "Invoices issued"},
		{&m.paymentsRecorded, "ledger.payments.recorded", "Payments applied to invoices"},
		{&m.billsCreated, "ledger.bills.created", "Vendor bills recorded"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.descr), metric.WithUnit("{item}"))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	amount, err := meter.Float64Counter("ledger.invoices.amount",
		metric.WithDescription("Invoice totals issued, in invoice currency"),
		metric.WithUnit("{currency}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter ledger.invoices.amount: %w", err)
	}
	m.invoicedAmount = amount
	return m, nil
}

// EventTypes lists the ledger events the metrics observe
func (m *LedgerMetrics) EventTypes() []string {
	return []string{
		ledger.EventTypeJournalEntryCreated,
		ledger.EventTypeJournalEntryPosted,
		ledger.EventTypeInvoiceCreated,
		ledger.EventTypePaymentRecorded,
		ledger.EventTypeBillCreated,
	}
}

// Handle increments the instrument matching the event
func (m *LedgerMetrics) Handle(ctx context.Context, evt shared.DomainEvent) error {
	tenant := AttrTenantID.String(evt.TenantID().String())

	switch e := evt.(type) {
	case *ledger.JournalEntryCreatedEvent:
		m.entriesCreated.Add(ctx, 1, metric.WithAttributes(tenant, AttrSourceType.String(string(e.SourceType))))
	case *ledger.JournalEntryPostedEvent:
		m.entriesPosted.Add(ctx, 1, metric.WithAttributes(tenant, AttrSourceType.String(string(e.SourceType))))
	case *ledger.InvoiceCreatedEvent:
		attrs := metric.WithAttributes(tenant, AttrCurrency.String(e.Currency))
		m.invoicesCreated.Add(ctx, 1, attrs)
		m.invoicedAmount.Add(ctx, e.Total.InexactFloat64(), attrs)
	case *ledger.PaymentRecordedEvent:
		m.paymentsRecorded.Add(ctx, 1, metric.WithAttributes(tenant, AttrStatus.String(string(e.Status))))
	case *ledger.BillCreatedEvent:
		m.billsCreated.Add(ctx, 1, metric.WithAttributes(tenant, AttrCurrency.String(e.Currency)))
	}
	return nil
}

var _ shared.EventHandler = (*LedgerMetrics)(nil)
