package event

import (
	"context"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per ledger event
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// EventTypes subscribes to every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event with its ledger-specific fields
func (h *AuditLogHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", evt.EventType()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.String("tenant_id", evt.TenantID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	}

	switch e := evt.(type) {
	case *ledger.JournalEntryCreatedEvent:
		fields = append(fields,
			zap.Int("line_count", e.LineCount),
			zap.String("total_debit", e.TotalDebit.String()),
			zap.String("source_type", string(e.SourceType)),
		)
	case *ledger.JournalEntryPostedEvent:
		fields = append(fields, zap.String("source_type", string(e.SourceType)))
		if e.PostedBy != nil {
			fields = append(fields, zap.String("posted_by", e.PostedBy.String()))
		}
	case *ledger.InvoiceCreatedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("total", e.Total.String()),
			zap.String("currency", e.Currency),
		)
	case *ledger.PaymentRecordedEvent:
		fields = append(fields,
			zap.String("payment_id", e.PaymentID.String()),
			zap.String("amount", e.Amount.String()),
			zap.String("balance_due", e.BalanceDue.String()),
			zap.String("status", string(e.Status)),
		)
	case *ledger.BillCreatedEvent:
		fields = append(fields,
			zap.String("vendor_id", e.VendorID.String()),
			zap.String("total", e.Total.String()),
		)
	}

	// request-scoped fields ride along when the event is published inside a request
	log := h.logger
	if rid := logger.GetRequestID(ctx); rid != "" {
		log = log.With(zap.String("request_id", rid))
	}
	log.Info("Ledger event", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
