package persistence

import (
	"context"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements ledger.InvoiceRepository for one tenant
type GormInvoiceRepository struct {
	db       *gorm.DB
	tenantID uuid.UUID
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB, tenantID uuid.UUID) (*GormInvoiceRepository, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return &GormInvoiceRepository{db: db, tenantID: tenantID}, nil
}

func (r *GormInvoiceRepository) query(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Model(&models.InvoiceModel{}).Scopes(tenantScope(r.tenantID))
}

func (r *GormInvoiceRepository) findOne(q *gorm.DB, id uuid.UUID) (*ledger.Invoice, error) {
	var m models.InvoiceModel
	err := q.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payment_date ASC, created_at ASC") }).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, notFound(err, "INVOICE_NOT_FOUND", "invoice", id)
	}
	return m.ToDomain(), nil
}

// FindByID loads the invoice with lines and payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	return r.findOne(r.query(ctx), id)
}

// FindByIDForUpdate locks the invoice row for the rest of the transaction.
// SQLite has no row locks and serialises writers instead.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	q := r.query(ctx)
	if inTx(ctx) {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return r.findOne(q, id)
}

func (r *GormInvoiceRepository) filtered(ctx context.Context, status *ledger.InvoiceStatus) *gorm.DB {
	q := r.query(ctx)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	return q
}

// FindAll returns invoices newest first, lines preloaded
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	page := filter.Pagination.Normalize()
	var rows []models.InvoiceModel
	err := r.filtered(ctx, filter.Status).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Order("invoice_date DESC").
		Order("invoice_number DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Invoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count returns the number of invoices, optionally with a given status
func (r *GormInvoiceRepository) Count(ctx context.Context, status *ledger.InvoiceStatus) (int64, error) {
	var count int64
	err := r.filtered(ctx, status).Count(&count).Error
	return count, err
}

// Create inserts the header and all lines
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *ledger.Invoice) error {
	if err := checkTenant(r.tenantID, invoice.TenantID); err != nil {
		return err
	}
	err := conn(ctx, r.db).Create(models.InvoiceModelFromDomain(invoice)).Error
	return duplicate(err, "INVOICE_NUMBER_EXISTS", "invoice number %s already exists", invoice.InvoiceNumber)
}

// UpdateTotals persists the payment-derived fields with a version check
func (r *GormInvoiceRepository) UpdateTotals(ctx context.Context, invoice *ledger.Invoice) error {
	result := r.query(ctx).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(map[string]any{
			"amount_paid":      invoice.AmountPaid,
			"balance_due":      invoice.BalanceDue,
			"status":           invoice.Status,
			"journal_entry_id": invoice.JournalEntryID,
			"version":          invoice.Version,
			"updated_at":       invoice.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CreatePayment inserts a payment row
func (r *GormInvoiceRepository) CreatePayment(ctx context.Context, payment *ledger.Payment) error {
	if err := checkTenant(r.tenantID, payment.TenantID); err != nil {
		return err
	}
	return conn(ctx, r.db).Create(models.PaymentModelFromDomain(payment)).Error
}

var _ ledger.InvoiceRepository = (*GormInvoiceRepository)(nil)
