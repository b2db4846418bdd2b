package persistence

import (
	"context"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVendorRepository implements ledger.VendorRepository for one tenant
type GormVendorRepository struct {
	db       *gorm.DB
	tenantID uuid.UUID
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB, tenantID uuid.UUID) (*GormVendorRepository, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return &GormVendorRepository{db: db, tenantID: tenantID}, nil
}

func (r *GormVendorRepository) query(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Model(&models.VendorModel{}).Scopes(tenantScope(r.tenantID))
}

// FindByID finds a vendor by its ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Vendor, error) {
	var m models.VendorModel
	if err := r.query(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, "VENDOR_NOT_FOUND", "vendor", id)
	}
	return m.ToDomain(), nil
}

// FindAll returns vendors ordered by name
func (r *GormVendorRepository) FindAll(ctx context.Context, page shared.Pagination) ([]ledger.Vendor, error) {
	page = page.Normalize()
	var rows []models.VendorModel
	if err := r.query(ctx).Order("name ASC").Offset(page.Offset).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Vendor, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count returns the number of vendors
func (r *GormVendorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.query(ctx).Count(&count).Error
	return count, err
}

// Save inserts or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, vendor *ledger.Vendor) error {
	if err := checkTenant(r.tenantID, vendor.TenantID); err != nil {
		return err
	}
	return conn(ctx, r.db).Save(models.VendorModelFromDomain(vendor)).Error
}

// GormBillRepository implements ledger.BillRepository for one tenant
type GormBillRepository struct {
	db       *gorm.DB
	tenantID uuid.UUID
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB, tenantID uuid.UUID) (*GormBillRepository, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return &GormBillRepository{db: db, tenantID: tenantID}, nil
}

func (r *GormBillRepository) query(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Model(&models.BillModel{}).Scopes(tenantScope(r.tenantID))
}

func (r *GormBillRepository) filtered(ctx context.Context, filter ledger.BillFilter) *gorm.DB {
	q := r.query(ctx)
	if filter.VendorID != nil {
		q = q.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	return q
}

// FindByID loads the bill with its lines
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Bill, error) {
	var m models.BillModel
	err := r.query(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, notFound(err, "BILL_NOT_FOUND", "bill", id)
	}
	return m.ToDomain(), nil
}

// FindAll returns bills newest first, lines preloaded
func (r *GormBillRepository) FindAll(ctx context.Context, filter ledger.BillFilter) ([]ledger.Bill, error) {
	page := filter.Pagination.Normalize()
	var rows []models.BillModel
	err := r.filtered(ctx, filter).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Order("bill_date DESC").
		Order("created_at DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Bill, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count returns the number of bills matching the filter
func (r *GormBillRepository) Count(ctx context.Context, filter ledger.BillFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// Create inserts the header and all lines
func (r *GormBillRepository) Create(ctx context.Context, bill *ledger.Bill) error {
	if err := checkTenant(r.tenantID, bill.TenantID); err != nil {
		return err
	}
	return conn(ctx, r.db).Create(models.BillModelFromDomain(bill)).Error
}

var (
	_ ledger.VendorRepository = (*GormVendorRepository)(nil)
	_ ledger.BillRepository   = (*GormBillRepository)(nil)
)
