package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExchangeRateRepository implements ledger.ExchangeRateRepository for one tenant
type GormExchangeRateRepository struct {
	db       *gorm.DB
	tenantID uuid.UUID
}

// NewGormExchangeRateRepository creates a new GormExchangeRateRepository
func NewGormExchangeRateRepository(db *gorm.DB, tenantID uuid.UUID) (*GormExchangeRateRepository, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return &GormExchangeRateRepository{db: db, tenantID: tenantID}, nil
}

func (r *GormExchangeRateRepository) query(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Model(&models.ExchangeRateModel{}).Scopes(tenantScope(r.tenantID))
}

// FindLatest returns the most recent rate on or before asOf
func (r *GormExchangeRateRepository) FindLatest(ctx context.Context, from, to string, asOf time.Time) (*ledger.ExchangeRate, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	var m models.ExchangeRateModel
	err := r.query(ctx).
		Where("from_currency = ? AND to_currency = ? AND rate_date <= ?", from, to, asOf).
		Order("rate_date DESC").
		First(&m).Error
	if err != nil {
		return nil, notFound(err, "RATE_NOT_FOUND", "exchange rate", fmt.Sprintf("%s/%s on %s", from, to, asOf.Format(time.DateOnly)))
	}
	return m.ToDomain(), nil
}

func (r *GormExchangeRateRepository) filtered(ctx context.Context, filter ledger.ExchangeRateFilter) *gorm.DB {
	q := r.query(ctx)
	if filter.From != nil {
		q = q.Where("from_currency = ?", strings.ToUpper(*filter.From))
	}
	if filter.To != nil {
		q = q.Where("to_currency = ?", strings.ToUpper(*filter.To))
	}
	return q
}

// FindAll returns rates newest first
func (r *GormExchangeRateRepository) FindAll(ctx context.Context, filter ledger.ExchangeRateFilter) ([]ledger.ExchangeRate, error) {
	page := filter.Pagination.Normalize()
	q := r.filtered(ctx, filter)
	var rows []models.ExchangeRateModel
	if err := q.Order("rate_date DESC").Offset(page.Offset).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.ExchangeRate, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts rates matching the currency filters
func (r *GormExchangeRateRepository) Count(ctx context.Context, filter ledger.ExchangeRateFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, filter).Count(&n).Error
	return n, err
}

// Create inserts the rate
func (r *GormExchangeRateRepository) Create(ctx context.Context, rate *ledger.ExchangeRate) error {
	if err := checkTenant(r.tenantID, rate.TenantID); err != nil {
		return err
	}
	err := conn(ctx, r.db).Create(models.ExchangeRateModelFromDomain(rate)).Error
	return duplicate(err, "RATE_EXISTS", "a %s/%s rate for %s already exists",
		rate.From, rate.To, rate.RateDate.Format(time.DateOnly))
}

var _ ledger.ExchangeRateRepository = (*GormExchangeRateRepository)(nil)
