package persistence

import (
	"context"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements ledger.AccountRepository for one tenant
type GormAccountRepository struct {
	db       *gorm.DB
	tenantID uuid.UUID
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB, tenantID uuid.UUID) (*GormAccountRepository, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return &GormAccountRepository{db: db, tenantID: tenantID}, nil
}

func (r *GormAccountRepository) query(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Model(&models.AccountModel{}).Scopes(tenantScope(r.tenantID))
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var m models.AccountModel
	if err := r.query(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, "ACCOUNT_NOT_FOUND", "account", id)
	}
	return m.ToDomain(), nil
}

// FindByIDs loads every account whose ID is listed. Missing IDs are simply absent.
func (r *GormAccountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.AccountModel
	if err := r.query(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAccounts(rows), nil
}

// FindByCode finds an account by its code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*ledger.Account, error) {
	var m models.AccountModel
	if err := r.query(ctx).Where("code = ?", code).First(&m).Error; err != nil {
		return nil, notFound(err, "ACCOUNT_NOT_FOUND", "account", code)
	}
	return m.ToDomain(), nil
}

// FindAll returns accounts ordered by code
func (r *GormAccountRepository) FindAll(ctx context.Context, filter ledger.AccountFilter) ([]ledger.Account, error) {
	q := r.query(ctx)
	if filter.Type != nil {
		q = q.Where("account_type = ?", *filter.Type)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.AccountModel
	if err := q.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAccounts(rows), nil
}

// ExistsByCode reports whether the code is taken
func (r *GormAccountRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.query(ctx).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByName reports whether the name is taken
func (r *GormAccountRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.query(ctx).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of accounts
func (r *GormAccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.query(ctx).Count(&count).Error
	return count, err
}

// Save inserts or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	if err := checkTenant(r.tenantID, account.TenantID); err != nil {
		return err
	}
	err := conn(ctx, r.db).Save(models.AccountModelFromDomain(account)).Error
	return duplicate(err, "ACCOUNT_CODE_EXISTS", "account code %s or name %q already exists", account.Code, account.Name)
}

// SaveBatch inserts accounts in one statement, skipping codes that already exist
func (r *GormAccountRepository) SaveBatch(ctx context.Context, accounts []*ledger.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	rows := make([]*models.AccountModel, 0, len(accounts))
	for _, a := range accounts {
		if err := checkTenant(r.tenantID, a.TenantID); err != nil {
			return err
		}
		rows = append(rows, models.AccountModelFromDomain(a))
	}
	return conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// SoftDelete marks an account deleted
func (r *GormAccountRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.query(ctx).Where("id = ?", id).Delete(&models.AccountModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "ACCOUNT_NOT_FOUND", "account", id)
	}
	return nil
}

func toAccounts(rows []models.AccountModel) []ledger.Account {
	out := make([]ledger.Account, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
