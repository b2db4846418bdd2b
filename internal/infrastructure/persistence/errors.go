package persistence

import (
	"errors"

	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notFound maps gorm.ErrRecordNotFound to a domain not-found error
func notFound(err error, code, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(code, "%s %v not found", what, id)
	}
	return err
}

// duplicate maps a unique violation to a domain conflict error
func duplicate(err error, code, format string, args ...any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewConflictError(code, format, args...)
	}
	return err
}

// tenantScope restricts a query to one tenant
func tenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// checkTenant rejects writes of aggregates owned by another tenant
func checkTenant(repoTenant, aggTenant uuid.UUID) error {
	if repoTenant != aggTenant {
		return shared.NewValidationError("TENANT_MISMATCH", "aggregate belongs to tenant %s, repository is bound to %s", aggTenant, repoTenant)
	}
	return nil
}

func requireTenant(tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return shared.ErrTenantRequired
	}
	return nil
}
