package persistence

import (
	"fmt"

	"github.com/dealledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// uniqueIndexes mirrors the unique constraints of the SQL migrations. They are
// scoped by tenant, which GORM tags on the shared tenant column cannot express.
var uniqueIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_tenant_code ON accounts (tenant_id, code) WHERE deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_tenant_name ON accounts (tenant_id, name) WHERE deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_tenant_number ON invoices (tenant_id, invoice_number)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_exchange_rates_pair_date ON exchange_rates (tenant_id, from_currency, to_currency, rate_date)`,
}

// AutoMigrate creates the ledger schema from the GORM models. Postgres
// deployments use the SQL migrations instead; this serves the sqlite driver
// and tests.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range uniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create unique index: %w", err)
		}
	}
	return nil
}
