package persistence

import (
	"context"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const postedTotalsSQL = `
SELECT l.account_id AS account_id,
       COALESCE(SUM(l.base_debit), 0) AS base_debit,
       COALESCE(SUM(l.base_credit), 0) AS base_credit
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE e.tenant_id = ? AND e.status = ? AND e.deleted_at IS NULL`

// postedLinesSQL selects the same lines unaggregated. sqlite stores decimal
// columns as REAL and SUM would hand back a float, so there the totals are
// added up as decimals in Go.
const postedLinesSQL = `
SELECT l.account_id AS account_id,
       l.base_debit AS base_debit,
       l.base_credit AS base_credit
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE e.tenant_id = ? AND e.status = ? AND e.deleted_at IS NULL`

// GormJournalEntryRepository implements ledger.JournalEntryRepository for one tenant
type GormJournalEntryRepository struct {
	db       *gorm.DB
	tenantID uuid.UUID
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB, tenantID uuid.UUID) (*GormJournalEntryRepository, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return &GormJournalEntryRepository{db: db, tenantID: tenantID}, nil
}

func (r *GormJournalEntryRepository) query(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Model(&models.JournalEntryModel{}).Scopes(tenantScope(r.tenantID))
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_number ASC")
}

// FindByID loads the entry with its lines
func (r *GormJournalEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.JournalEntry, error) {
	var m models.JournalEntryModel
	if err := r.query(ctx).Preload("Lines", preloadLines).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, "ENTRY_NOT_FOUND", "journal entry", id)
	}
	return m.ToDomain(), nil
}

func (r *GormJournalEntryRepository) filtered(ctx context.Context, filter ledger.JournalEntryFilter) *gorm.DB {
	q := r.query(ctx)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.SourceType != nil {
		q = q.Where("source_type = ?", *filter.SourceType)
	}
	if filter.SourceID != nil {
		q = q.Where("source_id = ?", *filter.SourceID)
	}
	return q
}

// FindAll returns entries newest first with lines preloaded
func (r *GormJournalEntryRepository) FindAll(ctx context.Context, filter ledger.JournalEntryFilter) ([]ledger.JournalEntry, error) {
	page := filter.Pagination.Normalize()
	var rows []models.JournalEntryModel
	err := r.filtered(ctx, filter).
		Preload("Lines", preloadLines).
		Order("entry_date DESC").
		Order("created_at DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.JournalEntry, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count returns the number of entries matching the filter
func (r *GormJournalEntryRepository) Count(ctx context.Context, filter ledger.JournalEntryFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// Create inserts the header and all lines
func (r *GormJournalEntryRepository) Create(ctx context.Context, entry *ledger.JournalEntry) error {
	if err := checkTenant(r.tenantID, entry.TenantID); err != nil {
		return err
	}
	// GORM upserts associations with the parent
	return conn(ctx, r.db).Create(models.JournalEntryModelFromDomain(entry)).Error
}

// UpdateStatus persists status, posting and void fields. The row must still be
// at the version the entry was loaded with.
func (r *GormJournalEntryRepository) UpdateStatus(ctx context.Context, entry *ledger.JournalEntry) error {
	result := r.query(ctx).
		Where("id = ? AND version = ?", entry.ID, entry.Version-1).
		Updates(map[string]any{
			"status":     entry.Status,
			"posted_by":  entry.PostedBy,
			"posted_at":  entry.PostedAt,
			"voided_at":  entry.VoidedAt,
			"version":    entry.Version,
			"updated_at": entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// PostedTotals sums base amounts over posted entries for one account
func (r *GormJournalEntryRepository) PostedTotals(ctx context.Context, accountID uuid.UUID) (ledger.PostedTotals, error) {
	totals, err := r.postedTotals(ctx, &accountID)
	if err != nil {
		return ledger.PostedTotals{}, err
	}
	if len(totals) == 0 {
		return ledger.PostedTotals{AccountID: accountID}, nil
	}
	return totals[0], nil
}

// TrialBalance returns posted totals for every account with posted activity
func (r *GormJournalEntryRepository) TrialBalance(ctx context.Context) ([]ledger.PostedTotals, error) {
	return r.postedTotals(ctx, nil)
}

func (r *GormJournalEntryRepository) postedTotals(ctx context.Context, accountID *uuid.UUID) ([]ledger.PostedTotals, error) {
	db := conn(ctx, r.db)
	filter := ""
	args := []any{r.tenantID, ledger.EntryStatusPosted}
	if accountID != nil {
		filter = ` AND l.account_id = ?`
		args = append(args, *accountID)
	}

	if db.Dialector.Name() == "sqlite" {
		var lines []models.PostedTotalsRow
		if err := db.Raw(postedLinesSQL+filter+` ORDER BY l.account_id`, args...).Scan(&lines).Error; err != nil {
			return nil, err
		}
		return sumPostedLines(lines), nil
	}

	var rows []models.PostedTotalsRow
	if err := db.Raw(postedTotalsSQL+filter+` GROUP BY l.account_id`, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.PostedTotals, len(rows))
	for i, row := range rows {
		out[i] = row.ToDomain()
	}
	return out, nil
}

// sumPostedLines groups lines by account in first-seen order
func sumPostedLines(lines []models.PostedTotalsRow) []ledger.PostedTotals {
	index := make(map[uuid.UUID]int)
	var out []ledger.PostedTotals
	for _, line := range lines {
		i, ok := index[line.AccountID]
		if !ok {
			i = len(out)
			index[line.AccountID] = i
			out = append(out, ledger.PostedTotals{AccountID: line.AccountID})
		}
		out[i].BaseDebit = out[i].BaseDebit.Add(line.BaseDebit)
		out[i].BaseCredit = out[i].BaseCredit.Add(line.BaseCredit)
	}
	return out
}

var _ ledger.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
