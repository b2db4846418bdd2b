package persistence_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/infrastructure/persistence"
	"github.com/dealledger/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostedTotals_PostgresQuery(t *testing.T) {
	mock := testutil.NewMockDB(t)
	tenantID, accountID := uuid.New(), uuid.New()
	repo, err := persistence.NewGormJournalEntryRepository(mock.DB, tenantID)
	require.NoError(t, err)

	mock.Mock.ExpectQuery(`SELECT l.account_id AS account_id,.*FROM journal_lines l\s+JOIN journal_entries e ON e.id = l.entry_id\s+WHERE e.tenant_id = \$1 AND e.status = \$2 AND e.deleted_at IS NULL AND l.account_id = \$3 GROUP BY l.account_id`).
		WithArgs(tenantID.String(), "posted", accountID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "base_debit", "base_credit"}).
			AddRow(accountID.String(), "1500.0000", "250.5000"))

	totals, err := repo.PostedTotals(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, accountID, totals.AccountID)
	assert.Equal(t, "1249.5", totals.Balance().String())
}

func TestUpdateStatus_VersionGuard(t *testing.T) {
	mock := testutil.NewMockDB(t)
	tenantID := uuid.New()
	repo, err := persistence.NewGormJournalEntryRepository(mock.DB, tenantID)
	require.NoError(t, err)

	entry := &ledger.JournalEntry{Status: ledger.EntryStatusPosted}
	entry.ID = uuid.New()
	entry.TenantID = tenantID
	entry.Version = 2

	mock.Mock.ExpectExec(`UPDATE "journal_entries" SET .*"version"=.* WHERE .*"journal_entries"."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), entry)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}
