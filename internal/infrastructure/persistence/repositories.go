package persistence

import (
	"context"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SequenceFactory builds the invoice sequence for a tenant. The fallback is
// the count-based sequence over the tenant's invoice table.
type SequenceFactory func(tenantID uuid.UUID, fallback ledger.InvoiceSequence) ledger.InvoiceSequence

// CountSequence numbers invoices as count+1. Concurrent callers can collide;
// the unique invoice number index turns that into a conflict that callers retry.
type CountSequence struct {
	invoices ledger.InvoiceRepository
}

// NewCountSequence creates a CountSequence
func NewCountSequence(invoices ledger.InvoiceRepository) *CountSequence {
	return &CountSequence{invoices: invoices}
}

// Next returns the tenant's invoice count plus one
func (s *CountSequence) Next(ctx context.Context) (int64, error) {
	n, err := s.invoices.Count(ctx, nil)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// RepositoryFactory binds the GORM repositories to a tenant
type RepositoryFactory struct {
	db        *gorm.DB
	tx        *GormTxManager
	sequences SequenceFactory
}

// NewRepositoryFactory creates a RepositoryFactory. A nil sequences factory
// keeps the count-based sequence.
func NewRepositoryFactory(db *gorm.DB, sequences SequenceFactory) *RepositoryFactory {
	return &RepositoryFactory{db: db, tx: NewGormTxManager(db), sequences: sequences}
}

// ForTenant returns the repositories bound to tenantID
func (f *RepositoryFactory) ForTenant(tenantID uuid.UUID) (ledger.Repositories, error) {
	if err := requireTenant(tenantID); err != nil {
		return ledger.Repositories{}, err
	}
	// constructors only fail on a nil tenant, checked above
	accounts, _ := NewGormAccountRepository(f.db, tenantID)
	entries, _ := NewGormJournalEntryRepository(f.db, tenantID)
	invoices, _ := NewGormInvoiceRepository(f.db, tenantID)
	vendors, _ := NewGormVendorRepository(f.db, tenantID)
	bills, _ := NewGormBillRepository(f.db, tenantID)
	rates, _ := NewGormExchangeRateRepository(f.db, tenantID)

	var seq ledger.InvoiceSequence = NewCountSequence(invoices)
	if f.sequences != nil {
		seq = f.sequences(tenantID, seq)
	}

	return ledger.Repositories{
		Accounts:      accounts,
		Entries:       entries,
		Invoices:      invoices,
		Sequence:      seq,
		Vendors:       vendors,
		Bills:         bills,
		ExchangeRates: rates,
		Tx:            f.tx,
	}, nil
}
