package models

import (
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ExchangeRateModel is the persistence model for dated currency rates
type ExchangeRateModel struct {
	TenantAggregateModel
	FromCurrency valueobject.Currency `gorm:"type:varchar(3);not null"`
	ToCurrency   valueobject.Currency `gorm:"type:varchar(3);not null"`
	RateDate     time.Time            `gorm:"type:date;not null"`
	Rate         decimal.Decimal      `gorm:"type:decimal(18,8);not null"`
	Source       string               `gorm:"type:varchar(50);not null;default:'manual'"`
}

// TableName returns the table name for GORM
func (ExchangeRateModel) TableName() string {
	return "exchange_rates"
}

// ToDomain converts the persistence model to a domain ExchangeRate
func (m *ExchangeRateModel) ToDomain() *ledger.ExchangeRate {
	return &ledger.ExchangeRate{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		From:                m.FromCurrency,
		To:                  m.ToCurrency,
		Rate:                m.Rate,
		RateDate:            m.RateDate.UTC(),
		Source:              m.Source,
	}
}

// ExchangeRateModelFromDomain creates a persistence model from a domain ExchangeRate
func ExchangeRateModelFromDomain(r *ledger.ExchangeRate) *ExchangeRateModel {
	m := &ExchangeRateModel{
		FromCurrency: r.From,
		ToCurrency:   r.To,
		Rate:         r.Rate,
		RateDate:     r.RateDate,
		Source:       r.Source,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}

// All returns every ledger model in dependency order, for AutoMigrate in tests
// and the sqlite driver.
func All() []any {
	return []any{
		&AccountModel{},
		&JournalEntryModel{},
		&JournalLineModel{},
		&InvoiceModel{},
		&InvoiceLineModel{},
		&PaymentModel{},
		&VendorModel{},
		&BillModel{},
		&BillLineModel{},
		&ExchangeRateModel{},
	}
}
