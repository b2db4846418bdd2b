package ledger

import (
	"strings"
	"time"

	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExchangeRate is the historical rate converting one unit of From into To on RateDate
type ExchangeRate struct {
	shared.TenantAggregateRoot
	From     valueobject.Currency
	To       valueobject.Currency
	Rate     decimal.Decimal
	RateDate time.Time
	Source   string
}

// NewExchangeRate validates and builds an exchange rate
func NewExchangeRate(tenantID uuid.UUID, from, to string, rate decimal.Decimal, rateDate time.Time, source string) (*ExchangeRate, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	fromCur, err := valueobject.ParseCurrency(from)
	if err != nil {
		return nil, shared.NewValidationError("INVALID_CURRENCY", "%s", err.Error())
	}
	toCur, err := valueobject.ParseCurrency(to)
	if err != nil {
		return nil, shared.NewValidationError("INVALID_CURRENCY", "%s", err.Error())
	}
	if fromCur == toCur {
		return nil, shared.NewValidationError("INVALID_EXCHANGE_RATE", "cannot define a rate from %s to itself", fromCur)
	}
	if !rate.IsPositive() {
		return nil, shared.NewValidationError("INVALID_EXCHANGE_RATE", "exchange rate must be positive")
	}
	if rateDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_EXCHANGE_RATE", "rate date is required")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = "manual"
	}
	return &ExchangeRate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		From:                fromCur,
		To:                  toCur,
		Rate:                rate,
		RateDate:            truncateToDate(rateDate),
		Source:              source,
	}, nil
}

// Convert applies the rate to an amount in the From currency
func (r *ExchangeRate) Convert(amount valueobject.Money) (valueobject.Money, error) {
	if amount.Currency() != r.From {
		return valueobject.Money{}, shared.NewValidationError("CURRENCY_MISMATCH",
			"rate converts %s, got %s", r.From, amount.Currency())
	}
	return valueobject.MustMoney(amount.Amount().Mul(r.Rate), r.To).RoundToMinor(), nil
}
