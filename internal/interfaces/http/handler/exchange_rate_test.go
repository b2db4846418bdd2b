package handler

import (
	"net/http"
	"testing"

	appledger "github.com/dealledger/backend/internal/application/ledger"
	"github.com/dealledger/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeRateHandler(t *testing.T) {
	api := newTestAPI(t)

	for _, r := range []map[string]any{
		{"from_currency": "usd", "to_currency": "EUR", "rate": "0.91", "rate_date": "2026-03-01"},
		{"from_currency": "USD", "to_currency": "EUR", "rate": "0.93", "rate_date": "2026-03-10", "source": "ecb"},
		{"from_currency": "GBP", "to_currency": "EUR", "rate": "1.17", "rate_date": "2026-03-10"},
	} {
		api.ok(api.do(http.MethodPost, "/exchange-rates", r), nil)
	}

	t.Run("duplicate pair and date", func(t *testing.T) {
		testutil.AssertErrorCode(t, api.do(http.MethodPost, "/exchange-rates", map[string]any{
			"from_currency": "USD", "to_currency": "EUR", "rate": "0.95", "rate_date": "2026-03-10",
		}), http.StatusConflict, "RATE_EXISTS")
	})

	t.Run("invalid rates", func(t *testing.T) {
		testutil.AssertErrorCode(t, api.do(http.MethodPost, "/exchange-rates", map[string]any{
			"from_currency": "USD", "to_currency": "USD", "rate": "1", "rate_date": "2026-03-10",
		}), http.StatusBadRequest, "INVALID_EXCHANGE_RATE")
		testutil.AssertErrorCode(t, api.do(http.MethodPost, "/exchange-rates", map[string]any{
			"from_currency": "USD", "to_currency": "XXQ", "rate": "1", "rate_date": "2026-03-10",
		}), http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("list filtered by pair", func(t *testing.T) {
		var rates []appledger.ExchangeRateResponse
		env := api.ok(api.do(http.MethodGet, "/exchange-rates?from=USD&to=EUR", nil), &rates)
		assert.Equal(t, int64(2), decodeMeta(t, env).Total)
		require.Len(t, rates, 2)
		assert.Equal(t, "2026-03-10", rates[0].RateDate, "newest first")
		assert.Equal(t, "ecb", rates[0].Source)
		assert.Equal(t, "manual", rates[1].Source)
	})

	t.Run("latest as of a date", func(t *testing.T) {
		var rate appledger.ExchangeRateResponse
		api.ok(api.do(http.MethodGet, "/exchange-rates/latest?from=USD&to=EUR&as_of=2026-03-05", nil), &rate)
		assert.True(t, rate.Rate.Equal(dec("0.91")))

		api.ok(api.do(http.MethodGet, "/exchange-rates/latest?from=usd&to=eur", nil), &rate)
		assert.True(t, rate.Rate.Equal(dec("0.93")), "defaults to today")
	})

	t.Run("latest errors", func(t *testing.T) {
		testutil.AssertErrorCode(t, api.do(http.MethodGet, "/exchange-rates/latest?from=EUR&to=USD", nil),
			http.StatusNotFound, "RATE_NOT_FOUND")
		testutil.AssertErrorCode(t, api.do(http.MethodGet, "/exchange-rates/latest?from=USD", nil),
			http.StatusBadRequest, "VALIDATION_ERROR")
		testutil.AssertErrorCode(t, api.do(http.MethodGet, "/exchange-rates/latest?from=USD&to=EUR&as_of=yesterday", nil),
			http.StatusBadRequest, "VALIDATION_ERROR")
	})
}
