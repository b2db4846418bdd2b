package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ExchangeRateService stores and looks up conversion rates for one tenant
type ExchangeRateService struct {
	*base
}

// CreateRate stores a rate. A second rate for the same pair and date is a conflict.
func (s *ExchangeRateService) CreateRate(ctx context.Context, input CreateRateInput) (*ExchangeRateResponse, error) {
	rate, err := ledger.NewExchangeRate(s.tenantID, input.From, input.To, input.Rate, input.RateDate, input.Source)
	if err != nil {
		return nil, err
	}
	if err := s.repos.ExchangeRates.Create(ctx, rate); err != nil {
		return nil, err
	}

	s.log(ctx).Info("Exchange rate stored",
		zap.String("from", rate.From.String()),
		zap.String("to", rate.To.String()),
		zap.String("rate", rate.Rate.String()),
		zap.String("rate_date", formatDate(rate.RateDate)))

	resp := ToExchangeRateResponse(rate)
	return &resp, nil
}

// LatestRate returns the most recent rate on or before asOf. A zero asOf means today.
func (s *ExchangeRateService) LatestRate(ctx context.Context, from, to string, asOf time.Time) (*ExchangeRateResponse, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	rate, err := s.repos.ExchangeRates.FindLatest(ctx, from, to, asOf)
	if err != nil {
		return nil, err
	}
	resp := ToExchangeRateResponse(rate)
	return &resp, nil
}

// ListRates returns a page of rates, newest first
func (s *ExchangeRateService) ListRates(ctx context.Context, filter RateListFilter) (*ListResult[ExchangeRateResponse], error) {
	query := ledger.ExchangeRateFilter{
		Pagination: shared.Pagination{Offset: filter.Offset, Limit: filter.Limit}.Normalize(),
	}
	if from := strings.TrimSpace(filter.From); from != "" {
		query.From = &from
	}
	if to := strings.TrimSpace(filter.To); to != "" {
		query.To = &to
	}

	rates, err := s.repos.ExchangeRates.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.ExchangeRates.Count(ctx, query)
	if err != nil {
		return nil, err
	}
	items := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		items[i] = ToExchangeRateResponse(&rates[i])
	}
	return &ListResult[ExchangeRateResponse]{
		Items:  items,
		Total:  total,
		Offset: query.Offset,
		Limit:  query.Limit,
	}, nil
}
