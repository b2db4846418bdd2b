package handler

import (
	appledger "github.com/dealledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// ExchangeRateHandler handles exchange rate endpoints
type ExchangeRateHandler struct {
	BaseHandler
}

// NewExchangeRateHandler creates a new ExchangeRateHandler
func NewExchangeRateHandler(services ServicesProvider) *ExchangeRateHandler {
	return &ExchangeRateHandler{BaseHandler: BaseHandler{services: services}}
}

// CreateRate godoc
// @Summary      Store an exchange rate
// @Tags         ledger-exchange-rates
// @Accept       json
// @Produce      json
// @Param        request body CreateExchangeRateRequest true "Rate"
// @Success      200 {object} dto.Response{data=appledger.ExchangeRateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/exchange-rates [post]
func (h *ExchangeRateHandler) CreateRate(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var req CreateExchangeRateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rate, err := svc.ExchangeRates.CreateRate(c.Request.Context(), req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// ListRates godoc
// @Summary      List exchange rates
// @Tags         ledger-exchange-rates
// @Produce      json
// @Param        from query string false "From currency"
// @Param        to query string false "To currency"
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Limit" default(20) maximum(200)
// @Success      200 {object} dto.Response{data=[]appledger.ExchangeRateResponse,meta=dto.Meta}
// @Router       /ledger/exchange-rates [get]
func (h *ExchangeRateHandler) ListRates(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var query RateListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := svc.ExchangeRates.ListRates(c.Request.Context(), appledger.RateListFilter{
		From:   query.From,
		To:     query.To,
		Offset: query.Offset,
		Limit:  query.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Offset, page.Limit)
}

// LatestRate godoc
// @Summary      Latest exchange rate on or before a date
// @Tags         ledger-exchange-rates
// @Produce      json
// @Param        from query string true "From currency"
// @Param        to query string true "To currency"
// @Param        as_of query string false "Date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} dto.Response{data=appledger.ExchangeRateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/exchange-rates/latest [get]
func (h *ExchangeRateHandler) LatestRate(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var query LatestRateQuery
	if !h.bindQuery(c, &query) {
		return
	}

	rate, err := svc.ExchangeRates.LatestRate(c.Request.Context(), query.From, query.To, parseDate(query.AsOf))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}
