package handler

import (
	appledger "github.com/dealledger/backend/internal/application/ledger"
	"github.com/dealledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice and payment endpoints
type InvoiceHandler struct {
	BaseHandler
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(services ServicesProvider) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: BaseHandler{services: services}}
}

// InvoiceCount is the body of GET /ledger/invoices/count
type InvoiceCount struct {
	Count int64 `json:"count"`
}

// CreateInvoice godoc
// @Summary      Create invoice
// @Description  Numbers the invoice from the tenant sequence and posts it to the ledger when enabled
// @Tags         ledger-invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice"
// @Success      200 {object} dto.Response{data=appledger.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var req CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := svc.Invoices.CreateInvoice(c.Request.Context(), req.ToInput(middleware.GetUserUUID(c)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListInvoices godoc
// @Summary      List invoices
// @Tags         ledger-invoices
// @Produce      json
// @Param        status query string false "Status" Enums(draft, sent, partially_paid, paid, overdue, void)
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Limit" default(20) maximum(200)
// @Success      200 {object} dto.Response{data=[]appledger.InvoiceResponse,meta=dto.Meta}
// @Router       /ledger/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var query InvoiceListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := svc.Invoices.ListInvoices(c.Request.Context(), appledger.InvoiceListFilter{
		Offset: query.Offset,
		Limit:  query.Limit,
		Status: query.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Offset, page.Limit)
}

// CountInvoices godoc
// @Summary      Count invoices
// @Tags         ledger-invoices
// @Produce      json
// @Param        status query string false "Status"
// @Success      200 {object} dto.Response{data=InvoiceCount}
// @Router       /ledger/invoices/count [get]
func (h *InvoiceHandler) CountInvoices(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}

	count, err := svc.Invoices.CountInvoices(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, InvoiceCount{Count: count})
}

// GetInvoice godoc
// @Summary      Get invoice by ID
// @Tags         ledger-invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=appledger.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}

	invoice, err := svc.Invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RecordPayment godoc
// @Summary      Record a payment against an invoice
// @Tags         ledger-invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body RecordPaymentRequest true "Payment"
// @Success      200 {object} dto.Response{data=appledger.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := svc.Invoices.RecordPayment(c.Request.Context(), id, req.ToInput(middleware.GetUserUUID(c)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}
