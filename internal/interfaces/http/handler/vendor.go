package handler

import (
	appledger "github.com/dealledger/backend/internal/application/ledger"
	"github.com/dealledger/backend/internal/interfaces/http/dto"
	"github.com/dealledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VendorHandler handles vendor and bill endpoints
type VendorHandler struct {
	BaseHandler
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(services ServicesProvider) *VendorHandler {
	return &VendorHandler{BaseHandler: BaseHandler{services: services}}
}

// CreateVendor godoc
// @Summary      Create vendor
// @Tags         ledger-vendors
// @Accept       json
// @Produce      json
// @Param        request body CreateVendorRequest true "Vendor"
// @Success      200 {object} dto.Response{data=appledger.VendorResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/vendors [post]
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var req CreateVendorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	vendor, err := svc.Vendors.CreateVendor(c.Request.Context(), req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, vendor)
}

// ListVendors godoc
// @Summary      List vendors
// @Tags         ledger-vendors
// @Produce      json
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Limit" default(20) maximum(200)
// @Success      200 {object} dto.Response{data=[]appledger.VendorResponse,meta=dto.Meta}
// @Router       /ledger/vendors [get]
func (h *VendorHandler) ListVendors(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var query dto.ListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := svc.Vendors.ListVendors(c.Request.Context(), query.Offset, query.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Offset, page.Limit)
}

// GetVendor godoc
// @Summary      Get vendor by ID
// @Tags         ledger-vendors
// @Produce      json
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} dto.Response{data=appledger.VendorResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/vendors/{id} [get]
func (h *VendorHandler) GetVendor(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "vendor")
	if !ok {
		return
	}

	vendor, err := svc.Vendors.GetVendor(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, vendor)
}

// CreateBill godoc
// @Summary      Create a bill for a vendor
// @Tags         ledger-bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Vendor ID" format(uuid)
// @Param        request body CreateBillRequest true "Bill"
// @Success      200 {object} dto.Response{data=appledger.BillResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/vendors/{id}/bills [post]
func (h *VendorHandler) CreateBill(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	vendorID, ok := h.pathID(c, "vendor")
	if !ok {
		return
	}
	var req CreateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}

	bill, err := svc.Vendors.CreateBill(c.Request.Context(), vendorID, req.ToInput(middleware.GetUserUUID(c)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// ListVendorBills godoc
// @Summary      List a vendor's bills
// @Tags         ledger-bills
// @Produce      json
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]appledger.BillResponse,meta=dto.Meta}
// @Router       /ledger/vendors/{id}/bills [get]
func (h *VendorHandler) ListVendorBills(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	vendorID, ok := h.pathID(c, "vendor")
	if !ok {
		return
	}
	var query BillListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	h.listBills(c, svc, appledger.BillListFilter{
		VendorID: &vendorID,
		Status:   query.Status,
		Offset:   query.Offset,
		Limit:    query.Limit,
	})
}

// ListBills godoc
// @Summary      List bills
// @Tags         ledger-bills
// @Produce      json
// @Param        vendor_id query string false "Vendor ID" format(uuid)
// @Param        status query string false "Status" Enums(draft, approved, partially_paid, paid, void)
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Limit" default(20) maximum(200)
// @Success      200 {object} dto.Response{data=[]appledger.BillResponse,meta=dto.Meta}
// @Router       /ledger/bills [get]
func (h *VendorHandler) ListBills(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var query BillListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	filter := appledger.BillListFilter{
		Status: query.Status,
		Offset: query.Offset,
		Limit:  query.Limit,
	}
	if query.VendorID != "" {
		vendorID, err := uuid.Parse(query.VendorID)
		if err != nil {
			h.BadRequest(c, "Invalid vendor ID format")
			return
		}
		filter.VendorID = &vendorID
	}
	h.listBills(c, svc, filter)
}

func (h *VendorHandler) listBills(c *gin.Context, svc *appledger.Services, filter appledger.BillListFilter) {
	page, err := svc.Vendors.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Offset, page.Limit)
}

// GetBill godoc
// @Summary      Get bill by ID
// @Tags         ledger-bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=appledger.BillResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/bills/{id} [get]
func (h *VendorHandler) GetBill(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "bill")
	if !ok {
		return
	}

	bill, err := svc.Vendors.GetBill(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}
