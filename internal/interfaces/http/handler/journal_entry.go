package handler

import (
	appledger "github.com/dealledger/backend/internal/application/ledger"
	"github.com/dealledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// JournalEntryHandler handles manual journal entry endpoints
type JournalEntryHandler struct {
	BaseHandler
}

// NewJournalEntryHandler creates a new JournalEntryHandler
func NewJournalEntryHandler(services ServicesProvider) *JournalEntryHandler {
	return &JournalEntryHandler{BaseHandler: BaseHandler{services: services}}
}

// CreateEntry godoc
// @Summary      Create journal entry
// @Description  Creates a draft entry, or a posted one when auto_post is set. Debits must equal credits.
// @Tags         ledger-journal
// @Accept       json
// @Produce      json
// @Param        request body CreateJournalEntryRequest true "Entry"
// @Success      200 {object} dto.Response{data=appledger.JournalEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/journal-entries [post]
func (h *JournalEntryHandler) CreateEntry(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var req CreateJournalEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := svc.Accounting.CreateEntry(c.Request.Context(), req.ToInput(middleware.GetUserUUID(c)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// ListEntries godoc
// @Summary      List journal entries
// @Tags         ledger-journal
// @Produce      json
// @Param        status query string false "Status" Enums(draft, posted, void)
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Limit" default(20) maximum(200)
// @Success      200 {object} dto.Response{data=[]appledger.JournalEntryResponse,meta=dto.Meta}
// @Router       /ledger/journal-entries [get]
func (h *JournalEntryHandler) ListEntries(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var query EntryListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := svc.Accounting.ListEntries(c.Request.Context(), appledger.EntryListFilter{
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

// GetEntry godoc
// @Summary      Get journal entry by ID
// @Tags         ledger-journal
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} dto.Response{data=appledger.JournalEntryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/journal-entries/{id} [get]
func (h *JournalEntryHandler) GetEntry(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "journal entry")
	if !ok {
		return
	}

	entry, err := svc.Accounting.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// PostEntry godoc
// @Summary      Post a draft journal entry
// @Tags         ledger-journal
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} dto.Response{data=appledger.JournalEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/journal-entries/{id}/post [post]
func (h *JournalEntryHandler) PostEntry(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "journal entry")
	if !ok {
		return
	}

	entry, err := svc.Accounting.PostEntry(c.Request.Context(), id, middleware.GetUserUUID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}
