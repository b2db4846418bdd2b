package handler

import (
	"github.com/gin-gonic/gin"
)

// AccountHandler handles chart of accounts and balance endpoints
type AccountHandler struct {
	BaseHandler
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(services ServicesProvider) *AccountHandler {
	return &AccountHandler{BaseHandler: BaseHandler{services: services}}
}

// ListAccounts godoc
// @Summary      List accounts
// @Description  Seeds the default chart on first use, then lists accounts ordered by code
// @Tags         ledger-accounts
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        account_type query string false "Account type" Enums(asset, liability, equity, revenue, expense)
// @Success      200 {object} dto.Response{data=[]appledger.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var query AccountListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	ctx := c.Request.Context()
	if _, err := svc.Accounting.SeedDefaults(ctx); err != nil {
		h.HandleError(c, err)
		return
	}
	accounts, err := svc.Accounting.ListAccounts(ctx, query.AccountType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// CreateAccount godoc
// @Summary      Create account
// @Tags         ledger-accounts
// @Accept       json
// @Produce      json
// @Param        request body CreateAccountRequest true "Account"
// @Success      200 {object} dto.Response{data=appledger.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	var req CreateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := svc.Accounting.CreateAccount(c.Request.Context(), req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// GetAccount godoc
// @Summary      Get account by ID
// @Tags         ledger-accounts
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=appledger.AccountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "account")
	if !ok {
		return
	}

	account, err := svc.Accounting.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// GetBalance godoc
// @Summary      Get account balance
// @Description  Debit minus credit over posted lines, in base currency
// @Tags         ledger-accounts
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=appledger.BalanceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/accounts/{id}/balance [get]
func (h *AccountHandler) GetBalance(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "account")
	if !ok {
		return
	}

	balance, err := svc.Accounting.AccountBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// TrialBalance godoc
// @Summary      Trial balance
// @Tags         ledger-accounts
// @Produce      json
// @Success      200 {object} dto.Response{data=appledger.TrialBalanceResponse}
// @Router       /ledger/trial-balance [get]
func (h *AccountHandler) TrialBalance(c *gin.Context) {
	svc, ok := h.tenantServices(c)
	if !ok {
		return
	}

	report, err := svc.Accounting.TrialBalance(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
