package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	appledger "github.com/dealledger/backend/internal/application/ledger"
	"github.com/dealledger/backend/internal/infrastructure/persistence"
	"github.com/dealledger/backend/internal/interfaces/http/dto"
	"github.com/dealledger/backend/internal/interfaces/http/middleware"
	"github.com/dealledger/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testAPI serves the ledger routes for one tenant over an in-memory database
type testAPI struct {
	t        *testing.T
	router   *gin.Engine
	tenantID uuid.UUID
	userID   uuid.UUID
}

func newTestAPI(t *testing.T, configure ...func(*appledger.Settings)) *testAPI {
	t.Helper()
	middleware.SetupValidator()

	settings := appledger.DefaultSettings()
	for _, fn := range configure {
		fn(&settings)
	}
	db := testutil.NewSQLiteDB(t)
	factory := appledger.NewFactory(
		persistence.NewRepositoryFactory(db, nil),
		settings,
		appledger.WithClock(func() time.Time { return time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC) }),
	)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Tenant())
	mountLedger(r.Group("/api/v1/ledger"), factory)

	return &testAPI{t: t, router: r, tenantID: uuid.New(), userID: uuid.New()}
}

func mountLedger(rg *gin.RouterGroup, services ServicesProvider) {
	accounts := NewAccountHandler(services)
	entries := NewJournalEntryHandler(services)
	invoices := NewInvoiceHandler(services)
	vendors := NewVendorHandler(services)
	rates := NewExchangeRateHandler(services)

	rg.GET("/accounts", accounts.ListAccounts)
	rg.POST("/accounts", accounts.CreateAccount)
	rg.GET("/accounts/:id", accounts.GetAccount)
	rg.GET("/accounts/:id/balance", accounts.GetBalance)
	rg.GET("/trial-balance", accounts.TrialBalance)

	rg.POST("/journal-entries", entries.CreateEntry)
	rg.GET("/journal-entries", entries.ListEntries)
	rg.GET("/journal-entries/:id", entries.GetEntry)
	rg.POST("/journal-entries/:id/post", entries.PostEntry)

	rg.POST("/invoices", invoices.CreateInvoice)
	rg.GET("/invoices", invoices.ListInvoices)
	rg.GET("/invoices/count", invoices.CountInvoices)
	rg.GET("/invoices/:id", invoices.GetInvoice)
	rg.POST("/invoices/:id/payments", invoices.RecordPayment)

	rg.POST("/vendors", vendors.CreateVendor)
	rg.GET("/vendors", vendors.ListVendors)
	rg.GET("/vendors/:id", vendors.GetVendor)
	rg.POST("/vendors/:id/bills", vendors.CreateBill)
	rg.GET("/vendors/:id/bills", vendors.ListVendorBills)
	rg.GET("/bills", vendors.ListBills)
	rg.GET("/bills/:id", vendors.GetBill)

	rg.POST("/exchange-rates", rates.CreateRate)
	rg.GET("/exchange-rates", rates.ListRates)
	rg.GET("/exchange-rates/latest", rates.LatestRate)
}

// do sends a request as the test tenant and user
func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	return testutil.DoJSON(a.t, a.router, method, "/api/v1/ledger"+path, body, map[string]string{
		middleware.TenantHeaderKey: a.tenantID.String(),
		middleware.UserHeaderKey:   a.userID.String(),
	})
}

// ok asserts a 200 response and decodes its data into out
func (a *testAPI) ok(w *httptest.ResponseRecorder, out any) testutil.Envelope {
	a.t.Helper()
	require.Equal(a.t, 200, w.Code, w.Body.String())
	env := testutil.DecodeEnvelope(a.t, w, out)
	require.True(a.t, env.Success)
	return env
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decodeMeta(t *testing.T, env testutil.Envelope) dto.Meta {
	t.Helper()
	var meta dto.Meta
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	return meta
}

// accountIDs lists the seeded chart and indexes it by code
func (a *testAPI) accountIDs() map[string]string {
	a.t.Helper()
	var accounts []appledger.AccountResponse
	a.ok(a.do("GET", "/accounts", nil), &accounts)
	ids := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		ids[acc.Code] = acc.ID.String()
	}
	return ids
}
