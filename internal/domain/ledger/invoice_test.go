package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceHeader() InvoiceHeader {
	return InvoiceHeader{
		InvoiceDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Currency:    valueobject.EUR,
	}
}

func createTestInvoice(t *testing.T, specs ...ItemSpec) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), "INV-00001", invoiceHeader(), specs)
	require.NoError(t, err)
	return inv
}

func assertInvoiceInvariants(t *testing.T, inv *Invoice) {
	t.Helper()
	assert.True(t, inv.Total.Equal(inv.Subtotal.Add(inv.TaxAmount)), "total == subtotal + tax")
	assert.True(t, inv.BalanceDue.Equal(inv.Total.Sub(inv.AmountPaid)), "balance == total - paid")
}

func pay(t *testing.T, inv *Invoice, amount string, allowOverpayment bool) error {
	t.Helper()
	p, err := NewPayment(inv, PaymentDetails{
		PaymentDate: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		Amount:      d(amount),
	})
	require.NoError(t, err)
	return inv.ApplyPayment(p, allowOverpayment)
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-00001", FormatInvoiceNumber("INV", 1))
	assert.Equal(t, "INV-00002", FormatInvoiceNumber("", 2))
	assert.Equal(t, "AR-123456", FormatInvoiceNumber("AR", 123456))
}

func TestNewInvoice_Totals(t *testing.T) {
	t.Run("lines without tax", func(t *testing.T) {
		inv := createTestInvoice(t,
			ItemSpec{Description: "Advisory retainer", UnitPrice: d("5000"), Quantity: qty("1")},
			ItemSpec{Description: "Due diligence", UnitPrice: d("3000"), Quantity: qty("2")},
		)
		assert.Equal(t, "INV-00001", inv.InvoiceNumber)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.True(t, inv.Subtotal.Equal(d("11000")))
		assert.True(t, inv.TaxAmount.IsZero())
		assert.True(t, inv.Total.Equal(d("11000")))
		assert.True(t, inv.BalanceDue.Equal(d("11000")))
		assert.True(t, inv.AmountPaid.IsZero())
		assertInvoiceInvariants(t, inv)
	})

	t.Run("line with tax and default quantity", func(t *testing.T) {
		inv := createTestInvoice(t, ItemSpec{Description: "Service", UnitPrice: d("5000"), TaxRate: d("20")})
		require.Len(t, inv.Lines, 1)
		line := inv.Lines[0]
		assert.True(t, line.Quantity.Equal(d("1")))
		assert.True(t, line.LineTotal.Equal(d("5000")))
		assert.True(t, line.TaxAmount.Equal(d("1000")))
		assert.Equal(t, inv.ID, line.InvoiceID)
		assert.True(t, inv.Subtotal.Equal(d("5000")))
		assert.True(t, inv.TaxAmount.Equal(d("1000")))
		assert.True(t, inv.Total.Equal(d("6000")))
		assert.True(t, inv.BalanceDue.Equal(d("6000")))
		assertInvoiceInvariants(t, inv)
	})

	t.Run("per-line rounding half up", func(t *testing.T) {
		inv := createTestInvoice(t,
			ItemSpec{Description: "Hours", Quantity: qty("3"), UnitPrice: d("33.335"), TaxRate: d("7.5")},
		)
		// 3 * 33.335 = 100.005 -> 100.01; tax 100.01 * 7.5% = 7.50075 -> 7.50
		assert.Equal(t, "100.01", inv.Lines[0].LineTotal.String())
		assert.Equal(t, "7.5", inv.Lines[0].TaxAmount.String())
		assert.Equal(t, "107.51", inv.Total.String())
		assertInvoiceInvariants(t, inv)
	})

	t.Run("raises created event", func(t *testing.T) {
		inv := createTestInvoice(t, ItemSpec{Description: "Service", UnitPrice: d("1")})
		require.Len(t, inv.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeInvoiceCreated, inv.GetDomainEvents()[0].EventType())
	})
}

func TestNewInvoice_Validation(t *testing.T) {
	good := []ItemSpec{{Description: "Service", UnitPrice: d("100")}}
	tests := []struct {
		name   string
		header func(h *InvoiceHeader)
		specs  []ItemSpec
	}{
		{"no lines", func(h *InvoiceHeader) {}, nil},
		{"missing description", func(h *InvoiceHeader) {}, []ItemSpec{{UnitPrice: d("1")}}},
		{"negative price", func(h *InvoiceHeader) {}, []ItemSpec{{Description: "x", UnitPrice: d("-1")}}},
		{"negative quantity", func(h *InvoiceHeader) {}, []ItemSpec{{Description: "x", Quantity: qty("-1"), UnitPrice: d("1")}}},
		{"zero quantity", func(h *InvoiceHeader) {}, []ItemSpec{{Description: "x", Quantity: qty("0"), UnitPrice: d("5000")}}},
		{"tax over 100", func(h *InvoiceHeader) {}, []ItemSpec{{Description: "x", UnitPrice: d("1"), TaxRate: d("101")}}},
		{"due before issue", func(h *InvoiceHeader) { h.DueDate = h.InvoiceDate.AddDate(0, 0, -1) }, good},
		{"missing due date", func(h *InvoiceHeader) { h.DueDate = time.Time{} }, good},
		{"bad currency", func(h *InvoiceHeader) { h.Currency = "XX" }, good},
		{"negative rate", func(h *InvoiceHeader) { h.ExchangeRate = d("-1") }, good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := invoiceHeader()
			tt.header(&h)
			_, err := NewInvoice(uuid.New(), "INV-00001", h, tt.specs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		})
	}

	t.Run("missing number", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "", invoiceHeader(), good)
		assert.Error(t, err)
	})
}

func TestInvoice_ApplyPayment(t *testing.T) {
	t.Run("partial then full", func(t *testing.T) {
		inv := createTestInvoice(t, ItemSpec{Description: "Service", UnitPrice: d("5000"), TaxRate: d("20")})

		require.NoError(t, pay(t, inv, "3000", false))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		assert.True(t, inv.BalanceDue.Equal(d("3000")))
		assertInvoiceInvariants(t, inv)

		require.NoError(t, pay(t, inv, "3000", false))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.BalanceDue.IsZero())
		assert.True(t, inv.AmountPaid.Equal(d("6000")))
		assert.Len(t, inv.Payments, 2)
		assertInvoiceInvariants(t, inv)
		assert.Equal(t, 3, inv.Version)
	})

	t.Run("overpayment rejected by default", func(t *testing.T) {
		inv := createTestInvoice(t, ItemSpec{Description: "Service", UnitPrice: d("100")})
		err := pay(t, inv, "100.01", false)
		require.Error(t, err)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "OVERPAYMENT", de.Code)
		assert.True(t, inv.AmountPaid.IsZero())
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
	})

	t.Run("overpayment allowed leaves negative balance", func(t *testing.T) {
		inv := createTestInvoice(t, ItemSpec{Description: "Service", UnitPrice: d("100")})
		require.NoError(t, pay(t, inv, "150", true))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.BalanceDue.Equal(d("-50")))
		assertInvoiceInvariants(t, inv)
	})

	t.Run("void invoice rejects payment", func(t *testing.T) {
		inv := createTestInvoice(t, ItemSpec{Description: "Service", UnitPrice: d("100")})
		inv.Status = InvoiceStatusVoid
		err := pay(t, inv, "10", false)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("payment for another invoice", func(t *testing.T) {
		a := createTestInvoice(t, ItemSpec{Description: "Service", UnitPrice: d("100")})
		b := createTestInvoice(t, ItemSpec{Description: "Service", UnitPrice: d("100")})
		p, err := NewPayment(a, PaymentDetails{PaymentDate: time.Now(), Amount: d("10")})
		require.NoError(t, err)
		assert.Error(t, b.ApplyPayment(p, false))
	})
}

func TestNewPayment(t *testing.T) {
	inv := createTestInvoice(t, ItemSpec{Description: "Service", UnitPrice: d("100")})

	p, err := NewPayment(inv, PaymentDetails{PaymentDate: time.Now(), Amount: d("10"), Method: " wire "})
	require.NoError(t, err)
	assert.Equal(t, valueobject.EUR, p.Currency)
	assert.True(t, p.ExchangeRate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "wire", p.Method)
	assert.Equal(t, inv.TenantID, p.TenantID)

	_, err = NewPayment(inv, PaymentDetails{PaymentDate: time.Now(), Amount: d("0")})
	assert.Error(t, err)
	_, err = NewPayment(inv, PaymentDetails{Amount: d("1")})
	assert.Error(t, err)
	_, err = NewPayment(inv, PaymentDetails{PaymentDate: time.Now(), Amount: d("1"), Currency: valueobject.USD})
	assert.Error(t, err)
	_, err = NewPayment(nil, PaymentDetails{PaymentDate: time.Now(), Amount: d("1")})
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	t.Run("amount within minor units", func(t *testing.T) {
		for _, amount := range []string{"10.5", "10.50", "10.500"} {
			_, err := NewPayment(inv, PaymentDetails{PaymentDate: time.Now(), Amount: d(amount)})
			assert.NoError(t, err, amount)
		}
		for _, amount := range []string{"10.005", "0.001"} {
			_, err := NewPayment(inv, PaymentDetails{PaymentDate: time.Now(), Amount: d(amount)})
			var de *shared.DomainError
			require.True(t, errors.As(err, &de), amount)
			assert.Equal(t, "INVALID_PAYMENT", de.Code)
		}
	})
}
