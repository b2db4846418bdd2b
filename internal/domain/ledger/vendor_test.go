package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestVendor(t *testing.T) *Vendor {
	t.Helper()
	v, err := NewVendor(uuid.New(), VendorDetails{Name: "Data Room Ltd", ContactEmail: "billing@dataroom.example"})
	require.NoError(t, err)
	return v
}

func TestNewVendor(t *testing.T) {
	v := createTestVendor(t)
	assert.Equal(t, "Data Room Ltd", v.Name)

	_, err := NewVendor(uuid.New(), VendorDetails{Name: "  "})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewVendor(uuid.New(), VendorDetails{Name: "X", ContactEmail: "not an email"})
	assert.Error(t, err)

	_, err = NewVendor(uuid.Nil, VendorDetails{Name: "X"})
	assert.ErrorIs(t, err, shared.ErrTenantRequired)
}

func TestNewBill(t *testing.T) {
	vendor := createTestVendor(t)
	header := BillHeader{
		BillNumber: "DR-77",
		BillDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Currency:   valueobject.EUR,
	}

	bill, err := NewBill(vendor, header, []ItemSpec{
		{Description: "Virtual data room", Quantity: qty("2"), UnitPrice: d("750"), TaxRate: d("20")},
		{Description: "Setup", UnitPrice: d("100")},
	})
	require.NoError(t, err)

	assert.Equal(t, vendor.ID, bill.VendorID)
	assert.Equal(t, vendor.TenantID, bill.TenantID)
	assert.Equal(t, BillStatusDraft, bill.Status)
	assert.True(t, bill.Subtotal.Equal(d("1600")))
	assert.True(t, bill.TaxAmount.Equal(d("300")))
	assert.True(t, bill.Total.Equal(d("1900")))
	assert.True(t, bill.AmountPaid.IsZero())
	require.Len(t, bill.Lines, 2)
	assert.True(t, bill.Lines[0].LineTotal.Equal(d("1500")))
	assert.Equal(t, bill.ID, bill.Lines[1].BillID)

	_, err = NewBill(nil, header, []ItemSpec{{Description: "x", UnitPrice: d("1")}})
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = NewBill(vendor, header, nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestNewExchangeRate(t *testing.T) {
	tenantID := uuid.New()
	day := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

	r, err := NewExchangeRate(tenantID, "usd", "EUR", d("0.92"), day, "")
	require.NoError(t, err)
	assert.Equal(t, valueobject.USD, r.From)
	assert.Equal(t, "manual", r.Source)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), r.RateDate)

	converted, err := r.Convert(valueobject.MustMoney(d("100.005"), valueobject.USD))
	require.NoError(t, err)
	assert.Equal(t, valueobject.EUR, converted.Currency())
	assert.Equal(t, "92", converted.Amount().String())

	_, err = r.Convert(valueobject.Zero(valueobject.GBP))
	assert.Error(t, err)

	_, err = NewExchangeRate(tenantID, "EUR", "EUR", d("1"), day, "")
	assert.Error(t, err)
	_, err = NewExchangeRate(tenantID, "USD", "EUR", d("0"), day, "")
	assert.Error(t, err)
	_, err = NewExchangeRate(tenantID, "USD", "ZZZ", d("1"), day, "")
	assert.Error(t, err)
}

func TestParseBillStatus(t *testing.T) {
	s, err := ParseBillStatus(" Partially_Paid ")
	require.NoError(t, err)
	assert.Equal(t, BillStatusPartiallyPaid, s)

	_, err = ParseBillStatus("settled")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
