package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.50"), EUR)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("100.5")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", USD)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney(decimal.RequireFromString("0.10"), EUR)
	b := MustMoney(decimal.RequireFromString("0.20"), EUR)

	t.Run("add is exact", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.RequireFromString("0.30")))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.IsNegative())
		assert.Equal(t, "-0.1", diff.Amount().String())
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := a.Add(Zero(USD))
		assert.Error(t, err)
		_, err = a.Subtract(Zero(USD))
		assert.Error(t, err)
		_, err = a.Compare(Zero(USD))
		assert.Error(t, err)
	})

	t.Run("percentage", func(t *testing.T) {
		m := MustMoney(decimal.NewFromInt(5000), EUR)
		assert.True(t, m.CalculatePercentage(decimal.NewFromInt(20)).Amount().Equal(decimal.NewFromInt(1000)))
	})

	t.Run("negate and compare", func(t *testing.T) {
		m := MustMoney(decimal.NewFromInt(10000), EUR).Negate()
		cmp, err := m.Compare(Zero(EUR))
		require.NoError(t, err)
		assert.Equal(t, -1, cmp)
	})
}

func TestMoney_RoundToMinor(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency Currency
		want     string
	}{
		{"half rounds up", "10.005", EUR, "10.01"},
		{"negative half rounds away from zero", "-10.005", EUR, "-10.01"},
		{"below half rounds down", "10.0049", EUR, "10"},
		{"yen has no minor unit", "1234.5", JPY, "1235"},
		{"already exact", "99.99", USD, "99.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MustMoney(decimal.RequireFromString(tt.amount), tt.currency).RoundToMinor()
			assert.True(t, m.Amount().Equal(decimal.RequireFromString(tt.want)), "got %s", m.Amount())
		})
	}
}

func TestMoney_JSON(t *testing.T) {
	m := MustMoney(decimal.RequireFromString("1234.50"), EUR)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.5","currency":"EUR"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equals(back))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"x","currency":"EUR"}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1","currency":""}`), &back))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.10"))
	assert.Equal(t, DefaultCurrency, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("42.1")))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	v, err := MustMoney(decimal.NewFromInt(7), EUR).Value()
	require.NoError(t, err)
	assert.Equal(t, "7", v)
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "5.00 EUR", MustMoney(decimal.NewFromInt(5), EUR).String())
	assert.Equal(t, "5 JPY", MustMoney(decimal.NewFromInt(5), JPY).String())
}
