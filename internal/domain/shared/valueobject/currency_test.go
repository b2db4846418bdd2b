package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" eur ")
	require.NoError(t, err)
	assert.Equal(t, EUR, c)

	_, err = ParseCurrency("ZZZ")
	assert.Error(t, err)

	_, err = ParseCurrency("EURO")
	assert.Error(t, err)
}

func TestCurrency_MinorUnits(t *testing.T) {
	assert.Equal(t, int32(2), EUR.MinorUnits())
	assert.Equal(t, int32(2), USD.MinorUnits())
	assert.Equal(t, int32(0), JPY.MinorUnits())
	assert.Equal(t, int32(2), Currency("???").MinorUnits())
}

func TestCurrency_IsValid(t *testing.T) {
	assert.True(t, GBP.IsValid())
	assert.True(t, CHF.IsValid())
	assert.False(t, Currency("").IsValid())
	assert.False(t, Currency("ABC").IsValid())
}
