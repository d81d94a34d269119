package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrencyIsValid(t *testing.T) {
	for _, c := range []Currency{USD, EUR, GBP, CAD, MXN} {
		assert.True(t, c.IsValid(), c)
	}

	assert.False(t, Currency("JPY").IsValid())
	assert.False(t, Currency("").IsValid())
	assert.False(t, Currency("usd").IsValid())
}

func TestDefaultCurrency(t *testing.T) {
	assert.Equal(t, USD, Currency(DefaultCurrency))
	assert.Equal(t, "USD", DefaultCurrency.String())
}
