package estimating

import "github.com/shopspring/decimal"

// TaxPolicy computes the tax owed on an estimate subtotal. Per-line tax-code
// resolution is deliberately out of scope; the policy sees the subtotal only.
type TaxPolicy interface {
	TaxOn(subtotal decimal.Decimal) decimal.Decimal
	Rate() decimal.Decimal
}

// FlatRateTaxPolicy applies one fixed rate to the whole subtotal
type FlatRateTaxPolicy struct {
	rate decimal.Decimal
}

// NewFlatRateTaxPolicy creates a flat-rate tax policy. The rate is a
// fraction, e.g. 0.08 for 8 percent.
func NewFlatRateTaxPolicy(rate decimal.Decimal) *FlatRateTaxPolicy {
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	return &FlatRateTaxPolicy{rate: rate}
}

// TaxOn returns subtotal multiplied by the configured rate, rounded to cents
func (p *FlatRateTaxPolicy) TaxOn(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.rate).Round(2)
}

// Rate returns the configured rate
func (p *FlatRateTaxPolicy) Rate() decimal.Decimal {
	return p.rate
}
