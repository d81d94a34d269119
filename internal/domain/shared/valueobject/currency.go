package valueobject

// Currency is an ISO 4217 currency code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CAD Currency = "CAD"
	MXN Currency = "MXN"
)

// DefaultCurrency applies when an estimate or price book does not name one.
const DefaultCurrency = USD

// IsValid reports whether the code is one the system prices in.
func (c Currency) IsValid() bool {
	switch c {
	case USD, EUR, GBP, CAD, MXN:
		return true
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}
