package core

import "github.com/shopspring/decimal"

func init() {
	// amounts are JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
