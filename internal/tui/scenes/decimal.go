package scenes

import "github.com/shopspring/decimal"

func decimalOf(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
