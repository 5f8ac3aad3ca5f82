package output

import (
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

// FormatROI formats an ROI fraction as a percentage
func FormatROI(roi decimal.Decimal) string {
	return FormatPercentage(roi.Mul(decimal.NewFromInt(100)))
}

func decimalOf(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
