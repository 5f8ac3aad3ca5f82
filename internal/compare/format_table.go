package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing scenarios
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	// Header
	sb.WriteString("FLIP SCENARIO COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Base Scenario: %s\n", compSet.BaseScenarioName))
	if compSet.Source != "" {
		sb.WriteString(fmt.Sprintf("Analysis: %s\n", compSet.Source))
	}
	sb.WriteString("\n")

	nameWidth := 28
	numWidth := 12

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "ROI",
		numWidth, "Net Profit",
		numWidth, "Investment",
		numWidth, "Income Tax"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for i := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&compSet.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 80) + "\n")

	// Deltas from base
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", alt.Description))
			}

			sb.WriteString(fmt.Sprintf("  ROI:              %s%s pts\n",
				tf.deltaSymbol(alt.ROIDiffFromBase), alt.ROIDiffFromBase.StringFixed(2)))
			sb.WriteString(fmt.Sprintf("  Net Profit:       %s%s (%s%%)\n",
				tf.deltaSymbol(alt.NetProfitDiffFromBase),
				tf.formatDecimal(alt.NetProfitDiffFromBase),
				alt.NetProfitPctFromBase.StringFixed(1)))

			if !alt.InvestmentDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  Capital Needed:   %s%s\n",
					tf.deltaSymbol(alt.InvestmentDiffFromBase),
					tf.formatDecimal(alt.InvestmentDiffFromBase)))
			}
			if !alt.TaxDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  Income Tax:       %s%s\n",
					tf.deltaSymbol(alt.TaxDiffFromBase),
					tf.formatDecimal(alt.TaxDiffFromBase)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single scenario row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, result.ROIPercent().StringFixed(2)+"%",
		numWidth, tf.formatDecimal(result.NetProfit),
		numWidth, tf.formatDecimal(result.TotalInvestment),
		numWidth, tf.formatDecimal(result.IncomeTax))
}

// formatDecimal formats a decimal for display (in thousands)
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		return d.Div(decimal.NewFromInt(1000000)).StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		return d.Div(decimal.NewFromInt(1000)).StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

// deltaSymbol returns a leading + for positive deltas; negatives carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

// truncate truncates a string to maxLen runes
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// FormatCompact creates a compact single-line summary for each scenario
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScenarioName))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		roiChange := "="
		if !alt.ROIDiffFromBase.IsZero() {
			roiChange = tf.deltaSymbol(alt.ROIDiffFromBase) + alt.ROIDiffFromBase.StringFixed(2) + "pts"
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.ScenarioName, roiChange))
	}

	return sb.String()
}
