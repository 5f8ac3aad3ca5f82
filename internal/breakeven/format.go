package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats solver results as a console table
type TableFormatter struct{}

// Format generates a formatted table for a solver result
func (tf *TableFormatter) Format(result *SolveResult) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN ANALYSIS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	sb.WriteString(fmt.Sprintf("Target:       %s\n", result.Request.Target))
	sb.WriteString(fmt.Sprintf("Goal:         %s (ROI ≥ %s%%)\n", result.Request.Goal, tf.formatPercent(result.ThresholdROI)))
	sb.WriteString(fmt.Sprintf("Status:       %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:   %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:  %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("RESULT\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-22s %s\n", tf.targetLabel(result.Request.Target)+":", tf.formatValue(result.Request.Target, result.OptimalValue)))
	sb.WriteString(fmt.Sprintf("%-22s %s\n", "Planned value:", tf.formatValue(result.Request.Target, result.BaseValue)))
	sb.WriteString(fmt.Sprintf("%-22s %s%s", "Margin:", tf.deltaSymbol(result.ValueDiffFromBase), tf.formatValue(result.Request.Target, result.ValueDiffFromBase)))
	if !result.ValuePctFromBase.IsZero() {
		sb.WriteString(fmt.Sprintf(" (%s%s%%)", tf.deltaSymbol(result.ValuePctFromBase), result.ValuePctFromBase.StringFixed(1)))
	}
	sb.WriteString("\n\n")

	sb.WriteString("AT THE THRESHOLD\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("ROI:          %s%% (planned %s%%)\n", tf.formatPercent(result.ROI), tf.formatPercent(result.BaseROI)))
	sb.WriteString(fmt.Sprintf("Net Profit:   %s\n", tf.formatCurrency(result.NetProfit)))
	sb.WriteString("\n")

	return sb.String()
}

// FormatMulti formats results from every target
func (tf *TableFormatter) FormatMulti(result *MultiTargetResult) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN SAFETY MARGINS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	sb.WriteString(fmt.Sprintf("%-20s %15s %15s %12s %12s\n",
		"Target", "Threshold", "Planned", "Margin", "Iterations"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	for _, res := range result.Results {
		sb.WriteString(fmt.Sprintf("%-20s %15s %15s %12s %12d\n",
			tf.truncate(string(res.Request.Target), 20),
			tf.formatShort(res.Request.Target, res.OptimalValue),
			tf.formatShort(res.Request.Target, res.BaseValue),
			tf.deltaSymbol(res.ValueDiffFromBase)+tf.formatShort(res.Request.Target, res.ValueDiffFromBase),
			res.Iterations))
	}
	sb.WriteString("\n")

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *SolveResult) (string, error) {
	return jf.marshal(result)
}

// FormatMulti formats multi-target results as JSON
func (jf *JSONFormatter) FormatMulti(result *MultiTargetResult) (string, error) {
	return jf.marshal(result)
}

func (jf *JSONFormatter) marshal(v any) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Helper methods

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) targetLabel(target SolveTarget) string {
	switch target {
	case TargetSalePrice:
		return "Minimum sale price"
	case TargetPurchasePrice:
		return "Maximum purchase price"
	case TargetMonthsToSell:
		return "Maximum months to sell"
	}
	return string(target)
}

func (tf *TableFormatter) formatValue(target SolveTarget, d decimal.Decimal) string {
	if target == TargetMonthsToSell {
		return d.StringFixed(0) + " months"
	}
	return tf.formatCurrency(d)
}

func (tf *TableFormatter) formatCurrency(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (tf *TableFormatter) formatPercent(roi decimal.Decimal) string {
	return roi.Mul(decimal.NewFromInt(100)).StringFixed(2)
}

func (tf *TableFormatter) formatShort(target SolveTarget, d decimal.Decimal) string {
	if target == TargetMonthsToSell {
		return d.StringFixed(0) + "m"
	}
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		return d.Div(decimal.NewFromInt(1000000)).StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		return d.Div(decimal.NewFromInt(1000)).StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
