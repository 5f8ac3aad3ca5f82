package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// SensitivityFormatter renders a one-parameter sweep.
type SensitivityFormatter interface {
	FormatSensitivityAnalysis(analysis *domain.SensitivityAnalysis) (string, error)
	Name() string
}

// SensitivityConsoleFormatter formats sensitivity analysis output for console
type SensitivityConsoleFormatter struct{}

func (scf SensitivityConsoleFormatter) Name() string { return "console" }

func (scf SensitivityConsoleFormatter) FormatSensitivityAnalysis(analysis *domain.SensitivityAnalysis) (string, error) {
	if analysis == nil || len(analysis.Points) == 0 {
		return "", fmt.Errorf("no points in analysis")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "SENSITIVITY ANALYSIS: %s\n", strings.ToUpper(strings.ReplaceAll(analysis.Parameter, "_", " ")))
	fmt.Fprintf(&buf, "=================================================================\n")
	fmt.Fprintf(&buf, "Base Case: %s = %s (ROI %s)\n", analysis.Parameter, formatValue(analysis.Parameter, analysis.BaseValue), FormatROI(analysis.BaseROI))
	fmt.Fprintf(&buf, "Range: %s to %s (%d steps)\n",
		formatValue(analysis.Parameter, analysis.Points[0].Value),
		formatValue(analysis.Parameter, analysis.Points[len(analysis.Points)-1].Value),
		len(analysis.Points))
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "%-16s %-12s %-16s %-16s %-14s\n", analysis.Parameter, "ROI", "Net Profit", "Investment", "Income Tax")
	fmt.Fprintln(&buf, strings.Repeat("-", 78))

	for _, p := range analysis.Points {
		value := formatValue(analysis.Parameter, p.Value)
		if p.Value == analysis.BaseValue {
			value += " ← BASE"
		}
		fmt.Fprintf(&buf, "%-16s %-12s %-16s %-16s %-14s\n",
			value,
			FormatROI(p.ROI),
			FormatCurrency(p.NetProfit),
			FormatCurrency(p.TotalInvestment),
			FormatCurrency(p.IncomeTaxAmount))
	}

	fmt.Fprintln(&buf)
	lo, hi := analysis.ROIRange()
	fmt.Fprintf(&buf, "ROI RANGE: %s to %s (spread %s points)\n",
		FormatROI(lo), FormatROI(hi), hi.Sub(lo).Mul(decimal.NewFromInt(100)).StringFixed(2))

	if breakEven, ok := firstSignChange(analysis); ok {
		fmt.Fprintf(&buf, "ROI crosses zero between %s and %s\n",
			formatValue(analysis.Parameter, breakEven[0]), formatValue(analysis.Parameter, breakEven[1]))
	}

	return buf.String(), nil
}

func firstSignChange(a *domain.SensitivityAnalysis) ([2]float64, bool) {
	for i := 1; i < len(a.Points); i++ {
		prev, cur := a.Points[i-1].ROI.Sign(), a.Points[i].ROI.Sign()
		if prev != cur && prev != 0 && cur != 0 {
			return [2]float64{a.Points[i-1].Value, a.Points[i].Value}, true
		}
	}
	return [2]float64{}, false
}

func formatValue(parameter string, v float64) string {
	switch {
	case domain.IsIntegerParameter(parameter):
		return strconv.Itoa(int(v))
	case strings.HasSuffix(parameter, "_pct"):
		return strconv.FormatFloat(v, 'f', 2, 64) + "%"
	default:
		return FormatCurrency(decimalOf(v))
	}
}

// SensitivityCSVFormatter formats sensitivity analysis output as CSV
type SensitivityCSVFormatter struct{}

func (scf SensitivityCSVFormatter) Name() string { return "csv" }

func (scf SensitivityCSVFormatter) FormatSensitivityAnalysis(analysis *domain.SensitivityAnalysis) (string, error) {
	if analysis == nil {
		return "", fmt.Errorf("analysis cannot be nil")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"parameter_name", "parameter_value", "roi", "net_profit", "total_investment", "income_tax"})
	for _, p := range analysis.Points {
		_ = w.Write([]string{
			analysis.Parameter,
			strconv.FormatFloat(p.Value, 'f', 4, 64),
			p.ROI.StringFixed(6),
			p.NetProfit.StringFixed(2),
			p.TotalInvestment.StringFixed(2),
			p.IncomeTaxAmount.StringFixed(2),
		})
	}
	w.Flush()
	return buf.String(), w.Error()
}

// SensitivityJSONFormatter formats sensitivity analysis output as JSON
type SensitivityJSONFormatter struct{}

func (sjf SensitivityJSONFormatter) Name() string { return "json" }

func (sjf SensitivityJSONFormatter) FormatSensitivityAnalysis(analysis *domain.SensitivityAnalysis) (string, error) {
	if analysis == nil {
		return "", fmt.Errorf("analysis cannot be nil")
	}
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewSensitivityFormatter creates a sensitivity formatter based on the format name
func NewSensitivityFormatter(format string) SensitivityFormatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv", "spreadsheet":
		return SensitivityCSVFormatter{}
	case "json":
		return SensitivityJSONFormatter{}
	default:
		return SensitivityConsoleFormatter{}
	}
}
