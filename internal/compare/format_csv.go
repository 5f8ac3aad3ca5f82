package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"ROI %",
		"Net Profit",
		"Total Investment",
		"Income Tax",
		"ROI Diff (pts)",
		"Net Profit Diff",
		"Net Profit % Change",
		"Investment Diff",
		"Tax Diff",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}

	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	return []string{
		result.ScenarioName,
		scenarioType,
		result.ROIPercent().StringFixed(2),
		result.NetProfit.StringFixed(2),
		result.TotalInvestment.StringFixed(2),
		result.IncomeTax.StringFixed(2),
		result.ROIDiffFromBase.StringFixed(2),
		result.NetProfitDiffFromBase.StringFixed(2),
		result.NetProfitPctFromBase.StringFixed(2),
		result.InvestmentDiffFromBase.StringFixed(2),
		result.TaxDiffFromBase.StringFixed(2),
	}
}
