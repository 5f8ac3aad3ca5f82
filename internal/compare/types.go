package compare

import (
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult represents a single scenario comparison with calculated metrics
type ComparisonResult struct {
	ScenarioName string                      `json:"scenarioName"`
	Description  string                      `json:"description"`
	Parameters   domain.SimulationParameters `json:"parameters"`
	Warnings     []string                    `json:"warnings,omitempty"`

	// Key Metrics
	ROI             decimal.Decimal `json:"roi"`
	NetProfit       decimal.Decimal `json:"netProfit"`
	TotalInvestment decimal.Decimal `json:"totalInvestment"`
	IncomeTax       decimal.Decimal `json:"incomeTax"`

	// Comparison to Base
	ROIDiffFromBase        decimal.Decimal `json:"roiDiffFromBase"` // percentage points
	NetProfitDiffFromBase  decimal.Decimal `json:"netProfitDiffFromBase"`
	NetProfitPctFromBase   decimal.Decimal `json:"netProfitPctFromBase"`
	InvestmentDiffFromBase decimal.Decimal `json:"investmentDiffFromBase"`
	TaxDiffFromBase        decimal.Decimal `json:"taxDiffFromBase"`
}

// ROIPercent returns ROI in percent.
func (r ComparisonResult) ROIPercent() decimal.Decimal {
	return r.ROI.Mul(decimal.NewFromInt(100))
}

// ComparisonSet represents a collection of scenario comparisons
type ComparisonSet struct {
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	Source             string             `json:"source,omitempty"`
}

// MetricsCalculator extracts key metrics from viability results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes all comparison metrics for a viability report
func (mc *MetricsCalculator) CalculateMetrics(name string, report *domain.ViabilityReport) ComparisonResult {
	return ComparisonResult{
		ScenarioName:    name,
		Parameters:      report.Parameters,
		Warnings:        report.Warnings,
		ROI:             report.Result.ROI,
		NetProfit:       report.Result.NetProfit,
		TotalInvestment: report.Result.TotalInvestment,
		IncomeTax:       report.Result.IncomeTaxAmount,
	}
}

// CalculateComparison computes comparison metrics between a scenario and a base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.ROIDiffFromBase = scenario.ROIPercent().Sub(base.ROIPercent())
	scenario.NetProfitDiffFromBase = scenario.NetProfit.Sub(base.NetProfit)

	if !base.NetProfit.IsZero() {
		scenario.NetProfitPctFromBase = scenario.NetProfitDiffFromBase.
			Div(base.NetProfit.Abs()).
			Mul(decimal.NewFromInt(100))
	}

	scenario.InvestmentDiffFromBase = scenario.TotalInvestment.Sub(base.TotalInvestment)
	scenario.TaxDiffFromBase = scenario.IncomeTax.Sub(base.IncomeTax)

	return scenario
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}
	base := compSet.BaseResult

	// Best ROI
	bestROI := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.ROI.GreaterThan(bestROI.ROI) {
			bestROI = alt
		}
	}
	if bestROI != base {
		recommendations = append(recommendations,
			"Best ROI: "+bestROI.ScenarioName+" returns "+bestROI.ROIPercent().StringFixed(2)+
				"% ("+bestROI.ROIPercent().Sub(base.ROIPercent()).StringFixed(2)+" points over base)")
	}

	// Best net profit
	bestProfit := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.NetProfit.GreaterThan(bestProfit.NetProfit) {
			bestProfit = alt
		}
	}
	if bestProfit != base {
		diff := bestProfit.NetProfit.Sub(base.NetProfit)
		recommendations = append(recommendations,
			"Best Profit: "+bestProfit.ScenarioName+" earns "+diff.StringFixed(2)+" more than base")
	}

	// Lowest capital requirement
	lowestCapital := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.TotalInvestment.LessThan(lowestCapital.TotalInvestment) {
			lowestCapital = alt
		}
	}
	if lowestCapital != base {
		savings := base.TotalInvestment.Sub(lowestCapital.TotalInvestment)
		recommendations = append(recommendations,
			"Lowest Capital: "+lowestCapital.ScenarioName+" needs "+savings.StringFixed(2)+" less cash")
	}

	return recommendations
}
