package compare

import (
	"context"
	"strings"
	"testing"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/shopspring/decimal"
)

func baseParams() domain.SimulationParameters {
	return domain.SimulationParameters{
		PurchasePrice:          720000,
		SalePrice:              936000,
		DownPaymentPct:         20,
		TransferTaxPct:         3,
		RegistryFeePct:         1.5,
		RenovationCost:         50000,
		AnnualFinancingRatePct: 11.5,
		FinancingTermMonths:    420,
		MonthsToSell:           6,
		BrokerageFeePct:        6,
		IncomeTaxApplies:       true,
	}
}

func baseFacts() domain.PropertyFacts {
	return domain.PropertyFacts{Area: 68, CondoFeeMonthly: 500, YearlyTax: 1200}
}

func TestCompareEngine_Compare(t *testing.T) {
	engine := NewCompareEngine(calculation.NewCalculationEngine())

	compSet, err := engine.Compare(context.Background(), baseFacts(), baseParams(), CompareOptions{
		BaseName:  "apt",
		Templates: []string{"price_cut_10pct", "tax_exempt", "cash_purchase"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if compSet.BaseResult.NetProfit.StringFixed(2) != "32696.39" {
		t.Errorf("Unexpected base net profit: %s", compSet.BaseResult.NetProfit.StringFixed(2))
	}
	if len(compSet.AlternativeResults) != 3 {
		t.Fatalf("Expected 3 alternatives, got %d", len(compSet.AlternativeResults))
	}

	priceCut := compSet.AlternativeResults[0]
	if priceCut.ScenarioName != "apt_price_cut_10pct" {
		t.Errorf("Unexpected scenario name: %s", priceCut.ScenarioName)
	}
	if !priceCut.NetProfitDiffFromBase.IsNegative() {
		t.Error("A price cut should reduce net profit")
	}

	taxExempt := compSet.AlternativeResults[1]
	if !taxExempt.NetProfitDiffFromBase.Equal(compSet.BaseResult.IncomeTax) {
		t.Errorf("Tax exemption should add exactly the base income tax, got %s", taxExempt.NetProfitDiffFromBase)
	}
	if !taxExempt.IncomeTax.IsZero() {
		t.Error("Tax-exempt scenario should pay no income tax")
	}

	cash := compSet.AlternativeResults[2]
	if !cash.InvestmentDiffFromBase.IsPositive() {
		t.Error("A cash purchase should need more capital")
	}

	if len(compSet.Recommendations) == 0 {
		t.Error("Expected recommendations")
	}
	if !strings.HasPrefix(compSet.Recommendations[0], "Best ROI: apt_tax_exempt") {
		t.Errorf("Unexpected first recommendation: %s", compSet.Recommendations[0])
	}
}

func TestCompareEngine_Compare_UnknownTemplate(t *testing.T) {
	engine := NewCompareEngine(calculation.NewCalculationEngine())

	_, err := engine.Compare(context.Background(), baseFacts(), baseParams(), CompareOptions{
		Templates: []string{"no_such_template"},
	})
	if err == nil || !strings.Contains(err.Error(), "template no_such_template not found") {
		t.Errorf("Expected template not found error, got %v", err)
	}
}

func TestCompareEngine_Compare_InvalidBase(t *testing.T) {
	params := baseParams()
	params.FinancingTermMonths = 0

	_, err := NewCompareEngine(calculation.NewCalculationEngine()).
		Compare(context.Background(), baseFacts(), params, CompareOptions{})
	if err == nil {
		t.Fatal("Expected error for invalid base parameters")
	}
}

func TestCompareEngine_CompareCandidates(t *testing.T) {
	params := baseParams()
	cheaper := baseParams()
	cheaper.PurchasePrice = 650000

	analysis := &domain.Analysis{
		Name: "Centro",
		Candidates: []domain.Candidate{
			{Property: domain.Property{ID: "a", Title: "Apt A", Area: 68, CondoFeeMonthly: 500, YearlyTax: 1200}, Parameters: params},
			{Property: domain.Property{ID: "b", Title: "Apt B", Area: 68, CondoFeeMonthly: 500, YearlyTax: 1200}, Parameters: cheaper},
		},
	}

	compSet, err := NewCompareEngine(calculation.NewCalculationEngine()).
		CompareCandidates(context.Background(), analysis, "a")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if compSet.BaseScenarioName != "Apt A" {
		t.Errorf("Unexpected base name: %s", compSet.BaseScenarioName)
	}
	if compSet.Source != "Centro" {
		t.Errorf("Unexpected source: %s", compSet.Source)
	}
	if len(compSet.AlternativeResults) != 1 {
		t.Fatalf("Expected 1 alternative, got %d", len(compSet.AlternativeResults))
	}
	if !compSet.AlternativeResults[0].ROIDiffFromBase.IsPositive() {
		t.Error("Buying cheaper should raise ROI")
	}

	if _, err := NewCompareEngine(calculation.NewCalculationEngine()).
		CompareCandidates(context.Background(), analysis, "missing"); err == nil {
		t.Error("Expected error for unknown base candidate")
	}
}

func TestMetricsCalculator_ZeroBaseProfit(t *testing.T) {
	calc := NewMetricsCalculator()
	base := ComparisonResult{}
	alt := calc.CalculateComparison(ComparisonResult{NetProfit: decimal.NewFromInt(1)}, base)

	if !alt.NetProfitPctFromBase.IsZero() {
		t.Error("Percent change should stay zero when base profit is zero")
	}
}

func TestGenerateRecommendations_NoAlternatives(t *testing.T) {
	recs := GenerateRecommendations(&ComparisonSet{BaseResult: &ComparisonResult{}})
	if len(recs) != 0 {
		t.Errorf("Expected no recommendations, got %v", recs)
	}
}
