package calculation

import (
	"fmt"

	"github.com/rgehrsitz/flipcalc/internal/domain"
)

// DefaultMaxMonthsToSell bounds the amortization loop.
const DefaultMaxMonthsToSell = 1200

// Limits are the upstream bounds applied before computing.
type Limits struct {
	MaxMonthsToSell int `yaml:"max_months_to_sell" json:"maxMonthsToSell" mapstructure:"max_months_to_sell"`
}

// DefaultLimits returns the standard bounds.
func DefaultLimits() Limits {
	return Limits{MaxMonthsToSell: DefaultMaxMonthsToSell}
}

// ValidateParameters applies business validation on top of ComputeViability.
// Only an unbounded or negative holding period is an error; economically
// odd input produces warnings.
func ValidateParameters(params domain.SimulationParameters, limits Limits) ([]string, error) {
	maxMonths := limits.MaxMonthsToSell
	if maxMonths <= 0 {
		maxMonths = DefaultMaxMonthsToSell
	}
	if params.MonthsToSell < 0 {
		return nil, invalidParameter(domain.ParamMonthsToSell, params.MonthsToSell, "months to sell cannot be negative")
	}
	if params.MonthsToSell > maxMonths {
		return nil, invalidParameter(domain.ParamMonthsToSell, params.MonthsToSell,
			fmt.Sprintf("months to sell cannot exceed %d", maxMonths))
	}

	var warnings []string
	if params.FinancingTermMonths > 0 && params.MonthsToSell > params.FinancingTermMonths {
		warnings = append(warnings, fmt.Sprintf(
			"months to sell (%d) exceeds the financing term (%d); the outstanding balance at sale will be negative",
			params.MonthsToSell, params.FinancingTermMonths))
	}

	pcts := []struct {
		name  string
		value float64
	}{
		{domain.ParamDownPaymentPct, params.DownPaymentPct},
		{domain.ParamTransferTaxPct, params.TransferTaxPct},
		{domain.ParamRegistryFeePct, params.RegistryFeePct},
		{domain.ParamBrokerageFeePct, params.BrokerageFeePct},
	}
	for _, p := range pcts {
		if p.value < 0 || p.value > 100 {
			warnings = append(warnings, fmt.Sprintf("%s should be between 0 and 100, got %g", p.name, p.value))
		}
	}

	amounts := []struct {
		name  string
		value float64
	}{
		{domain.ParamPurchasePrice, params.PurchasePrice},
		{domain.ParamSalePrice, params.SalePrice},
		{domain.ParamBankAppraisalFee, params.BankAppraisalFee},
		{domain.ParamMonthlyGeneralExpenses, params.MonthlyGeneralExpenses},
		{domain.ParamRenovationCost, params.RenovationCost},
		{domain.ParamAnnualFinancingRatePct, params.AnnualFinancingRatePct},
	}
	for _, a := range amounts {
		if a.value < 0 {
			warnings = append(warnings, fmt.Sprintf("%s should not be negative, got %g", a.name, a.value))
		}
	}

	if params.SalePrice < params.PurchasePrice {
		warnings = append(warnings, "sale price is below the purchase price")
	}

	return warnings, nil
}
