package transform

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/flipcalc/internal/domain"
)

// SetParameter overrides a single numeric parameter by name.
type SetParameter struct {
	Parameter string
	Value     float64
}

func (sp *SetParameter) Name() string {
	return "set_parameter"
}

func (sp *SetParameter) Description() string {
	return fmt.Sprintf("Set %s to %g", sp.Parameter, sp.Value)
}

func (sp *SetParameter) Validate(base domain.SimulationParameters) error {
	if _, err := base.Get(sp.Parameter); err != nil {
		return NewTransformError(sp.Name(), "validate", "unknown parameter", err)
	}
	if math.IsNaN(sp.Value) || math.IsInf(sp.Value, 0) {
		return NewTransformError(sp.Name(), "validate",
			fmt.Sprintf("value for %s must be finite", sp.Parameter), nil)
	}
	return nil
}

func (sp *SetParameter) Apply(base domain.SimulationParameters) (domain.SimulationParameters, error) {
	if err := sp.Validate(base); err != nil {
		return base, err
	}
	result := base
	if err := result.Set(sp.Parameter, sp.Value); err != nil {
		return base, NewTransformError(sp.Name(), "apply", "set failed", err)
	}
	return result, nil
}

// AdjustSalePrice scales the sale price by a percentage (-5 is a 5% cut).
type AdjustSalePrice struct {
	Percent float64
}

func (a *AdjustSalePrice) Name() string {
	return "adjust_sale_price"
}

func (a *AdjustSalePrice) Description() string {
	return fmt.Sprintf("Adjust sale price by %+.1f%%", a.Percent)
}

func (a *AdjustSalePrice) Validate(base domain.SimulationParameters) error {
	if a.Percent <= -100 {
		return NewTransformError(a.Name(), "validate",
			fmt.Sprintf("adjustment must be greater than -100%%, got %g%%", a.Percent), nil)
	}
	return nil
}

func (a *AdjustSalePrice) Apply(base domain.SimulationParameters) (domain.SimulationParameters, error) {
	if err := a.Validate(base); err != nil {
		return base, err
	}
	result := base
	result.SalePrice = base.SalePrice * (1 + a.Percent/100)
	return result, nil
}

// AdjustPurchasePrice scales the purchase price by a percentage.
type AdjustPurchasePrice struct {
	Percent float64
}

func (a *AdjustPurchasePrice) Name() string {
	return "adjust_purchase_price"
}

func (a *AdjustPurchasePrice) Description() string {
	return fmt.Sprintf("Adjust purchase price by %+.1f%%", a.Percent)
}

func (a *AdjustPurchasePrice) Validate(base domain.SimulationParameters) error {
	if a.Percent <= -100 {
		return NewTransformError(a.Name(), "validate",
			fmt.Sprintf("adjustment must be greater than -100%%, got %g%%", a.Percent), nil)
	}
	return nil
}

func (a *AdjustPurchasePrice) Apply(base domain.SimulationParameters) (domain.SimulationParameters, error) {
	if err := a.Validate(base); err != nil {
		return base, err
	}
	result := base
	result.PurchasePrice = base.PurchasePrice * (1 + a.Percent/100)
	return result, nil
}

// DelaySale extends the holding period by Months.
type DelaySale struct {
	Months int
}

func (ds *DelaySale) Name() string {
	return "delay_sale"
}

func (ds *DelaySale) Description() string {
	return fmt.Sprintf("Delay sale by %d months", ds.Months)
}

func (ds *DelaySale) Validate(base domain.SimulationParameters) error {
	if ds.Months <= 0 {
		return NewTransformError(ds.Name(), "validate", "months must be positive", nil)
	}
	return nil
}

func (ds *DelaySale) Apply(base domain.SimulationParameters) (domain.SimulationParameters, error) {
	if err := ds.Validate(base); err != nil {
		return base, err
	}
	result := base
	result.MonthsToSell = base.MonthsToSell + ds.Months
	return result, nil
}

// SetMonthsToSell replaces the holding period.
type SetMonthsToSell struct {
	Months int
}

func (sm *SetMonthsToSell) Name() string {
	return "set_months_to_sell"
}

func (sm *SetMonthsToSell) Description() string {
	return fmt.Sprintf("Sell after %d months", sm.Months)
}

func (sm *SetMonthsToSell) Validate(base domain.SimulationParameters) error {
	if sm.Months < 0 {
		return NewTransformError(sm.Name(), "validate", "months cannot be negative", nil)
	}
	return nil
}

func (sm *SetMonthsToSell) Apply(base domain.SimulationParameters) (domain.SimulationParameters, error) {
	if err := sm.Validate(base); err != nil {
		return base, err
	}
	result := base
	result.MonthsToSell = sm.Months
	return result, nil
}

// SetFinancingRate replaces the annual financing rate, or shifts it by
// Rate percentage points when Relative is set.
type SetFinancingRate struct {
	Rate     float64
	Relative bool
}

func (sr *SetFinancingRate) Name() string {
	return "set_financing_rate"
}

func (sr *SetFinancingRate) Description() string {
	if sr.Relative {
		return fmt.Sprintf("Shift financing rate by %+.2f points", sr.Rate)
	}
	return fmt.Sprintf("Set financing rate to %.2f%% a year", sr.Rate)
}

func (sr *SetFinancingRate) Validate(base domain.SimulationParameters) error {
	rate := sr.Rate
	if sr.Relative {
		rate += base.AnnualFinancingRatePct
	}
	if rate < 0 {
		return NewTransformError(sr.Name(), "validate",
			fmt.Sprintf("resulting rate %.2f%% cannot be negative", rate), nil)
	}
	if rate > 100 {
		return NewTransformError(sr.Name(), "validate",
			fmt.Sprintf("resulting rate %.2f%% exceeds 100%%", rate), nil)
	}
	return nil
}

func (sr *SetFinancingRate) Apply(base domain.SimulationParameters) (domain.SimulationParameters, error) {
	if err := sr.Validate(base); err != nil {
		return base, err
	}
	result := base
	if sr.Relative {
		result.AnnualFinancingRatePct = base.AnnualFinancingRatePct + sr.Rate
	} else {
		result.AnnualFinancingRatePct = sr.Rate
	}
	return result, nil
}

// CashPurchase removes financing by paying the full price up front.
type CashPurchase struct{}

func (cp *CashPurchase) Name() string {
	return "cash_purchase"
}

func (cp *CashPurchase) Description() string {
	return "Buy in cash (100% down payment)"
}

func (cp *CashPurchase) Validate(base domain.SimulationParameters) error {
	return nil
}

func (cp *CashPurchase) Apply(base domain.SimulationParameters) (domain.SimulationParameters, error) {
	result := base
	result.DownPaymentPct = 100
	return result, nil
}

// RenovationOverrun inflates the renovation budget by a percentage.
type RenovationOverrun struct {
	Percent float64
}

func (ro *RenovationOverrun) Name() string {
	return "renovation_overrun"
}

func (ro *RenovationOverrun) Description() string {
	return fmt.Sprintf("Renovation costs %.0f%% over budget", ro.Percent)
}

func (ro *RenovationOverrun) Validate(base domain.SimulationParameters) error {
	if ro.Percent < 0 {
		return NewTransformError(ro.Name(), "validate", "overrun cannot be negative", nil)
	}
	return nil
}

func (ro *RenovationOverrun) Apply(base domain.SimulationParameters) (domain.SimulationParameters, error) {
	if err := ro.Validate(base); err != nil {
		return base, err
	}
	result := base
	result.RenovationCost = base.RenovationCost * (1 + ro.Percent/100)
	return result, nil
}

// SetIncomeTax toggles the capital gains tax.
type SetIncomeTax struct {
	Applies bool
}

func (st *SetIncomeTax) Name() string {
	return "set_income_tax"
}

func (st *SetIncomeTax) Description() string {
	if st.Applies {
		return "Income tax applies to the gain"
	}
	return "Gain is exempt from income tax"
}

func (st *SetIncomeTax) Validate(base domain.SimulationParameters) error {
	return nil
}

func (st *SetIncomeTax) Apply(base domain.SimulationParameters) (domain.SimulationParameters, error) {
	result := base
	result.IncomeTaxApplies = st.Applies
	return result, nil
}
