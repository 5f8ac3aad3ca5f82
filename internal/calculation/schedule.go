package calculation

import (
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// AmortizationSchedule lists every month of the financing up to the sale.
// The last entry's closing balance equals the outstanding balance reported
// by ComputeViability for the same parameters.
func AmortizationSchedule(params domain.SimulationParameters) ([]domain.ScheduleEntry, error) {
	if err := checkInputs(params, domain.PropertyFacts{}); err != nil {
		return nil, err
	}

	purchase := decimal.NewFromFloat(params.PurchasePrice)
	financed := purchase.Sub(percentOf(purchase, params.DownPaymentPct))
	amortization := financed.Div(decimal.NewFromInt(int64(params.FinancingTermMonths)))

	entries := make([]domain.ScheduleEntry, 0, max(params.MonthsToSell, 0))
	amortize(financed, amortization, monthlyRate(params.AnnualFinancingRatePct), params.MonthsToSell, func(e domain.ScheduleEntry) {
		entries = append(entries, e)
	})
	return entries, nil
}
