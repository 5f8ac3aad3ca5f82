package calculation

import (
	"math"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)

	// Share of the installments already paid that is deducted from the
	// taxable gain.
	deductibleInstallmentShare = decimal.RequireFromString("0.75")
	capitalGainsTaxRate        = decimal.RequireFromString("0.15")
)

// ComputeViability derives the full viability snapshot for one property and
// one set of parameters. It is pure: identical inputs always produce an
// identical result, and it is safe to call concurrently.
//
// It fails with ErrInvalidParameter when the financing term is not positive
// or a numeric input is NaN or infinite. Every other input, however
// implausible, yields a result.
func ComputeViability(params domain.SimulationParameters, facts domain.PropertyFacts) (domain.ViabilityResult, error) {
	if err := checkInputs(params, facts); err != nil {
		return domain.ViabilityResult{}, err
	}

	purchase := decimal.NewFromFloat(params.PurchasePrice)
	sale := decimal.NewFromFloat(params.SalePrice)
	renovation := decimal.NewFromFloat(params.RenovationCost)
	months := decimal.NewFromInt(int64(params.MonthsToSell))

	var r domain.ViabilityResult

	// Acquisition
	r.DownPaymentAmount = percentOf(purchase, params.DownPaymentPct)
	r.TransferTaxAmount = percentOf(purchase, params.TransferTaxPct)
	r.RegistryFeeAmount = percentOf(purchase, params.RegistryFeePct)
	r.AcquisitionCosts = r.DownPaymentAmount.
		Add(r.TransferTaxAmount).
		Add(decimal.NewFromFloat(params.BankAppraisalFee)).
		Add(r.RegistryFeeAmount)

	// Financing up to the sale
	r.FinancedAmount = purchase.Sub(r.DownPaymentAmount)
	r.MonthlyAmortization = r.FinancedAmount.Div(decimal.NewFromInt(int64(params.FinancingTermMonths)))
	loan := amortize(r.FinancedAmount, r.MonthlyAmortization, monthlyRate(params.AnnualFinancingRatePct), params.MonthsToSell, nil)
	r.TotalInstallmentsPaid = loan.installments
	r.OutstandingBalanceAtSale = loan.balance

	// Holding costs
	r.CondoFeeTotal = decimal.NewFromFloat(facts.CondoFeeMonthly).Mul(months)
	r.PropertyTaxProrated = decimal.NewFromFloat(facts.YearlyTax).Div(monthsPerYear).Mul(months)
	r.GeneralExpensesTotal = decimal.NewFromFloat(params.MonthlyGeneralExpenses).Mul(months)
	r.CostsUntilSale = r.TotalInstallmentsPaid.
		Add(r.CondoFeeTotal).
		Add(r.PropertyTaxProrated).
		Add(r.GeneralExpensesTotal).
		Add(renovation)

	// Sale
	r.BrokerageAmount = percentOf(sale, params.BrokerageFeePct)
	r.IncomeTaxBase = sale.
		Sub(r.AcquisitionCosts).
		Sub(r.OutstandingBalanceAtSale).
		Sub(r.BrokerageAmount).
		Sub(r.TotalInstallmentsPaid.Mul(deductibleInstallmentShare)).
		Sub(renovation)
	r.IncomeTaxAmount = decimal.Zero
	if params.IncomeTaxApplies {
		r.IncomeTaxAmount = decimal.Max(decimal.Zero, r.IncomeTaxBase.Mul(capitalGainsTaxRate))
	}
	r.SellingCosts = r.OutstandingBalanceAtSale.
		Add(r.BrokerageAmount).
		Add(r.IncomeTaxAmount)

	// Totals
	r.TotalInvestment = r.AcquisitionCosts.Add(r.CostsUntilSale)
	r.NetProfit = sale.Sub(r.TotalInvestment).Sub(r.SellingCosts)
	r.ROI = decimal.Zero
	if r.TotalInvestment.IsPositive() {
		r.ROI = r.NetProfit.Div(r.TotalInvestment)
	}

	return r, nil
}

type loanState struct {
	installments decimal.Decimal
	balance      decimal.Decimal
}

// amortize runs the constant-amortization loop for exactly months periods.
// The balance is not clamped: paying past the term drives it negative.
// visit, when non-nil, receives every period.
func amortize(financed, amortization, rate decimal.Decimal, months int, visit func(domain.ScheduleEntry)) loanState {
	balance := financed
	total := decimal.Zero
	for month := 1; month <= months; month++ {
		interest := balance.Mul(rate)
		installment := amortization.Add(interest)
		total = total.Add(installment)
		closing := balance.Sub(amortization)
		if visit != nil {
			visit(domain.ScheduleEntry{
				Month:                  month,
				OpeningBalance:         balance,
				Interest:               interest,
				Amortization:           amortization,
				Installment:            installment,
				ClosingBalance:         closing,
				CumulativeInstallments: total,
			})
		}
		balance = closing
	}
	return loanState{installments: total, balance: balance}
}

func monthlyRate(annualPct float64) decimal.Decimal {
	return decimal.NewFromFloat(annualPct).Div(hundred).Div(monthsPerYear)
}

func percentOf(base decimal.Decimal, pct float64) decimal.Decimal {
	return base.Mul(decimal.NewFromFloat(pct)).Div(hundred)
}

// checkInputs rejects input the arithmetic cannot represent.
func checkInputs(params domain.SimulationParameters, facts domain.PropertyFacts) error {
	if params.FinancingTermMonths <= 0 {
		return invalidParameter(domain.ParamFinancingTermMonths, params.FinancingTermMonths, "financing term must be positive")
	}

	fields := []struct {
		name  string
		value float64
	}{
		{domain.ParamPurchasePrice, params.PurchasePrice},
		{domain.ParamSalePrice, params.SalePrice},
		{domain.ParamDownPaymentPct, params.DownPaymentPct},
		{domain.ParamTransferTaxPct, params.TransferTaxPct},
		{domain.ParamBankAppraisalFee, params.BankAppraisalFee},
		{domain.ParamRegistryFeePct, params.RegistryFeePct},
		{domain.ParamMonthlyGeneralExpenses, params.MonthlyGeneralExpenses},
		{domain.ParamRenovationCost, params.RenovationCost},
		{domain.ParamAnnualFinancingRatePct, params.AnnualFinancingRatePct},
		{domain.ParamBrokerageFeePct, params.BrokerageFeePct},
		{"condo_fee_monthly", facts.CondoFeeMonthly},
		{"yearly_tax", facts.YearlyTax},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return invalidParameter(f.name, f.value, "value must be finite")
		}
	}
	return nil
}
