package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// PropertyFacts holds the immutable facts about a property that feed the
// viability calculation.
type PropertyFacts struct {
	Area            float64 `yaml:"area" json:"area"`
	CondoFeeMonthly float64 `yaml:"condo_fee_monthly" json:"condoFeeMonthly"`
	YearlyTax       float64 `yaml:"yearly_tax" json:"yearlyTax"`
}

// SimulationParameters are the user-editable inputs of a flip simulation.
// Percentages are expressed in points (20 means 20%).
type SimulationParameters struct {
	PurchasePrice          float64 `yaml:"purchase_price" json:"purchasePrice"`
	SalePrice              float64 `yaml:"sale_price" json:"salePrice"`
	DownPaymentPct         float64 `yaml:"down_payment_pct" json:"downPaymentPct"`
	TransferTaxPct         float64 `yaml:"transfer_tax_pct" json:"transferTaxPct"`
	BankAppraisalFee       float64 `yaml:"bank_appraisal_fee" json:"bankAppraisalFee"`
	RegistryFeePct         float64 `yaml:"registry_fee_pct" json:"registryFeePct"`
	MonthlyGeneralExpenses float64 `yaml:"monthly_general_expenses" json:"monthlyGeneralExpenses"`
	RenovationCost         float64 `yaml:"renovation_cost" json:"renovationCost"`
	AnnualFinancingRatePct float64 `yaml:"annual_financing_rate_pct" json:"annualFinancingRatePct"`
	FinancingTermMonths    int     `yaml:"financing_term_months" json:"financingTermMonths"`
	MonthsToSell           int     `yaml:"months_to_sell" json:"monthsToSell"`
	BrokerageFeePct        float64 `yaml:"brokerage_fee_pct" json:"brokerageFeePct"`
	IncomeTaxApplies       bool    `yaml:"income_tax_applies" json:"incomeTaxApplies"`
}

// Parameter names accepted by Get and Set.
const (
	ParamPurchasePrice          = "purchase_price"
	ParamSalePrice              = "sale_price"
	ParamDownPaymentPct         = "down_payment_pct"
	ParamTransferTaxPct         = "transfer_tax_pct"
	ParamBankAppraisalFee       = "bank_appraisal_fee"
	ParamRegistryFeePct         = "registry_fee_pct"
	ParamMonthlyGeneralExpenses = "monthly_general_expenses"
	ParamRenovationCost         = "renovation_cost"
	ParamAnnualFinancingRatePct = "annual_financing_rate_pct"
	ParamFinancingTermMonths    = "financing_term_months"
	ParamMonthsToSell           = "months_to_sell"
	ParamBrokerageFeePct        = "brokerage_fee_pct"
)

// numericFields binds each parameter name to its field. Integer fields are
// truncated on Set.
var numericFields = map[string]func(p *SimulationParameters) fieldRef{
	ParamPurchasePrice:          func(p *SimulationParameters) fieldRef { return fieldRef{f: &p.PurchasePrice} },
	ParamSalePrice:              func(p *SimulationParameters) fieldRef { return fieldRef{f: &p.SalePrice} },
	ParamDownPaymentPct:         func(p *SimulationParameters) fieldRef { return fieldRef{f: &p.DownPaymentPct} },
	ParamTransferTaxPct:         func(p *SimulationParameters) fieldRef { return fieldRef{f: &p.TransferTaxPct} },
	ParamBankAppraisalFee:       func(p *SimulationParameters) fieldRef { return fieldRef{f: &p.BankAppraisalFee} },
	ParamRegistryFeePct:         func(p *SimulationParameters) fieldRef { return fieldRef{f: &p.RegistryFeePct} },
	ParamMonthlyGeneralExpenses: func(p *SimulationParameters) fieldRef { return fieldRef{f: &p.MonthlyGeneralExpenses} },
	ParamRenovationCost:         func(p *SimulationParameters) fieldRef { return fieldRef{f: &p.RenovationCost} },
	ParamAnnualFinancingRatePct: func(p *SimulationParameters) fieldRef { return fieldRef{f: &p.AnnualFinancingRatePct} },
	ParamFinancingTermMonths:    func(p *SimulationParameters) fieldRef { return fieldRef{i: &p.FinancingTermMonths} },
	ParamMonthsToSell:           func(p *SimulationParameters) fieldRef { return fieldRef{i: &p.MonthsToSell} },
	ParamBrokerageFeePct:        func(p *SimulationParameters) fieldRef { return fieldRef{f: &p.BrokerageFeePct} },
}

type fieldRef struct {
	f *float64
	i *int
}

// ParameterNames returns every numeric parameter name, sorted.
func ParameterNames() []string {
	names := make([]string, 0, len(numericFields))
	for name := range numericFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsIntegerParameter reports whether the named parameter holds whole months.
func IsIntegerParameter(name string) bool {
	return name == ParamFinancingTermMonths || name == ParamMonthsToSell
}

// Get returns the value of a numeric parameter by name.
func (p SimulationParameters) Get(name string) (float64, error) {
	bind, ok := numericFields[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter: %s", name)
	}
	ref := bind(&p)
	if ref.i != nil {
		return float64(*ref.i), nil
	}
	return *ref.f, nil
}

// Set assigns a numeric parameter by name.
func (p *SimulationParameters) Set(name string, value float64) error {
	bind, ok := numericFields[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	ref := bind(p)
	if ref.i != nil {
		*ref.i = int(value)
		return nil
	}
	*ref.f = value
	return nil
}

// ViabilityResult is the full derived snapshot for one set of parameters.
type ViabilityResult struct {
	DownPaymentAmount        decimal.Decimal `json:"downPaymentAmount"`
	TransferTaxAmount        decimal.Decimal `json:"transferTaxAmount"`
	RegistryFeeAmount        decimal.Decimal `json:"registryFeeAmount"`
	AcquisitionCosts         decimal.Decimal `json:"acquisitionCosts"`
	FinancedAmount           decimal.Decimal `json:"financedAmount"`
	MonthlyAmortization      decimal.Decimal `json:"monthlyAmortization"`
	TotalInstallmentsPaid    decimal.Decimal `json:"totalInstallmentsPaid"`
	OutstandingBalanceAtSale decimal.Decimal `json:"outstandingBalanceAtSale"`
	CondoFeeTotal            decimal.Decimal `json:"condoFeeTotal"`
	PropertyTaxProrated      decimal.Decimal `json:"propertyTaxProrated"`
	GeneralExpensesTotal     decimal.Decimal `json:"generalExpensesTotal"`
	CostsUntilSale           decimal.Decimal `json:"costsUntilSale"`
	BrokerageAmount          decimal.Decimal `json:"brokerageAmount"`
	IncomeTaxBase            decimal.Decimal `json:"incomeTaxBase"`
	IncomeTaxAmount          decimal.Decimal `json:"incomeTaxAmount"`
	SellingCosts             decimal.Decimal `json:"sellingCosts"`
	TotalInvestment          decimal.Decimal `json:"totalInvestment"`
	NetProfit                decimal.Decimal `json:"netProfit"`
	ROI                      decimal.Decimal `json:"roi"`
}

// ROIPercent returns the ROI scaled to percentage points.
func (r ViabilityResult) ROIPercent() decimal.Decimal {
	return r.ROI.Mul(decimal.NewFromInt(100))
}

// IsProfitable reports whether the flip ends with a positive net profit.
func (r ViabilityResult) IsProfitable() bool {
	return r.NetProfit.IsPositive()
}

// ViabilityReport pairs a result with the business-rule warnings raised
// while validating its parameters.
type ViabilityReport struct {
	Facts      PropertyFacts        `json:"facts"`
	Parameters SimulationParameters `json:"parameters"`
	Result     ViabilityResult      `json:"result"`
	Warnings   []string             `json:"warnings,omitempty"`
}

// ScheduleEntry is one month of the amortization schedule up to the sale.
type ScheduleEntry struct {
	Month                  int             `json:"month"`
	OpeningBalance         decimal.Decimal `json:"openingBalance"`
	Interest               decimal.Decimal `json:"interest"`
	Amortization           decimal.Decimal `json:"amortization"`
	Installment            decimal.Decimal `json:"installment"`
	ClosingBalance         decimal.Decimal `json:"closingBalance"`
	CumulativeInstallments decimal.Decimal `json:"cumulativeInstallments"`
}
