package output

// DefaultAssumptions lists the fixed rules of the viability model rendered in
// detailed outputs.
var DefaultAssumptions = []string{
	"Loan repaid with constant amortization: principal / term each month, interest on the opening balance",
	"75% of the installments paid before the sale are deducted from the taxable gain",
	"Income tax on the gain: 15%, never negative",
	"Yearly property tax prorated by month held",
	"ROI reported as 0 when the total investment is zero",
}
