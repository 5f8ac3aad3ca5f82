package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rgehrsitz/flipcalc/internal/domain"
)

var strictPolicy = bluemonday.StrictPolicy()

// SpreadsheetCSV exports one row per candidate with every result field.
type SpreadsheetCSV struct{}

func (c SpreadsheetCSV) Name() string { return "csv" }

var spreadsheetHeader = []string{
	"Property", "Address", "Area", "Asking Price", "Purchase Price", "Sale Price", "Months To Sell",
	"Down Payment", "Transfer Tax", "Registry Fee", "Acquisition Costs",
	"Financed Amount", "Monthly Amortization", "Installments Paid", "Balance At Sale",
	"Condo Fees", "Property Tax", "General Expenses", "Costs Until Sale",
	"Brokerage", "Income Tax Base", "Income Tax", "Selling Costs",
	"Total Investment", "Net Profit", "ROI %", "Price Per m2", "Suggested Sale Price", "Warnings",
}

func (c SpreadsheetCSV) Format(report *domain.AnalysisReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(spreadsheetHeader); err != nil {
		return nil, err
	}

	for _, pv := range report.Properties {
		r := pv.Result
		suggested := ""
		if pv.SuggestedSalePrice != nil {
			suggested = pv.SuggestedSalePrice.StringFixed(2)
		}
		row := []string{
			SanitizeCell(pv.Property.DisplayName()),
			SanitizeCell(pv.Property.Address),
			formatFloat(pv.Property.Area),
			formatFloat(pv.Property.Price),
			formatFloat(pv.Parameters.PurchasePrice),
			formatFloat(pv.Parameters.SalePrice),
			strconv.Itoa(pv.Parameters.MonthsToSell),
			r.DownPaymentAmount.StringFixed(2),
			r.TransferTaxAmount.StringFixed(2),
			r.RegistryFeeAmount.StringFixed(2),
			r.AcquisitionCosts.StringFixed(2),
			r.FinancedAmount.StringFixed(2),
			r.MonthlyAmortization.StringFixed(2),
			r.TotalInstallmentsPaid.StringFixed(2),
			r.OutstandingBalanceAtSale.StringFixed(2),
			r.CondoFeeTotal.StringFixed(2),
			r.PropertyTaxProrated.StringFixed(2),
			r.GeneralExpensesTotal.StringFixed(2),
			r.CostsUntilSale.StringFixed(2),
			r.BrokerageAmount.StringFixed(2),
			r.IncomeTaxBase.StringFixed(2),
			r.IncomeTaxAmount.StringFixed(2),
			r.SellingCosts.StringFixed(2),
			r.TotalInvestment.StringFixed(2),
			r.NetProfit.StringFixed(2),
			r.ROIPercent().StringFixed(2),
			pv.PricePerSqM.StringFixed(2),
			suggested,
			SanitizeCell(strings.Join(pv.Warnings, "; ")),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ScheduleCSV exports an amortization schedule.
func ScheduleCSV(entries []domain.ScheduleEntry) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Month", "Opening Balance", "Interest", "Amortization", "Installment", "Closing Balance", "Cumulative Installments"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, e := range entries {
		row := []string{
			strconv.Itoa(e.Month),
			e.OpeningBalance.StringFixed(2),
			e.Interest.StringFixed(2),
			e.Amortization.StringFixed(2),
			e.Installment.StringFixed(2),
			e.ClosingBalance.StringFixed(2),
			e.CumulativeInstallments.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// SanitizeCell strips markup from free text and neutralizes spreadsheet
// formulas by prefixing a single quote.
func SanitizeCell(s string) string {
	s = strictPolicy.Sanitize(s)
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	switch trimmed[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
