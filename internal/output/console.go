package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/domain"
)

// ConsoleFormatter renders a plain-text report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *domain.AnalysisReport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 80))
	fmt.Fprintf(&buf, "FLIP VIABILITY ANALYSIS: %s\n", report.AnalysisName)
	fmt.Fprintln(&buf, strings.Repeat("=", 80))
	fmt.Fprintf(&buf, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04"))
	if s := report.ReferenceStats; s != nil {
		fmt.Fprintf(&buf, "References: %d (mean %s/m², median %s/m², range %s to %s)\n",
			s.Count, FormatCurrency(s.Mean), FormatCurrency(s.Median), FormatCurrency(s.Min), FormatCurrency(s.Max))
	}
	fmt.Fprintln(&buf)

	if len(report.Properties) == 0 {
		fmt.Fprintln(&buf, "No candidate properties.")
		return buf.Bytes(), nil
	}

	for i, pv := range report.Properties {
		WriteViability(&buf, fmt.Sprintf("%d. %s", i+1, pv.Property.DisplayName()), pv.Parameters, pv.Result, pv.Warnings)
		if pv.SuggestedSalePrice != nil {
			fmt.Fprintf(&buf, "  Suggested sale price:   %s\n", FormatCurrency(*pv.SuggestedSalePrice))
		}
		if !pv.PricePerSqM.IsZero() {
			fmt.Fprintf(&buf, "  Purchase price per m²:  %s\n", FormatCurrency(pv.PricePerSqM))
		}
		fmt.Fprintln(&buf)
	}

	if report.BestByROI != "" {
		fmt.Fprintf(&buf, "Best by ROI: %s\n", report.BestByROI)
	}

	return buf.Bytes(), nil
}

// WriteViability writes the breakdown of one result.
func WriteViability(buf *bytes.Buffer, title string, params domain.SimulationParameters, r domain.ViabilityResult, warnings []string) {
	fmt.Fprintln(buf, title)
	fmt.Fprintln(buf, strings.Repeat("-", 50))
	fmt.Fprintf(buf, "  Purchase price:         %s\n", FormatCurrency(decimalOf(params.PurchasePrice)))
	fmt.Fprintf(buf, "  Sale price:             %s\n", FormatCurrency(decimalOf(params.SalePrice)))
	fmt.Fprintf(buf, "  Months to sell:         %d of %d\n", params.MonthsToSell, params.FinancingTermMonths)
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "  ACQUISITION")
	fmt.Fprintf(buf, "    Down payment:         %s\n", FormatCurrency(r.DownPaymentAmount))
	fmt.Fprintf(buf, "    Transfer tax:         %s\n", FormatCurrency(r.TransferTaxAmount))
	fmt.Fprintf(buf, "    Registry fee:         %s\n", FormatCurrency(r.RegistryFeeAmount))
	fmt.Fprintf(buf, "    Acquisition costs:    %s\n", FormatCurrency(r.AcquisitionCosts))
	fmt.Fprintln(buf, "  FINANCING")
	fmt.Fprintf(buf, "    Financed amount:      %s\n", FormatCurrency(r.FinancedAmount))
	fmt.Fprintf(buf, "    Monthly amortization: %s\n", FormatCurrency(r.MonthlyAmortization))
	fmt.Fprintf(buf, "    Installments paid:    %s\n", FormatCurrency(r.TotalInstallmentsPaid))
	fmt.Fprintf(buf, "    Balance at sale:      %s\n", FormatCurrency(r.OutstandingBalanceAtSale))
	fmt.Fprintln(buf, "  HOLDING")
	fmt.Fprintf(buf, "    Condo fees:           %s\n", FormatCurrency(r.CondoFeeTotal))
	fmt.Fprintf(buf, "    Property tax:         %s\n", FormatCurrency(r.PropertyTaxProrated))
	fmt.Fprintf(buf, "    General expenses:     %s\n", FormatCurrency(r.GeneralExpensesTotal))
	fmt.Fprintf(buf, "    Costs until sale:     %s\n", FormatCurrency(r.CostsUntilSale))
	fmt.Fprintln(buf, "  SALE")
	fmt.Fprintf(buf, "    Brokerage:            %s\n", FormatCurrency(r.BrokerageAmount))
	fmt.Fprintf(buf, "    Income tax base:      %s\n", FormatCurrency(r.IncomeTaxBase))
	fmt.Fprintf(buf, "    Income tax:           %s\n", FormatCurrency(r.IncomeTaxAmount))
	fmt.Fprintf(buf, "    Selling costs:        %s\n", FormatCurrency(r.SellingCosts))
	fmt.Fprintln(buf, "  RESULT")
	fmt.Fprintf(buf, "    Total investment:     %s\n", FormatCurrency(r.TotalInvestment))
	fmt.Fprintf(buf, "    Net profit:           %s\n", FormatCurrency(r.NetProfit))
	fmt.Fprintf(buf, "    ROI:                  %s\n", FormatROI(r.ROI))
	for _, w := range warnings {
		fmt.Fprintf(buf, "  ⚠ %s\n", w)
	}
}
