package output

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/rgehrsitz/flipcalc/internal/domain"
)

// PDFFormatter renders an A4 report with a summary table followed by one
// breakdown block per candidate.
type PDFFormatter struct{}

func (p PDFFormatter) Name() string { return "pdf" }

const (
	pdfPageWidth    = 210.0
	pdfMarginLeft   = 15.0
	pdfMarginRight  = 15.0
	pdfMarginTop    = 15.0
	pdfMarginBottom = 20.0
	pdfContentWidth = pdfPageWidth - pdfMarginLeft - pdfMarginRight
)

type pdfReport struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p PDFFormatter) Format(report *domain.AnalysisReport) ([]byte, error) {
	r := &pdfReport{pdf: fpdf.New("P", "mm", "A4", "")}
	r.tr = r.pdf.UnicodeTranslatorFromDescriptor("")

	r.pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	r.pdf.SetAutoPageBreak(true, pdfMarginBottom)
	r.pdf.SetTitle(r.tr("Flip Viability Report: "+report.AnalysisName), false)

	r.addSummaryPage(report)
	for i, pv := range report.Properties {
		r.addPropertyBlock(i+1, pv)
	}
	r.addAssumptions()

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *pdfReport) heading(text string, size float64) {
	r.pdf.SetFont("Arial", "B", size)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(pdfContentWidth, size/2+2, r.tr(text), "", 1, "L", false, 0, "")
	r.pdf.SetTextColor(50, 50, 50)
}

func (r *pdfReport) addSummaryPage(report *domain.AnalysisReport) {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 22)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(pdfContentWidth, 12, "Flip Viability Report", "", 1, "C", false, 0, "")
	r.pdf.SetFont("Arial", "", 13)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(pdfContentWidth, 8, r.tr(report.AnalysisName), "", 1, "C", false, 0, "")
	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.CellFormat(pdfContentWidth, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2 January 2006 15:04")), "", 1, "C", false, 0, "")
	r.pdf.Ln(6)

	if s := report.ReferenceStats; s != nil {
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.MultiCell(pdfContentWidth, 5, r.tr(fmt.Sprintf(
			"%d reference properties: mean %s/m², median %s/m², range %s to %s per m².",
			s.Count, FormatCurrency(s.Mean), FormatCurrency(s.Median), FormatCurrency(s.Min), FormatCurrency(s.Max))),
			"", "L", false)
		r.pdf.Ln(4)
	}

	if len(report.Properties) == 0 {
		r.pdf.SetFont("Arial", "I", 11)
		r.pdf.CellFormat(pdfContentWidth, 8, "No candidate properties.", "", 1, "L", false, 0, "")
		return
	}

	headers := []string{"Property", "Purchase", "Sale", "Months", "Investment", "Net Profit", "ROI"}
	widths := []float64{44, 24, 24, 14, 26, 26, 22}

	r.pdf.SetFont("Arial", "B", 9)
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetDrawColor(200, 200, 200)
	for i, h := range headers {
		r.pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont("Arial", "", 9)
	for i, pv := range report.Properties {
		if i%2 == 0 {
			r.pdf.SetFillColor(245, 247, 250)
		} else {
			r.pdf.SetFillColor(255, 255, 255)
		}
		r.pdf.SetTextColor(50, 50, 50)
		cells := []string{
			truncate(pv.Property.DisplayName(), 26),
			FormatCurrency(decimalOf(pv.Parameters.PurchasePrice)),
			FormatCurrency(decimalOf(pv.Parameters.SalePrice)),
			strconv.Itoa(pv.Parameters.MonthsToSell),
			FormatCurrency(pv.Result.TotalInvestment),
			FormatCurrency(pv.Result.NetProfit),
			FormatROI(pv.Result.ROI),
		}
		for j, c := range cells {
			align := "R"
			if j == 0 {
				align = "L"
			}
			if j == 5 && pv.Result.NetProfit.IsNegative() {
				r.pdf.SetTextColor(180, 30, 30)
			}
			r.pdf.CellFormat(widths[j], 6, r.tr(c), "1", 0, align, true, 0, "")
			r.pdf.SetTextColor(50, 50, 50)
		}
		r.pdf.Ln(-1)
	}

	if report.BestByROI != "" {
		r.pdf.Ln(4)
		r.pdf.SetFont("Arial", "B", 10)
		r.pdf.CellFormat(pdfContentWidth, 6, r.tr("Best by ROI: "+report.BestByROI), "", 1, "L", false, 0, "")
	}
}

func (r *pdfReport) addPropertyBlock(n int, pv domain.PropertyViability) {
	r.pdf.AddPage()
	r.heading(fmt.Sprintf("%d. %s", n, pv.Property.DisplayName()), 14)
	if pv.Property.Address != "" {
		r.pdf.SetFont("Arial", "I", 10)
		r.pdf.CellFormat(pdfContentWidth, 5, r.tr(pv.Property.Address), "", 1, "L", false, 0, "")
	}
	r.pdf.Ln(3)

	res := pv.Result
	sections := []struct {
		title string
		rows  [][2]string
	}{
		{"Acquisition", [][2]string{
			{"Purchase price", FormatCurrency(decimalOf(pv.Parameters.PurchasePrice))},
			{"Down payment", FormatCurrency(res.DownPaymentAmount)},
			{"Transfer tax", FormatCurrency(res.TransferTaxAmount)},
			{"Registry fee", FormatCurrency(res.RegistryFeeAmount)},
			{"Acquisition costs", FormatCurrency(res.AcquisitionCosts)},
		}},
		{"Financing", [][2]string{
			{"Financed amount", FormatCurrency(res.FinancedAmount)},
			{"Monthly amortization", FormatCurrency(res.MonthlyAmortization)},
			{"Installments paid", FormatCurrency(res.TotalInstallmentsPaid)},
			{"Balance at sale", FormatCurrency(res.OutstandingBalanceAtSale)},
		}},
		{"Holding", [][2]string{
			{"Months to sell", strconv.Itoa(pv.Parameters.MonthsToSell)},
			{"Condo fees", FormatCurrency(res.CondoFeeTotal)},
			{"Property tax", FormatCurrency(res.PropertyTaxProrated)},
			{"General expenses", FormatCurrency(res.GeneralExpensesTotal)},
			{"Costs until sale", FormatCurrency(res.CostsUntilSale)},
		}},
		{"Sale", [][2]string{
			{"Sale price", FormatCurrency(decimalOf(pv.Parameters.SalePrice))},
			{"Brokerage", FormatCurrency(res.BrokerageAmount)},
			{"Income tax", FormatCurrency(res.IncomeTaxAmount)},
			{"Selling costs", FormatCurrency(res.SellingCosts)},
		}},
		{"Result", [][2]string{
			{"Total investment", FormatCurrency(res.TotalInvestment)},
			{"Net profit", FormatCurrency(res.NetProfit)},
			{"ROI", FormatROI(res.ROI)},
		}},
	}

	for _, s := range sections {
		r.pdf.SetFont("Arial", "B", 11)
		r.pdf.SetFillColor(245, 247, 250)
		r.pdf.SetTextColor(0, 51, 102)
		r.pdf.CellFormat(pdfContentWidth, 7, s.title, "1", 1, "L", true, 0, "")
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.SetTextColor(50, 50, 50)
		for _, row := range s.rows {
			r.pdf.CellFormat(pdfContentWidth/2, 6, row[0], "L", 0, "L", false, 0, "")
			r.pdf.CellFormat(pdfContentWidth/2, 6, r.tr(row[1]), "R", 1, "R", false, 0, "")
		}
		r.pdf.CellFormat(pdfContentWidth, 1, "", "T", 1, "C", false, 0, "")
		r.pdf.Ln(2)
	}

	if pv.SuggestedSalePrice != nil {
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.CellFormat(pdfContentWidth, 6, "Suggested sale price: "+FormatCurrency(*pv.SuggestedSalePrice), "", 1, "L", false, 0, "")
	}
	if !pv.PricePerSqM.IsZero() {
		r.pdf.CellFormat(pdfContentWidth, 6, r.tr("Purchase price per m²: "+FormatCurrency(pv.PricePerSqM.Round(2))), "", 1, "L", false, 0, "")
	}
	if len(pv.Warnings) > 0 {
		r.pdf.Ln(2)
		r.pdf.SetFont("Arial", "I", 9)
		r.pdf.SetTextColor(150, 80, 0)
		for _, w := range pv.Warnings {
			r.pdf.MultiCell(pdfContentWidth, 5, r.tr("Warning: "+w), "", "L", false)
		}
		r.pdf.SetTextColor(50, 50, 50)
	}
}

func (r *pdfReport) addAssumptions() {
	r.pdf.Ln(8)
	r.heading("Assumptions", 12)
	r.pdf.SetFont("Arial", "", 9)
	for _, a := range DefaultAssumptions {
		r.pdf.MultiCell(pdfContentWidth, 4.5, r.tr("- "+a), "", "L", false)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
