package scenes

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/tui/components"
	"github.com/rgehrsitz/flipcalc/internal/tui/tuistyles"
)

// ResultsModel shows every figure of the current evaluation
type ResultsModel struct {
	title  string
	report *domain.ViabilityReport
	width  int
	height int
}

// NewResultsModel creates a new results scene model
func NewResultsModel() *ResultsModel {
	return &ResultsModel{}
}

// SetReport updates the results to display
func (m *ResultsModel) SetReport(title string, report *domain.ViabilityReport) {
	m.title = title
	m.report = report
}

// SetSize updates the scene dimensions
func (m *ResultsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the results scene
func (m *ResultsModel) Update(msg tea.Msg) (*ResultsModel, tea.Cmd) {
	return m, nil
}

// View renders the results grouped by stage
func (m *ResultsModel) View() string {
	if m.report == nil {
		return `No results yet.

Select a property (press 'l') to evaluate it.

Press ESC to return to home.`
	}

	r := m.report.Result
	sections := []struct {
		title string
		cards []*components.MetricCard
	}{
		{"Acquisition", []*components.MetricCard{
			components.NewAmountCard("Down payment", r.DownPaymentAmount, false),
			components.NewAmountCard("Transfer tax", r.TransferTaxAmount, false),
			components.NewAmountCard("Registry fee", r.RegistryFeeAmount, false),
			components.NewAmountCard("Acquisition costs", r.AcquisitionCosts, false),
		}},
		{"Financing", []*components.MetricCard{
			components.NewAmountCard("Financed amount", r.FinancedAmount, false),
			components.NewAmountCard("Monthly amortization", r.MonthlyAmortization, false),
			components.NewAmountCard("Installments paid", r.TotalInstallmentsPaid, false),
			components.NewAmountCard("Balance at sale", r.OutstandingBalanceAtSale, false),
		}},
		{"Holding", []*components.MetricCard{
			components.NewAmountCard("Condo fees", r.CondoFeeTotal, false),
			components.NewAmountCard("Property tax", r.PropertyTaxProrated, false),
			components.NewAmountCard("General expenses", r.GeneralExpensesTotal, false),
			components.NewAmountCard("Costs until sale", r.CostsUntilSale, false),
		}},
		{"Sale", []*components.MetricCard{
			components.NewAmountCard("Brokerage", r.BrokerageAmount, false),
			components.NewAmountCard("Income tax base", r.IncomeTaxBase, true),
			components.NewAmountCard("Income tax", r.IncomeTaxAmount, false),
			components.NewAmountCard("Selling costs", r.SellingCosts, false),
		}},
		{"Result", []*components.MetricCard{
			components.NewAmountCard("Total investment", r.TotalInvestment, false),
			components.NewAmountCard("Net profit", r.NetProfit, true),
			components.NewMetricCard("ROI", tuistyles.FormatROI(r.ROI)).WithValueStyle(tuistyles.SignedStyle(r.ROI)),
		}},
	}

	columns := 4
	if m.width > 0 && m.width < 110 {
		columns = 2
	}

	parts := []string{tuistyles.TitleStyle.Render("Results: " + m.title)}
	section := lipgloss.NewStyle().Bold(true).Foreground(tuistyles.ColorSecondary)
	for _, s := range sections {
		parts = append(parts, "", section.Render(s.title), components.MetricGrid(s.cards, columns))
	}

	if len(m.report.Warnings) > 0 {
		warnings := make([]string, len(m.report.Warnings))
		for i, w := range m.report.Warnings {
			warnings[i] = tuistyles.WarningStyle.Render("⚠ " + w)
		}
		parts = append(parts, "", strings.Join(warnings, "\n"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
