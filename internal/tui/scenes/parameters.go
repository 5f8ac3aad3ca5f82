package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/tui/components"
	"github.com/rgehrsitz/flipcalc/internal/tui/tuimsg"
	"github.com/rgehrsitz/flipcalc/internal/tui/tuistyles"
)

// Evaluator computes a report for one set of inputs.
type Evaluator func(facts domain.PropertyFacts, params domain.SimulationParameters) (*domain.ViabilityReport, error)

type fieldSpec struct {
	name  string
	label string
	step  float64
	unit  string
	desc  string
}

// formFields lists the editable parameters in display order.
var formFields = []fieldSpec{
	{domain.ParamPurchasePrice, "Purchase price", 5000, "", "Price paid for the property"},
	{domain.ParamSalePrice, "Sale price", 5000, "", "Expected resale price"},
	{domain.ParamDownPaymentPct, "Down payment", 1, "%", "Share of the purchase price paid upfront"},
	{domain.ParamTransferTaxPct, "Transfer tax", 0.5, "%", "Property transfer tax on the purchase price"},
	{domain.ParamRegistryFeePct, "Registry fee", 0.1, "%", "Deed registration on the purchase price"},
	{domain.ParamBankAppraisalFee, "Bank appraisal fee", 100, "", "Flat fee charged by the lender"},
	{domain.ParamRenovationCost, "Renovation", 5000, "", "Total renovation budget"},
	{domain.ParamMonthlyGeneralExpenses, "General expenses", 100, "/month", "Utilities and upkeep while holding"},
	{domain.ParamAnnualFinancingRatePct, "Financing rate", 0.25, "% a.a.", "Nominal annual rate, compounded monthly"},
	{domain.ParamFinancingTermMonths, "Financing term", 12, " months", "Constant-amortization term"},
	{domain.ParamMonthsToSell, "Months to sell", 1, " months", "Holding period until the sale"},
	{domain.ParamBrokerageFeePct, "Brokerage fee", 0.5, "%", "Commission on the sale price"},
}

var (
	keyPrevField = key.NewBinding(key.WithKeys("up", "shift+tab"), key.WithHelp("↑", "prev"))
	keyNextField = key.NewBinding(key.WithKeys("down", "tab"), key.WithHelp("↓", "next"))
	keyNudgeDown = key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "step down"))
	keyNudgeUp   = key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "step up"))
	keyToggleTax = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "income tax"))
	keyReset     = key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo all"))
	keySave      = key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save"))
	keyEditing   = key.NewBinding(key.WithKeys("backspace", "delete"))
)

// ParametersModel is the parameter form. Every edit re-parses the form and
// recomputes the result synchronously.
type ParametersModel struct {
	evaluate Evaluator

	candidateIndex int
	property       domain.Property
	original       domain.SimulationParameters
	params         domain.SimulationParameters
	suggested      *decimal.Decimal

	fields    []*components.ParameterField
	focused   int
	incomeTax bool

	report   *domain.ViabilityReport
	inputErr error
	modified bool

	width  int
	height int
}

// NewParametersModel creates a form that evaluates through evaluate.
func NewParametersModel(evaluate Evaluator) *ParametersModel {
	return &ParametersModel{evaluate: evaluate, candidateIndex: -1}
}

// SetCandidate loads a property and its resolved parameters into the form.
func (m *ParametersModel) SetCandidate(index int, property domain.Property, params domain.SimulationParameters, suggested *decimal.Decimal) tea.Cmd {
	m.candidateIndex = index
	m.property = property
	m.original = params
	m.suggested = suggested
	m.modified = false
	m.load(params)
	return m.recompute()
}

func (m *ParametersModel) load(params domain.SimulationParameters) {
	m.params = params
	m.incomeTax = params.IncomeTaxApplies
	m.fields = make([]*components.ParameterField, len(formFields))
	for i, spec := range formFields {
		v, _ := params.Get(spec.name)
		f := components.NewParameterField(spec.name, spec.label, v, spec.step).
			WithUnit(spec.unit).
			WithDescription(spec.desc)
		if domain.IsIntegerParameter(spec.name) {
			f.WithInteger()
		}
		m.fields[i] = f
	}
	m.focused = 0
	m.fields[0].Focus()
}

// SetSize updates the scene dimensions
func (m *ParametersModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// CandidateIndex is the candidate being edited, or -1.
func (m *ParametersModel) CandidateIndex() int { return m.candidateIndex }

// Property is the property being edited.
func (m *ParametersModel) Property() domain.Property { return m.property }

// Parameters returns the last parameters that evaluated cleanly.
func (m *ParametersModel) Parameters() domain.SimulationParameters { return m.params }

// Report returns the last successful evaluation.
func (m *ParametersModel) Report() *domain.ViabilityReport { return m.report }

// SuggestedSalePrice is the reference-based suggestion, if any.
func (m *ParametersModel) SuggestedSalePrice() *decimal.Decimal { return m.suggested }

// InputError describes why the form does not currently evaluate.
func (m *ParametersModel) InputError() error { return m.inputErr }

// Modified reports whether the parameters differ from those loaded.
func (m *ParametersModel) Modified() bool { return m.modified }

// Update handles messages for the parameters scene
func (m *ParametersModel) Update(msg tea.Msg) (*ParametersModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.fields) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keyPrevField):
		m.focus(m.focused - 1)
		return m, nil

	case key.Matches(keyMsg, keyNextField):
		m.focus(m.focused + 1)
		return m, nil

	case key.Matches(keyMsg, keyNudgeDown):
		if m.fields[m.focused].Nudge(-1) {
			return m, m.recompute()
		}
		return m, nil

	case key.Matches(keyMsg, keyNudgeUp):
		if m.fields[m.focused].Nudge(1) {
			return m, m.recompute()
		}
		return m, nil

	case key.Matches(keyMsg, keyToggleTax):
		m.incomeTax = !m.incomeTax
		return m, m.recompute()

	case key.Matches(keyMsg, keyReset):
		m.load(m.original)
		return m, m.recompute()

	case key.Matches(keyMsg, keySave):
		return m, m.save()

	case key.Matches(keyMsg, keyEditing), isNumericInput(keyMsg):
		cmd := m.fields[m.focused].Update(keyMsg)
		return m, tea.Batch(cmd, m.recompute())
	}

	return m, nil
}

func isNumericInput(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return false
	}
	for _, r := range msg.Runes {
		if !strings.ContainsRune("0123456789.-", r) {
			return false
		}
	}
	return true
}

func (m *ParametersModel) focus(i int) {
	if i < 0 || i >= len(m.fields) {
		return
	}
	m.fields[m.focused].Blur()
	m.focused = i
	m.fields[i].Focus()
}

// recompute parses every field and evaluates. The last good report stays
// visible while the input does not parse or evaluate.
func (m *ParametersModel) recompute() tea.Cmd {
	params := m.params
	for _, f := range m.fields {
		v, err := f.Value()
		if err != nil {
			m.inputErr = fmt.Errorf("%s: %w", f.Label, err)
			return nil
		}
		if err := params.Set(f.Name, v); err != nil {
			m.inputErr = err
			return nil
		}
	}
	params.IncomeTaxApplies = m.incomeTax

	if m.evaluate == nil {
		return nil
	}
	report, err := m.evaluate(m.property.Facts(), params)
	if err != nil {
		m.inputErr = err
		return nil
	}

	m.inputErr = nil
	m.params = params
	m.report = report
	m.modified = params != m.original

	return func() tea.Msg {
		return tuimsg.ParametersChangedMsg{Parameters: params, Report: report}
	}
}

func (m *ParametersModel) save() tea.Cmd {
	if m.report == nil || m.inputErr != nil {
		return nil
	}
	index, params := m.candidateIndex, m.params
	return func() tea.Msg {
		return tuimsg.SaveParametersMsg{CandidateIndex: index, Parameters: params}
	}
}

// View renders the form beside a live summary
func (m *ParametersModel) View() string {
	if m.candidateIndex < 0 {
		return `No property selected.

Pick a property from the list (press 'l') and press Enter.

Press ESC to return to home.`
	}

	header := tuistyles.TitleStyle.Render("Edit Parameters: " + m.property.DisplayName())

	rendered := make([]string, 0, len(m.fields)+2)
	for _, f := range m.fields {
		rendered = append(rendered, f.Render())
	}
	check := "[ ]"
	if m.incomeTax {
		check = "[x]"
	}
	rendered = append(rendered, "", "  "+tuistyles.ParameterLabelStyle.Render("Income tax applies")+check)

	form := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(60).
		Render(strings.Join(rendered, "\n"))

	body := lipgloss.JoinHorizontal(lipgloss.Top, form, "  ", m.renderSummary())

	status := ""
	switch {
	case m.inputErr != nil:
		status = tuistyles.ErrorStyle.Render("⚠ " + m.inputErr.Error() + " (showing last valid result)")
	case m.modified:
		status = tuistyles.WarningStyle.Render("Modified - ctrl+s saves to the backend, u undoes all changes")
	}

	help := helpLine(keyPrevField, keyNextField, keyNudgeDown, keyNudgeUp, keyToggleTax, keyReset, keySave)

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", status, help)
}

func (m *ParametersModel) renderSummary() string {
	if m.report == nil {
		return tuistyles.InfoStyle.Render("No result yet")
	}
	r := m.report.Result

	cards := []*components.MetricCard{
		components.NewAmountCard("Net profit", r.NetProfit, true),
		components.NewMetricCard("ROI", tuistyles.FormatROI(r.ROI)).WithValueStyle(tuistyles.SignedStyle(r.ROI)),
		components.NewAmountCard("Total investment", r.TotalInvestment, false),
		components.NewAmountCard("Balance at sale", r.OutstandingBalanceAtSale, false),
	}
	if m.suggested != nil {
		cards = append(cards, components.NewAmountCard("Suggested sale", *m.suggested, false).
			WithDescription("from reference prices"))
	}

	out := components.MetricGrid(cards, 1)
	for _, w := range m.report.Warnings {
		out += "\n" + tuistyles.WarningStyle.Render("⚠ "+w)
	}
	return out
}
