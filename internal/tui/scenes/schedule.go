package scenes

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/tui/components"
	"github.com/rgehrsitz/flipcalc/internal/tui/tuistyles"
)

var scheduleColumns = []table.Column{
	{Title: "Month", Width: 6},
	{Title: "Opening", Width: 14},
	{Title: "Interest", Width: 12},
	{Title: "Amortization", Width: 13},
	{Title: "Installment", Width: 13},
	{Title: "Closing", Width: 14},
	{Title: "Paid so far", Width: 14},
}

// ScheduleModel shows the month-by-month loan schedule until the sale
type ScheduleModel struct {
	title   string
	entries []domain.ScheduleEntry
	table   table.Model
	width   int
	height  int
}

// NewScheduleModel creates a new schedule scene model
func NewScheduleModel() *ScheduleModel {
	t := table.New(
		table.WithColumns(scheduleColumns),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithWidth(100),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(tuistyles.ColorBorder).
		BorderBottom(true).
		Foreground(tuistyles.ColorPrimary).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(tuistyles.ColorAccent).
		Bold(true)
	t.SetStyles(s)

	return &ScheduleModel{table: t}
}

// SetParameters rebuilds the schedule for params.
func (m *ScheduleModel) SetParameters(title string, params domain.SimulationParameters) error {
	entries, err := calculation.AmortizationSchedule(params)
	if err != nil {
		return err
	}

	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{
			strconv.Itoa(e.Month),
			e.OpeningBalance.StringFixed(2),
			e.Interest.StringFixed(2),
			e.Amortization.StringFixed(2),
			e.Installment.StringFixed(2),
			e.ClosingBalance.StringFixed(2),
			e.CumulativeInstallments.StringFixed(2),
		}
	}

	m.title = title
	m.entries = entries
	m.table.SetRows(rows)
	m.table.GotoTop()
	return nil
}

// Entries returns the schedule shown.
func (m *ScheduleModel) Entries() []domain.ScheduleEntry {
	return m.entries
}

// SetSize updates the scene dimensions
func (m *ScheduleModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(5, min(16, height-18)))
}

// Update scrolls the table
func (m *ScheduleModel) Update(msg tea.Msg) (*ScheduleModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table above a balance chart
func (m *ScheduleModel) View() string {
	if m.title == "" {
		return `No schedule yet.

Select a property (press 'l') to evaluate it.

Press ESC to return to home.`
	}

	header := tuistyles.TitleStyle.Render("Loan Schedule: " + m.title)
	if len(m.entries) == 0 {
		return header + "\n\n" + tuistyles.InfoStyle.Render("The property is sold before the first installment.")
	}

	closing := make([]float64, len(m.entries))
	paid := make([]float64, len(m.entries))
	for i, e := range m.entries {
		closing[i] = e.ClosingBalance.InexactFloat64()
		paid[i] = e.CumulativeInstallments.InexactFloat64()
	}
	chart := components.NewLineChart("").
		AddSeries("balance", closing, tuistyles.ColorPrimary).
		AddSeries("installments paid", paid, tuistyles.ColorAccent).
		WithSize(max(40, min(90, m.width-4)), 8)

	summary := tuistyles.SubtitleStyle.Render(fmt.Sprintf("%d installments • row %d", len(m.entries), m.table.Cursor()+1))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.table.View(),
		summary,
		"",
		chart.Render(),
	)
}
