package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/flipcalc/internal/tui/tuistyles"
)

// MetricCard displays a single result figure with a label
type MetricCard struct {
	Label       string
	Value       string
	Description string
	Width       int

	style lipgloss.Style
}

// NewMetricCard creates a card with a neutral value
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{
		Label: label,
		Value: value,
		Width: 26,
		style: tuistyles.MetricValueStyle,
	}
}

// NewAmountCard creates a card for an amount, colored by sign when signed
// is set.
func NewAmountCard(label string, amount decimal.Decimal, signed bool) *MetricCard {
	card := NewMetricCard(label, tuistyles.FormatCurrency(amount))
	if signed {
		card.style = tuistyles.SignedStyle(amount)
		card.Value = tuistyles.TrendIndicator(amount) + " " + card.Value
	}
	return card
}

// WithDescription adds a description/subtitle
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

// WithValueStyle overrides the value style
func (m *MetricCard) WithValueStyle(style lipgloss.Style) *MetricCard {
	m.style = style
	return m
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	content := tuistyles.MetricLabelStyle.Render(m.Label) + "\n" + m.style.Render(m.Value)
	if m.Description != "" {
		content += "\n" + tuistyles.SubtitleStyle.Render(m.Description)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(m.Width).
		Render(content)
}

// RenderCompact returns an inline "label: value" version without border
func (m *MetricCard) RenderCompact() string {
	return tuistyles.MetricLabelStyle.Render(m.Label+":") + " " + m.style.Render(m.Value)
}

// MetricGrid renders cards in rows of the given width
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}

	rows := []string{}
	currentRow := []string{}

	for i, card := range cards {
		currentRow = append(currentRow, card.Render())

		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, currentRow...))
			currentRow = []string{}
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
