package scenes

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/tui/tuistyles"
)

// HomeModel is the analysis overview scene
type HomeModel struct {
	analysis *domain.Analysis
	source   string
	stats    *domain.PriceStats
	width    int
	height   int
}

// NewHomeModel creates a new home scene model
func NewHomeModel() *HomeModel {
	return &HomeModel{}
}

// SetAnalysis updates the analysis shown. source describes where it was
// loaded from.
func (m *HomeModel) SetAnalysis(analysis *domain.Analysis, source string) {
	m.analysis = analysis
	m.source = source
	m.stats = nil
	if analysis != nil && len(analysis.References) > 0 {
		if stats, err := calculation.ReferencePriceStats(analysis.References); err == nil {
			m.stats = &stats
		}
	}
}

// SetSize updates the model dimensions
func (m *HomeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the home scene
func (m *HomeModel) Update(msg tea.Msg) (*HomeModel, tea.Cmd) {
	return m, nil
}

// View renders the overview
func (m *HomeModel) View() string {
	var content strings.Builder

	content.WriteString(tuistyles.TitleStyle.MarginBottom(1).Render("flipcalc - Property Flip Viability"))
	content.WriteString("\n\n")

	if m.analysis == nil {
		content.WriteString(tuistyles.SubtitleStyle.Render("Loading analysis..."))
		return tuistyles.BorderStyle.Render(content.String())
	}

	label := tuistyles.MetricLabelStyle
	value := lipgloss.NewStyle().Foreground(tuistyles.ColorForeground)
	row := func(l, v string) {
		content.WriteString(label.Render(fmt.Sprintf("  %-22s", l)))
		content.WriteString(value.Render(v))
		content.WriteString("\n")
	}

	section := lipgloss.NewStyle().Bold(true).Foreground(tuistyles.ColorSecondary)
	content.WriteString(section.Render("Analysis"))
	content.WriteString("\n")
	row("Name", m.analysis.Name)
	if m.analysis.Description != "" {
		row("Description", m.analysis.Description)
	}
	if m.source != "" {
		row("Source", m.source)
	}
	row("Candidates", fmt.Sprintf("%d", len(m.analysis.Candidates)))
	row("References", fmt.Sprintf("%d", len(m.analysis.References)))

	if m.stats != nil {
		content.WriteString("\n")
		content.WriteString(section.Render("Reference price per m²"))
		content.WriteString("\n")
		row("Mean", tuistyles.FormatCurrency(m.stats.Mean))
		row("Median", tuistyles.FormatCurrency(m.stats.Median))
		row("Range", tuistyles.FormatCurrency(m.stats.Min)+" - "+tuistyles.FormatCurrency(m.stats.Max))
	}

	content.WriteString("\n")
	content.WriteString(tuistyles.HelpDescStyle.Render("Press l to pick a property, ? for help."))

	return tuistyles.BorderStyle.Render(content.String())
}
