package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/tui/components"
	"github.com/rgehrsitz/flipcalc/internal/tui/tuimsg"
	"github.com/rgehrsitz/flipcalc/internal/tui/tuistyles"
)

var (
	keyUp     = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	keyDown   = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	keySelect = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit"))
	keyTop    = key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "top"))
	keyBottom = key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom"))
)

// PropertiesModel lists the candidates of an analysis
type PropertiesModel struct {
	candidates    []domain.Candidate
	selectedIndex int
	cards         []*components.PropertyCard
	width         int
	height        int
}

// NewPropertiesModel creates a new properties scene model
func NewPropertiesModel() *PropertiesModel {
	return &PropertiesModel{}
}

// SetCandidates updates the list
func (m *PropertiesModel) SetCandidates(candidates []domain.Candidate) {
	m.candidates = candidates
	m.cards = make([]*components.PropertyCard, len(candidates))
	for i, c := range candidates {
		m.cards[i] = components.NewPropertyCard(c.Property)
	}

	if m.selectedIndex >= len(m.candidates) {
		m.selectedIndex = 0
	}
}

// SetSize updates the scene dimensions
func (m *PropertiesModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SelectedIndex returns the highlighted candidate
func (m *PropertiesModel) SelectedIndex() int {
	return m.selectedIndex
}

// Update handles messages for the properties scene
func (m *PropertiesModel) Update(msg tea.Msg) (*PropertiesModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.candidates) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keyUp):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case key.Matches(keyMsg, keyDown):
		if m.selectedIndex < len(m.candidates)-1 {
			m.selectedIndex++
		}
	case key.Matches(keyMsg, keyTop):
		m.selectedIndex = 0
	case key.Matches(keyMsg, keyBottom):
		m.selectedIndex = len(m.candidates) - 1
	case key.Matches(keyMsg, keySelect):
		index := m.selectedIndex
		return m, func() tea.Msg { return tuimsg.CandidateSelectedMsg{Index: index} }
	}

	return m, nil
}

// View renders the list on the left and the highlighted card on the right
func (m *PropertiesModel) View() string {
	if len(m.candidates) == 0 {
		return `No properties available.

The analysis has no candidates.

Press ESC to return to home.`
	}

	for i, card := range m.cards {
		card.SetSelected(i == m.selectedIndex)
	}

	list := lipgloss.NewStyle().
		Width(48).
		Render(components.PropertyListCompact(m.cards, m.selectedIndex))
	details := renderCandidateDetails(m.candidates[m.selectedIndex], m.cards[m.selectedIndex])

	content := lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", details)
	return content + "\n\n" + helpLine(keyUp, keyDown, keySelect, keyTop, keyBottom)
}

func renderCandidateDetails(c domain.Candidate, card *components.PropertyCard) string {
	var b strings.Builder
	b.WriteString(card.Render())
	b.WriteString("\n")

	p := c.Property
	label := tuistyles.MetricLabelStyle
	if p.Neighborhood != "" {
		b.WriteString(label.Render("Neighborhood: ") + p.Neighborhood + "\n")
	}
	b.WriteString(label.Render("Condo fee: ") + tuistyles.FormatCurrency(decimalOf(p.CondoFeeMonthly)) + "/month\n")
	b.WriteString(label.Render("Property tax: ") + tuistyles.FormatCurrency(decimalOf(p.YearlyTax)) + "/year\n")
	if p.Bedrooms > 0 || p.ParkingSpots > 0 {
		b.WriteString(label.Render("Layout: ") + fmt.Sprintf("%d bedrooms, %d parking", p.Bedrooms, p.ParkingSpots) + "\n")
	}
	if len(c.Explicit) > 0 {
		b.WriteString(label.Render("Set in file: ") + fmt.Sprintf("%d parameters", len(c.Explicit)) + "\n")
	}
	return b.String()
}

// helpLine renders key bindings the way bubbles/help does in short mode.
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, tuistyles.HelpKeyStyle.Render(h.Key)+" "+tuistyles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, tuistyles.HelpDescStyle.Render(" • "))
}
