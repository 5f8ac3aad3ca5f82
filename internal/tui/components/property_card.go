package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/tui/tuistyles"
)

// PropertyCard displays a compact property overview
type PropertyCard struct {
	Title      string
	Address    string
	Highlights []string
	IsSelected bool
	Width      int
}

// NewPropertyCard creates a card for p with its area and asking price
// highlighted.
func NewPropertyCard(p domain.Property) *PropertyCard {
	card := &PropertyCard{
		Title:   p.DisplayName(),
		Address: p.Address,
		Width:   44,
	}
	card.AddHighlight(fmt.Sprintf("%.2f m²", p.Area))
	card.AddHighlight("asking " + tuistyles.FormatCurrency(decimalOf(p.Price)))
	if p.SimulationID != "" {
		card.AddHighlight("simulation " + p.SimulationID)
	}
	return card
}

// AddHighlight adds a key figure
func (c *PropertyCard) AddHighlight(highlight string) *PropertyCard {
	c.Highlights = append(c.Highlights, highlight)
	return c
}

// SetSelected marks the card as selected
func (c *PropertyCard) SetSelected(selected bool) *PropertyCard {
	c.IsSelected = selected
	return c
}

// WithWidth sets the card width
func (c *PropertyCard) WithWidth(width int) *PropertyCard {
	c.Width = width
	return c
}

// Render returns the styled card
func (c *PropertyCard) Render() string {
	var content strings.Builder

	content.WriteString(tuistyles.TitleStyle.Render(c.Title))
	content.WriteString("\n")

	if c.Address != "" {
		content.WriteString(tuistyles.SubtitleStyle.Italic(true).Render(c.Address))
		content.WriteString("\n")
	}

	for _, h := range c.Highlights {
		content.WriteString(tuistyles.SubtitleStyle.Render("• " + h))
		content.WriteString("\n")
	}

	border := tuistyles.ColorBorder
	if c.IsSelected {
		border = tuistyles.ColorPrimary
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(c.Width).
		Render(strings.TrimRight(content.String(), "\n"))
}

// RenderCompact returns a single-line version
func (c *PropertyCard) RenderCompact() string {
	parts := []string{lipgloss.NewStyle().Bold(true).Render(c.Title)}
	if len(c.Highlights) > 0 {
		parts = append(parts, tuistyles.SubtitleStyle.Render(strings.Join(c.Highlights[:min(2, len(c.Highlights))], " • ")))
	}
	return strings.Join(parts, "  ")
}

// PropertyListCompact renders a selection list
func PropertyListCompact(cards []*PropertyCard, selectedIndex int) string {
	if len(cards) == 0 {
		return tuistyles.InfoStyle.Render("No properties available")
	}

	rendered := make([]string, len(cards))
	for i, card := range cards {
		prefix := "  "
		style := tuistyles.UnselectedItemStyle

		if i == selectedIndex {
			prefix = "▸ "
			style = tuistyles.SelectedItemStyle
		}

		rendered[i] = style.Render(prefix + card.RenderCompact())
	}

	return strings.Join(rendered, "\n")
}
