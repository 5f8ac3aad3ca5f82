// Package tuistyles holds the lipgloss palette shared by the TUI scenes and
// components. It lives apart from package tui to avoid import cycles.
package tuistyles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/flipcalc/internal/output"
)

// Colors
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#1F4E79", Dark: "#7AB8F5"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#5B5B5B", Dark: "#B0B0B0"}
	ColorAccent    = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#F5C542"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#1E7B34", Dark: "#5FD068"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#B22222", Dark: "#FF6B6B"}
	ColorInfo      = lipgloss.AdaptiveColor{Light: "#006D77", Dark: "#83C5BE"}

	ColorForeground = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#E6E6E6"}
	ColorMuted      = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	ColorBorder     = lipgloss.AdaptiveColor{Light: "#C8C8C8", Dark: "#444444"}
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(ColorBorder)

	StatusKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	SelectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorAccent)

	UnselectedItemStyle = lipgloss.NewStyle().
				Foreground(ColorForeground)

	MetricLabelStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	MetricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorForeground)

	MetricPositiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorSuccess)

	MetricNegativeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorDanger)

	ParameterLabelStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Width(28)

	ParameterValueStyle = lipgloss.NewStyle().
				Foreground(ColorForeground)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Italic(true)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(ColorBorder)

	TableHighlightStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)
)

// SignedStyle colors a value green when positive and red when negative.
func SignedStyle(d decimal.Decimal) lipgloss.Style {
	switch {
	case d.IsNegative():
		return MetricNegativeStyle
	case d.IsPositive():
		return MetricPositiveStyle
	default:
		return MetricValueStyle
	}
}

// TrendIndicator returns an arrow for the sign of d.
func TrendIndicator(d decimal.Decimal) string {
	switch {
	case d.IsNegative():
		return "↓"
	case d.IsPositive():
		return "↑"
	default:
		return "→"
	}
}

// FormatCurrency formats an amount the way the reports do.
func FormatCurrency(d decimal.Decimal) string {
	return output.FormatCurrency(d)
}

// FormatROI formats an ROI fraction as a percentage.
func FormatROI(roi decimal.Decimal) string {
	return output.FormatROI(roi)
}
