package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/flipcalc/internal/tui/tuistyles"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderApp(tuistyles.BorderStyle.Render("⠋ " + m.loadingMessage))
	}

	if m.err != nil {
		return m.renderApp(tuistyles.ErrorStyle.Render(
			fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err.Error())))
	}

	var content string
	switch m.currentScene {
	case SceneHome:
		content = m.homeModel.View()
	case SceneProperties:
		content = m.propertiesModel.View()
	case SceneParameters:
		content = m.parametersModel.View()
	case SceneResults:
		content = m.resultsModel.View()
	case SceneSchedule:
		content = m.scheduleModel.View()
	case SceneHelp:
		content = renderHelp()
	default:
		content = "Unknown scene"
	}

	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	contentHeight := max(m.height-4, 1)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		lipgloss.NewStyle().Height(contentHeight).Render(content),
		m.renderStatusBar(),
	)
}

// renderTitleBar renders the application title and breadcrumb
func (m Model) renderTitleBar() string {
	title := tuistyles.TitleStyle.Render("flipcalc - Property Flip Viability")

	crumb := m.currentScene.String()
	if m.analysis != nil {
		crumb = m.analysis.Name + " / " + crumb
		if i := m.parametersModel.CandidateIndex(); i >= 0 && m.currentScene >= SceneParameters && m.currentScene != SceneHelp {
			crumb += " / " + m.parametersModel.Property().DisplayName()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, tuistyles.SubtitleStyle.Render(crumb))
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("h", "home"),
		formatShortcut("l", "properties"),
		formatShortcut("p", "parameters"),
		formatShortcut("r", "results"),
		formatShortcut("s", "schedule"),
		formatShortcut("?", "help"),
		formatShortcut("q", "quit"),
	}
	statusText := strings.Join(shortcuts, " • ")

	if m.status != "" {
		note := tuistyles.InfoStyle.Render(m.status)
		gap := max(0, m.width-lipgloss.Width(statusText)-lipgloss.Width(note)-2)
		statusText += strings.Repeat(" ", gap) + note
	}

	return tuistyles.StatusBarStyle.Width(m.width).Render(statusText)
}

// formatShortcut formats a keyboard shortcut with key and description
func formatShortcut(key, desc string) string {
	return tuistyles.StatusKeyStyle.Render(key) + " " + desc
}

func renderHelp() string {
	return tuistyles.BorderStyle.Render(`flipcalc - Property Flip Viability

NAVIGATION:
  h        Analysis overview
  l        Property list
  p        Parameter form
  r        Full results
  s        Loan schedule
  ?        Show this help
  ESC      Go back
  q/Ctrl+C Quit

PROPERTY LIST:
  ↑/↓ j/k  Move
  Enter    Edit the property's parameters

PARAMETER FORM:
  ↑/↓ Tab  Move between fields
  0-9 . -  Edit the focused value; results update as you type
  ←/→      Step the focused value down or up
  t        Toggle income tax
  u        Undo all changes
  Ctrl+S   Save the parameters to the backend`)
}
