package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/tui/tuimsg"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.homeModel.SetSize(msg.Width, msg.Height)
		m.propertiesModel.SetSize(msg.Width, msg.Height)
		m.parametersModel.SetSize(msg.Width, msg.Height)
		m.resultsModel.SetSize(msg.Width, msg.Height)
		m.scheduleModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case NavigateMsg:
		m.currentScene = msg.Scene
		return m, nil

	case tuimsg.ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case tuimsg.AnalysisLoadedMsg:
		m.loading = false
		m.analysis = msg.Analysis
		m.ac = domain.NewAnalysisContext(msg.Analysis.ID)
		m.homeModel.SetAnalysis(msg.Analysis, m.opts.Source)
		m.propertiesModel.SetCandidates(msg.Analysis.Candidates)
		return m, nil

	case tuimsg.CandidateSelectedMsg:
		if m.analysis == nil || msg.Index < 0 || msg.Index >= len(m.analysis.Candidates) {
			return m, nil
		}
		c := m.analysis.Candidates[msg.Index]
		params, suggested := m.engine.ResolveParameters(m.analysis, c)
		m.status = ""
		m.currentScene = SceneParameters
		return m, m.parametersModel.SetCandidate(msg.Index, c.Property, params, suggested)

	case tuimsg.ParametersChangedMsg:
		title := m.parametersModel.Property().DisplayName()
		m.resultsModel.SetReport(title, msg.Report)
		if err := m.scheduleModel.SetParameters(title, msg.Parameters); err != nil {
			m.status = "schedule unavailable: " + err.Error()
		}
		return m, nil

	case tuimsg.SaveParametersMsg:
		simulationID, err := m.saveTarget(msg)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		pending := msg
		m.pendingSave = &pending
		m.status = "Saving simulation " + simulationID + "..."
		return m, saveParametersCmd(m.opts.Saver, m.ac, simulationID, msg.Parameters, m.opts.SaveTimeout)

	case tuimsg.SaveCompleteMsg:
		if msg.Err != nil {
			m.status = "Save failed: " + msg.Err.Error()
			m.pendingSave = nil
			return m, nil
		}
		if p := m.pendingSave; p != nil && m.analysis != nil && p.CandidateIndex < len(m.analysis.Candidates) {
			c := &m.analysis.Candidates[p.CandidateIndex]
			c.Parameters = p.Parameters
			c.Explicit = allExplicit()
		}
		m.pendingSave = nil
		m.status = "Saved simulation " + msg.SimulationID
		return m, nil
	}

	return m.updateCurrentScene(msg)
}

// allExplicit marks every parameter as set, so saved prices are not
// re-derived when the candidate is opened again.
func allExplicit() map[string]bool {
	explicit := map[string]bool{}
	for _, name := range domain.ParameterNames() {
		explicit[name] = true
	}
	return explicit
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Any key dismisses an error
	if m.err != nil {
		m.err = nil
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	navigate := func(s Scene) (tea.Model, tea.Cmd) {
		if m.currentScene == s {
			return m, nil
		}
		return m, func() tea.Msg { return NavigateMsg{Scene: s} }
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		return navigate(SceneHelp)
	case "esc":
		if m.currentScene != SceneHome {
			return navigate(m.currentScene.parent())
		}
		return m, nil
	case "h":
		return navigate(SceneHome)
	case "l":
		return navigate(SceneProperties)
	case "p":
		return navigate(SceneParameters)
	case "r":
		return navigate(SceneResults)
	case "s":
		return navigate(SceneSchedule)
	}

	return m.updateCurrentScene(msg)
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneProperties:
		m.propertiesModel, cmd = m.propertiesModel.Update(msg)
	case SceneParameters:
		m.parametersModel, cmd = m.parametersModel.Update(msg)
	case SceneResults:
		m.resultsModel, cmd = m.resultsModel.Update(msg)
	case SceneSchedule:
		m.scheduleModel, cmd = m.scheduleModel.Update(msg)
	case SceneHome:
		m.homeModel, cmd = m.homeModel.Update(msg)
	}
	return m, cmd
}
