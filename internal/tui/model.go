// Package tui is the interactive parameter form: pick a candidate, edit its
// parameters and watch the result update on every keystroke.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/tui/scenes"
	"github.com/rgehrsitz/flipcalc/internal/tui/tuimsg"
)

// Saver persists simulation parameters.
type Saver interface {
	UpdateSimulation(ctx context.Context, ac domain.AnalysisContext, id string, params domain.SimulationParameters) (*domain.Simulation, error)
}

// Options configures the program.
type Options struct {
	Engine *calculation.CalculationEngine
	// Load fetches the analysis, from a file or the backend.
	Load func(ctx context.Context) (*domain.Analysis, error)
	// Source is shown in the overview, e.g. the file path.
	Source string
	// Saver is optional; without it ctrl+s reports that nothing was saved.
	Saver       Saver
	SaveTimeout time.Duration
}

// Model represents the entire application state
type Model struct {
	currentScene Scene

	width  int
	height int

	opts     Options
	engine   *calculation.CalculationEngine
	analysis *domain.Analysis
	ac       domain.AnalysisContext

	// one-line feedback shown in the status bar
	status string

	homeModel       *scenes.HomeModel
	propertiesModel *scenes.PropertiesModel
	parametersModel *scenes.ParametersModel
	resultsModel    *scenes.ResultsModel
	scheduleModel   *scenes.ScheduleModel

	// parameters sent to the backend and not yet confirmed
	pendingSave *tuimsg.SaveParametersMsg

	err error

	loading        bool
	loadingMessage string
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	engine := opts.Engine
	if engine == nil {
		engine = calculation.NewCalculationEngine()
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 15 * time.Second
	}

	evaluate := func(facts domain.PropertyFacts, params domain.SimulationParameters) (*domain.ViabilityReport, error) {
		return engine.Evaluate(context.Background(), facts, params)
	}

	return Model{
		currentScene:    SceneHome,
		opts:            opts,
		engine:          engine,
		homeModel:       scenes.NewHomeModel(),
		propertiesModel: scenes.NewPropertiesModel(),
		parametersModel: scenes.NewParametersModel(evaluate),
		resultsModel:    scenes.NewResultsModel(),
		scheduleModel:   scenes.NewScheduleModel(),
		width:           80,
		height:          24,
		loading:         opts.Load != nil,
		loadingMessage:  "Loading analysis...",
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	if m.opts.Load == nil {
		return nil
	}
	return loadAnalysisCmd(m.opts.Load)
}

// loadAnalysisCmd returns a command that loads the analysis
func loadAnalysisCmd(load func(ctx context.Context) (*domain.Analysis, error)) tea.Cmd {
	return func() tea.Msg {
		analysis, err := load(context.Background())
		if err != nil {
			return tuimsg.ErrorMsg{Err: fmt.Errorf("load analysis: %w", err)}
		}
		return tuimsg.AnalysisLoadedMsg{Analysis: analysis}
	}
}

// saveParametersCmd persists params for the candidate's simulation.
func saveParametersCmd(saver Saver, ac domain.AnalysisContext, simulationID string, params domain.SimulationParameters, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		sim, err := saver.UpdateSimulation(ctx, ac.WithSimulation(simulationID), simulationID, params)
		if err != nil {
			return tuimsg.SaveCompleteMsg{SimulationID: simulationID, Err: err}
		}
		return tuimsg.SaveCompleteMsg{SimulationID: sim.ID}
	}
}

// errNotSavable explains why ctrl+s did nothing.
var errNotSavable = errors.New("parameters not saved")

// saveTarget checks that msg can be persisted and returns the simulation id.
func (m Model) saveTarget(msg tuimsg.SaveParametersMsg) (string, error) {
	if m.opts.Saver == nil {
		return "", fmt.Errorf("%w: no backend configured", errNotSavable)
	}
	if err := m.ac.Require(); err != nil {
		return "", fmt.Errorf("%w: %v", errNotSavable, err)
	}
	if m.analysis == nil || msg.CandidateIndex < 0 || msg.CandidateIndex >= len(m.analysis.Candidates) {
		return "", fmt.Errorf("%w: no property selected", errNotSavable)
	}
	p := m.analysis.Candidates[msg.CandidateIndex].Property
	if p.SimulationID == "" {
		return "", fmt.Errorf("%w: %s has no simulation", errNotSavable, p.DisplayName())
	}
	return p.SimulationID, nil
}
