// Package tuimsg defines the messages scenes send to the root model.
package tuimsg

import (
	"github.com/rgehrsitz/flipcalc/internal/domain"
)

// AnalysisLoadedMsg signals the analysis has been loaded
type AnalysisLoadedMsg struct {
	Analysis *domain.Analysis
}

// CandidateSelectedMsg signals a candidate has been picked for editing
type CandidateSelectedMsg struct {
	Index int
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// ParametersChangedMsg carries a fresh evaluation after an edit
type ParametersChangedMsg struct {
	Parameters domain.SimulationParameters
	Report     *domain.ViabilityReport
}

// SaveParametersMsg asks the root model to persist parameters
type SaveParametersMsg struct {
	CandidateIndex int
	Parameters     domain.SimulationParameters
}

// SaveCompleteMsg signals a save has finished
type SaveCompleteMsg struct {
	SimulationID string
	Err          error
}
