package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoActiveAnalysis is returned when an operation needs an analysis
// context and none was provided.
var ErrNoActiveAnalysis = errors.New("no active analysis selected")

// Candidate is a candidate property together with its simulation inputs.
type Candidate struct {
	Property   Property             `yaml:"property" json:"property"`
	Parameters SimulationParameters `yaml:"-" json:"parameters"`
	// Explicit records which parameters were set by the input rather than
	// inherited from defaults.
	Explicit map[string]bool `yaml:"-" json:"-"`
}

// HasExplicit reports whether the named parameter was set for this candidate.
func (c Candidate) HasExplicit(name string) bool {
	return c.Explicit != nil && c.Explicit[name]
}

// Analysis is a named collection of candidate and reference properties plus
// the default calculation parameters.
type Analysis struct {
	ID          string               `yaml:"id,omitempty" json:"id,omitempty"`
	Name        string               `yaml:"name" json:"name"`
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`
	Defaults    SimulationParameters `yaml:"defaults" json:"defaults"`
	Candidates  []Candidate          `yaml:"-" json:"candidates"`
	References  []Property           `yaml:"references" json:"references"`
}

// FindCandidate returns the index of the candidate with the given property ID.
func (a *Analysis) FindCandidate(id string) (int, bool) {
	for i := range a.Candidates {
		if a.Candidates[i].Property.ID == id {
			return i, true
		}
	}
	return -1, false
}

// AnalysisContext names the analysis (and optionally the simulation) the
// caller is working on. It is passed explicitly through every layer.
type AnalysisContext struct {
	AnalysisID   string `json:"analysisId"`
	SimulationID string `json:"simulationId,omitempty"`
}

// NewAnalysisContext builds a context for the given analysis.
func NewAnalysisContext(analysisID string) AnalysisContext {
	return AnalysisContext{AnalysisID: analysisID}
}

// WithSimulation returns a copy scoped to one simulation.
func (ac AnalysisContext) WithSimulation(simulationID string) AnalysisContext {
	ac.SimulationID = simulationID
	return ac
}

// Require fails with ErrNoActiveAnalysis when no analysis is selected.
func (ac AnalysisContext) Require() error {
	if ac.AnalysisID == "" {
		return ErrNoActiveAnalysis
	}
	return nil
}

// PropertyViability is one evaluated candidate of an analysis report.
type PropertyViability struct {
	Property           Property             `json:"property"`
	Parameters         SimulationParameters `json:"parameters"`
	Result             ViabilityResult      `json:"result"`
	Warnings           []string             `json:"warnings,omitempty"`
	PricePerSqM        decimal.Decimal      `json:"pricePerSqM"`
	SuggestedSalePrice *decimal.Decimal     `json:"suggestedSalePrice,omitempty"`
}

// AnalysisReport is the evaluated state of a whole analysis.
type AnalysisReport struct {
	AnalysisID     string              `json:"analysisId,omitempty"`
	AnalysisName   string              `json:"analysisName"`
	GeneratedAt    time.Time           `json:"generatedAt"`
	Properties     []PropertyViability `json:"properties"`
	ReferenceStats *PriceStats         `json:"referenceStats,omitempty"`
	BestByROI      string              `json:"bestByRoi,omitempty"`
}

// Best returns the evaluated candidate with the highest ROI, or nil.
func (r *AnalysisReport) Best() *PropertyViability {
	var best *PropertyViability
	for i := range r.Properties {
		if best == nil || r.Properties[i].Result.ROI.GreaterThan(best.Result.ROI) {
			best = &r.Properties[i]
		}
	}
	return best
}

// SensitivityPoint is one evaluated value of a parameter sweep.
type SensitivityPoint struct {
	Value           float64         `json:"value"`
	ROI             decimal.Decimal `json:"roi"`
	NetProfit       decimal.Decimal `json:"netProfit"`
	TotalInvestment decimal.Decimal `json:"totalInvestment"`
	IncomeTaxAmount decimal.Decimal `json:"incomeTaxAmount"`
}

// SensitivityAnalysis is the result of sweeping one parameter.
type SensitivityAnalysis struct {
	Parameter string             `json:"parameter"`
	BaseValue float64            `json:"baseValue"`
	BaseROI   decimal.Decimal    `json:"baseRoi"`
	Points    []SensitivityPoint `json:"points"`
}

// ROIRange returns the lowest and highest ROI observed in the sweep.
func (s *SensitivityAnalysis) ROIRange() (decimal.Decimal, decimal.Decimal) {
	if len(s.Points) == 0 {
		return decimal.Zero, decimal.Zero
	}
	lo, hi := s.Points[0].ROI, s.Points[0].ROI
	for _, p := range s.Points[1:] {
		lo = decimal.Min(lo, p.ROI)
		hi = decimal.Max(hi, p.ROI)
	}
	return lo, hi
}
