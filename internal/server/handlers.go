package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rgehrsitz/flipcalc/internal/backend"
	"github.com/rgehrsitz/flipcalc/internal/breakeven"
	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/output"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type viabilityRequest struct {
	Facts      domain.PropertyFacts        `json:"facts"`
	Parameters domain.SimulationParameters `json:"parameters"`
}

type breakEvenRequest struct {
	Facts       domain.PropertyFacts        `json:"facts"`
	Parameters  domain.SimulationParameters `json:"parameters"`
	Target      breakeven.SolveTarget       `json:"target"`
	Goal        breakeven.SolveGoal         `json:"goal"`
	TargetROI   *decimal.Decimal            `json:"targetRoi,omitempty"`
	Constraints breakeven.Constraints       `json:"constraints"`
}

type sensitivityRequest struct {
	Facts      domain.PropertyFacts        `json:"facts"`
	Parameters domain.SimulationParameters `json:"parameters"`
	Parameter  string                      `json:"parameter"`
	Min        float64                     `json:"min"`
	Max        float64                     `json:"max"`
	Steps      int                         `json:"steps"`
}

type parametersRequest struct {
	Parameters domain.SimulationParameters `json:"parameters"`
}

var errBackendUnavailable = errors.New("no backend configured")

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleViability(w http.ResponseWriter, r *http.Request) {
	const op = "server.viability"
	var req viabilityRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, op, err)
		return
	}

	report, err := s.engine.Evaluate(r.Context(), req.Facts, req.Parameters)
	if err != nil {
		s.respondError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.schedule"
	var req viabilityRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, op, err)
		return
	}

	if _, err := calculation.ValidateParameters(req.Parameters, s.engine.Limits); err != nil {
		s.respondError(w, r, op, err)
		return
	}
	entries, err := calculation.AmortizationSchedule(req.Parameters)
	if err != nil {
		s.respondError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleBreakEven(w http.ResponseWriter, r *http.Request) {
	const op = "server.breakeven"
	var req breakEvenRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, op, err)
		return
	}

	if req.Goal == "" {
		req.Goal = breakeven.GoalBreakEven
	}
	if req.TargetROI != nil {
		req.Constraints.TargetROI = req.TargetROI
	}

	if req.Target == "" || req.Target == breakeven.TargetAll {
		result, err := s.solver.SolveAll(r.Context(), req.Facts, req.Parameters, req.Constraints, req.Goal)
		if err != nil {
			s.respondError(w, r, op, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	result, err := s.solver.Solve(r.Context(), breakeven.SolveRequest{
		Facts:       req.Facts,
		Base:        req.Parameters,
		Target:      req.Target,
		Goal:        req.Goal,
		Constraints: req.Constraints,
	})
	if err != nil {
		s.respondError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	const op = "server.sensitivity"
	var req sensitivityRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, op, err)
		return
	}
	if req.Steps == 0 {
		req.Steps = 11
	}

	analysis, err := s.engine.RunSensitivity(r.Context(), req.Facts, req.Parameters, req.Parameter, req.Min, req.Max, req.Steps)
	if err != nil {
		if r.Context().Err() == nil && !errors.Is(err, calculation.ErrInvalidParameter) {
			err = badRequest{msg: err.Error()}
		}
		s.respondError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleAnalysisReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.analysisReport"
	report, err := s.runAnalysis(r)
	if err != nil {
		s.respondError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalysisCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.analysisCSV"
	report, err := s.runAnalysis(r)
	if err != nil {
		s.respondError(w, r, op, err)
		return
	}

	data, err := output.SpreadsheetCSV{}.Format(report)
	if err != nil {
		s.respondError(w, r, op, err)
		return
	}

	name := output.Slugify(report.AnalysisName)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleUpdateParameters(w http.ResponseWriter, r *http.Request) {
	const op = "server.updateParameters"
	if s.backend == nil {
		s.respondError(w, r, op, errBackendUnavailable)
		return
	}

	ac := domain.NewAnalysisContext(r.Header.Get(backend.AnalysisHeader))
	if err := ac.Require(); err != nil {
		s.respondError(w, r, op, badRequest{msg: fmt.Sprintf("missing %s header", backend.AnalysisHeader)})
		return
	}

	var req parametersRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, op, err)
		return
	}
	if _, err := calculation.ValidateParameters(req.Parameters, s.engine.Limits); err != nil {
		s.respondError(w, r, op, err)
		return
	}

	sim, err := s.backend.UpdateSimulation(r.Context(), ac, chi.URLParam(r, "simulationID"), req.Parameters)
	if err != nil {
		s.respondError(w, r, op, err)
		return
	}
	LoggerFrom(r.Context(), s.logger).Info("simulation parameters saved",
		zap.String("op", op), zap.String("simulation_id", sim.ID))
	writeJSON(w, http.StatusOK, sim)
}

func (s *Server) runAnalysis(r *http.Request) (*domain.AnalysisReport, error) {
	if s.backend == nil {
		return nil, errBackendUnavailable
	}
	ac := domain.NewAnalysisContext(chi.URLParam(r, "analysisID"))
	analysis, err := s.backend.LoadAnalysis(r.Context(), ac)
	if err != nil {
		return nil, err
	}
	return s.engine.RunAnalysis(r.Context(), analysis)
}

// decode reads a JSON body no larger than the configured limit. Unknown
// fields are rejected so that misspelled parameters surface.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return badRequest{msg: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)}
		case errors.Is(err, io.EOF):
			return badRequest{msg: "request body is empty"}
		default:
			return badRequest{msg: "invalid JSON: " + err.Error()}
		}
	}
	return nil
}
