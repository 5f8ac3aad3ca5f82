package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rgehrsitz/flipcalc/internal/backend"
	"github.com/rgehrsitz/flipcalc/internal/breakeven"
	"github.com/rgehrsitz/flipcalc/internal/compare"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleAnalysis = "../../testdata/example_analysis.yaml"

// writeSettings writes a settings file that keeps tests quiet and
// independent of the user's own configuration.
func writeSettings(t *testing.T, backendURL string) string {
	t.Helper()
	content := "logging:\n  level: error\ncache:\n  type: none\n"
	if backendURL != "" {
		content += "backend:\n  url: " + backendURL + "\n"
	}
	path := filepath.Join(t.TempDir(), "flipcalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the command line against a fresh command tree.
func run(t *testing.T, settings string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if settings != "" {
		args = append([]string{"--config", settings}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()

	assert.Equal(t, "flipcalc", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-format"))
}

func TestCommandSubcommands(t *testing.T) {
	expected := []string{
		"calculate", "validate", "viability", "schedule", "compare",
		"break-even", "sensitivity", "serve", "analysis", "templates", "version",
	}

	registered := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "Expected command %q to be registered", name)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, err := run(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands")
	assert.Contains(t, out, "break-even")
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, err := run(t, "", "nonexistent")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "flipcalc dev")
}

func TestTemplatesCommand(t *testing.T) {
	out, err := run(t, "", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "sell_fast_3m")
	assert.Contains(t, out, "delay_sale")
	assert.Contains(t, out, "renovation_overrun")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, writeSettings(t, ""), "--log-level", "verbose", "validate", exampleAnalysis)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestCalculateCommand_Console(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "calculate", exampleAnalysis)
	require.NoError(t, err)
	assert.Contains(t, out, "Apt 101")
	assert.Contains(t, out, "Apt 202")
	assert.Contains(t, out, "Best by ROI")
}

func TestCalculateCommand_JSON(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "calculate", exampleAnalysis, "--format", "json")
	require.NoError(t, err)

	var report domain.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Properties, 2)

	first := report.Properties[0]
	assert.Equal(t, "apt-101", first.Property.ID)
	assert.Equal(t, 720000.0, first.Parameters.PurchasePrice, "Purchase price should default to the asking price")
	assert.Equal(t, "32696.39", first.Result.NetProfit.StringFixed(2))
	require.NotNil(t, report.ReferenceStats)
	assert.Equal(t, 3, report.ReferenceStats.Count)
}

func TestCalculateCommand_OutputDir(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, writeSettings(t, ""), "calculate", exampleAnalysis, "--format", "csv", "--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	files, err := filepath.Glob(filepath.Join(dir, "vila_mariana_flips_*.csv"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestCalculateCommand_Errors(t *testing.T) {
	settings := writeSettings(t, "")

	_, err := run(t, settings, "calculate", exampleAnalysis, "--format", "docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")

	_, err = run(t, settings, "calculate", "missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")

	_, err = run(t, settings, "calculate")
	assert.Error(t, err, "Should require an analysis file")
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "validate", exampleAnalysis)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (2 candidates, 3 references)")
}

func TestValidateCommand_MonthsCap(t *testing.T) {
	data, err := os.ReadFile(exampleAnalysis)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(path, bytes.Replace(data, []byte("months_to_sell: 6"), []byte("months_to_sell: 5000"), 1), 0o644))

	_, err = run(t, writeSettings(t, ""), "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot exceed 1200")
}

func TestViabilityCommand(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "viability",
		"--purchase-price", "720000", "--sale-price", "936000",
		"--area", "68", "--condo-fee", "500", "--yearly-tax", "1200", "--renovation", "50000")
	require.NoError(t, err)
	assert.Contains(t, out, "FLIP VIABILITY")
	assert.Contains(t, out, "$32696.39")
	assert.Contains(t, out, "$41151.43")
}

func TestViabilityCommand_JSON(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "viability", "--format", "json",
		"--purchase-price", "720000", "--sale-price", "936000",
		"--area", "68", "--condo-fee", "500", "--yearly-tax", "1200", "--renovation", "50000",
		"--income-tax=false")
	require.NoError(t, err)

	var report domain.ViabilityReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "40917.14", report.Result.NetProfit.StringFixed(2))
	assert.True(t, report.Result.IncomeTaxAmount.IsZero())
}

func TestViabilityCommand_Errors(t *testing.T) {
	settings := writeSettings(t, "")

	_, err := run(t, settings, "viability", "--sale-price", "936000")
	require.Error(t, err, "Purchase price is required")

	_, err = run(t, settings, "viability", "--purchase-price", "720000", "--sale-price", "936000", "--term", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "financing_term_months")
}

func TestScheduleCommand(t *testing.T) {
	settings := writeSettings(t, "")

	out, err := run(t, settings, "schedule", exampleAnalysis, "--candidate", "apt-101")
	require.NoError(t, err)
	assert.Contains(t, out, "LOAN SCHEDULE: Apt 101")
	assert.Contains(t, out, "$41151.43")
	assert.Contains(t, out, "Balance at sale: $567771.43")

	out, err = run(t, settings, "schedule", exampleAnalysis, "--candidate", "apt-101", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 7, "Header plus one row per month")
	assert.True(t, strings.HasPrefix(lines[0], "Month,"))
}

func TestScheduleCommand_CandidateRequired(t *testing.T) {
	_, err := run(t, writeSettings(t, ""), "schedule", exampleAnalysis)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--candidate is required")

	_, err = run(t, writeSettings(t, ""), "schedule", exampleAnalysis, "--candidate", "apt-999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidate apt-999 not found")
}

func TestCompareCommand_Templates(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "compare", exampleAnalysis,
		"--candidate", "apt-101", "--templates", "sell_fast_3m,delay_sale_6m", "--format", "json")
	require.NoError(t, err)

	var set compare.ComparisonSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.NotNil(t, set.BaseResult)
	assert.Equal(t, "Apt 101", set.BaseScenarioName)
	require.Len(t, set.AlternativeResults, 2)
	assert.True(t, set.AlternativeResults[1].NetProfitDiffFromBase.IsNegative(), "A later sale costs more")
}

func TestCompareCommand_CustomTransforms(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "compare", exampleAnalysis,
		"--candidate", "apt-101", "--with", "cash_purchase", "--with", "adjust_sale_price:pct=-5", "--format", "json")
	require.NoError(t, err)

	var set compare.ComparisonSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.Len(t, set.AlternativeResults, 1)
	alt := set.AlternativeResults[0]
	assert.Equal(t, 100.0, alt.Parameters.DownPaymentPct)
	assert.Equal(t, 889200.0, alt.Parameters.SalePrice)
}

func TestCompareCommand_Candidates(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "compare", exampleAnalysis, "--candidate", "apt-101", "--candidates")
	require.NoError(t, err)
	assert.Contains(t, out, "Apt 202")
}

func TestCompareCommand_Errors(t *testing.T) {
	settings := writeSettings(t, "")

	_, err := run(t, settings, "compare", exampleAnalysis, "--candidate", "apt-101")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to compare")

	_, err = run(t, settings, "compare", exampleAnalysis, "--candidate", "apt-101", "--templates", "no_such_template")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template no_such_template not found")

	_, err = run(t, settings, "compare", exampleAnalysis, "--candidate", "apt-101", "--with", "delay_sale")
	require.Error(t, err)
}

func TestBreakEvenCommand_SingleTarget(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "break-even", exampleAnalysis,
		"--candidate", "apt-101", "--target", "sale_price", "--format", "json")
	require.NoError(t, err)

	var result breakeven.SolveResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Equal(t, breakeven.TargetSalePrice, result.Request.Target)
	assert.True(t, result.OptimalValue.LessThan(decimal.NewFromInt(936000)),
		"Break-even sale price %s should be below the plan", result.OptimalValue)
}

func TestBreakEvenCommand_TargetROI(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "break-even", exampleAnalysis,
		"--candidate", "apt-101", "--target", "sale_price", "--roi", "0.2", "--format", "json")
	require.NoError(t, err)

	var result breakeven.SolveResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, breakeven.GoalTargetROI, result.Request.Goal)
	assert.Equal(t, "0.2", result.ThresholdROI.String())
	assert.True(t, result.OptimalValue.GreaterThan(decimal.NewFromInt(936000)))
}

func TestBreakEvenCommand_All(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "break-even", exampleAnalysis, "--candidate", "apt-101")
	require.NoError(t, err)
	assert.Contains(t, out, "Candidate: Apt 101")
	assert.Contains(t, out, "BREAK-EVEN SAFETY MARGINS")
}

func TestBreakEvenCommand_Errors(t *testing.T) {
	settings := writeSettings(t, "")

	_, err := run(t, settings, "break-even", exampleAnalysis, "--candidate", "apt-101", "--target", "renovation_cost")
	require.Error(t, err)

	_, err = run(t, settings, "break-even", exampleAnalysis, "--candidate", "apt-101", "--goal", "target_roi")
	require.Error(t, err, "target_roi needs --roi")
}

func TestSensitivityCommand(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "sensitivity", exampleAnalysis,
		"--candidate", "apt-101", "--parameter", "months_to_sell:3-12:4")
	require.NoError(t, err)
	assert.Contains(t, out, "SENSITIVITY ANALYSIS: MONTHS TO SELL")
	assert.Contains(t, out, "ROI RANGE")
}

func TestSensitivityCommand_Multiple(t *testing.T) {
	out, err := run(t, writeSettings(t, ""), "sensitivity", exampleAnalysis,
		"--candidate", "apt-101",
		"--parameter", "sale_price:850000-1000000",
		"--parameter", "annual_financing_rate_pct:9-14:6",
		"--steps", "3", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "sale_price")
	assert.Contains(t, out, "annual_financing_rate_pct")
}

func TestSensitivityCommand_Errors(t *testing.T) {
	settings := writeSettings(t, "")

	_, err := run(t, settings, "sensitivity", exampleAnalysis, "--candidate", "apt-101")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--parameter is required")

	_, err = run(t, settings, "sensitivity", exampleAnalysis, "--candidate", "apt-101", "--parameter", "views:1-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parameter")
}

func TestParseSweep(t *testing.T) {
	tests := []struct {
		spec    string
		want    sweep
		wantErr bool
	}{
		{"sale_price:850000-1000000:7", sweep{name: "sale_price", min: 850000, max: 1000000, steps: 7}, false},
		{"months_to_sell:3-24", sweep{name: "months_to_sell", min: 3, max: 24, steps: 5}, false},
		{"renovation_cost:-5000-5000:3", sweep{name: "renovation_cost", min: -5000, max: 5000, steps: 3}, false},
		{"sale_price", sweep{}, true},
		{"sale_price:900000", sweep{}, true},
		{"sale_price:a-b", sweep{}, true},
		{"sale_price:1-2:x", sweep{}, true},
		{"unknown:1-2", sweep{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := parseSweep(tt.spec, 5)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// fakeBackend serves the subset of the backend API the analysis commands use.
type fakeBackend struct {
	mu      sync.Mutex
	updated map[string]domain.SimulationParameters
	header  http.Header
}

func (f *fakeBackend) handler() http.Handler {
	params := domain.SimulationParameters{
		DownPaymentPct: 20, TransferTaxPct: 3, RegistryFeePct: 1.5, RenovationCost: 50000,
		AnnualFinancingRatePct: 11.5, FinancingTermMonths: 420, MonthsToSell: 6,
		BrokerageFeePct: 6, IncomeTaxApplies: true,
	}
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	r := chi.NewRouter()
	r.Get("/analyses", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []backend.AnalysisInfo{{ID: "an-1", Name: "Centro"}})
	})
	r.Get("/analyses/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "an-1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
			return
		}
		writeJSON(w, http.StatusOK, domain.Analysis{ID: "an-1", Name: "Centro", Defaults: params})
	})
	r.Get("/analyses/{id}/properties", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("kind") == string(domain.KindReference) {
			writeJSON(w, http.StatusOK, []domain.Property{{ID: "ref-1", Kind: domain.KindReference, Area: 70, Price: 945000}})
			return
		}
		writeJSON(w, http.StatusOK, []domain.Property{
			{ID: "apt-101", Kind: domain.KindCandidate, Title: "Apt 101", Area: 68, Price: 720000, CondoFeeMonthly: 500, YearlyTax: 1200},
		})
	})
	r.Put("/simulations/{id}", func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			Parameters domain.SimulationParameters `json:"parameters"`
		}
		_ = json.NewDecoder(req.Body).Decode(&in)
		id := chi.URLParam(req, "id")

		f.mu.Lock()
		f.updated[id] = in.Parameters
		f.header = req.Header.Clone()
		f.mu.Unlock()

		writeJSON(w, http.StatusOK, domain.Simulation{ID: id, Parameters: in.Parameters})
	})
	return r
}

func newFakeBackendServer(t *testing.T) (*fakeBackend, string) {
	t.Helper()
	fb := &fakeBackend{updated: map[string]domain.SimulationParameters{}}
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)
	return fb, srv.URL
}

func TestAnalysisCommands(t *testing.T) {
	fb, url := newFakeBackendServer(t)
	settings := writeSettings(t, url)

	out, err := run(t, settings, "analysis", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "an-1")
	assert.Contains(t, out, "Centro")

	_, err = run(t, settings, "analysis", "show")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoActiveAnalysis)

	out, err = run(t, settings, "analysis", "use", "an-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Active analysis: Centro")

	saved, err := os.ReadFile(settings)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "active_analysis: an-1")
	assert.Contains(t, string(saved), "level: error", "Existing settings should be preserved")

	out, err = run(t, settings, "analysis", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* an-1")

	out, err = run(t, settings, "analysis", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Apt 101")

	out, err = run(t, settings, "analysis", "push-params", exampleAnalysis, "--candidate", "apt-101", "--analysis", "an-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved parameters for Apt 101 to simulation sim-101")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.Contains(t, fb.updated, "sim-101")
	assert.Equal(t, 936000.0, fb.updated["sim-101"].SalePrice)
	assert.Equal(t, 720000.0, fb.updated["sim-101"].PurchasePrice)
	assert.Equal(t, "an-1", fb.header.Get(backend.AnalysisHeader))
}

func TestAnalysisCommands_Errors(t *testing.T) {
	_, url := newFakeBackendServer(t)

	_, err := run(t, writeSettings(t, ""), "analysis", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoBackend)

	_, err = run(t, writeSettings(t, url), "analysis", "use", "an-404")
	require.Error(t, err)
	assert.True(t, backend.IsNotFound(err))

	_, err = run(t, writeSettings(t, url), "analysis", "push-params", exampleAnalysis, "--candidate", "apt-202")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no simulation_id")
}
