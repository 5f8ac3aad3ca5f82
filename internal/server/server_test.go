package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rgehrsitz/flipcalc/internal/backend"
	"github.com/rgehrsitz/flipcalc/internal/breakeven"
	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/config"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testParams() domain.SimulationParameters {
	return domain.SimulationParameters{
		PurchasePrice:          720000,
		SalePrice:              936000,
		DownPaymentPct:         20,
		TransferTaxPct:         3,
		RegistryFeePct:         1.5,
		RenovationCost:         50000,
		AnnualFinancingRatePct: 11.5,
		FinancingTermMonths:    420,
		MonthsToSell:           6,
		BrokerageFeePct:        6,
		IncomeTaxApplies:       true,
	}
}

func testFacts() domain.PropertyFacts {
	return domain.PropertyFacts{Area: 68, CondoFeeMonthly: 500, YearlyTax: 1200}
}

type fakeBackend struct {
	analyses map[string]*domain.Analysis
	updated  map[string]domain.SimulationParameters
	lastAC   domain.AnalysisContext
}

func newFakeBackend() *fakeBackend {
	params := testParams()
	params.SalePrice = 0
	return &fakeBackend{
		analyses: map[string]*domain.Analysis{
			"an-1": {
				ID:   "an-1",
				Name: "Centro Flips",
				Candidates: []domain.Candidate{
					{
						Property:   domain.Property{ID: "apt-101", Title: "Apt 101", Area: 68, Price: 720000, CondoFeeMonthly: 500, YearlyTax: 1200},
						Parameters: params,
					},
				},
				References: []domain.Property{
					{ID: "ref-1", Area: 70, Price: 945000},
					{ID: "ref-2", Area: 60, Price: 840000},
				},
			},
		},
		updated: map[string]domain.SimulationParameters{},
	}
}

func (f *fakeBackend) LoadAnalysis(_ context.Context, ac domain.AnalysisContext) (*domain.Analysis, error) {
	f.lastAC = ac
	a, ok := f.analyses[ac.AnalysisID]
	if !ok {
		return nil, &backend.APIError{StatusCode: http.StatusNotFound, Op: "loadAnalysis", Message: "analysis not found"}
	}
	return a, nil
}

func (f *fakeBackend) UpdateSimulation(_ context.Context, ac domain.AnalysisContext, id string, params domain.SimulationParameters) (*domain.Simulation, error) {
	f.lastAC = ac
	if id == "down" {
		return nil, &backend.APIError{StatusCode: http.StatusInternalServerError, Op: "updateSimulation"}
	}
	f.updated[id] = params
	return &domain.Simulation{ID: id, Parameters: params}, nil
}

func newTestServer(t *testing.T, be Backend, mutate ...func(*config.ServerSettings)) http.Handler {
	t.Helper()
	settings := config.ServerSettings{MaxBodyBytes: 1 << 16}
	for _, m := range mutate {
		m(&settings)
	}
	return New(calculation.NewCalculationEngine(), be, settings, zap.NewNop()).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestServer(t, nil), http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "A fresh request id should be a uuid")

	inbound := uuid.New().String()
	rec = doJSON(t, h, http.MethodGet, "/healthz", nil, RequestIDHeader, inbound)
	assert.Equal(t, inbound, rec.Header().Get(RequestIDHeader))

	rec = doJSON(t, h, http.MethodGet, "/healthz", nil, RequestIDHeader, "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestViability(t *testing.T) {
	rec := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/viability",
		viabilityRequest{Facts: testFacts(), Parameters: testParams()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report domain.ViabilityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "32696.39", report.Result.NetProfit.StringFixed(2))
	assert.Equal(t, testParams(), report.Parameters)
}

func TestViability_InvalidParameter(t *testing.T) {
	params := testParams()
	params.FinancingTermMonths = 0

	rec := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/viability",
		viabilityRequest{Facts: testFacts(), Parameters: params})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "server.viability", body.Op)
	assert.Contains(t, body.Error, domain.ParamFinancingTermMonths)
}

func TestViability_BadBodies(t *testing.T) {
	h := newTestServer(t, nil, func(s *config.ServerSettings) { s.MaxBodyBytes = 64 })

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "empty"},
		{"malformed", "{", "invalid JSON"},
		{"unknown field", `{"parameters":{"salePrise":1}}`, "unknown field"},
		{"too large", `{"facts":{"area":` + strings.Repeat("1", 100) + `}}`, "exceeds 64 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/viability", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec).Error, tt.want)
		})
	}
}

func TestSchedule(t *testing.T) {
	rec := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/viability/schedule",
		viabilityRequest{Facts: testFacts(), Parameters: testParams()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var entries []domain.ScheduleEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 6)
}

func TestSchedule_MonthsCap(t *testing.T) {
	params := testParams()
	params.MonthsToSell = calculation.DefaultMaxMonthsToSell + 1

	rec := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/viability/schedule",
		viabilityRequest{Facts: testFacts(), Parameters: params})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBreakEven_SingleTarget(t *testing.T) {
	rec := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/breakeven", breakEvenRequest{
		Facts:      testFacts(),
		Parameters: testParams(),
		Target:     breakeven.TargetSalePrice,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result breakeven.SolveResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, breakeven.GoalBreakEven, result.Request.Goal, "Goal should default to break-even")
	assert.True(t, result.OptimalValue.LessThan(result.BaseValue))
}

func TestBreakEven_All(t *testing.T) {
	rec := doJSON(t, newTestServer(t, nil), http.MethodPost, "/api/breakeven", breakEvenRequest{
		Facts:      testFacts(),
		Parameters: testParams(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result breakeven.MultiTargetResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Results, 3)
}

func TestBreakEven_Errors(t *testing.T) {
	h := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/breakeven", breakEvenRequest{
		Facts: testFacts(), Parameters: testParams(), Target: "renovation_cost",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/breakeven", breakEvenRequest{
		Facts: testFacts(), Parameters: testParams(), Target: breakeven.TargetSalePrice, Goal: breakeven.GoalTargetROI,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "target_roi without a threshold")
}

func TestBreakEven_Bounds(t *testing.T) {
	h := newTestServer(t, nil)

	params := testParams()
	params.MonthsToSell = 3000000
	rec := doJSON(t, h, http.MethodPost, "/api/breakeven", breakEvenRequest{
		Facts: testFacts(), Parameters: params, Target: breakeven.TargetSalePrice,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/breakeven", breakEvenRequest{
		Facts: testFacts(), Parameters: params,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "every target shares the base check")

	maxMonths := 10000000
	rec = doJSON(t, h, http.MethodPost, "/api/breakeven", breakEvenRequest{
		Facts: testFacts(), Parameters: testParams(), Target: breakeven.TargetMonthsToSell,
		Constraints: breakeven.Constraints{MaxMonthsToSell: &maxMonths},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestSensitivity_Bounds(t *testing.T) {
	h := newTestServer(t, nil)

	params := testParams()
	params.MonthsToSell = 3000000
	rec := doJSON(t, h, http.MethodPost, "/api/sensitivity", sensitivityRequest{
		Facts: testFacts(), Parameters: params,
		Parameter: domain.ParamSalePrice, Min: 850000, Max: 950000, Steps: 5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/sensitivity", sensitivityRequest{
		Facts: testFacts(), Parameters: testParams(),
		Parameter: domain.ParamSalePrice, Min: 850000, Max: 950000, Steps: 50000,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestSensitivity(t *testing.T) {
	h := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/sensitivity", sensitivityRequest{
		Facts: testFacts(), Parameters: testParams(),
		Parameter: domain.ParamSalePrice, Min: 850000, Max: 950000, Steps: 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var analysis domain.SensitivityAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Len(t, analysis.Points, 5)

	rec = doJSON(t, h, http.MethodPost, "/api/sensitivity", sensitivityRequest{
		Facts: testFacts(), Parameters: testParams(),
		Parameter: "view_quality", Min: 0, Max: 1, Steps: 3,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisReport(t *testing.T) {
	fb := newFakeBackend()
	h := newTestServer(t, fb)

	rec := doJSON(t, h, http.MethodGet, "/api/analyses/an-1/report", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "an-1", fb.lastAC.AnalysisID)

	var report domain.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Centro Flips", report.AnalysisName)
	require.Len(t, report.Properties, 1)
	assert.Equal(t, 935000.0, report.Properties[0].Parameters.SalePrice, "Sale price should come from references")

	rec = doJSON(t, h, http.MethodGet, "/api/analyses/missing/report", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisReport_NoBackend(t *testing.T) {
	rec := doJSON(t, newTestServer(t, nil), http.MethodGet, "/api/analyses/an-1/report", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalysisCSV(t *testing.T) {
	rec := doJSON(t, newTestServer(t, newFakeBackend()), http.MethodGet, "/api/analyses/an-1/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="centro_flips.csv"`)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Property,Address,Area"))
	assert.True(t, strings.HasPrefix(lines[1], "Apt 101,"))
}

func TestUpdateParameters(t *testing.T) {
	fb := newFakeBackend()
	h := newTestServer(t, fb)
	body := parametersRequest{Parameters: testParams()}

	rec := doJSON(t, h, http.MethodPut, "/api/simulations/sim-9/parameters", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "Missing analysis header")
	assert.Contains(t, decodeError(t, rec).Error, backend.AnalysisHeader)

	rec = doJSON(t, h, http.MethodPut, "/api/simulations/sim-9/parameters", body, backend.AnalysisHeader, "an-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, testParams(), fb.updated["sim-9"])
	assert.Equal(t, "an-1", fb.lastAC.AnalysisID)

	rec = doJSON(t, h, http.MethodPut, "/api/simulations/down/parameters", body, backend.AnalysisHeader, "an-1")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	invalid := testParams()
	invalid.FinancingTermMonths = -1
	rec = doJSON(t, h, http.MethodPut, "/api/simulations/sim-9/parameters", parametersRequest{Parameters: invalid}, backend.AnalysisHeader, "an-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, nil, func(s *config.ServerSettings) {
		s.RateLimit = 0.001
		s.RateBurst = 2
	})
	body := viabilityRequest{Facts: testFacts(), Parameters: testParams()}

	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodPost, "/api/viability", body).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodPost, "/api/viability", body).Code)

	rec := doJSON(t, h, http.MethodPost, "/api/viability", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/healthz", nil).Code, "Health checks are not limited")
}
