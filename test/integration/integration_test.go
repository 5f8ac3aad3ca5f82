package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rgehrsitz/flipcalc/internal/backend"
	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/config"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeBackend is an in-memory stand-in for the REST backend.
type storeBackend struct {
	mu          sync.Mutex
	simulations map[string]domain.SimulationParameters
	hits        map[string]int
}

func newStoreBackend() *storeBackend {
	return &storeBackend{
		simulations: map[string]domain.SimulationParameters{
			"sim-101": {
				PurchasePrice: 720000, SalePrice: 936000,
				DownPaymentPct: 20, TransferTaxPct: 3, RegistryFeePct: 1.5, RenovationCost: 50000,
				AnnualFinancingRatePct: 11.5, FinancingTermMonths: 420, MonthsToSell: 6,
				BrokerageFeePct: 6, IncomeTaxApplies: true,
			},
		},
		hits: map[string]int{},
	}
}

func (b *storeBackend) handler() http.Handler {
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	count := func(r *http.Request) {
		b.mu.Lock()
		b.hits[r.URL.Path]++
		b.mu.Unlock()
	}

	r := chi.NewRouter()
	r.Get("/analyses/{id}", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		if chi.URLParam(r, "id") != "an-1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
			return
		}
		writeJSON(w, http.StatusOK, domain.Analysis{ID: "an-1", Name: "Centro"})
	})
	r.Get("/analyses/{id}/properties", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		if r.URL.Query().Get("kind") == string(domain.KindReference) {
			writeJSON(w, http.StatusOK, []domain.Property{
				{ID: "ref-1", Kind: domain.KindReference, Area: 70, Price: 945000},
				{ID: "ref-2", Kind: domain.KindReference, Area: 60, Price: 840000},
			})
			return
		}
		writeJSON(w, http.StatusOK, []domain.Property{{
			ID: "apt-101", Kind: domain.KindCandidate, Title: "Apt 101",
			Area: 68, Price: 720000, CondoFeeMonthly: 500, YearlyTax: 1200, SimulationID: "sim-101",
		}})
	})
	r.Get("/simulations/{id}", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		id := chi.URLParam(r, "id")
		b.mu.Lock()
		params, ok := b.simulations[id]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "simulation not found"})
			return
		}
		writeJSON(w, http.StatusOK, domain.Simulation{ID: id, PropertyID: "apt-101", Parameters: params})
	})
	r.Put("/simulations/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(backend.AnalysisHeader) != "an-1" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "simulation belongs to another analysis"})
			return
		}
		var in struct {
			Parameters domain.SimulationParameters `json:"parameters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		id := chi.URLParam(r, "id")
		b.mu.Lock()
		b.simulations[id] = in.Parameters
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, domain.Simulation{ID: id, PropertyID: "apt-101", Parameters: in.Parameters})
	})
	return r
}

func (b *storeBackend) hitCount(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

// newStack wires the API server to a real backend client talking to an
// in-memory backend over HTTP.
func newStack(t *testing.T) (*storeBackend, *httptest.Server) {
	t.Helper()

	store := newStoreBackend()
	backendSrv := httptest.NewServer(store.handler())
	t.Cleanup(backendSrv.Close)

	client, err := backend.NewClient(backendSrv.URL,
		backend.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
		backend.WithCache(backend.NewMemoryCache(time.Minute), time.Minute),
	)
	require.NoError(t, err)

	api := server.New(calculation.NewCalculationEngine(), client, config.ServerSettings{}, nil)
	apiSrv := httptest.NewServer(api.Handler())
	t.Cleanup(apiSrv.Close)
	return store, apiSrv
}

func TestEndToEndAnalysisReport(t *testing.T) {
	store, api := newStack(t)

	resp, err := http.Get(api.URL + "/api/analyses/an-1/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report domain.AnalysisReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "Centro", report.AnalysisName)
	require.Len(t, report.Properties, 1)
	assert.Equal(t, "32696.39", report.Properties[0].Result.NetProfit.StringFixed(2))
	assert.Equal(t, "0.1206", report.Properties[0].Result.ROI.StringFixed(4))
	require.NotNil(t, report.ReferenceStats)
	assert.Equal(t, 2, report.ReferenceStats.Count)

	// the second report is served from the client cache
	resp2, err := http.Get(api.URL + "/api/analyses/an-1/report")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, 1, store.hitCount("/analyses/an-1"))
	assert.Equal(t, 1, store.hitCount("/simulations/sim-101"))
}

func TestEndToEndAnalysisNotFound(t *testing.T) {
	_, api := newStack(t)

	resp, err := http.Get(api.URL + "/api/analyses/an-404/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEndToEndCSVExport(t *testing.T) {
	_, api := newStack(t)

	resp, err := http.Get(api.URL + "/api/analyses/an-1/export.csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "centro")
}

func TestEndToEndUpdateParameters(t *testing.T) {
	_, api := newStack(t)

	before := fetchNetProfit(t, api.URL)

	params := newStoreBackend().simulations["sim-101"]
	params.SalePrice = 990000
	body, err := json.Marshal(map[string]any{"parameters": params})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, api.URL+"/api/simulations/sim-101/parameters", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(backend.AnalysisHeader, "an-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the write invalidates the cached simulation
	after := fetchNetProfit(t, api.URL)
	assert.Greater(t, after, before, "A higher sale price should raise the net profit")
}

func TestEndToEndUpdateParameters_Rejected(t *testing.T) {
	_, api := newStack(t)

	params := newStoreBackend().simulations["sim-101"]
	params.MonthsToSell = -1
	body, err := json.Marshal(map[string]any{"parameters": params})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, api.URL+"/api/simulations/sim-101/parameters", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(backend.AnalysisHeader, "an-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func fetchNetProfit(t *testing.T, base string) float64 {
	t.Helper()
	resp, err := http.Get(base + "/api/analyses/an-1/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report domain.AnalysisReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Len(t, report.Properties, 1)
	return report.Properties[0].Result.NetProfit.InexactFloat64()
}
