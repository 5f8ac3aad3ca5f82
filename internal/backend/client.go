package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"go.uber.org/zap"
)

// AnalysisHeader carries the active analysis on simulation requests.
const AnalysisHeader = "X-Analysis-ID"

// Client talks to the REST backend that stores analyses, properties and
// simulations. Every GET response is cached; writes invalidate the keys
// they affect.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	cache      Cache
	ttl        time.Duration
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithCache caches GET responses for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.ttl = ttl
	}
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      NopCache{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NopCache{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// AnalysisInfo is the summary returned by the analysis listing.
type AnalysisInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// ListAnalyses returns every analysis.
func (c *Client) ListAnalyses(ctx context.Context) ([]AnalysisInfo, error) {
	var out []AnalysisInfo
	if err := c.get(ctx, "list analyses", "/analyses", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAnalysis creates an empty analysis.
func (c *Client) CreateAnalysis(ctx context.Context, name, description string) (*AnalysisInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("analysis name is required")
	}
	body := AnalysisInfo{Name: name, Description: description}
	var out AnalysisInfo
	if err := c.send(ctx, "create analysis", http.MethodPost, "/analyses", "", body, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, "/analyses")
	return &out, nil
}

// GetAnalysis fetches the analysis named by ac, without its properties.
func (c *Client) GetAnalysis(ctx context.Context, ac domain.AnalysisContext) (*domain.Analysis, error) {
	if err := ac.Require(); err != nil {
		return nil, err
	}
	var out domain.Analysis
	if err := c.get(ctx, "get analysis", "/analyses/"+url.PathEscape(ac.AnalysisID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProperties lists the properties of the active analysis. An empty kind
// lists both candidates and references.
func (c *Client) ListProperties(ctx context.Context, ac domain.AnalysisContext, kind domain.PropertyKind) ([]domain.Property, error) {
	if err := ac.Require(); err != nil {
		return nil, err
	}
	var out []domain.Property
	if err := c.get(ctx, "list properties", propertiesPath(ac.AnalysisID, kind), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddProperty adds a property to the active analysis.
func (c *Client) AddProperty(ctx context.Context, ac domain.AnalysisContext, p domain.Property) (*domain.Property, error) {
	if err := ac.Require(); err != nil {
		return nil, err
	}
	if p.Kind == "" {
		p.Kind = domain.KindCandidate
	}
	p.AnalysisID = ac.AnalysisID

	var out domain.Property
	if err := c.send(ctx, "add property", http.MethodPost, propertiesPath(ac.AnalysisID, ""), "", p, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx,
		propertiesPath(ac.AnalysisID, ""),
		propertiesPath(ac.AnalysisID, domain.KindCandidate),
		propertiesPath(ac.AnalysisID, domain.KindReference))
	return &out, nil
}

// GetSimulation fetches stored simulation parameters.
func (c *Client) GetSimulation(ctx context.Context, id string) (*domain.Simulation, error) {
	if id == "" {
		return nil, fmt.Errorf("simulation id is required")
	}
	var out domain.Simulation
	if err := c.get(ctx, "get simulation", simulationPath(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSimulation persists the editable parameters of a simulation that
// belongs to the active analysis.
func (c *Client) UpdateSimulation(ctx context.Context, ac domain.AnalysisContext, id string, params domain.SimulationParameters) (*domain.Simulation, error) {
	if err := ac.Require(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("simulation id is required")
	}

	body := struct {
		Parameters domain.SimulationParameters `json:"parameters"`
	}{params}
	var out domain.Simulation
	if err := c.send(ctx, "update simulation", http.MethodPut, simulationPath(id), ac.AnalysisID, body, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, simulationPath(id))
	return &out, nil
}

// LoadAnalysis assembles a complete analysis: candidates with their stored
// simulation parameters (falling back to the analysis defaults) and the
// reference properties.
func (c *Client) LoadAnalysis(ctx context.Context, ac domain.AnalysisContext) (*domain.Analysis, error) {
	analysis, err := c.GetAnalysis(ctx, ac)
	if err != nil {
		return nil, err
	}
	if analysis.ID == "" {
		analysis.ID = ac.AnalysisID
	}

	candidates, err := c.ListProperties(ctx, ac, domain.KindCandidate)
	if err != nil {
		return nil, err
	}
	refs, err := c.ListProperties(ctx, ac, domain.KindReference)
	if err != nil {
		return nil, err
	}

	analysis.Candidates = make([]domain.Candidate, 0, len(candidates))
	for _, p := range candidates {
		params := analysis.Defaults
		if p.SimulationID != "" {
			sim, err := c.GetSimulation(ctx, p.SimulationID)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", p.ID, err)
			}
			params = sim.Parameters
		}
		analysis.Candidates = append(analysis.Candidates, domain.Candidate{Property: p, Parameters: params})
	}
	analysis.References = refs

	c.logger.Debug("analysis loaded",
		zap.String("op", "backend.LoadAnalysis"),
		zap.String("analysis", analysis.ID),
		zap.Int("candidates", len(analysis.Candidates)),
		zap.Int("references", len(refs)))
	return analysis, nil
}

func propertiesPath(analysisID string, kind domain.PropertyKind) string {
	p := "/analyses/" + url.PathEscape(analysisID) + "/properties"
	if kind != "" {
		p += "?kind=" + url.QueryEscape(string(kind))
	}
	return p
}

func simulationPath(id string) string {
	return "/simulations/" + url.PathEscape(id)
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	if data, ok := c.cache.Get(ctx, path); ok {
		c.logger.Debug("cache hit", zap.String("op", op), zap.String("path", path))
		return json.Unmarshal(data, out)
	}

	data, err := c.do(ctx, op, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("backend %s: decode response: %w", op, err)
	}
	if err := c.cache.Set(ctx, path, data, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("op", op), zap.Error(err))
	}
	return nil
}

func (c *Client) send(ctx context.Context, op, method, path, analysisID string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("backend %s: encode request: %w", op, err)
	}
	data, err := c.do(ctx, op, method, path, analysisID, payload)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("backend %s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path, analysisID string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if analysisID != "" {
		req.Header.Set(AnalysisHeader, analysisID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("backend %s: read response: %w", op, err)
	}

	c.logger.Debug("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Op: op, Message: errorMessage(data)}
	}
	return data, nil
}

func (c *Client) invalidate(ctx context.Context, keys ...string) {
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// errorMessage extracts {"error": "..."} or falls back to the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
