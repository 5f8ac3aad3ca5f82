package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of analysis files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

type analysisFile struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Defaults    yaml.Node         `yaml:"defaults"`
	Candidates  []candidateFile   `yaml:"candidates"`
	References  []domain.Property `yaml:"references"`
}

type candidateFile struct {
	Property   domain.Property `yaml:"property"`
	Simulation yaml.Node       `yaml:"simulation"`
}

// LoadFromFile loads an analysis from a YAML (or JSON) file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Analysis, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates an analysis document. Candidate simulation
// blocks are merged over the defaults; keys present in either are recorded
// as explicit so that a literal zero price is kept.
func (ip *InputParser) Parse(data []byte) (*domain.Analysis, error) {
	var file analysisFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	analysis := &domain.Analysis{
		ID:          file.ID,
		Name:        file.Name,
		Description: file.Description,
		References:  file.References,
	}

	defaultKeys, err := decodeParameters(&file.Defaults, &analysis.Defaults)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}

	for i, cf := range file.Candidates {
		c := domain.Candidate{
			Property:   cf.Property,
			Parameters: analysis.Defaults,
			Explicit:   make(map[string]bool, len(defaultKeys)),
		}
		for k := range defaultKeys {
			c.Explicit[k] = true
		}
		keys, err := decodeParameters(&cf.Simulation, &c.Parameters)
		if err != nil {
			return nil, fmt.Errorf("candidate %d (%s): %w", i, cf.Property.ID, err)
		}
		for k := range keys {
			c.Explicit[k] = true
		}
		c.Property.Kind = domain.KindCandidate
		c.Property.AnalysisID = analysis.ID
		analysis.Candidates = append(analysis.Candidates, c)
	}

	for i := range analysis.References {
		analysis.References[i].Kind = domain.KindReference
		analysis.References[i].AnalysisID = analysis.ID
	}

	if err := ip.ValidateAnalysis(analysis); err != nil {
		return nil, fmt.Errorf("analysis validation failed: %w", err)
	}

	return analysis, nil
}

// decodeParameters decodes a parameter mapping onto params, leaving fields
// the node does not mention untouched. It returns the keys present.
func decodeParameters(node *yaml.Node, params *domain.SimulationParameters) (map[string]bool, error) {
	keys := make(map[string]bool)
	if node.Kind == 0 {
		return keys, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of parameters", node.Line)
	}

	known := make(map[string]bool)
	for _, name := range domain.ParameterNames() {
		known[name] = true
	}
	known["income_tax_applies"] = true

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !known[key] {
			return nil, fmt.Errorf("line %d: unknown parameter %q", node.Content[i].Line, key)
		}
		keys[key] = true
	}

	if err := node.Decode(params); err != nil {
		return nil, err
	}
	return keys, nil
}

// ValidateAnalysis performs structural validation. Economic plausibility is
// left to the calculation package, which reports it as warnings.
func (ip *InputParser) ValidateAnalysis(analysis *domain.Analysis) error {
	if strings.TrimSpace(analysis.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(analysis.Candidates) == 0 {
		return fmt.Errorf("no candidates provided")
	}

	seen := make(map[string]bool)
	for i, c := range analysis.Candidates {
		if err := ip.validateCandidate(c); err != nil {
			return fmt.Errorf("candidate %d (%s) validation failed: %w", i, c.Property.ID, err)
		}
		if seen[c.Property.ID] {
			return fmt.Errorf("duplicate candidate id %q", c.Property.ID)
		}
		seen[c.Property.ID] = true
	}

	for i, r := range analysis.References {
		if r.Area <= 0 {
			return fmt.Errorf("reference %d (%s): area must be positive", i, r.DisplayName())
		}
		if r.Price <= 0 {
			return fmt.Errorf("reference %d (%s): price must be positive", i, r.DisplayName())
		}
	}

	return nil
}

func (ip *InputParser) validateCandidate(c domain.Candidate) error {
	p := c.Property
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("property id is required")
	}
	if p.Area <= 0 {
		return fmt.Errorf("area must be positive")
	}
	if p.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}

	params := c.Parameters
	if params.FinancingTermMonths <= 0 {
		return fmt.Errorf("financing_term_months must be positive")
	}
	if params.MonthsToSell < 0 {
		return fmt.Errorf("months_to_sell cannot be negative")
	}
	for _, name := range domain.ParameterNames() {
		v, _ := params.Get(name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	return nil
}
