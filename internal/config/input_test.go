package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAnalysisYAML = `
id: an-1
name: "Vila Mariana flips"
defaults:
  down_payment_pct: 20
  transfer_tax_pct: 3
  registry_fee_pct: 1.5
  renovation_cost: 50000
  annual_financing_rate_pct: 11.5
  financing_term_months: 420
  months_to_sell: 6
  brokerage_fee_pct: 6
  income_tax_applies: true
candidates:
  - property:
      id: apt-101
      title: "Apt 101"
      area: 68
      price: 720000
      condo_fee_monthly: 500
      yearly_tax: 1200
      simulation_id: sim-101
    simulation:
      sale_price: 936000
      months_to_sell: 9
  - property:
      id: apt-202
      title: "Apt 202"
      area: 80
      price: 700000
    simulation:
      sale_price: 0
      income_tax_applies: false
references:
  - {id: ref-1, area: 70, price: 945000}
  - {id: ref-2, area: 60, price: 840000}
`

func TestNewInputParser(t *testing.T) {
	parser := NewInputParser()
	assert.NotNil(t, parser, "Should create input parser")
}

func TestInputParser_LoadFromFile_FileNotFound(t *testing.T) {
	parser := NewInputParser()

	analysis, err := parser.LoadFromFile("nonexistent.yaml")

	assert.Error(t, err, "Should error for nonexistent file")
	assert.Nil(t, analysis, "Should return nil analysis")
	assert.Contains(t, err.Error(), "failed to read file", "Should have specific error message")
}

func TestInputParser_LoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	invalidFile := filepath.Join(tmpDir, "invalid.yaml")

	err := os.WriteFile(invalidFile, []byte("invalid: yaml: content: [unclosed"), 0644)
	require.NoError(t, err)

	analysis, err := NewInputParser().LoadFromFile(invalidFile)

	assert.Error(t, err, "Should error for invalid YAML")
	assert.Nil(t, analysis, "Should return nil analysis")
	assert.Contains(t, err.Error(), "failed to parse YAML", "Should have specific error message")
}

func TestInputParser_LoadFromFile_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "valid.yaml")
	require.NoError(t, os.WriteFile(validFile, []byte(validAnalysisYAML), 0644))

	analysis, err := NewInputParser().LoadFromFile(validFile)
	require.NoError(t, err, "Should not error for valid YAML")

	assert.Equal(t, "an-1", analysis.ID)
	assert.Equal(t, "Vila Mariana flips", analysis.Name)
	assert.Equal(t, 420, analysis.Defaults.FinancingTermMonths)
	require.Len(t, analysis.Candidates, 2)
	assert.Len(t, analysis.References, 2)

	first := analysis.Candidates[0]
	assert.Equal(t, "apt-101", first.Property.ID)
	assert.Equal(t, "sim-101", first.Property.SimulationID)
	assert.Equal(t, domain.KindCandidate, first.Property.Kind)
	assert.Equal(t, "an-1", first.Property.AnalysisID)
	assert.Equal(t, 936000.0, first.Parameters.SalePrice, "Override should apply")
	assert.Equal(t, 9, first.Parameters.MonthsToSell, "Override should apply")
	assert.Equal(t, 11.5, first.Parameters.AnnualFinancingRatePct, "Defaults should carry over")
	assert.True(t, first.Parameters.IncomeTaxApplies)
	assert.False(t, first.HasExplicit(domain.ParamPurchasePrice))

	second := analysis.Candidates[1]
	assert.Equal(t, 6, second.Parameters.MonthsToSell)
	assert.False(t, second.Parameters.IncomeTaxApplies)
	assert.True(t, second.HasExplicit(domain.ParamSalePrice), "Explicit zero should be recorded")

	assert.Equal(t, domain.KindReference, analysis.References[0].Kind)
}

func TestInputParser_Parse_OverridesDoNotLeak(t *testing.T) {
	analysis, err := NewInputParser().Parse([]byte(validAnalysisYAML))
	require.NoError(t, err)

	assert.Equal(t, 0.0, analysis.Defaults.SalePrice, "Candidate overrides must not touch defaults")
	assert.Equal(t, 6, analysis.Defaults.MonthsToSell)
}

func TestInputParser_Parse_UnknownParameter(t *testing.T) {
	data := `
name: test
defaults:
  financing_term_months: 360
  montsh_to_sell: 6
candidates:
  - property: {id: a, area: 50, price: 100000}
`
	_, err := NewInputParser().Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown parameter "montsh_to_sell"`)
}

func TestInputParser_Parse_SimulationMustBeMapping(t *testing.T) {
	data := `
name: test
defaults:
  financing_term_months: 360
candidates:
  - property: {id: a, area: 50, price: 100000}
    simulation: [1, 2]
`
	_, err := NewInputParser().Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a mapping of parameters")
}

func TestInputParser_ValidateAnalysis(t *testing.T) {
	valid := func() *domain.Analysis {
		return &domain.Analysis{
			Name: "test",
			Candidates: []domain.Candidate{
				{
					Property:   domain.Property{ID: "a", Area: 50, Price: 100000},
					Parameters: domain.SimulationParameters{FinancingTermMonths: 360, MonthsToSell: 6},
				},
			},
			References: []domain.Property{{ID: "r", Area: 50, Price: 120000}},
		}
	}

	tests := []struct {
		name     string
		mutate   func(a *domain.Analysis)
		expected string
	}{
		{"missing name", func(a *domain.Analysis) { a.Name = " " }, "name is required"},
		{"no candidates", func(a *domain.Analysis) { a.Candidates = nil }, "no candidates provided"},
		{"missing id", func(a *domain.Analysis) { a.Candidates[0].Property.ID = "" }, "property id is required"},
		{"negative area", func(a *domain.Analysis) { a.Candidates[0].Property.Area = -1 }, "area must be positive"},
		{"zero area", func(a *domain.Analysis) { a.Candidates[0].Property.Area = 0 }, "area must be positive"},
		{"negative price", func(a *domain.Analysis) { a.Candidates[0].Property.Price = -1 }, "price cannot be negative"},
		{"zero term", func(a *domain.Analysis) { a.Candidates[0].Parameters.FinancingTermMonths = 0 }, "financing_term_months must be positive"},
		{"negative months", func(a *domain.Analysis) { a.Candidates[0].Parameters.MonthsToSell = -1 }, "months_to_sell cannot be negative"},
		{"duplicate ids", func(a *domain.Analysis) { a.Candidates = append(a.Candidates, a.Candidates[0]) }, `duplicate candidate id "a"`},
		{"reference without area", func(a *domain.Analysis) { a.References[0].Area = 0 }, "area must be positive"},
		{"reference without price", func(a *domain.Analysis) { a.References[0].Price = 0 }, "price must be positive"},
	}

	parser := NewInputParser()
	require.NoError(t, parser.ValidateAnalysis(valid()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(a)
			err := parser.ValidateAnalysis(a)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}
