package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/transform"
)

// CompareEngine orchestrates scenario comparison
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
		TemplateRegistry:  transform.CreateBuiltInTemplates(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	BaseName  string   // Label of the base scenario
	Templates []string // List of template names to apply
}

// Compare evaluates base parameters against each template variant.
func (ce *CompareEngine) Compare(
	ctx context.Context,
	facts domain.PropertyFacts,
	base domain.SimulationParameters,
	options CompareOptions,
) (*ComparisonSet, error) {
	if ce.TemplateRegistry == nil {
		ce.TemplateRegistry = transform.CreateBuiltInTemplates()
	}
	baseName := options.BaseName
	if baseName == "" {
		baseName = "base"
	}

	baseReport, err := ce.CalcEngine.Evaluate(ctx, facts, base)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base scenario: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(baseName, baseReport)

	alternatives := []ComparisonResult{}

	for _, templateName := range options.Templates {
		template, ok := ce.TemplateRegistry.Get(templateName)
		if !ok {
			return nil, fmt.Errorf("template %s not found", templateName)
		}

		modified, err := transform.ApplyTransforms(base, template.Transforms)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %s: %w", templateName, err)
		}

		altReport, err := ce.CalcEngine.Evaluate(ctx, facts, modified)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate scenario %s: %w", templateName, err)
		}

		altResult := ce.MetricsCalculator.CalculateMetrics(baseName+"_"+template.Name, altReport)
		altResult.Description = template.Description
		altResult = ce.MetricsCalculator.CalculateComparison(altResult, baseResult)

		alternatives = append(alternatives, altResult)
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   baseName,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

// CompareCandidates compares the candidate with baseID against every other
// candidate of the analysis.
func (ce *CompareEngine) CompareCandidates(
	ctx context.Context,
	analysis *domain.Analysis,
	baseID string,
) (*ComparisonSet, error) {
	if analysis == nil {
		return nil, fmt.Errorf("analysis cannot be nil")
	}

	baseIndex, ok := analysis.FindCandidate(baseID)
	if !ok {
		return nil, fmt.Errorf("base candidate %s not found", baseID)
	}

	evaluate := func(i int) (ComparisonResult, error) {
		pv, err := ce.CalcEngine.RunCandidate(ctx, analysis, i)
		if err != nil {
			return ComparisonResult{}, err
		}
		report := &domain.ViabilityReport{
			Facts:      pv.Property.Facts(),
			Parameters: pv.Parameters,
			Result:     pv.Result,
			Warnings:   pv.Warnings,
		}
		result := ce.MetricsCalculator.CalculateMetrics(pv.Property.DisplayName(), report)
		result.Description = pv.Property.Address
		return result, nil
	}

	baseResult, err := evaluate(baseIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base candidate: %w", err)
	}

	alternatives := []ComparisonResult{}
	for i := range analysis.Candidates {
		if i == baseIndex {
			continue
		}
		altResult, err := evaluate(i)
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, ce.MetricsCalculator.CalculateComparison(altResult, baseResult))
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   baseResult.ScenarioName,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
		Source:             analysis.Name,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}
