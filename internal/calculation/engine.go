package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// CalculationEngine orchestrates viability calculations for properties and
// whole analyses.
type CalculationEngine struct {
	Logger           Logger
	Limits           Limits
	SuggestionMethod SuggestionMethod
	Debug            bool
	// Clock stamps generated reports.
	Clock func() time.Time
}

// NewCalculationEngine creates an engine with default limits.
func NewCalculationEngine() *CalculationEngine {
	return NewCalculationEngineWithLimits(DefaultLimits())
}

// NewCalculationEngineWithLimits creates an engine with custom limits.
func NewCalculationEngineWithLimits(limits Limits) *CalculationEngine {
	return &CalculationEngine{
		Logger:           NopLogger{},
		Limits:           limits,
		SuggestionMethod: SuggestMean,
		Clock:            time.Now,
	}
}

// SetLogger sets the engine logger. nil installs a no-op logger.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

func (ce *CalculationEngine) logger() Logger {
	if ce.Logger == nil {
		return NopLogger{}
	}
	return ce.Logger
}

// Evaluate validates the parameters, computes the result and collects
// warnings.
func (ce *CalculationEngine) Evaluate(ctx context.Context, facts domain.PropertyFacts, params domain.SimulationParameters) (*domain.ViabilityReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	warnings, err := ValidateParameters(params, ce.Limits)
	if err != nil {
		return nil, err
	}

	result, err := ComputeViability(params, facts)
	if err != nil {
		return nil, err
	}

	if result.ROI.IsNegative() {
		warnings = append(warnings, fmt.Sprintf("negative ROI (%s%%)", result.ROIPercent().StringFixed(2)))
	}

	if ce.Debug {
		ce.logger().Debugf("viability: purchase=%.2f sale=%.2f months=%d roi=%s",
			params.PurchasePrice, params.SalePrice, params.MonthsToSell, result.ROI.StringFixed(4))
	}
	for _, w := range warnings {
		ce.logger().Warnf("%s", w)
	}

	return &domain.ViabilityReport{
		Facts:      facts,
		Parameters: params,
		Result:     result,
		Warnings:   warnings,
	}, nil
}

// ResolveParameters fills the inputs a candidate left unset: the purchase
// price falls back to the asking price and the sale price to the price
// suggested by the analysis references. The suggestion is returned when
// references allow one.
func (ce *CalculationEngine) ResolveParameters(analysis *domain.Analysis, c domain.Candidate) (domain.SimulationParameters, *decimal.Decimal) {
	params := c.Parameters

	if params.PurchasePrice == 0 && !c.HasExplicit(domain.ParamPurchasePrice) {
		params.PurchasePrice = c.Property.Price
	}

	var suggested *decimal.Decimal
	if len(analysis.References) > 0 {
		if s, err := SuggestSalePrice(c.Property.Area, analysis.References, ce.SuggestionMethod); err == nil {
			s = s.Round(2)
			suggested = &s
		} else {
			ce.logger().Debugf("no suggested sale price for %s: %v", c.Property.ID, err)
		}
	}
	if suggested != nil && params.SalePrice == 0 && !c.HasExplicit(domain.ParamSalePrice) {
		params.SalePrice = suggested.InexactFloat64()
	}

	return params, suggested
}

// RunCandidate evaluates the candidate at index.
func (ce *CalculationEngine) RunCandidate(ctx context.Context, analysis *domain.Analysis, index int) (*domain.PropertyViability, error) {
	if analysis == nil {
		return nil, fmt.Errorf("analysis cannot be nil")
	}
	if index < 0 || index >= len(analysis.Candidates) {
		return nil, fmt.Errorf("candidate index %d out of range", index)
	}

	c := analysis.Candidates[index]
	params, suggested := ce.ResolveParameters(analysis, c)

	report, err := ce.Evaluate(ctx, c.Property.Facts(), params)
	if err != nil {
		return nil, fmt.Errorf("candidate %s: %w", c.Property.ID, err)
	}

	pv := &domain.PropertyViability{
		Property:           c.Property,
		Parameters:         params,
		Result:             report.Result,
		Warnings:           report.Warnings,
		SuggestedSalePrice: suggested,
	}
	if ppsm, err := PricePerSqM(params.PurchasePrice, c.Property.Area); err == nil {
		pv.PricePerSqM = ppsm
	} else {
		pv.Warnings = append(pv.Warnings, "price per square meter unavailable: area must be positive")
	}

	return pv, nil
}

// RunAnalysis evaluates every candidate of the analysis.
func (ce *CalculationEngine) RunAnalysis(ctx context.Context, analysis *domain.Analysis) (*domain.AnalysisReport, error) {
	if analysis == nil {
		return nil, fmt.Errorf("analysis cannot be nil")
	}

	clock := ce.Clock
	if clock == nil {
		clock = time.Now
	}

	report := &domain.AnalysisReport{
		AnalysisID:   analysis.ID,
		AnalysisName: analysis.Name,
		GeneratedAt:  clock(),
		Properties:   make([]domain.PropertyViability, 0, len(analysis.Candidates)),
	}

	if len(analysis.References) > 0 {
		if stats, err := ReferencePriceStats(analysis.References); err == nil {
			report.ReferenceStats = &stats
		}
	}

	for i := range analysis.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pv, err := ce.RunCandidate(ctx, analysis, i)
		if err != nil {
			return nil, err
		}
		report.Properties = append(report.Properties, *pv)
	}

	if best := report.Best(); best != nil {
		report.BestByROI = best.Property.DisplayName()
	}

	ce.logger().Infof("analysis %q: evaluated %d candidates", analysis.Name, len(report.Properties))
	return report, nil
}
