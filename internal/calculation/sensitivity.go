package calculation

import (
	"context"
	"fmt"
	"math"

	"github.com/rgehrsitz/flipcalc/internal/domain"
)

// MaxSensitivitySteps bounds the number of points in one sweep.
const MaxSensitivitySteps = 1000

// RunSensitivity sweeps one parameter linearly from min to max in steps
// points and records the outcome at each value.
func (ce *CalculationEngine) RunSensitivity(
	ctx context.Context,
	facts domain.PropertyFacts,
	base domain.SimulationParameters,
	parameter string,
	min, max float64,
	steps int,
) (*domain.SensitivityAnalysis, error) {
	if steps < 2 {
		return nil, fmt.Errorf("sensitivity analysis needs at least 2 steps, got %d", steps)
	}
	if steps > MaxSensitivitySteps {
		return nil, fmt.Errorf("sensitivity analysis supports at most %d steps, got %d", MaxSensitivitySteps, steps)
	}
	if min > max {
		return nil, fmt.Errorf("invalid range: min %g is greater than max %g", min, max)
	}

	baseValue, err := base.Get(parameter)
	if err != nil {
		return nil, err
	}
	if _, err := ValidateParameters(base, ce.Limits); err != nil {
		return nil, fmt.Errorf("base parameters: %w", err)
	}
	baseResult, err := ComputeViability(base, facts)
	if err != nil {
		return nil, fmt.Errorf("base parameters: %w", err)
	}

	analysis := &domain.SensitivityAnalysis{
		Parameter: parameter,
		BaseValue: baseValue,
		BaseROI:   baseResult.ROI,
		Points:    make([]domain.SensitivityPoint, 0, steps),
	}

	step := (max - min) / float64(steps-1)
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value := min + step*float64(i)
		if domain.IsIntegerParameter(parameter) {
			value = math.Round(value)
		}

		params := base
		if err := params.Set(parameter, value); err != nil {
			return nil, err
		}
		if _, err := ValidateParameters(params, ce.Limits); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", parameter, value, err)
		}
		result, err := ComputeViability(params, facts)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", parameter, value, err)
		}

		analysis.Points = append(analysis.Points, domain.SensitivityPoint{
			Value:           value,
			ROI:             result.ROI,
			NetProfit:       result.NetProfit,
			TotalInvestment: result.TotalInvestment,
			IncomeTaxAmount: result.IncomeTaxAmount,
		})
	}

	return analysis, nil
}
