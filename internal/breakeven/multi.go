package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// SolveAll runs the solver for every target and summarizes the safety margins
func (s *Solver) SolveAll(
	ctx context.Context,
	facts domain.PropertyFacts,
	base domain.SimulationParameters,
	constraints Constraints,
	goal SolveGoal,
) (*MultiTargetResult, error) {
	if err := constraints.Validate(); err != nil {
		return nil, err
	}
	if _, err := calculation.ValidateParameters(base, s.limits()); err != nil {
		return nil, &BreakEvenError{
			Operation: "solve_all",
			Message:   "invalid base parameters",
			Cause:     err,
		}
	}

	targets := []SolveTarget{
		TargetSalePrice,
		TargetPurchasePrice,
		TargetMonthsToSell,
	}

	var results []SolveResult
	var lastErr error

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := s.Solve(ctx, SolveRequest{
			Facts:         facts,
			Base:          base,
			Target:        target,
			Goal:          goal,
			Constraints:   constraints,
			MaxIterations: s.Options.MaxIterations,
			Tolerance:     s.Options.Tolerance,
		})
		if err != nil {
			// An unreachable goal for one target does not invalidate the others
			lastErr = err
			continue
		}
		results = append(results, *result)
	}

	if len(results) == 0 {
		return nil, &BreakEvenError{
			Operation: "solve_all",
			Message:   "no target could reach the goal",
			Cause:     lastErr,
		}
	}

	mtResult := &MultiTargetResult{Results: results}
	mtResult.Recommendations = generateRecommendations(mtResult)

	return mtResult, nil
}

// generateRecommendations turns solver results into safety margins
func generateRecommendations(result *MultiTargetResult) []string {
	var recommendations []string

	for _, r := range result.Results {
		switch r.Request.Target {
		case TargetSalePrice:
			if r.ValueDiffFromBase.IsNegative() {
				recommendations = append(recommendations,
					fmt.Sprintf("Sale price can fall %s%% (to %s) before missing the goal",
						r.ValuePctFromBase.Neg().StringFixed(1), r.OptimalValue.StringFixed(2)))
			} else {
				recommendations = append(recommendations,
					fmt.Sprintf("Sale price must rise to at least %s to reach the goal",
						r.OptimalValue.StringFixed(2)))
			}
		case TargetPurchasePrice:
			if r.ValueDiffFromBase.IsPositive() {
				recommendations = append(recommendations,
					fmt.Sprintf("Do not pay more than %s (%s above the planned price)",
						r.OptimalValue.StringFixed(2), r.ValueDiffFromBase.StringFixed(2)))
			} else {
				recommendations = append(recommendations,
					fmt.Sprintf("Negotiate the purchase price down to %s or less",
						r.OptimalValue.StringFixed(2)))
			}
		case TargetMonthsToSell:
			extra := r.OptimalValue.Sub(r.BaseValue)
			if extra.GreaterThanOrEqual(decimal.Zero) {
				recommendations = append(recommendations,
					fmt.Sprintf("Holding period can stretch to %s months (%s more than planned)",
						r.OptimalValue.String(), extra.String()))
			} else {
				recommendations = append(recommendations,
					fmt.Sprintf("Sell within %s months to reach the goal", r.OptimalValue.String()))
			}
		}
	}

	return recommendations
}
