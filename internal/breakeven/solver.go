package breakeven

import (
	"context"
	"fmt"
	"math"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/transform"
	"github.com/shopspring/decimal"
)

// Solver finds the value of one parameter at which a flip reaches a target ROI
type Solver struct {
	CalcEngine *calculation.CalculationEngine
	Options    SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(calcEngine *calculation.CalculationEngine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.CalculationEngine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// evaluation is one point of the search.
type evaluation struct {
	value  float64
	params domain.SimulationParameters
	result domain.ViabilityResult
}

// Solve runs the solver for the requested target
func (s *Solver) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	if err := req.Constraints.Validate(); err != nil {
		return nil, err
	}
	if _, err := calculation.ValidateParameters(req.Base, s.limits()); err != nil {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message:   "invalid base parameters",
			Cause:     err,
		}
	}

	// Apply defaults
	if req.MaxIterations <= 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.MaxIterations <= 0 {
		req.MaxIterations = DefaultSolverOptions().MaxIterations
	}
	if !req.Tolerance.IsPositive() {
		req.Tolerance = s.Options.Tolerance
	}
	if !req.Tolerance.IsPositive() {
		req.Tolerance = DefaultSolverOptions().Tolerance
	}
	if req.Goal == "" {
		req.Goal = GoalBreakEven
	}

	threshold, err := thresholdFor(req)
	if err != nil {
		return nil, err
	}

	base, err := calculation.ComputeViability(req.Base, req.Facts)
	if err != nil {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message:   "failed to calculate base parameters",
			Cause:     err,
		}
	}

	var (
		best       evaluation
		iterations int
		converged  bool
		info       string
	)

	switch req.Target {
	case TargetSalePrice:
		best, iterations, converged, err = s.solveSalePrice(ctx, req, threshold)
	case TargetPurchasePrice:
		best, iterations, converged, err = s.solvePurchasePrice(ctx, req, threshold)
	case TargetMonthsToSell:
		best, iterations, info, err = s.solveMonthsToSell(ctx, req, threshold)
		converged = true
	default:
		return nil, &BreakEvenError{
			Operation: "solve",
			Message:   fmt.Sprintf("unsupported target: %s", req.Target),
		}
	}
	if err != nil {
		return nil, err
	}

	if info == "" {
		if converged {
			info = fmt.Sprintf("Bisection converged within %s", req.Tolerance.StringFixed(2))
		} else {
			info = fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations)
		}
	}

	return s.buildResult(req, threshold, base, best, iterations, converged, info), nil
}

func thresholdFor(req SolveRequest) (decimal.Decimal, error) {
	switch req.Goal {
	case GoalBreakEven:
		return decimal.Zero, nil
	case GoalTargetROI:
		if req.Constraints.TargetROI == nil {
			return decimal.Zero, &BreakEvenError{
				Operation: "solve",
				Message:   "target_roi goal requires a target ROI",
			}
		}
		return *req.Constraints.TargetROI, nil
	default:
		return decimal.Zero, &BreakEvenError{
			Operation: "solve",
			Message:   fmt.Sprintf("unsupported goal: %s", req.Goal),
		}
	}
}

// evaluateAt sets the target parameter to value and computes the result.
func (s *Solver) evaluateAt(req SolveRequest, value float64) (evaluation, error) {
	set := &transform.SetParameter{Parameter: string(req.Target), Value: value}
	params, err := transform.ApplyTransforms(req.Base, []transform.ParameterTransform{set})
	if err != nil {
		return evaluation{}, &BreakEvenError{
			Operation: "solve_" + string(req.Target),
			Message:   "failed to apply parameter",
			Cause:     err,
		}
	}

	if _, err := calculation.ValidateParameters(params, s.limits()); err != nil {
		return evaluation{}, &BreakEvenError{
			Operation: "solve_" + string(req.Target),
			Message:   "invalid parameters",
			Cause:     err,
		}
	}

	result, err := calculation.ComputeViability(params, req.Facts)
	if err != nil {
		return evaluation{}, &BreakEvenError{
			Operation: "solve_" + string(req.Target),
			Message:   fmt.Sprintf("failed to calculate at %g", value),
			Cause:     err,
		}
	}

	if s.CalcEngine != nil && s.CalcEngine.Debug && s.CalcEngine.Logger != nil {
		s.CalcEngine.Logger.Debugf("solver %s=%.2f roi=%s", req.Target, value, result.ROI.StringFixed(6))
	}

	return evaluation{value: value, params: params, result: result}, nil
}

// solveSalePrice bisects for the lowest sale price meeting the threshold.
// ROI rises with the sale price.
func (s *Solver) solveSalePrice(ctx context.Context, req SolveRequest, threshold decimal.Decimal) (evaluation, int, bool, error) {
	lo := 0.0
	hi := 10 * math.Max(math.Max(req.Base.SalePrice, req.Base.PurchasePrice), 1)
	if req.Constraints.MinSalePrice != nil {
		lo = *req.Constraints.MinSalePrice
	}
	if req.Constraints.MaxSalePrice != nil {
		hi = *req.Constraints.MaxSalePrice
	}

	low, err := s.evaluateAt(req, lo)
	if err != nil {
		return evaluation{}, 0, false, err
	}
	if meets(low, threshold) {
		return low, 0, true, nil
	}

	high, err := s.evaluateAt(req, hi)
	if err != nil {
		return evaluation{}, 0, false, err
	}
	if !meets(high, threshold) {
		return evaluation{}, 0, false, &BreakEvenError{
			Operation: "solve_sale_price",
			Message:   fmt.Sprintf("goal not reachable with a sale price up to %.2f", hi),
		}
	}

	tol := req.Tolerance.InexactFloat64()
	iterations := 0
	for iterations < req.MaxIterations && hi-lo > tol {
		iterations++

		select {
		case <-ctx.Done():
			return evaluation{}, iterations, false, ctx.Err()
		default:
		}

		mid := (lo + hi) / 2
		e, err := s.evaluateAt(req, mid)
		if err != nil {
			return evaluation{}, iterations, false, err
		}
		if meets(e, threshold) {
			hi, high = mid, e
		} else {
			lo = mid
		}
	}

	// Round up to the cent; the result still meets the threshold.
	if rounded := math.Ceil(hi*100) / 100; rounded != hi {
		if e, err := s.evaluateAt(req, rounded); err == nil {
			high = e
		}
	}

	return high, iterations, hi-lo <= tol, nil
}

// solvePurchasePrice bisects for the highest purchase price still meeting
// the threshold. ROI falls as the purchase price rises.
func (s *Solver) solvePurchasePrice(ctx context.Context, req SolveRequest, threshold decimal.Decimal) (evaluation, int, bool, error) {
	lo := 0.0
	hi := 2 * math.Max(math.Max(req.Base.SalePrice, req.Base.PurchasePrice), 1)
	if req.Constraints.MinPurchasePrice != nil {
		lo = *req.Constraints.MinPurchasePrice
	}
	if req.Constraints.MaxPurchasePrice != nil {
		hi = *req.Constraints.MaxPurchasePrice
	}

	high, err := s.evaluateAt(req, hi)
	if err != nil {
		return evaluation{}, 0, false, err
	}
	if meets(high, threshold) {
		return high, 0, true, nil
	}

	low, err := s.evaluateAt(req, lo)
	if err != nil {
		return evaluation{}, 0, false, err
	}
	if !meets(low, threshold) {
		return evaluation{}, 0, false, &BreakEvenError{
			Operation: "solve_purchase_price",
			Message:   fmt.Sprintf("goal not reachable with a purchase price of %.2f or more", lo),
		}
	}

	tol := req.Tolerance.InexactFloat64()
	iterations := 0
	for iterations < req.MaxIterations && hi-lo > tol {
		iterations++

		select {
		case <-ctx.Done():
			return evaluation{}, iterations, false, ctx.Err()
		default:
		}

		mid := (lo + hi) / 2
		e, err := s.evaluateAt(req, mid)
		if err != nil {
			return evaluation{}, iterations, false, err
		}
		if meets(e, threshold) {
			lo, low = mid, e
		} else {
			hi = mid
		}
	}

	if rounded := math.Floor(lo*100) / 100; rounded != lo {
		if e, err := s.evaluateAt(req, rounded); err == nil {
			low = e
		}
	}

	return low, iterations, hi-lo <= tol, nil
}

// solveMonthsToSell scans holding periods from zero and stops at the first
// one that misses the threshold.
func (s *Solver) solveMonthsToSell(ctx context.Context, req SolveRequest, threshold decimal.Decimal) (evaluation, int, string, error) {
	// a constraint can narrow the scan but never widen it past the engine limit
	maxMonths := s.limits().MaxMonthsToSell
	if req.Constraints.MaxMonthsToSell != nil && *req.Constraints.MaxMonthsToSell < maxMonths {
		maxMonths = *req.Constraints.MaxMonthsToSell
	}

	var best evaluation
	found := false
	iterations := 0

	for m := 0; m <= maxMonths; m++ {
		iterations++

		select {
		case <-ctx.Done():
			return evaluation{}, iterations, "", ctx.Err()
		default:
		}

		e, err := s.evaluateAt(req, float64(m))
		if err != nil {
			return evaluation{}, iterations, "", err
		}
		if !meets(e, threshold) {
			break
		}
		best, found = e, true
	}

	if !found {
		return evaluation{}, iterations, "", &BreakEvenError{
			Operation: "solve_months_to_sell",
			Message:   "goal not reachable even when selling immediately",
		}
	}

	if int(best.value) == maxMonths {
		return best, iterations, fmt.Sprintf("Goal met for every holding period up to %d months", maxMonths), nil
	}
	return best, iterations, fmt.Sprintf("Evaluated %d holding periods", iterations), nil
}

// limits returns the engine bounds, falling back to the defaults.
func (s *Solver) limits() calculation.Limits {
	if s.CalcEngine != nil && s.CalcEngine.Limits.MaxMonthsToSell > 0 {
		return s.CalcEngine.Limits
	}
	return calculation.DefaultLimits()
}

func meets(e evaluation, threshold decimal.Decimal) bool {
	return e.result.ROI.GreaterThanOrEqual(threshold)
}

// buildResult creates a solve result from the best evaluation
func (s *Solver) buildResult(
	req SolveRequest,
	threshold decimal.Decimal,
	base domain.ViabilityResult,
	best evaluation,
	iterations int,
	converged bool,
	info string,
) *SolveResult {
	value, _ := best.params.Get(string(req.Target))
	baseValue, _ := req.Base.Get(string(req.Target))

	result := &SolveResult{
		Request:               req,
		Success:               converged,
		Iterations:            iterations,
		ConvergenceInfo:       info,
		ThresholdROI:          threshold,
		OptimalValue:          decimal.NewFromFloat(value),
		OptimalParameters:     best.params,
		ROI:                   best.result.ROI,
		NetProfit:             best.result.NetProfit,
		BaseValue:             decimal.NewFromFloat(baseValue),
		BaseROI:               base.ROI,
		NetProfitDiffFromBase: best.result.NetProfit.Sub(base.NetProfit),
	}

	result.ValueDiffFromBase = result.OptimalValue.Sub(result.BaseValue)
	if !result.BaseValue.IsZero() {
		result.ValuePctFromBase = result.ValueDiffFromBase.
			Div(result.BaseValue).
			Mul(decimal.NewFromInt(100))
	}

	return result
}
