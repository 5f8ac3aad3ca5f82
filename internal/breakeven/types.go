package breakeven

import (
	"fmt"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// SolveTarget defines which parameter the solver moves
type SolveTarget string

const (
	TargetSalePrice     SolveTarget = "sale_price"     // Minimum sale price reaching the goal
	TargetPurchasePrice SolveTarget = "purchase_price" // Maximum purchase price still reaching the goal
	TargetMonthsToSell  SolveTarget = "months_to_sell" // Longest holding period still reaching the goal
	TargetAll           SolveTarget = "all"
)

// SolveGoal defines the ROI threshold to reach
type SolveGoal string

const (
	GoalBreakEven SolveGoal = "break_even" // ROI of zero
	GoalTargetROI SolveGoal = "target_roi" // ROI given by Constraints.TargetROI
)

// Constraints define bounds for the searched parameter
type Constraints struct {
	MinSalePrice *float64 `json:"min_sale_price,omitempty"`
	MaxSalePrice *float64 `json:"max_sale_price,omitempty"`

	MinPurchasePrice *float64 `json:"min_purchase_price,omitempty"`
	MaxPurchasePrice *float64 `json:"max_purchase_price,omitempty"`

	MaxMonthsToSell *int `json:"max_months_to_sell,omitempty"`

	// ROI as a fraction (0.10 for 10%) for the target_roi goal
	TargetROI *decimal.Decimal `json:"target_roi,omitempty"`
}

// SolveRequest defines the parameters for a solver run
type SolveRequest struct {
	Facts         domain.PropertyFacts        `json:"facts"`
	Base          domain.SimulationParameters `json:"base"`
	Target        SolveTarget                 `json:"target"`
	Goal          SolveGoal                   `json:"goal"`
	Constraints   Constraints                 `json:"constraints"`
	MaxIterations int                         `json:"max_iterations"` // Maximum bisection steps
	Tolerance     decimal.Decimal             `json:"tolerance"`      // Currency units
}

// SolveResult contains the outcome of a solver run
type SolveResult struct {
	Request         SolveRequest `json:"request"`
	Success         bool         `json:"success"`
	Iterations      int          `json:"iterations"`
	ConvergenceInfo string       `json:"convergence_info"`

	// Threshold the optimum satisfies
	ThresholdROI decimal.Decimal `json:"threshold_roi"`

	// Value found for the target parameter and the parameters that produced it
	OptimalValue      decimal.Decimal             `json:"optimal_value"`
	OptimalParameters domain.SimulationParameters `json:"optimal_parameters"`

	// Results at the optimum
	ROI       decimal.Decimal `json:"roi"`
	NetProfit decimal.Decimal `json:"net_profit"`

	// Comparison to base
	BaseValue             decimal.Decimal `json:"base_value"`
	BaseROI               decimal.Decimal `json:"base_roi"`
	ValueDiffFromBase     decimal.Decimal `json:"value_diff_from_base"`
	ValuePctFromBase      decimal.Decimal `json:"value_pct_from_base"`
	NetProfitDiffFromBase decimal.Decimal `json:"net_profit_diff_from_base"`
}

// MultiTargetResult contains results when solving every target
type MultiTargetResult struct {
	Results         []SolveResult `json:"results"`
	Recommendations []string      `json:"recommendations"`
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	Tolerance     decimal.Decimal // Convergence tolerance in currency units
	MaxIterations int             // Maximum bisection steps
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromInt(1),
		MaxIterations: 60,
	}
}

// Validate checks if constraints are internally consistent
func (c *Constraints) Validate() error {
	if c.MinSalePrice != nil && c.MaxSalePrice != nil && *c.MinSalePrice > *c.MaxSalePrice {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "min_sale_price cannot be greater than max_sale_price",
		}
	}
	if c.MinPurchasePrice != nil && c.MaxPurchasePrice != nil && *c.MinPurchasePrice > *c.MaxPurchasePrice {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "min_purchase_price cannot be greater than max_purchase_price",
		}
	}
	for name, v := range map[string]*float64{
		"min_sale_price":     c.MinSalePrice,
		"max_sale_price":     c.MaxSalePrice,
		"min_purchase_price": c.MinPurchasePrice,
		"max_purchase_price": c.MaxPurchasePrice,
	} {
		if v != nil && *v < 0 {
			return &BreakEvenError{
				Operation: "validate_constraints",
				Message:   name + " cannot be negative",
			}
		}
	}
	if c.MaxMonthsToSell != nil && *c.MaxMonthsToSell < 0 {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "max_months_to_sell cannot be negative",
		}
	}
	if c.MaxMonthsToSell != nil && *c.MaxMonthsToSell > calculation.DefaultMaxMonthsToSell {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   fmt.Sprintf("max_months_to_sell cannot exceed %d", calculation.DefaultMaxMonthsToSell),
		}
	}

	return nil
}

// BreakEvenError represents errors from break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
