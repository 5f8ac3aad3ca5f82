package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/breakeven"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func breakEvenCmd(c *cli) *cobra.Command {
	var (
		candidate string
		target    string
		goal      string
		roi       float64
		maxMonths int
		format    string
	)

	cmd := &cobra.Command{
		Use:   "break-even [analysis-file]",
		Short: "Find the prices and holding period at which a flip stops paying",
		Long: `Solve for the minimum sale price, the maximum purchase price or the longest
holding period that still reaches break-even or a target ROI.

Examples:
  flipcalc break-even analysis.yaml --candidate apt-101
  flipcalc break-even analysis.yaml --candidate apt-101 --target sale_price --goal target_roi --roi 0.2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := loadAnalysis(args[0])
			if err != nil {
				return err
			}
			i, err := candidateIndex(analysis, candidate)
			if err != nil {
				return err
			}

			var constraints breakeven.Constraints
			if cmd.Flags().Changed("roi") {
				r := decimal.NewFromFloat(roi)
				constraints.TargetROI = &r
				if goal == "" {
					goal = string(breakeven.GoalTargetROI)
				}
			}
			if cmd.Flags().Changed("max-months") {
				constraints.MaxMonthsToSell = &maxMonths
			}
			if goal == "" {
				goal = string(breakeven.GoalBreakEven)
			}

			engine := c.engine()
			cand := analysis.Candidates[i]
			params, _ := engine.ResolveParameters(analysis, cand)
			solver := breakeven.NewDefaultSolver(engine)

			asJSON := false
			switch strings.ToLower(format) {
			case "json":
				asJSON = true
			case "table", "console", "":
			default:
				return fmt.Errorf("unknown output format %q (valid: table, json)", format)
			}

			var out string
			if t := breakeven.SolveTarget(strings.ToLower(target)); t == "" || t == breakeven.TargetAll {
				result, err := solver.SolveAll(cmd.Context(), cand.Property.Facts(), params, constraints, breakeven.SolveGoal(goal))
				if err != nil {
					return err
				}
				if asJSON {
					out, err = (&breakeven.JSONFormatter{Pretty: true}).FormatMulti(result)
				} else {
					out = (&breakeven.TableFormatter{}).FormatMulti(result)
				}
				if err != nil {
					return err
				}
			} else {
				result, err := solver.Solve(cmd.Context(), breakeven.SolveRequest{
					Facts:       cand.Property.Facts(),
					Base:        params,
					Target:      t,
					Goal:        breakeven.SolveGoal(goal),
					Constraints: constraints,
				})
				if err != nil {
					return err
				}
				if asJSON {
					out, err = (&breakeven.JSONFormatter{Pretty: true}).Format(result)
				} else {
					out = (&breakeven.TableFormatter{}).Format(result)
				}
				if err != nil {
					return err
				}
			}

			if !asJSON {
				out = fmt.Sprintf("Candidate: %s\n\n", cand.Property.DisplayName()) + out
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVar(&candidate, "candidate", "", "Candidate property ID")
	cmd.Flags().StringVar(&target, "target", "all", "Parameter to solve (sale_price, purchase_price, months_to_sell, all)")
	cmd.Flags().StringVar(&goal, "goal", "", "Goal to reach (break_even, target_roi); target_roi when --roi is set")
	cmd.Flags().Float64Var(&roi, "roi", 0, "Target ROI as a fraction (0.2 for 20%)")
	cmd.Flags().IntVar(&maxMonths, "max-months", 0, "Longest holding period searched")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	return cmd
}
