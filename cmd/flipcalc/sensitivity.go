package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/output"
	"github.com/spf13/cobra"
)

// sweep is one parsed --parameter flag.
type sweep struct {
	name     string
	min, max float64
	steps    int
}

func sensitivityCmd(c *cli) *cobra.Command {
	var (
		candidate  string
		parameters []string
		steps      int
		format     string
	)

	cmd := &cobra.Command{
		Use:   "sensitivity [analysis-file]",
		Short: "Sweep a parameter and report how ROI responds",
		Long: `Sweep one or more parameters linearly and report ROI and net profit at each value.

Examples:
  flipcalc sensitivity analysis.yaml --candidate apt-101 --parameter sale_price:850000-1000000:7
  flipcalc sensitivity analysis.yaml --candidate apt-101 --parameter months_to_sell:3-24 --steps 8
  flipcalc sensitivity analysis.yaml --candidate apt-101 --parameter annual_financing_rate_pct:9-14:6 --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(parameters) == 0 {
				return fmt.Errorf("--parameter is required (one of: %s)", strings.Join(domain.ParameterNames(), ", "))
			}
			sweeps := make([]sweep, 0, len(parameters))
			for _, p := range parameters {
				s, err := parseSweep(p, steps)
				if err != nil {
					return err
				}
				sweeps = append(sweeps, s)
			}

			analysis, err := loadAnalysis(args[0])
			if err != nil {
				return err
			}
			i, err := candidateIndex(analysis, candidate)
			if err != nil {
				return err
			}

			engine := c.engine()
			cand := analysis.Candidates[i]
			params, _ := engine.ResolveParameters(analysis, cand)
			formatter := output.NewSensitivityFormatter(format)

			out := cmd.OutOrStdout()
			for n, s := range sweeps {
				result, err := engine.RunSensitivity(cmd.Context(), cand.Property.Facts(), params, s.name, s.min, s.max, s.steps)
				if err != nil {
					return err
				}
				text, err := formatter.FormatSensitivityAnalysis(result)
				if err != nil {
					return err
				}
				if n > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprint(out, text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&candidate, "candidate", "", "Candidate property ID")
	cmd.Flags().StringArrayVar(&parameters, "parameter", nil, "Parameter sweep (name:min-max[:steps]); repeatable")
	cmd.Flags().IntVar(&steps, "steps", 5, "Steps used when a sweep does not give its own")
	cmd.Flags().StringVarP(&format, "format", "f", "console", "Output format (console, csv, json)")
	return cmd
}

// parseSweep parses name:min-max[:steps].
func parseSweep(spec string, defaultSteps int) (sweep, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return sweep{}, fmt.Errorf("invalid parameter sweep %q (expected name:min-max[:steps])", spec)
	}

	s := sweep{name: strings.TrimSpace(parts[0]), steps: defaultSteps}
	if _, err := (domain.SimulationParameters{}).Get(s.name); err != nil {
		return sweep{}, err
	}

	// a leading minus belongs to min
	rng := strings.TrimSpace(parts[1])
	dash := strings.Index(rng[min(1, len(rng)):], "-")
	if dash < 0 {
		return sweep{}, fmt.Errorf("invalid range %q (expected min-max)", parts[1])
	}
	dash += min(1, len(rng))

	var err error
	if s.min, err = strconv.ParseFloat(rng[:dash], 64); err != nil {
		return sweep{}, fmt.Errorf("invalid range minimum %q: %w", rng[:dash], err)
	}
	if s.max, err = strconv.ParseFloat(rng[dash+1:], 64); err != nil {
		return sweep{}, fmt.Errorf("invalid range maximum %q: %w", rng[dash+1:], err)
	}
	if len(parts) == 3 {
		if s.steps, err = strconv.Atoi(strings.TrimSpace(parts[2])); err != nil {
			return sweep{}, fmt.Errorf("invalid steps %q: %w", parts[2], err)
		}
	}
	return s, nil
}
