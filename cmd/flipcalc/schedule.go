package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/output"
	"github.com/spf13/cobra"
)

func scheduleCmd(c *cli) *cobra.Command {
	var (
		candidate string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "schedule [analysis-file]",
		Short: "Print the loan schedule until the sale",
		Long: `Print the month-by-month amortization of a candidate's loan up to the sale.

Examples:
  flipcalc schedule analysis.yaml --candidate apt-101
  flipcalc schedule analysis.yaml --candidate apt-101 --format csv`,
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

			engine := c.engine()
			params, _ := engine.ResolveParameters(analysis, analysis.Candidates[i])
			if _, err := calculation.ValidateParameters(params, engine.Limits); err != nil {
				return err
			}
			entries, err := calculation.AmortizationSchedule(params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "csv":
				data, err := output.ScheduleCSV(entries)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			case "table", "console", "":
				fmt.Fprintf(out, "LOAN SCHEDULE: %s\n", analysis.Candidates[i].Property.DisplayName())
				fmt.Fprintln(out, strings.Repeat("=", 96))
				if len(entries) == 0 {
					fmt.Fprintln(out, "The property is sold before the first installment.")
					return nil
				}
				fmt.Fprintf(out, "%5s %16s %14s %14s %14s %16s\n",
					"Month", "Opening", "Interest", "Amortization", "Installment", "Paid to date")
				fmt.Fprintln(out, strings.Repeat("-", 96))
				for _, e := range entries {
					fmt.Fprintf(out, "%5d %16s %14s %14s %14s %16s\n",
						e.Month,
						output.FormatCurrency(e.OpeningBalance),
						output.FormatCurrency(e.Interest),
						output.FormatCurrency(e.Amortization),
						output.FormatCurrency(e.Installment),
						output.FormatCurrency(e.CumulativeInstallments))
				}
				last := entries[len(entries)-1]
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Balance at sale: %s\n", output.FormatCurrency(last.ClosingBalance))
				return nil
			default:
				return fmt.Errorf("unknown output format %q (valid: table, csv)", format)
			}
		},
	}

	cmd.Flags().StringVar(&candidate, "candidate", "", "Candidate property ID")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, csv)")
	return cmd
}
