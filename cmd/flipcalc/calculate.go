package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func calculateCmd(c *cli) *cobra.Command {
	var (
		format    string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "calculate [analysis-file]",
		Short: "Evaluate every candidate of an analysis",
		Long: `Evaluate every candidate of an analysis file and render the report.

Examples:
  flipcalc calculate analysis.yaml
  flipcalc calculate analysis.yaml --format csv > flips.csv
  flipcalc calculate analysis.yaml --format pdf --output-dir reports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.GetFormatterByName(format)
			if f == nil {
				return fmt.Errorf("unknown output format %q (valid: %s)", format, strings.Join(output.AvailableFormatterNames(), ", "))
			}

			analysis, err := loadAnalysis(args[0])
			if err != nil {
				return err
			}
			report, err := c.engine().RunAnalysis(cmd.Context(), analysis)
			if err != nil {
				return err
			}

			// binary output always goes to a file
			if outputDir == "" && f.Name() == "pdf" {
				outputDir = "."
			}
			if outputDir != "" {
				path, err := output.WriteFormatted(f, report, outputDir)
				if err != nil {
					return err
				}
				c.logger.Info("report written",
					zap.String("op", "cli.calculate"),
					zap.String("format", f.Name()),
					zap.String("path", path))
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
				return nil
			}

			data, err := f.Format(report)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "console", "Output format ("+strings.Join(output.AvailableFormatterNames(), ", ")+")")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Write the report to this directory instead of stdout")
	return cmd
}

func validateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [analysis-file]",
		Short: "Validate an analysis file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := loadAnalysis(args[0])
			if err != nil {
				return err
			}

			engine := c.engine()
			out := cmd.OutOrStdout()
			for _, cand := range analysis.Candidates {
				params, _ := engine.ResolveParameters(analysis, cand)
				warnings, err := calculation.ValidateParameters(params, engine.Limits)
				if err != nil {
					return fmt.Errorf("candidate %s: %w", cand.Property.ID, err)
				}
				for _, w := range warnings {
					fmt.Fprintf(out, "warning: %s: %s\n", cand.Property.DisplayName(), w)
				}
			}

			fmt.Fprintf(out, "Analysis file %s is valid (%d candidates, %d references)\n",
				args[0], len(analysis.Candidates), len(analysis.References))
			return nil
		},
	}
}
