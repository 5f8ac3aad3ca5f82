package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func analysisCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analysis",
		Short: "Work with analyses stored in the backend",
		Long: `List, inspect and select analyses stored in the backend, and push
simulation parameters from an analysis file.

The selected analysis is remembered in the settings file and used whenever a
command needs one and none is given.`,
	}

	cmd.AddCommand(
		analysisListCmd(c),
		analysisShowCmd(c),
		analysisUseCmd(c),
		analysisCreateCmd(c),
		analysisPushParamsCmd(c),
	)
	return cmd
}

func analysisListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			analyses, err := client.ListAnalyses(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(analyses) == 0 {
				fmt.Fprintln(out, "No analyses found.")
				return nil
			}
			fmt.Fprintf(out, "  %-24s %-32s %s\n", "ID", "NAME", "CREATED")
			for _, a := range analyses {
				marker := " "
				if a.ID == c.settings.ActiveAnalysis {
					marker = "*"
				}
				created := ""
				if !a.CreatedAt.IsZero() {
					created = a.CreatedAt.Format("2006-01-02")
				}
				fmt.Fprintf(out, "%s %-24s %-32s %s\n", marker, a.ID, a.Name, created)
			}
			return nil
		},
	}
}

func analysisShowCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [analysis-id]",
		Short: "Evaluate an analysis from the backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			ac, err := c.activeAnalysis(id)
			if err != nil {
				return err
			}

			f := output.GetFormatterByName(format)
			if f == nil || f.Name() == "pdf" {
				return fmt.Errorf("unknown output format %q (valid: console, json, csv, html)", format)
			}

			client, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			analysis, err := client.LoadAnalysis(cmd.Context(), ac)
			if err != nil {
				return err
			}
			report, err := c.engine().RunAnalysis(cmd.Context(), analysis)
			if err != nil {
				return err
			}
			data, err := f.Format(report)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "console", "Output format (console, json, csv, html)")
	return cmd
}

func analysisUseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "use [analysis-id]",
		Short: "Select the active analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ac, err := c.activeAnalysis(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			name := ac.AnalysisID
			if client, err := c.backend(cmd.Context()); err == nil {
				analysis, err := client.GetAnalysis(cmd.Context(), ac)
				if err != nil {
					return err
				}
				if analysis.Name != "" {
					name = analysis.Name
				}
			} else if !errors.Is(err, errNoBackend) {
				return err
			}

			path, err := c.settings.SaveActiveAnalysis(ac.AnalysisID)
			if err != nil {
				return err
			}
			c.logger.Debug("active analysis saved",
				zap.String("op", "cli.analysisUse"),
				zap.String("analysis", ac.AnalysisID),
				zap.String("file", path))
			fmt.Fprintf(cmd.OutOrStdout(), "Active analysis: %s (saved to %s)\n", name, path)
			return nil
		},
	}
}

func analysisCreateCmd(c *cli) *cobra.Command {
	var (
		description string
		use         bool
	)

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create an empty analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			info, err := client.CreateAnalysis(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created analysis %s (%s)\n", info.Name, info.ID)

			if use {
				if _, err := c.settings.SaveActiveAnalysis(info.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Active analysis: %s\n", info.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Analysis description")
	cmd.Flags().BoolVar(&use, "use", false, "Select the new analysis as active")
	return cmd
}

func analysisPushParamsCmd(c *cli) *cobra.Command {
	var (
		candidate  string
		analysisID string
	)

	cmd := &cobra.Command{
		Use:   "push-params [analysis-file]",
		Short: "Save a candidate's parameters to its backend simulation",
		Long: `Resolve a candidate's parameters from an analysis file and store them in the
backend simulation named by the candidate's simulation_id.`,
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
			cand := analysis.Candidates[i]
			if cand.Property.SimulationID == "" {
				return fmt.Errorf("candidate %s has no simulation_id", cand.Property.ID)
			}

			if analysisID == "" {
				analysisID = analysis.ID
			}
			ac, err := c.activeAnalysis(analysisID)
			if err != nil {
				return err
			}

			engine := c.engine()
			params, _ := engine.ResolveParameters(analysis, cand)
			warnings, err := calculation.ValidateParameters(params, engine.Limits)
			if err != nil {
				return err
			}

			client, err := c.backend(cmd.Context())
			if err != nil {
				return err
			}
			sim, err := client.UpdateSimulation(cmd.Context(), ac.WithSimulation(cand.Property.SimulationID), cand.Property.SimulationID, params)
			if err != nil {
				return err
			}

			simID := sim.ID
			if simID == "" {
				simID = cand.Property.SimulationID
			}

			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			fmt.Fprintf(out, "Saved parameters for %s to simulation %s\n", cand.Property.DisplayName(), simID)
			return nil
		},
	}

	cmd.Flags().StringVar(&candidate, "candidate", "", "Candidate property ID")
	cmd.Flags().StringVar(&analysisID, "analysis", "", "Analysis ID (default: the file's id, then the active analysis)")
	return cmd
}
