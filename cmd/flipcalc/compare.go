package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/compare"
	"github.com/rgehrsitz/flipcalc/internal/transform"
	"github.com/spf13/cobra"
)

// customTemplate names the scenario assembled from --with transforms.
const customTemplate = "custom"

func compareCmd(c *cli) *cobra.Command {
	var (
		candidate     string
		templates     []string
		transforms    []string
		allCandidates bool
		format        string
	)

	cmd := &cobra.Command{
		Use:   "compare [analysis-file]",
		Short: "Compare a candidate against what-if scenarios or other candidates",
		Long: `Compare a candidate's plan against scenario templates, against ad-hoc
transforms, or against every other candidate of the analysis.

Examples:
  flipcalc compare analysis.yaml --candidate apt-101 --templates sell_fast_3m,delay_sale_6m
  flipcalc compare analysis.yaml --candidate apt-101 --with delay_sale:months=3 --with adjust_sale_price:pct=-5
  flipcalc compare analysis.yaml --candidate apt-101 --candidates --format csv
  flipcalc templates   # list available templates`,
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
			ce := compare.NewCompareEngine(engine)

			var compSet *compare.ComparisonSet
			if allCandidates {
				compSet, err = ce.CompareCandidates(cmd.Context(), analysis, analysis.Candidates[i].Property.ID)
			} else {
				names := transform.ParseTemplateList(strings.Join(templates, ","))
				if len(transforms) > 0 {
					custom, err := customScenario(transforms)
					if err != nil {
						return err
					}
					ce.TemplateRegistry.Register(custom)
					names = append(names, customTemplate)
				}
				if len(names) == 0 {
					return errors.New("nothing to compare: pass --templates, --with or --candidates")
				}

				cand := analysis.Candidates[i]
				params, _ := engine.ResolveParameters(analysis, cand)
				compSet, err = ce.Compare(cmd.Context(), cand.Property.Facts(), params, compare.CompareOptions{
					BaseName:  cand.Property.DisplayName(),
					Templates: names,
				})
				if compSet != nil {
					compSet.Source = args[0]
				}
			}
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}

			var out string
			switch strings.ToLower(format) {
			case "csv":
				out, err = (&compare.CSVFormatter{}).Format(compSet)
			case "json":
				out, err = (&compare.JSONFormatter{Pretty: true}).Format(compSet)
			case "compact":
				out = (&compare.TableFormatter{}).FormatCompact(compSet)
			case "table", "console", "":
				out = (&compare.TableFormatter{}).Format(compSet)
			default:
				return fmt.Errorf("unknown output format %q (valid: table, compact, csv, json)", format)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVar(&candidate, "candidate", "", "Candidate property ID used as the base")
	cmd.Flags().StringSliceVar(&templates, "templates", nil, "Comma-separated scenario templates to compare")
	cmd.Flags().StringArrayVar(&transforms, "with", nil, "Transform applied to a custom scenario (name:key=value,...); repeatable")
	cmd.Flags().BoolVar(&allCandidates, "candidates", false, "Compare against every other candidate instead")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, compact, csv, json)")
	cmd.MarkFlagsMutuallyExclusive("candidates", "templates")
	cmd.MarkFlagsMutuallyExclusive("candidates", "with")
	return cmd
}

// customScenario chains the given transform specs into one template.
func customScenario(specs []string) (transform.Template, error) {
	registry := transform.NewTransformRegistry()
	t := transform.Template{Name: customTemplate}

	descriptions := make([]string, 0, len(specs))
	for _, spec := range specs {
		tr, err := registry.ParseTransformSpec(spec)
		if err != nil {
			return t, fmt.Errorf("--with %s: %w", spec, err)
		}
		t.Transforms = append(t.Transforms, tr)
		descriptions = append(descriptions, tr.Description())
	}
	t.Description = strings.Join(descriptions, "; ")
	return t, nil
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List scenario templates and transforms",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			registry := transform.CreateBuiltInTemplates()

			fmt.Fprintln(out, "SCENARIO TEMPLATES")
			fmt.Fprintln(out, strings.Repeat("=", 60))
			for _, name := range registry.List() {
				t, _ := registry.Get(name)
				fmt.Fprintf(out, "  %-22s %s\n", t.Name, t.Description)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "TRANSFORMS (use with compare --with)")
			fmt.Fprintln(out, strings.Repeat("=", 60))
			for _, name := range transform.NewTransformRegistry().List() {
				fmt.Fprintf(out, "  %s\n", name)
			}
		},
	}
}
