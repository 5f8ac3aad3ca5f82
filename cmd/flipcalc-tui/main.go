package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rgehrsitz/flipcalc/internal/backend"
	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/config"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		analysisID string
	)

	cmd := &cobra.Command{
		Use:   "flipcalc-tui [analysis-file]",
		Short: "Interactive property flip viability form",
		Long: `Edit a candidate's parameters and watch net profit and ROI update on every
keystroke.

Reads an analysis file, or an analysis from the backend with --analysis (or the
active analysis when no file is given). Parameters can be saved back to the
backend with ctrl+s.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(configPath)
			if err != nil {
				return err
			}

			// the terminal belongs to the UI; logs only go to a file
			logger := zap.NewNop()
			if settings.Logging.OutputFile != "" {
				if logger, err = config.NewLogger(settings.Logging, ""); err != nil {
					return err
				}
			}
			defer func() { _ = logger.Sync() }()

			engine := calculation.NewCalculationEngineWithLimits(calculation.Limits{
				MaxMonthsToSell: settings.Engine.MaxMonthsToSell,
			})
			engine.SuggestionMethod = calculation.SuggestionMethod(strings.ToLower(settings.Engine.SuggestionMethod))
			engine.SetLogger(logger.Sugar())

			opts := tui.Options{Engine: engine}

			var client *backend.Client
			if settings.Backend.URL != "" {
				cache, err := backend.NewCache(cmd.Context(), settings.Cache)
				if err != nil {
					return fmt.Errorf("cache: %w", err)
				}
				client, err = backend.NewClient(settings.Backend.URL,
					backend.WithHTTPClient(&http.Client{Timeout: settings.Backend.Timeout}),
					backend.WithToken(settings.Backend.Token),
					backend.WithCache(cache, settings.Cache.TTL),
					backend.WithLogger(logger),
				)
				if err != nil {
					return err
				}
				opts.Saver = client
			}

			switch {
			case len(args) == 1:
				path := args[0]
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("analysis file not found: %s", path)
				}
				opts.Source = path
				opts.Load = func(context.Context) (*domain.Analysis, error) {
					analysis, err := config.NewInputParser().LoadFromFile(path)
					if err != nil {
						return nil, err
					}
					if analysisID != "" {
						analysis.ID = analysisID
					}
					return analysis, nil
				}
			case client != nil:
				if analysisID == "" {
					analysisID = settings.ActiveAnalysis
				}
				ac := domain.NewAnalysisContext(analysisID)
				if err := ac.Require(); err != nil {
					return fmt.Errorf("%w: pass an analysis file or --analysis", err)
				}
				opts.Source = settings.Backend.URL
				opts.Load = func(ctx context.Context) (*domain.Analysis, error) {
					return client.LoadAnalysis(ctx, ac)
				}
			default:
				return fmt.Errorf("an analysis file is required when no backend is configured")
			}

			p := tea.NewProgram(
				tui.NewModel(opts),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Settings file")
	cmd.Flags().StringVar(&analysisID, "analysis", "", "Backend analysis ID (overrides the file's id when saving)")
	return cmd
}
