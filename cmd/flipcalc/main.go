package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rgehrsitz/flipcalc/internal/backend"
	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/config"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var errNoBackend = errors.New("no backend configured (set backend.url or FLIPCALC_BACKEND_URL)")

// cli carries the state shared by every command: the persistent flags and
// what they resolve to once a command starts.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string

	settings *config.Settings
	logger   *zap.Logger
	closers  []io.Closer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "flipcalc",
		Short: "Property flip viability calculator",
		Long: `Evaluates whether buying, renovating and reselling a property is profitable.

Analyses are read from YAML files or from the analysis backend. Every command
reports acquisition, financing, holding and sale costs, net profit and ROI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.teardown()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Settings file (default ./flipcalc.yaml, then ~/.flipcalc/flipcalc.yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "Log format (console, json)")

	root.AddCommand(
		calculateCmd(c),
		validateCmd(c),
		viabilityCmd(c),
		scheduleCmd(c),
		compareCmd(c),
		breakEvenCmd(c),
		sensitivityCmd(c),
		serveCmd(c),
		analysisCmd(c),
		templatesCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) setup() error {
	settings, err := config.LoadSettings(c.configPath)
	if err != nil {
		return err
	}
	if c.logFormat != "" {
		settings.Logging.Format = c.logFormat
	}
	logger, err := config.NewLogger(settings.Logging, c.logLevel)
	if err != nil {
		return err
	}

	c.settings = settings
	c.logger = logger
	if f := settings.File(); f != "" {
		logger.Debug("settings loaded", zap.String("op", "cli.setup"), zap.String("file", f))
	}
	return nil
}

func (c *cli) teardown() {
	for _, cl := range c.closers {
		_ = cl.Close()
	}
	c.closers = nil
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// engine builds a calculation engine tuned by the engine settings.
func (c *cli) engine() *calculation.CalculationEngine {
	engine := calculation.NewCalculationEngineWithLimits(calculation.Limits{
		MaxMonthsToSell: c.settings.Engine.MaxMonthsToSell,
	})
	engine.SuggestionMethod = calculation.SuggestionMethod(strings.ToLower(c.settings.Engine.SuggestionMethod))
	engine.SetLogger(c.logger.Sugar())
	engine.Debug = c.logger.Core().Enabled(zapcore.DebugLevel)
	return engine
}

// backend connects to the configured analysis backend with the configured
// response cache.
func (c *cli) backend(ctx context.Context) (*backend.Client, error) {
	s := c.settings
	if s.Backend.URL == "" {
		return nil, errNoBackend
	}

	cache, err := backend.NewCache(ctx, s.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	if cl, ok := cache.(io.Closer); ok {
		c.closers = append(c.closers, cl)
	}

	return backend.NewClient(s.Backend.URL,
		backend.WithHTTPClient(&http.Client{Timeout: s.Backend.Timeout}),
		backend.WithToken(s.Backend.Token),
		backend.WithCache(cache, s.Cache.TTL),
		backend.WithLogger(c.logger),
	)
}

// activeAnalysis returns the analysis named by id, falling back to the one
// recorded with `analysis use`.
func (c *cli) activeAnalysis(id string) (domain.AnalysisContext, error) {
	if id == "" {
		id = c.settings.ActiveAnalysis
	}
	ac := domain.NewAnalysisContext(id)
	if err := ac.Require(); err != nil {
		return ac, fmt.Errorf("%w: pass an analysis ID or run `flipcalc analysis use <id>`", err)
	}
	return ac, nil
}

func loadAnalysis(path string) (*domain.Analysis, error) {
	return config.NewInputParser().LoadFromFile(path)
}

// candidateIndex resolves --candidate. It may be omitted when the analysis
// holds a single candidate.
func candidateIndex(analysis *domain.Analysis, id string) (int, error) {
	if id == "" {
		if len(analysis.Candidates) == 1 {
			return 0, nil
		}
		return -1, fmt.Errorf("--candidate is required: the analysis has %d candidates", len(analysis.Candidates))
	}
	i, ok := analysis.FindCandidate(id)
	if !ok {
		return -1, fmt.Errorf("candidate %s not found", id)
	}
	return i, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flipcalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}
