package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/lpctl/config"
	"github.com/s0up4200/lpctl/filter"
	"github.com/s0up4200/lpctl/luckperms"
	"github.com/s0up4200/lpctl/operations"
)

var (
	cfgFile     string
	logLevel    string
	showMetrics bool

	cfg       *config.Config
	logger    zerolog.Logger
	client    *luckperms.Client
	ops       *operations.Operations
	filters   *filter.Manager
	formatter = operations.NewConsoleFormatter()
	registry  *prometheus.Registry
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lpctl",
	Short: "Manage LuckPerms users, groups and permissions over the REST API",
	Long: `lpctl is a CLI for the LuckPerms REST API. It lists and edits users,
groups and their permission nodes, runs permission checks, moves users along
tracks and records every change in the LuckPerms action log.`,
	SilenceUsage:       true,
	PersistentPostRunE: printMetrics,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print client request metrics to stderr on exit")
}

// initializeApp loads the configuration and builds the client, operations and filters
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := overrideLogLevel(cfg, logLevel); err != nil {
		return err
	}
	logger = setupLogger(cfg.Logging, os.Stderr)

	opts := []luckperms.Option{
		luckperms.WithTimeout(cfg.LuckPerms.Timeout),
		luckperms.WithUserAgent(cfg.LuckPerms.UserAgent),
	}
	if showMetrics {
		registry = prometheus.NewRegistry()
		opts = append(opts, luckperms.WithMetrics(registry))
	}

	client, err = luckperms.NewClient(cfg.LuckPerms.URL, cfg.LuckPerms.APIKey, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create LuckPerms client: %w", err)
	}

	opOpts := []operations.Option{operations.WithConcurrency(cfg.Concurrency)}
	if cfg.Actor.RecordActions {
		opOpts = append(opOpts, operations.WithActor(cfg.Actor.ID(), cfg.Actor.Name))
		logger.Debug().Str("actor", cfg.Actor.Name).Msg("Recording actions")
	}
	ops = operations.NewOperations(client, logger, opOpts...)

	filters = filter.NewManager()
	if err := filters.RegisterPresets(cfg.Filter.Presets); err != nil {
		return err
	}

	return nil
}

// overrideLogLevel applies --log-level on top of the loaded config
func overrideLogLevel(c *config.Config, level string) error {
	if level == "" {
		return nil
	}
	level = strings.ToLower(level)
	if err := config.ValidateLogLevel(level); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	c.Logging.Level = level
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(out).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(out),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printMetrics dumps the client metrics in the Prometheus text format
func printMetrics(cmd *cobra.Command, args []string) error {
	if registry == nil {
		return nil
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), family); err != nil {
			return err
		}
	}
	return nil
}

// resolveFilter picks the node filter: --filter, then --preset, then filter.default
func resolveFilter(expression, preset string) (filter.CompiledFilter, error) {
	if expression == "" && preset == "" && cfg.Filter.Default != "" {
		expression = cfg.Filter.Default
	}
	// viper lowercases map keys, so presets are registered in lower case
	f, err := filters.Resolve(expression, strings.ToLower(preset))
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return f, nil
}
