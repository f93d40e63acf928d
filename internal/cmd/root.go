// Package cmd implements the runstatus command line.
package cmd

import (
	"context"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/runstatus/internal/config"
	"github.com/3leaps/runstatus/internal/observability"
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

var versionInfo = VersionInfo{
	Version:   "dev",
	Commit:    "unknown",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata, normally from ldflags.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var (
	cfgFile string

	// appConfig is resolved before any subcommand runs.
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "runstatus",
	Short: "Report progress of batch runs",
	Long: `runstatus reports on the progress of a batch run from its output
directory: how many jobs have finished, which are still running or waiting
to be retried, and how long the rest of the run is likely to take.

Run outputs are read from a local directory or an s3:// location. runstatus
never modifies them.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initRuntime,
}

// flagBinding maps a command-line flag to the config key it overrides.
type flagBinding struct {
	Flag string
	Key  string
}

var flagBindings = []flagBinding{
	{Flag: "log-level", Key: "logging.level"},
	{Flag: "color", Key: "report.color"},
	{Flag: "width", Key: "report.max_width"},
	{Flag: "verbose", Key: "report.verbose"},
	{Flag: "output", Key: "report.output"},
	{Flag: "interval", Key: "watch.interval"},
	{Flag: "region", Key: "s3.region"},
	{Flag: "endpoint", Key: "s3.endpoint"},
	{Flag: "profile", Key: "s3.profile"},
	{Flag: "force-path-style", Key: "s3.force_path_style"},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/runstatus/config.yaml)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("color", config.ColorAuto, "Color output: auto, always, never")
	pf.Int("width", 0, "Truncate event lines to this width (0 = terminal width)")
	pf.String("region", "", "AWS region for s3:// locations")
	pf.String("endpoint", "", "Custom S3 endpoint URL (MinIO, Wasabi)")
	pf.String("profile", "", "AWS shared config profile")
	pf.Bool("force-path-style", false, "Use path-style S3 addressing")
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, typically one cancelled on
// interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// initRuntime loads config with flag overrides and configures logging.
func initRuntime(cmd *cobra.Command, _ []string) error {
	config.SetConfigFile(cfgFile)

	cfg, err := config.Load(cmd.Context(), flagOverrides(cmd))
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}
	appConfig = cfg

	if err := observability.SetLevel("runstatus", cfg.Logging.Level); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid log level", err)
	}
	if cfg.Report.Verbose {
		observability.InitCLILogger("runstatus", true)
	}
	observability.CLILogger.Debug("Configuration loaded",
		zap.String("color", cfg.Report.Color),
		zap.String("output", cfg.Report.Output),
		zap.Duration("watch_interval", cfg.Watch.Interval))
	return nil
}

// flagOverrides returns config overrides for flags set on the command line.
func flagOverrides(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	for _, b := range flagBindings {
		f := cmd.Flags().Lookup(b.Flag)
		if f == nil || !f.Changed {
			continue
		}
		section, key, _ := strings.Cut(b.Key, ".")
		m, ok := out[section].(map[string]any)
		if !ok {
			m = map[string]any{}
			out[section] = m
		}
		m[key] = f.Value.String()
	}
	return out
}
