package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/runstatus/internal/observability"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the status of a run",
	Long: `Show a one-off progress report for a run output.

Without --directory, run outputs are discovered under the current directory.
If more than one is found you are asked to choose.

Examples:
  runstatus show
  runstatus show -d wa_output -v
  runstatus show -d s3://perf-runs/nightly/2026-01-19 --output json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

var (
	showDirectory string
	showSelector  selectorFlags
)

func init() {
	rootCmd.AddCommand(showCmd)

	showSelector.register(showCmd.Flags())
	showCmd.Flags().StringVarP(&showDirectory, "directory", "d", "", "Run output directory or s3:// location")
	showCmd.Flags().BoolP("verbose", "v", false, "Include run events and per-job detail")
	showCmd.Flags().StringP("output", "o", "text", "Output format: text, json, jsonl")
}

func runShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sel, err := showSelector.matcher()
	if err != nil {
		return err
	}
	src, base, err := resolveRun(cmd, showDirectory, sel)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	out := cmd.OutOrStdout()
	opts := resolveReportOptions(appConfig, out)

	snap, err := loadSnapshot(ctx, src, base)
	if err != nil {
		writeFailure(ctx, out, opts, src.display(base), err)
		return err
	}
	observability.CLILogger.Debug("Loaded run output",
		zap.String("location", snap.Location),
		zap.String("uuid", snap.Info.UUID),
		zap.Int("jobs", len(snap.Jobs)))

	_, err = writeReport(ctx, out, snap, opts)
	return err
}
