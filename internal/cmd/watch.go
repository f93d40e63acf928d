package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/3leaps/runstatus/internal/config"
	"github.com/3leaps/runstatus/internal/observability"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-report a run until it ends",
	Long: `Reload and report a run output on a fixed interval until the run
records an end time or the command is interrupted.

Examples:
  runstatus watch -d wa_output
  runstatus watch -d s3://perf-runs/nightly --interval 1m -v`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchDirectory string
	watchSelector  selectorFlags
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchSelector.register(watchCmd.Flags())
	watchCmd.Flags().StringVarP(&watchDirectory, "directory", "d", "", "Run output directory or s3:// location")
	watchCmd.Flags().BoolP("verbose", "v", false, "Include run events and per-job detail")
	watchCmd.Flags().StringP("output", "o", "text", "Output format: text, json, jsonl")
	watchCmd.Flags().Duration("interval", 30*time.Second, "Time between reports")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sel, err := watchSelector.matcher()
	if err != nil {
		return err
	}
	src, base, err := resolveRun(cmd, watchDirectory, sel)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	out := cmd.OutOrStdout()
	opts := resolveReportOptions(appConfig, out)
	clearFirst := opts.Format == config.OutputText && isTerminal(out)

	observability.CLILogger.Debug("Watching run output",
		zap.String("base", base),
		zap.Duration("interval", appConfig.Watch.Interval))

	reports, err := watchLoop(ctx, out, appConfig.Watch.Interval, clearFirst, func(ctx context.Context, w io.Writer) (bool, error) {
		snap, err := loadSnapshot(ctx, src, base)
		if err != nil {
			writeFailure(ctx, w, opts, src.display(base), err)
			return false, err
		}
		return writeReport(ctx, w, snap, opts)
	})
	if err != nil {
		return err
	}
	observability.CLILogger.Info("Run has ended", zap.Int("reports", reports))
	return nil
}

// reportFunc writes one report and says whether the run has ended.
type reportFunc func(ctx context.Context, w io.Writer) (bool, error)

// watchLoop calls report at most once per interval until it reports an
// ended run, fails, or ctx is done. It returns the number of reports written.
func watchLoop(ctx context.Context, w io.Writer, interval time.Duration, clearFirst bool, report reportFunc) (int, error) {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	reports := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			// Wait fails early when the next slot is past the deadline.
			<-ctx.Done()
			return reports, exitError(foundry.ExitSignalInt, "Watch interrupted", ctx.Err())
		}
		if clearFirst {
			_, _ = fmt.Fprint(w, clearScreen)
		}
		ended, err := report(ctx, w)
		if err != nil {
			return reports, err
		}
		reports++
		if ended {
			return reports, nil
		}
	}
}
