package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/runstatus/internal/observability"
	"github.com/3leaps/runstatus/pkg/lifecycle"
	"github.com/3leaps/runstatus/pkg/monitor"
	"github.com/3leaps/runstatus/pkg/report"
)

var listCmd = &cobra.Command{
	Use:   "list [DIR|s3://bucket/prefix]",
	Short: "List run outputs and their progress",
	Long: `List every run output found below a directory or s3:// prefix,
with its run-level status and job progress.

Examples:
  runstatus list
  runstatus list /data/runs --json
  runstatus list s3://perf-runs/nightly/
  runstatus list --include '2026-*' --exclude '**/scratch-*'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var (
	listJSON     bool
	listSelector selectorFlags
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listSelector.register(listCmd.Flags())
}

// runRow is one discovered run output.
type runRow struct {
	Location  string     `json:"location"`
	UUID      string     `json:"uuid,omitempty"`
	RunName   string     `json:"run_name,omitempty"`
	Status    string     `json:"status,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Total     int        `json:"total"`
	Finished  int        `json:"finished"`
	Percent   *float64   `json:"percent,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	location := ""
	if len(args) == 1 {
		location = args[0]
	}
	sel, err := listSelector.matcher()
	if err != nil {
		return err
	}
	src, err := openSource(ctx, location, appConfig)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	bases, err := discoverRuns(ctx, src, sel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(bases) == 0 {
		_, _ = fmt.Fprintln(out, "No run outputs found")
		return nil
	}

	rows, err := collectRuns(ctx, src, bases)
	if err != nil {
		return err
	}
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return printRuns(out, rows)
}

// collectRuns loads each run. Runs that fail to load are listed with their
// error rather than aborting the listing.
func collectRuns(ctx context.Context, src *runSource, bases []string) ([]runRow, error) {
	rows := make([]runRow, 0, len(bases))
	for _, base := range bases {
		if err := ctx.Err(); err != nil {
			return nil, loadFailure(err)
		}

		snap, err := loadSnapshot(ctx, src, base)
		if err != nil {
			observability.CLILogger.Warn("Skipping unreadable run output",
				zap.String("location", src.display(base)),
				zap.Error(err))
			rows = append(rows, runRow{Location: src.display(base), Error: err.Error()})
			continue
		}

		summary := monitor.GenerateSummary(lifecycle.Classify(snap.Jobs, snap.Policy), snap.Jobs)
		row := runRow{
			Location:  snap.Location,
			UUID:      snap.Info.UUID,
			RunName:   snap.Info.RunName,
			Status:    snap.Status.String(),
			StartTime: snap.Info.StartTime,
			EndTime:   snap.Info.EndTime,
			Total:     summary.Total,
			Finished:  summary.Finished,
		}
		if summary.HasPercent {
			p := summary.Percent
			row.Percent = &p
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func printRuns(out io.Writer, rows []runRow) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "LOCATION\tUUID\tNAME\tSTATUS\tSTARTED\tENDED\tPROGRESS")
	for _, r := range rows {
		if r.Error != "" {
			_, _ = fmt.Fprintf(w, "%s\t-\t-\tERROR\t-\t-\t%s\n", r.Location, r.Error)
			continue
		}
		progress := fmt.Sprintf("%d/%d", r.Finished, r.Total)
		if r.Percent != nil {
			progress += " (" + report.FormatPercent(*r.Percent) + ")"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Location,
			shortUUID(r.UUID),
			orDash(r.RunName),
			orDash(r.Status),
			formatOptionalTime(r.StartTime),
			formatOptionalTime(r.EndTime),
			progress,
		)
	}
	return w.Flush()
}

func shortUUID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
