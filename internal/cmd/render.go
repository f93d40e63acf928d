package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"go.uber.org/zap"

	"github.com/3leaps/runstatus/internal/config"
	"github.com/3leaps/runstatus/internal/observability"
	"github.com/3leaps/runstatus/pkg/lifecycle"
	"github.com/3leaps/runstatus/pkg/monitor"
	"github.com/3leaps/runstatus/pkg/output"
	"github.com/3leaps/runstatus/pkg/report"
	"github.com/3leaps/runstatus/pkg/runstate"
)

// reportOptions carries resolved presentation settings for one report.
type reportOptions struct {
	Format   string
	Verbose  bool
	Color    bool
	MaxWidth int

	// Now overrides the monitor clock. Zero uses the wall clock.
	Now time.Time
}

// resolveReportOptions applies config and terminal detection for w.
func resolveReportOptions(cfg *config.Config, w io.Writer) reportOptions {
	return reportOptions{
		Format:   cfg.Report.Output,
		Verbose:  cfg.Report.Verbose,
		Color:    colorEnabled(cfg.Report.Color, w),
		MaxWidth: outputWidth(cfg.Report.MaxWidth, w),
	}
}

// writeReport renders snap to w. It reports whether the run has ended.
func writeReport(ctx context.Context, w io.Writer, snap *runstate.Snapshot, opts reportOptions) (bool, error) {
	var monitorOpts []monitor.Option
	if !opts.Now.IsZero() {
		now := opts.Now
		monitorOpts = append(monitorOpts, monitor.WithClock(func() time.Time { return now }))
	}

	m, err := monitor.New(snap, monitorOpts...)
	switch {
	case err == nil:
	case monitor.IsNotStarted(err):
		err = nil
	default:
		err = loadFailure(err)
		writeFailure(ctx, w, opts, snap.Location, err)
		return false, err
	}

	var rep *output.Report
	reportID := output.NewReportID()
	if m == nil {
		summary := monitor.GenerateSummary(lifecycle.Classify(snap.Jobs, snap.Policy), snap.Jobs)
		rep = output.FromUnstarted(reportID, snap, summary)
		if opts.Format == config.OutputText {
			err = newRenderer(opts).RenderUnstarted(w, snap, summary)
		}
	} else {
		rep = output.FromMonitor(reportID, m, opts.Verbose)
		if opts.Format == config.OutputText {
			err = newRenderer(opts).Render(w, m)
		}
	}

	switch opts.Format {
	case config.OutputText:
	case config.OutputJSON:
		err = rep.WriteJSON(w)
	case config.OutputJSONL:
		jw := output.NewJSONLWriter(w, reportID)
		jw.SetRunUUID(rep.Run.UUID)
		err = rep.Emit(ctx, jw)
		if err == nil && m == nil {
			err = jw.WriteError(ctx, &output.ErrorRecord{
				Code:     output.ErrCodeNotStarted,
				Message:  monitor.ErrNotStarted.Error(),
				Location: snap.Location,
			})
		}
		if cerr := jw.Close(); err == nil {
			err = cerr
		}
	default:
		return false, exitError(foundry.ExitInvalidArgument, "Invalid output format", fmt.Errorf("unsupported output %q", opts.Format))
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false, exitError(foundry.ExitSignalInt, "Interrupted", err)
		}
		return false, exitError(foundry.ExitFileWriteError, "Failed to write report", err)
	}
	return snap.Info.Ended(), nil
}

// writeFailure emits cause as a JSONL error record. Other formats report
// failures through the log and exit code only.
func writeFailure(ctx context.Context, w io.Writer, opts reportOptions, location string, cause error) {
	if opts.Format != config.OutputJSONL {
		return
	}

	code := output.ErrCodeLoadFailed
	var dupErr *monitor.DuplicateJobKeyError
	if errors.As(cause, &dupErr) {
		code = output.ErrCodeInvalidState
	}
	msg := cause.Error()
	var exitErr *ExitError
	if errors.As(cause, &exitErr) && exitErr.Err != nil {
		msg = exitErr.Err.Error()
	}

	jw := output.NewJSONLWriter(w, output.NewReportID())
	defer func() { _ = jw.Close() }()
	if err := jw.WriteError(ctx, &output.ErrorRecord{Code: code, Message: msg, Location: location}); err != nil {
		observability.CLILogger.Debug("Failed to write error record", zap.Error(err))
	}
}

func newRenderer(opts reportOptions) *report.Renderer {
	return report.NewRenderer(report.Options{
		ColorEnabled: opts.Color,
		MaxWidth:     opts.MaxWidth,
		Verbose:      opts.Verbose,
	})
}
