package output

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/3leaps/runstatus/pkg/monitor"
	"github.com/3leaps/runstatus/pkg/runstate"
)

// Report is the single-document form of a run status report.
type Report struct {
	ReportID string        `json:"report_id"`
	Run      RunRecord     `json:"run"`
	Summary  SummaryRecord `json:"summary"`
	Events   []EventRecord `json:"events"`
	Jobs     []JobRecord   `json:"jobs,omitempty"`
}

// NewReportID returns a fresh report correlation id.
func NewReportID() string {
	return uuid.NewString()
}

// FromMonitor builds a report for a started run. Per-job records are only
// included when verbose is set.
func FromMonitor(reportID string, m *monitor.Monitor, verbose bool) *Report {
	snap := m.Snapshot()
	run := runRecord(snap)
	elapsed := seconds(m.ElapsedTime())
	run.ElapsedSeconds = &elapsed
	if remaining, ok := m.ProjectedRemaining(); ok && !snap.Info.Ended() {
		r := seconds(remaining)
		run.RemainingSeconds = &r
	}

	rep := &Report{
		ReportID: reportID,
		Run:      run,
		Summary:  summaryRecord(m.Summary()),
		Events:   eventRecords(m.RunEvents()),
	}
	if verbose {
		rep.Jobs = make([]JobRecord, 0, len(m.Detail()))
		for _, d := range m.Detail() {
			rep.Jobs = append(rep.Jobs, JobRecord{
				ID:        d.ID,
				Label:     d.Label,
				Iteration: d.Iteration,
				Retries:   d.Retries,
				Status:    d.Status.String(),
				Bucket:    d.Bucket.String(),
				Events:    eventRecords(d.Events),
			})
		}
	}
	return rep
}

// FromUnstarted builds a report for a run that has no start time.
func FromUnstarted(reportID string, snap *runstate.Snapshot, summary monitor.Summary) *Report {
	return &Report{
		ReportID: reportID,
		Run:      runRecord(snap),
		Summary:  summaryRecord(summary),
		Events:   eventRecords(snap.Events),
	}
}

// WriteJSON writes the report as one indented JSON document.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Emit streams the report as records: run, summary, events, then jobs.
func (r *Report) Emit(ctx context.Context, w Writer) error {
	if err := w.WriteRun(ctx, &r.Run); err != nil {
		return err
	}
	if err := w.WriteSummary(ctx, &r.Summary); err != nil {
		return err
	}
	for i := range r.Events {
		if err := w.WriteEvent(ctx, &r.Events[i]); err != nil {
			return err
		}
	}
	for i := range r.Jobs {
		if err := w.WriteJob(ctx, &r.Jobs[i]); err != nil {
			return err
		}
	}
	return nil
}

func runRecord(snap *runstate.Snapshot) RunRecord {
	info := snap.Info
	return RunRecord{
		UUID:         info.UUID,
		RunName:      info.RunName,
		Project:      info.Project,
		ProjectStage: info.ProjectStage,
		Location:     snap.Location,
		Status:       snap.Status.String(),
		Started:      info.Started(),
		Ended:        info.Ended(),
		StartTime:    info.StartTime,
		EndTime:      info.EndTime,
	}
}

func summaryRecord(s monitor.Summary) SummaryRecord {
	rec := SummaryRecord{
		Total:    s.Total,
		Finished: s.Finished,
		Statuses: make([]StatusCount, 0, len(s.Terminal)),
		Buckets:  make([]BucketCount, 0, len(s.Buckets)),
	}
	if s.HasPercent {
		p := s.Percent
		rec.Percent = &p
	}
	for _, sc := range s.Terminal {
		rec.Statuses = append(rec.Statuses, StatusCount{Status: sc.Status.String(), Count: sc.Count})
	}
	for _, bc := range s.Buckets {
		rec.Buckets = append(rec.Buckets, BucketCount{Bucket: bc.Bucket.String(), Count: bc.Count})
	}
	return rec
}

func eventRecords(events []runstate.Event) []EventRecord {
	out := make([]EventRecord, 0, len(events))
	for _, e := range events {
		out = append(out, EventRecord{Timestamp: e.Timestamp, Message: e.Message})
	}
	return out
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}
