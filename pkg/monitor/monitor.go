// Package monitor computes progress summaries for one run snapshot.
//
// A Monitor is fully computed by New and is immutable afterwards: the
// partition, elapsed time, projection and per-job detail are derived once and
// every accessor returns the same values for the Monitor's lifetime.
package monitor

import (
	"time"

	"github.com/3leaps/runstatus/pkg/lifecycle"
	"github.com/3leaps/runstatus/pkg/runstate"
)

// Option configures a Monitor.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the wall clock used for live elapsed time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Monitor holds the derived view of a run snapshot.
type Monitor struct {
	snap *runstate.Snapshot

	elapsed       time.Duration
	remaining     time.Duration
	hasProjection bool

	summary   Summary
	details   []JobDetail
	runEvents []runstate.Event
}

// New computes a Monitor for snap.
//
// The run must have started (ErrNotStarted otherwise). Job record keys and
// job output keys must each be unique (*DuplicateJobKeyError otherwise).
func New(snap *runstate.Snapshot, opts ...Option) (*Monitor, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if snap == nil || !snap.Info.Started() {
		return nil, ErrNotStarted
	}

	if err := CheckJobKeys(snap.Jobs); err != nil {
		return nil, err
	}
	outputs, err := BuildOutputIndex(snap.Outputs)
	if err != nil {
		return nil, err
	}

	partition := lifecycle.Classify(snap.Jobs, snap.Policy)
	m := &Monitor{snap: snap}
	m.elapsed = ElapsedTime(snap.Info, o.now())
	m.remaining, m.hasProjection = ProjectRemaining(m.elapsed, len(snap.Jobs), partition.Len(lifecycle.BucketFinished))
	m.summary = GenerateSummary(partition, snap.Jobs)
	m.details = GenerateDetail(partition, outputs)
	m.runEvents = GenerateRunEvents(snap)
	return m, nil
}

// ElapsedTime returns the recorded duration of a finished run, or the live
// time since start for a run still in progress. The run must have started.
func ElapsedTime(info runstate.RunInfo, now time.Time) time.Duration {
	if info.Duration != nil {
		return *info.Duration
	}
	if info.Ended() {
		return info.EndTime.Sub(*info.StartTime)
	}
	return now.Sub(*info.StartTime)
}

// ProjectRemaining extrapolates the time left from completed-job throughput.
//
// It assumes every job costs the same, so it is an estimate rather than a
// bound. No projection exists until at least one job has finished.
func ProjectRemaining(elapsed time.Duration, total, finished int) (time.Duration, bool) {
	if finished <= 0 {
		return 0, false
	}
	projected := time.Duration(float64(elapsed) * (float64(total) / float64(finished)))
	return projected - elapsed, true
}

// Snapshot returns the snapshot the monitor was built from.
func (m *Monitor) Snapshot() *runstate.Snapshot { return m.snap }

// Info returns the run identity.
func (m *Monitor) Info() runstate.RunInfo { return m.snap.Info }

// ElapsedTime returns the run's elapsed wall-clock time.
func (m *Monitor) ElapsedTime() time.Duration { return m.elapsed }

// ProjectedRemaining returns the estimated time left, if any job has finished.
func (m *Monitor) ProjectedRemaining() (time.Duration, bool) {
	return m.remaining, m.hasProjection
}

// Summary returns job counts for the run.
func (m *Monitor) Summary() Summary { return m.summary }

// Detail returns per-job detail in bucket order.
func (m *Monitor) Detail() []JobDetail { return m.details }

// RunEvents returns the run-level events.
func (m *Monitor) RunEvents() []runstate.Event { return m.runEvents }
