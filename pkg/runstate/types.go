// Package runstate holds the read-only model of a batch run snapshot.
//
// Everything here is constructed once per report from persisted run output
// and never mutated afterwards.
package runstate

import (
	"fmt"
	"strings"
	"time"
)

// JobRecord is one execution attempt of one job within a run.
type JobRecord struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Iteration int       `json:"iteration"`
	Status    JobStatus `json:"status"`
	Retries   int       `json:"retries"`
}

// Key returns the lookup key of the record.
func (j JobRecord) Key() JobKey {
	return JobKey{ID: j.ID, Label: j.Label, Iteration: j.Iteration}
}

// JobKey uniquely identifies a job execution within a run.
type JobKey struct {
	ID        string
	Label     string
	Iteration int
}

func (k JobKey) String() string {
	return fmt.Sprintf("%s (%s) [%d]", k.ID, k.Label, k.Iteration)
}

// DefaultMaxRetries is applied when a run config does not set max_retries.
const DefaultMaxRetries = 2

// RetryPolicy decides whether a job in a given status will be attempted again.
type RetryPolicy struct {
	MaxRetries    int
	RetryOnStatus StatusSet
}

// DefaultRetryPolicy returns the policy used when a run records none.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    DefaultMaxRetries,
		RetryOnStatus: NewStatusSet(StatusFailed, StatusPartial),
	}
}

// WillRetry reports whether the job is still due another attempt.
func (p RetryPolicy) WillRetry(j JobRecord) bool {
	return p.RetryOnStatus.Contains(j.Status) && j.Retries < p.MaxRetries
}

// RunInfo identifies the run as a whole.
type RunInfo struct {
	UUID         string
	RunName      string
	Project      string
	ProjectStage string
	StartTime    *time.Time
	EndTime      *time.Time
	Duration     *time.Duration
}

// Started reports whether the run has a recorded start time.
func (i RunInfo) Started() bool {
	return i.StartTime != nil && !i.StartTime.IsZero()
}

// Ended reports whether the run has a recorded end time.
func (i RunInfo) Ended() bool {
	return i.EndTime != nil && !i.EndTime.IsZero()
}

// Event is a timestamped note attached to a run or a job.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Summary returns the first line of the message, marking elided lines.
func (e Event) Summary() string {
	first, rest, multi := strings.Cut(e.Message, "\n")
	if multi && strings.TrimSpace(rest) != "" {
		return first + "[...]"
	}
	return first
}

// JobOutput is the output recorded for one job execution.
type JobOutput struct {
	ID        string
	Label     string
	Iteration int
	Events    []Event
}

// Key returns the lookup key of the output.
func (o JobOutput) Key() JobKey {
	return JobKey{ID: o.ID, Label: o.Label, Iteration: o.Iteration}
}

// Snapshot is everything the monitor needs from one read of a run output.
type Snapshot struct {
	// Location is where the snapshot was read from (directory or URI).
	Location string
	Info     RunInfo
	// Status is the run-level status, if recorded.
	Status  JobStatus
	Policy  RetryPolicy
	Jobs    []JobRecord
	Outputs []JobOutput
	Events  []Event
}
