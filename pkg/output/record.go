// Package output provides machine-readable run status reports.
//
// Reports are emitted either as a single JSON document or as JSONL: typed
// record envelopes, one per line, each parseable on its own.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: runstatus.<type>.v<version>
const (
	// TypeRun identifies run identity and timing records.
	TypeRun = "runstatus.run.v1"

	// TypeSummary identifies job count records.
	TypeSummary = "runstatus.summary.v1"

	// TypeJob identifies per-job detail records.
	TypeJob = "runstatus.job.v1"

	// TypeEvent identifies run-level event records.
	TypeEvent = "runstatus.event.v1"

	// TypeError identifies records for run outputs that could not be reported.
	TypeError = "runstatus.error.v1"
)

// Record is the envelope for all JSONL output.
type Record struct {
	// Type identifies the record type (e.g., "runstatus.job.v1").
	Type string `json:"type"`

	// TS is when the record was written.
	TS time.Time `json:"ts"`

	// ReportID correlates every record of one report invocation.
	ReportID string `json:"report_id"`

	// RunUUID is the run the record describes. Empty for errors raised
	// before the run was identified.
	RunUUID string `json:"run_uuid,omitempty"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// RunRecord is the data payload for run identity and timing.
type RunRecord struct {
	UUID         string `json:"uuid"`
	RunName      string `json:"run_name,omitempty"`
	Project      string `json:"project,omitempty"`
	ProjectStage string `json:"project_stage,omitempty"`

	// Location is the directory or URI the run output was read from.
	Location string `json:"location"`

	// Status is the run-level status, if one was recorded.
	Status string `json:"status,omitempty"`

	Started   bool       `json:"started"`
	Ended     bool       `json:"ended"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// ElapsedSeconds is set once the run has started.
	ElapsedSeconds *float64 `json:"elapsed_seconds,omitempty"`

	// RemainingSeconds is the projected time remaining. Absent when no job
	// has finished or the run has ended.
	RemainingSeconds *float64 `json:"remaining_seconds,omitempty"`
}

// SummaryRecord is the data payload for job counts.
type SummaryRecord struct {
	Total    int `json:"total"`
	Finished int `json:"finished"`

	// Percent is absent for runs with no jobs.
	Percent *float64 `json:"percent,omitempty"`

	// Statuses lists every terminal status, including zero counts.
	Statuses []StatusCount `json:"statuses"`

	// Buckets lists non-empty, non-finished lifecycle buckets.
	Buckets []BucketCount `json:"buckets"`
}

// StatusCount is a finished-job count for one terminal status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// BucketCount is a job count for one lifecycle bucket.
type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// JobRecord is the data payload for one job.
type JobRecord struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	Iteration int           `json:"iteration"`
	Retries   int           `json:"retries"`
	Status    string        `json:"status"`
	Bucket    string        `json:"bucket"`
	Events    []EventRecord `json:"events"`
}

// EventRecord is a timestamped event message.
type EventRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// ErrorRecord is the data payload for run outputs that could not be reported.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Location is the run output the error relates to.
	Location string `json:"location,omitempty"`
}

// Error codes for ErrorRecord.
const (
	ErrCodeNotStarted   = "NOT_STARTED"
	ErrCodeLoadFailed   = "LOAD_FAILED"
	ErrCodeInvalidState = "INVALID_STATE"
)

// WriteError reports a failure to emit a record.
type WriteError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("output: writer closed")
