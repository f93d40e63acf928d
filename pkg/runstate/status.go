package runstate

import (
	"encoding/json"
	"strings"
)

// JobStatus is the persisted status of a single job execution.
//
// Values outside the known vocabulary are preserved verbatim so newer
// run outputs can still be reported on.
type JobStatus string

const (
	StatusNew     JobStatus = "NEW"
	StatusPending JobStatus = "PENDING"
	StatusRunning JobStatus = "RUNNING"
	StatusOK      JobStatus = "OK"
	StatusPartial JobStatus = "PARTIAL"
	StatusFailed  JobStatus = "FAILED"
	StatusAborted JobStatus = "ABORTED"
	StatusSkipped JobStatus = "SKIPPED"
)

// ParseStatus normalizes a raw status value. It never fails.
func ParseStatus(s string) JobStatus {
	return JobStatus(strings.ToUpper(strings.TrimSpace(s)))
}

func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status ends a job attempt.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case StatusOK, StatusPartial, StatusFailed, StatusAborted, StatusSkipped:
		return true
	}
	return false
}

// UnmarshalJSON accepts any casing.
func (s *JobStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// UnmarshalYAML accepts any casing.
func (s *JobStatus) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// StatusDisplay describes how a terminal status is shown in summaries.
type StatusDisplay struct {
	Status   JobStatus
	Label    string
	ColorKey string
}

// TerminalStatuses lists the terminal statuses in summary order.
var TerminalStatuses = []StatusDisplay{
	{Status: StatusPartial, Label: "partial", ColorKey: "partial"},
	{Status: StatusFailed, Label: "failed", ColorKey: "failed"},
	{Status: StatusAborted, Label: "aborted", ColorKey: "aborted"},
	{Status: StatusOK, Label: "ok", ColorKey: "ok"},
	{Status: StatusSkipped, Label: "skipped", ColorKey: "skipped"},
}

// StatusSet is an unordered set of statuses.
type StatusSet map[JobStatus]struct{}

// NewStatusSet builds a set from the given statuses.
func NewStatusSet(statuses ...JobStatus) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// Contains reports whether s is a member of the set. A nil set is empty.
func (set StatusSet) Contains(s JobStatus) bool {
	_, ok := set[s]
	return ok
}
