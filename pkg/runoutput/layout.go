// Package runoutput reads persisted run output into a runstate.Snapshot.
//
// Directory layout:
//
//	<run>/__meta/run_info.json
//	<run>/__meta/run_config.yaml   (optional)
//	<run>/.run_state.json
//	<run>/result.json              (optional until the run produces output)
//
// The package only reads; run output is owned by whatever executes the run.
package runoutput

import (
	"path"
	"strings"
	"time"

	"github.com/3leaps/runstatus/pkg/runstate"
)

const (
	RunInfoFile   = "__meta/run_info.json"
	RunConfigFile = "__meta/run_config.yaml"
	RunStateFile  = ".run_state.json"
	ResultFile    = "result.json"
)

// Key joins a run base and a relative file name into a provider key.
func Key(base, name string) string {
	base = strings.Trim(base, "/")
	if base == "" || base == "." {
		return name
	}
	return path.Join(base, name)
}

type runInfoDoc struct {
	UUID         string     `json:"uuid"`
	RunName      string     `json:"run_name,omitempty"`
	Project      string     `json:"project,omitempty"`
	ProjectStage string     `json:"project_stage,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	// Duration is in seconds.
	Duration *float64 `json:"duration,omitempty"`
}

func (d runInfoDoc) toRunInfo() runstate.RunInfo {
	info := runstate.RunInfo{
		UUID:         d.UUID,
		RunName:      d.RunName,
		Project:      d.Project,
		ProjectStage: d.ProjectStage,
		StartTime:    utcPtr(d.StartTime),
		EndTime:      utcPtr(d.EndTime),
	}
	if d.Duration != nil {
		dur := time.Duration(*d.Duration * float64(time.Second))
		info.Duration = &dur
	}
	return info
}

type runConfigDoc struct {
	MaxRetries    *int                 `yaml:"max_retries"`
	RetryOnStatus []runstate.JobStatus `yaml:"retry_on_status"`
}

// toPolicy fills unset fields from the default policy.
func (d runConfigDoc) toPolicy() runstate.RetryPolicy {
	policy := runstate.DefaultRetryPolicy()
	if d.MaxRetries != nil {
		policy.MaxRetries = *d.MaxRetries
	}
	if d.RetryOnStatus != nil {
		policy.RetryOnStatus = runstate.NewStatusSet(d.RetryOnStatus...)
	}
	return policy
}

type runStateDoc struct {
	Status runstate.JobStatus   `json:"status"`
	Jobs   []runstate.JobRecord `json:"jobs"`
}

type jobOutputDoc struct {
	ID        string           `json:"id"`
	Label     string           `json:"label"`
	Iteration int              `json:"iteration"`
	Events    []runstate.Event `json:"events"`
}

type resultDoc struct {
	Events []runstate.Event `json:"events"`
	Jobs   []jobOutputDoc   `json:"jobs"`
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
