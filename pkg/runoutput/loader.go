package runoutput

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/3leaps/runstatus/pkg/monitor"
	"github.com/3leaps/runstatus/pkg/provider"
	"github.com/3leaps/runstatus/pkg/runstate"
)

// ErrNotRunOutput indicates the location holds no run_info.json.
var ErrNotRunOutput = errors.New("not a run output")

// LoadError reports a run output file that could not be read or parsed.
type LoadError struct {
	File string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads the run output rooted at base.
//
// Missing optional files (run config, results) are not errors. Malformed
// files and invalid records are.
func Load(ctx context.Context, p provider.Provider, base string) (*runstate.Snapshot, error) {
	infoKey := Key(base, RunInfoFile)
	var info runInfoDoc
	if err := readJSON(ctx, p, infoKey, &info); err != nil {
		if provider.IsNotFound(err) {
			return nil, &LoadError{File: infoKey, Err: ErrNotRunOutput}
		}
		return nil, &LoadError{File: infoKey, Err: err}
	}
	if _, err := uuid.Parse(info.UUID); err != nil {
		return nil, &LoadError{File: infoKey, Err: fmt.Errorf("invalid run uuid %q: %w", info.UUID, err)}
	}

	snap := &runstate.Snapshot{
		Location: base,
		Info:     info.toRunInfo(),
		Policy:   runstate.DefaultRetryPolicy(),
	}

	cfgKey := Key(base, RunConfigFile)
	var cfg runConfigDoc
	switch err := readYAML(ctx, p, cfgKey, &cfg); {
	case err == nil:
		snap.Policy = cfg.toPolicy()
		if snap.Policy.MaxRetries < 0 {
			return nil, &LoadError{File: cfgKey, Err: fmt.Errorf("max_retries must be >= 0, got %d", snap.Policy.MaxRetries)}
		}
	case !provider.IsNotFound(err):
		return nil, &LoadError{File: cfgKey, Err: err}
	}

	stateKey := Key(base, RunStateFile)
	var state runStateDoc
	switch err := readJSON(ctx, p, stateKey, &state); {
	case err == nil:
		snap.Status = state.Status
		snap.Jobs = state.Jobs
	case !provider.IsNotFound(err):
		return nil, &LoadError{File: stateKey, Err: err}
	}
	for _, j := range snap.Jobs {
		if err := validateJob(j); err != nil {
			return nil, &LoadError{File: stateKey, Err: err}
		}
	}
	if err := monitor.CheckJobKeys(snap.Jobs); err != nil {
		return nil, &LoadError{File: stateKey, Err: err}
	}

	resultKey := Key(base, ResultFile)
	var result resultDoc
	switch err := readJSON(ctx, p, resultKey, &result); {
	case err == nil:
		snap.Events = result.Events
		for _, j := range result.Jobs {
			snap.Outputs = append(snap.Outputs, runstate.JobOutput{
				ID:        j.ID,
				Label:     j.Label,
				Iteration: j.Iteration,
				Events:    j.Events,
			})
		}
	case !provider.IsNotFound(err):
		return nil, &LoadError{File: resultKey, Err: err}
	}

	return snap, nil
}

func validateJob(j runstate.JobRecord) error {
	if strings.TrimSpace(j.ID) == "" {
		return fmt.Errorf("job id is required")
	}
	if j.Iteration < 1 {
		return fmt.Errorf("job %s: iteration must be >= 1, got %d", j.ID, j.Iteration)
	}
	if j.Retries < 0 {
		return fmt.Errorf("job %s: retries must be >= 0, got %d", j.ID, j.Retries)
	}
	return nil
}

func readJSON(ctx context.Context, p provider.Provider, key string, v any) error {
	b, err := provider.ReadAll(ctx, p, key)
	if err != nil {
		return err
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("file is empty")
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return nil
}

func readYAML(ctx context.Context, p provider.Provider, key string, v any) error {
	b, err := provider.ReadAll(ctx, p, key)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}
