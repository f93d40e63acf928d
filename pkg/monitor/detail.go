package monitor

import (
	"github.com/3leaps/runstatus/pkg/lifecycle"
	"github.com/3leaps/runstatus/pkg/runstate"
)

// JobDetail is the per-job view used in verbose reports.
type JobDetail struct {
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Iteration int                `json:"iteration"`
	Retries   int                `json:"retries"`
	Status    runstate.JobStatus `json:"status"`
	Bucket    lifecycle.Bucket   `json:"bucket"`
	Events    []runstate.Event   `json:"events"`
}

// OutputIndex maps job keys to their recorded output.
type OutputIndex map[runstate.JobKey]runstate.JobOutput

// BuildOutputIndex indexes job outputs by (id, label, iteration).
//
// Keys must be unique within a run; a duplicate means the snapshot is corrupt.
func BuildOutputIndex(outputs []runstate.JobOutput) (OutputIndex, error) {
	idx := make(OutputIndex, len(outputs))
	for _, o := range outputs {
		key := o.Key()
		if _, exists := idx[key]; exists {
			return nil, &DuplicateJobKeyError{Key: key, Kind: "job output"}
		}
		idx[key] = o
	}
	return idx, nil
}

// CheckJobKeys returns a *DuplicateJobKeyError for the first job record whose
// (id, label, iteration) key was already seen.
func CheckJobKeys(jobs []runstate.JobRecord) error {
	seen := make(map[runstate.JobKey]struct{}, len(jobs))
	for _, j := range jobs {
		key := j.Key()
		if _, exists := seen[key]; exists {
			return &DuplicateJobKeyError{Key: key, Kind: "job"}
		}
		seen[key] = struct{}{}
	}
	return nil
}

// GenerateDetail lists every classified job in bucket order.
//
// Jobs without a recorded output (typically not yet started) have no events.
func GenerateDetail(p lifecycle.Partition, outputs OutputIndex) []JobDetail {
	details := make([]JobDetail, 0, p.Total())
	for _, b := range lifecycle.Buckets {
		for _, j := range p.Jobs(b) {
			events := []runstate.Event{}
			if out, ok := outputs[j.Key()]; ok && len(out.Events) > 0 {
				events = append(events, out.Events...)
			}
			details = append(details, JobDetail{
				ID:        j.ID,
				Label:     j.Label,
				Iteration: j.Iteration,
				Retries:   j.Retries,
				Status:    j.Status,
				Bucket:    b,
				Events:    events,
			})
		}
	}
	return details
}

// GenerateRunEvents returns the run-level events in recorded order.
func GenerateRunEvents(snap *runstate.Snapshot) []runstate.Event {
	events := make([]runstate.Event, 0, len(snap.Events))
	return append(events, snap.Events...)
}
