package monitor

import (
	"github.com/3leaps/runstatus/pkg/lifecycle"
	"github.com/3leaps/runstatus/pkg/runstate"
)

// StatusCount is the number of finished jobs in one terminal status.
type StatusCount struct {
	Status runstate.JobStatus `json:"status"`
	Label  string             `json:"label"`
	Count  int                `json:"count"`
}

// BucketCount is the number of jobs in one non-finished bucket.
type BucketCount struct {
	Bucket lifecycle.Bucket `json:"bucket"`
	Count  int              `json:"count"`
}

// Summary aggregates job counts for a run.
type Summary struct {
	Total    int `json:"total"`
	Finished int `json:"finished"`

	// Percent is only meaningful when HasPercent is true (Total > 0).
	Percent    float64 `json:"percent"`
	HasPercent bool    `json:"has_percent"`

	// Terminal always lists every terminal status in display order,
	// including zero counts.
	Terminal []StatusCount `json:"terminal"`

	// Buckets lists the non-empty, non-finished buckets in bucket order.
	Buckets []BucketCount `json:"buckets"`
}

// GenerateSummary computes job counts from a partition.
func GenerateSummary(p lifecycle.Partition, jobs []runstate.JobRecord) Summary {
	s := Summary{
		Total:    len(jobs),
		Finished: p.Len(lifecycle.BucketFinished),
		Terminal: make([]StatusCount, 0, len(runstate.TerminalStatuses)),
		Buckets:  []BucketCount{},
	}
	if s.Total > 0 {
		s.Percent = float64(s.Finished) * 100 / float64(s.Total)
		s.HasPercent = true
	}

	counts := make(map[runstate.JobStatus]int, len(runstate.TerminalStatuses))
	for _, j := range p.Jobs(lifecycle.BucketFinished) {
		counts[j.Status]++
	}
	for _, d := range runstate.TerminalStatuses {
		s.Terminal = append(s.Terminal, StatusCount{Status: d.Status, Label: d.Label, Count: counts[d.Status]})
	}

	for _, b := range lifecycle.Buckets {
		if b == lifecycle.BucketFinished {
			continue
		}
		if n := p.Len(b); n > 0 {
			s.Buckets = append(s.Buckets, BucketCount{Bucket: b, Count: n})
		}
	}
	return s
}
