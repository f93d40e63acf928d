// Package lifecycle partitions job records into lifecycle buckets.
package lifecycle

import "github.com/3leaps/runstatus/pkg/runstate"

// Bucket names a lifecycle classification.
type Bucket string

const (
	BucketFinished      Bucket = "finished"
	BucketOther         Bucket = "other"
	BucketRunning       Bucket = "running"
	BucketPending       Bucket = "pending"
	BucketUninitialized Bucket = "uninitialized"
)

// Buckets lists every bucket in reporting order.
var Buckets = []Bucket{
	BucketFinished,
	BucketOther,
	BucketRunning,
	BucketPending,
	BucketUninitialized,
}

func (b Bucket) String() string {
	return string(b)
}

// Partition maps every bucket to the jobs classified into it, in input order.
type Partition struct {
	buckets map[Bucket][]runstate.JobRecord
}

// Jobs returns the jobs in bucket b. The returned slice must not be modified.
func (p Partition) Jobs(b Bucket) []runstate.JobRecord {
	return p.buckets[b]
}

// Len returns the number of jobs in bucket b.
func (p Partition) Len(b Bucket) int {
	return len(p.buckets[b])
}

// Total returns the number of classified jobs across all buckets.
func (p Partition) Total() int {
	n := 0
	for _, jobs := range p.buckets {
		n += len(jobs)
	}
	return n
}

// Classify assigns each job to exactly one bucket.
//
// Rules are evaluated in order and the first match wins. A job that will be
// retried counts as running even when its current status is terminal.
func Classify(jobs []runstate.JobRecord, policy runstate.RetryPolicy) Partition {
	p := Partition{buckets: make(map[Bucket][]runstate.JobRecord, len(Buckets))}
	for _, b := range Buckets {
		p.buckets[b] = []runstate.JobRecord{}
	}
	for _, job := range jobs {
		b := BucketOf(job, policy)
		p.buckets[b] = append(p.buckets[b], job)
	}
	return p
}

// BucketOf returns the bucket a single job is classified into.
func BucketOf(job runstate.JobRecord, policy runstate.RetryPolicy) Bucket {
	switch {
	case policy.WillRetry(job):
		return BucketRunning
	case job.Status.IsTerminal():
		return BucketFinished
	case job.Status == runstate.StatusRunning:
		return BucketRunning
	case job.Status == runstate.StatusPending:
		return BucketPending
	case job.Status == runstate.StatusNew:
		return BucketUninitialized
	default:
		return BucketOther
	}
}
