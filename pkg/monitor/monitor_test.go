package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/runstatus/pkg/lifecycle"
	"github.com/3leaps/runstatus/pkg/runstate"
)

var start = time.Date(2026, 1, 19, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func jobs(statuses ...runstate.JobStatus) []runstate.JobRecord {
	out := make([]runstate.JobRecord, 0, len(statuses))
	for i, s := range statuses {
		out = append(out, runstate.JobRecord{
			ID:        "wk" + string(rune('a'+i)),
			Label:     "dhrystone",
			Iteration: 1,
			Status:    s,
		})
	}
	return out
}

func repeat(s runstate.JobStatus, n int) []runstate.JobStatus {
	out := make([]runstate.JobStatus, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func snapshot(js []runstate.JobRecord) *runstate.Snapshot {
	s := start
	return &runstate.Snapshot{
		Info:   runstate.RunInfo{UUID: "6c2a4d0e-0f57-4bd8-a6c4-3d2f5e8c1a01", StartTime: &s},
		Policy: runstate.DefaultRetryPolicy(),
		Jobs:   js,
	}
}

func TestNew_NotStarted(t *testing.T) {
	snap := snapshot(nil)
	snap.Info.StartTime = nil

	m, err := New(snap)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, IsNotStarted(err))

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestNew_DuplicateOutputKey(t *testing.T) {
	snap := snapshot(jobs(runstate.StatusOK))
	out := runstate.JobOutput{ID: "wka", Label: "dhrystone", Iteration: 1}
	snap.Outputs = []runstate.JobOutput{out, out}

	_, err := New(snap)
	require.Error(t, err)

	var dup *DuplicateJobKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, out.Key(), dup.Key)
	assert.Contains(t, err.Error(), "duplicate job output for wka (dhrystone) [1]")
}

func TestNew_DuplicateJobKey(t *testing.T) {
	js := jobs(runstate.StatusOK)
	snap := snapshot(append(js, js[0]))

	m, err := New(snap)
	require.Error(t, err)
	assert.Nil(t, m)

	var dup *DuplicateJobKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, js[0].Key(), dup.Key)
	assert.Equal(t, "job", dup.Kind)
}

func TestCheckJobKeys(t *testing.T) {
	assert.NoError(t, CheckJobKeys(nil))

	js := jobs(runstate.StatusOK, runstate.StatusFailed)
	assert.NoError(t, CheckJobKeys(js))

	retry := js[0]
	retry.Iteration = 2
	assert.NoError(t, CheckJobKeys(append(js, retry)))
	assert.Error(t, CheckJobKeys(append(js, js[1])))
}

func TestElapsedTime(t *testing.T) {
	end := start.Add(90 * time.Minute)
	recorded := 2 * time.Hour

	tests := []struct {
		name string
		info runstate.RunInfo
		now  time.Time
		want time.Duration
	}{
		{
			name: "live run uses clock",
			info: runstate.RunInfo{StartTime: &start},
			now:  start.Add(100 * time.Second),
			want: 100 * time.Second,
		},
		{
			name: "ended run uses end time",
			info: runstate.RunInfo{StartTime: &start, EndTime: &end},
			now:  start.Add(10 * time.Hour),
			want: 90 * time.Minute,
		},
		{
			name: "recorded duration wins",
			info: runstate.RunInfo{StartTime: &start, EndTime: &end, Duration: &recorded},
			now:  start.Add(10 * time.Hour),
			want: 2 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ElapsedTime(tt.info, tt.now))
		})
	}
}

func TestProjectRemaining(t *testing.T) {
	t.Run("arithmetic", func(t *testing.T) {
		remaining, ok := ProjectRemaining(100*time.Second, 10, 2)
		require.True(t, ok)
		assert.Equal(t, 400*time.Second, remaining)
	})

	t.Run("all finished", func(t *testing.T) {
		remaining, ok := ProjectRemaining(100*time.Second, 4, 4)
		require.True(t, ok)
		assert.Equal(t, time.Duration(0), remaining)
	})

	t.Run("no finished jobs", func(t *testing.T) {
		remaining, ok := ProjectRemaining(100*time.Second, 10, 0)
		assert.False(t, ok)
		assert.Equal(t, time.Duration(0), remaining)
	})
}

func TestMonitor_Projection(t *testing.T) {
	statuses := append(repeat(runstate.StatusOK, 2), repeat(runstate.StatusPending, 8)...)
	m, err := New(snapshot(jobs(statuses...)), WithClock(fixedClock(start.Add(100*time.Second))))
	require.NoError(t, err)

	assert.Equal(t, 100*time.Second, m.ElapsedTime())
	remaining, ok := m.ProjectedRemaining()
	require.True(t, ok)
	assert.Equal(t, 400*time.Second, remaining)
}

func TestMonitor_NoProjectionWithoutFinishedJobs(t *testing.T) {
	m, err := New(snapshot(jobs(runstate.StatusRunning, runstate.StatusPending)), WithClock(fixedClock(start.Add(time.Minute))))
	require.NoError(t, err)

	_, ok := m.ProjectedRemaining()
	assert.False(t, ok)
}

func TestMonitor_EmptyRun(t *testing.T) {
	m, err := New(snapshot(nil), WithClock(fixedClock(start)))
	require.NoError(t, err)

	s := m.Summary()
	assert.Equal(t, 0, s.Total)
	assert.False(t, s.HasPercent)
	assert.Len(t, s.Terminal, 5)
	assert.Empty(t, s.Buckets)
	assert.Empty(t, m.Detail())
	assert.Empty(t, m.RunEvents())

	_, ok := m.ProjectedRemaining()
	assert.False(t, ok)
}

func TestGenerateSummary(t *testing.T) {
	statuses := []runstate.JobStatus{
		runstate.StatusOK, runstate.StatusOK, runstate.StatusSkipped, runstate.StatusAborted,
		runstate.StatusRunning, runstate.StatusPending, runstate.StatusPending,
		runstate.StatusNew, runstate.StatusNew, "STARTED",
	}
	js := jobs(statuses...)
	p := lifecycle.Classify(js, runstate.DefaultRetryPolicy())

	s := GenerateSummary(p, js)

	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 4, s.Finished)
	require.True(t, s.HasPercent)
	assert.Equal(t, 40.0, s.Percent)

	assert.Equal(t, []StatusCount{
		{Status: runstate.StatusPartial, Label: "partial", Count: 0},
		{Status: runstate.StatusFailed, Label: "failed", Count: 0},
		{Status: runstate.StatusAborted, Label: "aborted", Count: 1},
		{Status: runstate.StatusOK, Label: "ok", Count: 2},
		{Status: runstate.StatusSkipped, Label: "skipped", Count: 1},
	}, s.Terminal)

	assert.Equal(t, []BucketCount{
		{Bucket: lifecycle.BucketOther, Count: 1},
		{Bucket: lifecycle.BucketRunning, Count: 1},
		{Bucket: lifecycle.BucketPending, Count: 2},
		{Bucket: lifecycle.BucketUninitialized, Count: 2},
	}, s.Buckets)
}

func TestGenerateSummary_RetriedFailureCountsAsRunning(t *testing.T) {
	js := []runstate.JobRecord{
		{ID: "1", Label: "a", Iteration: 1, Status: runstate.StatusFailed, Retries: 0},
		{ID: "2", Label: "b", Iteration: 1, Status: runstate.StatusFailed, Retries: 2},
	}
	policy := runstate.RetryPolicy{MaxRetries: 2, RetryOnStatus: runstate.NewStatusSet(runstate.StatusFailed)}

	s := GenerateSummary(lifecycle.Classify(js, policy), js)

	assert.Equal(t, 1, s.Finished)
	assert.Equal(t, 50.0, s.Percent)
	assert.Equal(t, []BucketCount{{Bucket: lifecycle.BucketRunning, Count: 1}}, s.Buckets)
	assert.Equal(t, 1, s.Terminal[1].Count)
}

func TestGenerateDetail(t *testing.T) {
	js := []runstate.JobRecord{
		{ID: "1", Label: "idle", Iteration: 1, Status: runstate.StatusPending},
		{ID: "2", Label: "dhrystone", Iteration: 1, Status: runstate.StatusOK},
		{ID: "2", Label: "dhrystone", Iteration: 2, Status: runstate.StatusFailed, Retries: 2},
	}
	events := []runstate.Event{
		{Timestamp: start, Message: "started"},
		{Timestamp: start.Add(time.Second), Message: "done"},
	}
	idx, err := BuildOutputIndex([]runstate.JobOutput{
		{ID: "2", Label: "dhrystone", Iteration: 1, Status: runstate.StatusOK, Events: events},
	})
	require.NoError(t, err)

	details := GenerateDetail(lifecycle.Classify(js, runstate.DefaultRetryPolicy()), idx)

	require.Len(t, details, 3)
	assert.Equal(t, JobDetail{
		ID: "2", Label: "dhrystone", Iteration: 1, Status: runstate.StatusOK,
		Bucket: lifecycle.BucketFinished, Events: events,
	}, details[0])
	assert.Equal(t, "2", details[1].ID)
	assert.Equal(t, 2, details[1].Iteration)
	assert.Equal(t, 2, details[1].Retries)
	assert.Equal(t, lifecycle.BucketFinished, details[1].Bucket)
	assert.Empty(t, details[1].Events)
	assert.Equal(t, lifecycle.BucketPending, details[2].Bucket)
}

func TestMonitor_Idempotent(t *testing.T) {
	snap := snapshot(jobs(runstate.StatusOK, runstate.StatusRunning, runstate.StatusNew))
	snap.Events = []runstate.Event{{Timestamp: start, Message: "run started"}}
	snap.Outputs = []runstate.JobOutput{{ID: "wka", Label: "dhrystone", Iteration: 1, Events: snap.Events}}

	m, err := New(snap, WithClock(fixedClock(start.Add(time.Minute))))
	require.NoError(t, err)

	assert.Equal(t, m.Summary(), m.Summary())
	assert.Equal(t, m.Detail(), m.Detail())
	assert.Equal(t, m.RunEvents(), m.RunEvents())

	p := lifecycle.Classify(snap.Jobs, snap.Policy)
	assert.Equal(t, GenerateSummary(p, snap.Jobs), GenerateSummary(p, snap.Jobs))
	assert.Equal(t, m.Summary(), GenerateSummary(p, snap.Jobs))

	require.NotEmpty(t, m.Detail())
	assert.Equal(t, "wka", m.Detail()[0].ID)
	assert.Len(t, m.Detail()[0].Events, 1)
}
