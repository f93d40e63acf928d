package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(w *JSONLWriter, t time.Time) {
	w.now = func() time.Time { return t }
}

func TestJSONLWriter_WriteJob(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "report-1")
	w.SetRunUUID("run-1")
	fixedClock(w, time.Date(2026, 1, 19, 12, 0, 0, 0, time.FixedZone("x", 3600)))

	job := &JobRecord{
		ID:        "wk1",
		Label:     "dhrystone",
		Iteration: 2,
		Retries:   1,
		Status:    "FAILED",
		Bucket:    "running",
		Events:    []EventRecord{},
	}
	require.NoError(t, w.WriteJob(context.Background(), job))

	var record Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, TypeJob, record.Type)
	assert.Equal(t, "report-1", record.ReportID)
	assert.Equal(t, "run-1", record.RunUUID)
	assert.Equal(t, time.Date(2026, 1, 19, 11, 0, 0, 0, time.UTC), record.TS)

	var got JobRecord
	require.NoError(t, json.Unmarshal(record.Data, &got))
	assert.Equal(t, *job, got)
}

func TestJSONLWriter_RecordTypes(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "report-1")
	ctx := context.Background()

	require.NoError(t, w.WriteRun(ctx, &RunRecord{UUID: "u"}))
	require.NoError(t, w.WriteSummary(ctx, &SummaryRecord{Total: 1}))
	require.NoError(t, w.WriteEvent(ctx, &EventRecord{Message: "m"}))
	require.NoError(t, w.WriteJob(ctx, &JobRecord{ID: "j"}))
	require.NoError(t, w.WriteError(ctx, &ErrorRecord{Code: ErrCodeLoadFailed, Message: "bad"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)

	want := []string{TypeRun, TypeSummary, TypeEvent, TypeJob, TypeError}
	for i, line := range lines {
		var record Record
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		assert.Equal(t, want[i], record.Type)
		assert.Empty(t, record.RunUUID)
	}
	assert.NotContains(t, lines[0], "run_uuid")
}

func TestJSONLWriter_Close(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "report-1")

	require.NoError(t, w.Close())
	err := w.WriteRun(context.Background(), &RunRecord{UUID: "u"})
	assert.ErrorIs(t, err, ErrWriterClosed)
	assert.Empty(t, buf.String())
}

func TestJSONLWriter_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "report-1")

	const numWriters = 10
	const writesPerWriter = 50

	var wg sync.WaitGroup
	wg.Add(numWriters)
	for i := 0; i < numWriters; i++ {
		go func(n int) {
			defer wg.Done()
			for j := 0; j < writesPerWriter; j++ {
				_ = w.WriteJob(context.Background(), &JobRecord{ID: "wk", Iteration: n*writesPerWriter + j + 1})
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, numWriters*writesPerWriter)
	for i, line := range lines {
		var record Record
		assert.NoError(t, json.Unmarshal([]byte(line), &record), "line %d should be valid JSON: %s", i, line)
	}
}

func TestJSONLWriter_ContextCancellation(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "report-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteEvent(ctx, &EventRecord{Message: "m"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}

type failingWriter struct {
	err error
}

func (f *failingWriter) Write(p []byte) (int, error) {
	return 0, f.err
}

func TestJSONLWriter_WriteFailure(t *testing.T) {
	w := NewJSONLWriter(&failingWriter{err: errors.New("disk full")}, "report-1")

	err := w.WriteRun(context.Background(), &RunRecord{UUID: "u"})
	require.Error(t, err)

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, "write", writeErr.Op)
}

// shortWriteWriter writes at most bytesPerWrite bytes per call.
type shortWriteWriter struct {
	buf           bytes.Buffer
	bytesPerWrite int
}

func (sw *shortWriteWriter) Write(p []byte) (int, error) {
	return sw.buf.Write(p[:min(len(p), sw.bytesPerWrite)])
}

type zeroWriteWriter struct{}

func (zeroWriteWriter) Write(p []byte) (int, error) {
	return 0, nil
}

func TestJSONLWriter_ShortWrite(t *testing.T) {
	sw := &shortWriteWriter{bytesPerWrite: 7}
	w := NewJSONLWriter(sw, "report-1")

	require.NoError(t, w.WriteEvent(context.Background(), &EventRecord{Message: "run started on host-a"}))

	lines := strings.Split(strings.TrimSpace(sw.buf.String()), "\n")
	require.Len(t, lines, 1)
	var record Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, TypeEvent, record.Type)
}

func TestJSONLWriter_ZeroWrite(t *testing.T) {
	w := NewJSONLWriter(zeroWriteWriter{}, "report-1")

	err := w.WriteEvent(context.Background(), &EventRecord{Message: "m"})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestWriteError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &WriteError{Op: "marshal_data", Err: underlying}

	assert.Equal(t, "output: marshal_data: underlying error", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestRunRecord_OmitEmpty(t *testing.T) {
	data, err := json.Marshal(RunRecord{UUID: "u", Location: "."})
	require.NoError(t, err)

	for _, key := range []string{"run_name", "start_time", "end_time", "elapsed_seconds", "remaining_seconds", `"status"`} {
		assert.NotContains(t, string(data), key)
	}
	assert.Contains(t, string(data), `"started":false`)
}

func BenchmarkJSONLWriter_WriteJob(b *testing.B) {
	w := NewJSONLWriter(io.Discard, "report-1")
	job := &JobRecord{
		ID:        "wk1",
		Label:     "dhrystone",
		Iteration: 1,
		Status:    "OK",
		Bucket:    "finished",
		Events:    []EventRecord{{Timestamp: time.Now().UTC(), Message: "done"}},
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.WriteJob(ctx, job)
	}
}
