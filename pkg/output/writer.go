package output

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Writer outputs JSONL records for run status reports.
//
// Implementations must be safe for concurrent use. Each Write* method emits
// a complete record as a single line of JSON followed by a newline.
type Writer interface {
	// WriteRun emits a run identity and timing record.
	WriteRun(ctx context.Context, run *RunRecord) error

	// WriteSummary emits a job count record.
	WriteSummary(ctx context.Context, sum *SummaryRecord) error

	// WriteJob emits a per-job record.
	WriteJob(ctx context.Context, job *JobRecord) error

	// WriteEvent emits a run-level event record.
	WriteEvent(ctx context.Context, ev *EventRecord) error

	// WriteError emits an error record.
	WriteError(ctx context.Context, err *ErrorRecord) error

	// Close marks the writer closed. The underlying io.Writer is not closed.
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// Writes are serialized with a mutex so lines never interleave.
type JSONLWriter struct {
	w        io.Writer
	reportID string
	runUUID  string
	now      func() time.Time
	mu       sync.Mutex
	closed   bool
}

// NewJSONLWriter creates a JSONL writer. reportID is stamped on every
// record; use NewReportID for a fresh one.
func NewJSONLWriter(w io.Writer, reportID string) *JSONLWriter {
	return &JSONLWriter{
		w:        w,
		reportID: reportID,
		now:      time.Now,
	}
}

// SetRunUUID sets the run UUID stamped on subsequent records.
func (jw *JSONLWriter) SetRunUUID(uuid string) {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	jw.runUUID = uuid
}

// WriteRun emits a run record.
func (jw *JSONLWriter) WriteRun(ctx context.Context, run *RunRecord) error {
	return jw.writeRecord(ctx, TypeRun, run)
}

// WriteSummary emits a summary record.
func (jw *JSONLWriter) WriteSummary(ctx context.Context, sum *SummaryRecord) error {
	return jw.writeRecord(ctx, TypeSummary, sum)
}

// WriteJob emits a job record.
func (jw *JSONLWriter) WriteJob(ctx context.Context, job *JobRecord) error {
	return jw.writeRecord(ctx, TypeJob, job)
}

// WriteEvent emits a run event record.
func (jw *JSONLWriter) WriteEvent(ctx context.Context, ev *EventRecord) error {
	return jw.writeRecord(ctx, TypeEvent, ev)
}

// WriteError emits an error record.
func (jw *JSONLWriter) WriteError(ctx context.Context, err *ErrorRecord) error {
	return jw.writeRecord(ctx, TypeError, err)
}

// Close marks the writer as closed.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	jw.closed = true
	return nil
}

func (jw *JSONLWriter) writeRecord(ctx context.Context, recordType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return &WriteError{Op: "marshal_data", Err: err}
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	record := Record{
		Type:     recordType,
		TS:       jw.now().UTC(),
		ReportID: jw.reportID,
		RunUUID:  jw.runUUID,
		Data:     dataBytes,
	}

	recordBytes, err := json.Marshal(record)
	if err != nil {
		return &WriteError{Op: "marshal_record", Err: err}
	}

	// io.Writer may return n < len(p) with a nil error; a truncated line
	// would corrupt the stream.
	recordBytes = append(recordBytes, '\n')
	if err := writeAll(jw.w, recordBytes); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}

// writeAll writes all bytes to w, looping over short writes.
func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

var _ Writer = (*JSONLWriter)(nil)
