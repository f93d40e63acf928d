// Package report renders monitor output as plain-text progress reports.
//
// Rendering is driven entirely by Options; nothing is read from the
// terminal or the environment here.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/3leaps/runstatus/pkg/monitor"
	"github.com/3leaps/runstatus/pkg/runstate"
)

const rule = "========================="

// Options controls presentation.
type Options struct {
	// ColorEnabled wraps status keywords in ANSI color codes.
	ColorEnabled bool

	// MaxWidth truncates event lines to this many columns. Zero disables truncation.
	MaxWidth int

	// Verbose adds run events and per-job detail.
	Verbose bool
}

// Renderer formats reports.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render writes the full report for a started run.
func (r *Renderer) Render(w io.Writer, m *monitor.Monitor) error {
	var b strings.Builder
	r.writeHeader(&b, m.Info(), m)
	r.writeSummary(&b, m.Summary())
	if r.opts.Verbose {
		r.writeRunEvents(&b, m.RunEvents())
		r.writeJobDetail(&b, m.Detail())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderUnstarted writes the header and summary for a run with no start time.
func (r *Renderer) RenderUnstarted(w io.Writer, snap *runstate.Snapshot, summary monitor.Summary) error {
	var b strings.Builder
	r.writeHeader(&b, snap.Info, nil)
	b.WriteString("Run has not started\n")
	r.writeSummary(&b, summary)
	if r.opts.Verbose {
		r.writeRunEvents(&b, snap.Events)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Highlight colors a status or bucket keyword when color is enabled.
func (r *Renderer) Highlight(keyword string) string {
	if !r.opts.ColorEnabled {
		return keyword
	}
	color, ok := colorFor(keyword)
	if !ok {
		return keyword
	}
	return color + keyword + ansiReset
}

func banner(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n%s\n%s\n\n", rule, title, rule)
}

// writeHeader writes identity and timing. m is nil for unstarted runs.
func (r *Renderer) writeHeader(b *strings.Builder, info runstate.RunInfo, m *monitor.Monitor) {
	banner(b, "Run Info")
	fmt.Fprintf(b, "UUID: %s\n", info.UUID)
	if info.RunName != "" {
		fmt.Fprintf(b, "Run name: %s\n", info.RunName)
	}
	if info.Project != "" {
		fmt.Fprintf(b, "Project: %s\n", info.Project)
	}
	if info.ProjectStage != "" {
		fmt.Fprintf(b, "Project stage: %s\n", info.ProjectStage)
	}
	if m == nil || !info.Started() {
		return
	}

	fmt.Fprintf(b, "Start time: %s\n", formatTime(*info.StartTime))
	fmt.Fprintf(b, "Duration: %s\n", FormatHMS(m.ElapsedTime()))
	if info.Ended() {
		fmt.Fprintf(b, "End time: %s\n", formatTime(*info.EndTime))
		return
	}
	if remaining, ok := m.ProjectedRemaining(); ok {
		fmt.Fprintf(b, "Projected time remaining: %s\n", FormatHMS(remaining))
	}
}

func (r *Renderer) writeSummary(b *strings.Builder, s monitor.Summary) {
	banner(b, "Job Summary")
	fmt.Fprintf(b, "Total: %d, Completed: %d", s.Total, s.Finished)
	if s.HasPercent {
		fmt.Fprintf(b, " (%s)", FormatPercent(s.Percent))
	}
	b.WriteString("\n")

	parts := make([]string, 0, len(s.Terminal)+len(s.Buckets))
	for _, sc := range s.Terminal {
		if sc.Count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", sc.Count, r.Highlight(sc.Label)))
		}
	}
	for _, bc := range s.Buckets {
		parts = append(parts, fmt.Sprintf("%d %s", bc.Count, r.Highlight(bc.Bucket.String())))
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString("\n")
}

func (r *Renderer) writeRunEvents(b *strings.Builder, events []runstate.Event) {
	if len(events) == 0 {
		return
	}
	b.WriteString("\n")
	banner(b, "Run Events")
	for _, e := range events {
		b.WriteString(e.Summary())
		b.WriteString("\n")
	}
}

func (r *Renderer) writeJobDetail(b *strings.Builder, details []monitor.JobDetail) {
	banner(b, "Job Detail")
	for _, d := range details {
		retries := ""
		if d.Retries > 0 {
			retries = fmt.Sprintf(" - %d", d.Retries)
		}
		fmt.Fprintf(b, "%s (%s) [%d]%s, %s\n", d.ID, d.Label, d.Iteration, retries, r.Highlight(d.Status.String()))
		for _, e := range d.Events {
			b.WriteString(fitWidth("\t"+e.Summary(), r.opts.MaxWidth))
			b.WriteString("\n")
		}
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
