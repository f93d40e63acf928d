package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ANSI escape sequences used for keyword highlighting.
const (
	ansiReset     = "\x1b[0m"
	ansiGreen     = "\x1b[32m"
	ansiYellow    = "\x1b[33m"
	ansiRed       = "\x1b[31m"
	ansiBrightRed = "\x1b[1m\x1b[31m"
	ansiWhite     = "\x1b[37m"
)

// keywordColor pairs a report keyword with its highlight color.
type keywordColor struct {
	Keyword string
	Color   string
}

// keywordColors is the highlight palette. Keywords not listed are never colored.
var keywordColors = []keywordColor{
	{Keyword: "running", Color: ansiGreen},
	{Keyword: "ok", Color: ansiWhite},
	{Keyword: "partial", Color: ansiYellow},
	{Keyword: "failed", Color: ansiBrightRed},
	{Keyword: "aborted", Color: ansiRed},
	{Keyword: "skipped", Color: ansiWhite},
	{Keyword: "pending", Color: ansiWhite},
	{Keyword: "new", Color: ansiWhite},
}

func colorFor(keyword string) (string, bool) {
	kw := strings.ToLower(keyword)
	for _, kc := range keywordColors {
		if kc.Keyword == kw {
			return kc.Color, true
		}
	}
	return "", false
}

// FormatHMS renders a duration as HH:MM:SS, truncating fractional seconds.
// Hours are not wrapped at 24.
func FormatHMS(d time.Duration) string {
	secs := int64(d / time.Second)
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, secs/3600, (secs%3600)/60, secs%60)
}

// FormatPercent renders a completion percentage with one decimal place.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// expandTabs replaces tabs with spaces up to the next multiple of 8 columns.
func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := 8 - col%8
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// fitWidth truncates a single line so that it, plus its newline, fits in
// width columns. Truncated lines end in " ...". A width <= 0 disables fitting.
func fitWidth(line string, width int) string {
	line = expandTabs(line)
	if width <= 0 || utf8.RuneCountInString(line) < width {
		return line
	}
	keep := max(width-4, 0)
	runes := []rune(line)
	return string(runes[:keep]) + " ..."
}
