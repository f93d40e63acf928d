// Package match selects run outputs by glob patterns.
//
// Patterns use doublestar syntax and are matched against a run's location
// relative to the search root, e.g. "nightly/2026-01-19". The search root
// itself is ".".
package match

import (
	"errors"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates include and exclude patterns against run locations.
//
// A location matches when it matches at least one include and no exclude.
// A Matcher is safe for concurrent use.
type Matcher struct {
	includes []string
	excludes []string
	prefix   string
}

// Config configures a Matcher.
type Config struct {
	// Includes selects locations. Empty selects everything.
	Includes []string

	// Excludes removes locations selected by Includes.
	Excludes []string
}

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// All matches every location.
var All = &Matcher{includes: []string{"**"}}

// New compiles cfg. Backslash separators are normalized to "/" while glob
// escapes are kept.
func New(cfg Config) (*Matcher, error) {
	includes, err := compile(cfg.Includes)
	if err != nil {
		return nil, err
	}
	if len(includes) == 0 {
		includes = []string{"**"}
	}
	excludes, err := compile(cfg.Excludes)
	if err != nil {
		return nil, err
	}

	m := &Matcher{includes: includes, excludes: excludes}
	if len(includes) == 1 {
		p := DerivePrefix(includes[0])
		m.prefix = p[:strings.LastIndex(p, "/")+1]
	}
	return m, nil
}

func compile(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		p := NormalizePattern(r)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, &PatternError{Pattern: r, Err: ErrInvalidPattern}
		}
		out = append(out, p)
	}
	return out, nil
}

// Match reports whether location is selected.
func (m *Matcher) Match(location string) bool {
	if location == "" {
		location = "."
	}
	if !matchAny(m.includes, location) {
		return false
	}
	return !matchAny(m.excludes, location)
}

// ListPrefix is a directory prefix every selected location lies under,
// or "" when listing cannot be narrowed. It ends in "/" when non-empty.
func (m *Matcher) ListPrefix() string {
	return m.prefix
}

// Selective reports whether the matcher filters anything at all.
func (m *Matcher) Selective() bool {
	return len(m.excludes) > 0 || len(m.includes) != 1 || m.includes[0] != "**"
}

func matchAny(patterns []string, location string) bool {
	for _, p := range patterns {
		// Patterns are validated in New.
		if ok, _ := doublestar.Match(p, location); ok {
			return true
		}
	}
	return false
}
