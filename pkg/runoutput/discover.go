package runoutput

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/3leaps/runstatus/pkg/provider"
)

// runInfoPattern matches run_info.json at any depth below the search prefix.
const runInfoPattern = "**/" + RunInfoFile

// Discover returns the base of every run output below prefix, sorted.
//
// A run output is any location holding __meta/run_info.json. An empty
// prefix searches the whole provider root.
func Discover(ctx context.Context, p provider.Provider, prefix string) ([]string, error) {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	objects, err := provider.ListAll(ctx, p, prefix)
	if err != nil {
		return nil, fmt.Errorf("list run outputs: %w", err)
	}

	seen := make(map[string]struct{})
	var bases []string
	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Key, prefix)
		ok, err := doublestar.Match(runInfoPattern, rel)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		base := strings.TrimSuffix(obj.Key, RunInfoFile)
		base = strings.TrimSuffix(base, "/")
		if base == "" {
			base = "."
		}
		if _, dup := seen[base]; dup {
			continue
		}
		seen[base] = struct{}{}
		bases = append(bases, base)
	}

	// Keep deterministic ordering for selection prompts.
	sort.Strings(bases)
	return bases, nil
}

// Name returns a short display name for a run base.
func Name(base string) string {
	if base == "" || base == "." {
		return "."
	}
	return path.Base(base)
}
