package cmd

import (
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/pflag"

	"github.com/3leaps/runstatus/pkg/match"
)

// selectorFlags holds --include and --exclude for commands that discover
// run outputs.
type selectorFlags struct {
	include []string
	exclude []string
}

func (s *selectorFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&s.include, "include", nil, "Only consider run outputs whose relative location matches (glob, repeatable)")
	fs.StringArrayVar(&s.exclude, "exclude", nil, "Skip run outputs whose relative location matches (glob, repeatable)")
}

func (s *selectorFlags) matcher() (*match.Matcher, error) {
	m, err := match.New(match.Config{Includes: s.include, Excludes: s.exclude})
	if err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid run selector", err)
	}
	return m, nil
}

// relativeBase is base relative to the source location, "." for the
// location itself.
func relativeBase(src *runSource, base string) string {
	if base == src.rootBase() {
		return "."
	}
	return strings.TrimPrefix(base, src.prefix)
}
