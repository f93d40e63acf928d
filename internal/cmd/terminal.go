package cmd

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/3leaps/runstatus/internal/config"
)

// defaultWidth is used when the terminal width cannot be determined.
const defaultWidth = 80

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorEnabled resolves a color mode against the output stream. Auto mode
// honors NO_COLOR and only colors terminals.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminal(w)
}

// outputWidth returns configured when positive, else the terminal width of
// w, else defaultWidth.
func outputWidth(configured int, w io.Writer) int {
	if configured > 0 {
		return configured
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWidth
}
