package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoSelection is returned when input ends before a valid choice is made.
var ErrNoSelection = errors.New("no run output selected")

type selectState int

const (
	stateAwaitingSelection selectState = iota
	stateValidated
)

// runSelector chooses one of several run outputs from line input.
//
// Each line either validates (a number in range) or re-prompts. The
// selector never gives up on bad input; only end of input stops it.
type runSelector struct {
	in         *bufio.Scanner
	out        io.Writer
	candidates []string
	state      selectState
	choice     int
}

func newRunSelector(in io.Reader, out io.Writer, candidates []string) *runSelector {
	return &runSelector{
		in:         bufio.NewScanner(in),
		out:        out,
		candidates: candidates,
		state:      stateAwaitingSelection,
	}
}

// Run lists the candidates and reads lines until one validates. It returns
// the chosen index.
func (s *runSelector) Run() (int, error) {
	_, _ = fmt.Fprintln(s.out, "More than one possible output directory found, please choose a path from the following:")
	for i, c := range s.candidates {
		_, _ = fmt.Fprintf(s.out, "%d: %s\n", i, c)
	}

	for s.state == stateAwaitingSelection {
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return -1, fmt.Errorf("read selection: %w", err)
			}
			return -1, ErrNoSelection
		}
		s.step(s.in.Text())
	}
	return s.choice, nil
}

// step applies one line of input.
func (s *runSelector) step(line string) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 0 || n >= len(s.candidates) {
		s.reprompt()
		return
	}
	s.choice = n
	s.state = stateValidated
}

func (s *runSelector) reprompt() {
	choices := make([]string, len(s.candidates))
	for i := range s.candidates {
		choices[i] = strconv.Itoa(i)
	}
	_, _ = fmt.Fprintf(s.out, "Please select number from [%s]\n", strings.Join(choices, ", "))
}
