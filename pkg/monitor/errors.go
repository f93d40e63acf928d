package monitor

import (
	"errors"
	"fmt"

	"github.com/3leaps/runstatus/pkg/runstate"
)

// ErrNotStarted indicates the run has no recorded start time.
var ErrNotStarted = errors.New("run has not started")

// DuplicateJobKeyError indicates two job records, or two job outputs, share
// an (id, label, iteration) key.
type DuplicateJobKeyError struct {
	Key runstate.JobKey

	// Kind is "job" or "job output".
	Kind string
}

// Error implements the error interface.
func (e *DuplicateJobKeyError) Error() string {
	return fmt.Sprintf("duplicate %s for %s", e.Kind, e.Key)
}

// IsNotStarted returns true if the error indicates the run has not started.
func IsNotStarted(err error) bool {
	return errors.Is(err, ErrNotStarted)
}
