// Package runlog implements the run-log state machine and its Mongo
// persistence, adapted from the crawler scheduler's job state machine to
// the scraping run's simpler terminal/non-terminal status set.
package runlog

import (
	"fmt"

	"github.com/contentradar/scraper/internal/domain"
)

// ValidateStateTransition reports whether a run may move from one status to
// another. Terminal states (completed, failed, cancelled, partial) accept no
// further transitions; partial is reachable only from running, when some of
// the adapter's URLs fail while others succeed.
func ValidateStateTransition(from, to domain.RunStatus) error {
	allowed := map[domain.RunStatus][]domain.RunStatus{
		domain.RunPending: {
			domain.RunRunning,
			domain.RunCancelled,
		},
		domain.RunRunning: {
			domain.RunCompleted,
			domain.RunFailed,
			domain.RunPartial,
			domain.RunCancelled,
		},
		domain.RunCompleted: {},
		domain.RunFailed:    {},
		domain.RunCancelled: {},
		domain.RunPartial:   {},
	}

	candidates, exists := allowed[from]
	if !exists {
		return fmt.Errorf("runlog: unknown source status %q", from)
	}
	for _, c := range candidates {
		if c == to {
			return nil
		}
	}
	return fmt.Errorf("runlog: invalid state transition from %s to %s", from, to)
}

// CanCancel reports whether a run in status s accepts a cooperative cancel
// request.
func CanCancel(s domain.RunStatus) bool {
	return s == domain.RunPending || s == domain.RunRunning
}
