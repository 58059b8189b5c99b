package aggregate

import (
	"errors"
	"fmt"

	"github.com/leaseworks/rentledger/domain"
)

// ErrInvalidEventSequence is returned when an event history cannot be folded:
// an event violates a transition precondition or is of an unknown type.
// It signals corrupt storage, not a business failure; it should never occur
// for histories the store itself produced.
var ErrInvalidEventSequence = errors.New("invalid event sequence encountered during replay")

// FoldFunc applies one event to the state and returns the updated state.
// It must be pure: the same state and event always yield the same result.
type FoldFunc[S any] func(state S, event domain.DomainEvent) (S, error)

// Replay folds an ordered event history into current state, oldest event
// first, and returns the state plus the resulting version (the number of
// events folded). Replaying the same history twice yields identical state.
func Replay[S any](initial S, history domain.DomainEvents, fold FoldFunc[S]) (S, uint, error) {
	state := initial
	version := uint(0)

	for _, event := range history {
		next, err := fold(state, event)
		if err != nil {
			var zero S
			return zero, 0, errors.Join(
				ErrInvalidEventSequence,
				fmt.Errorf("folding event %d (%s)", version+1, event.IsEventType()),
				err,
			)
		}

		state = next
		version++
	}

	return state, version, nil
}
