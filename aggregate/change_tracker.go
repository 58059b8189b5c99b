package aggregate

import (
	"slices"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/domain"
)

// ChangeTracker tracks an aggregate root's identity, its version counter and
// the events it has produced since it was loaded. Aggregate roots embed it;
// every command routes its state change through Record, so the version always
// equals the number of events applied.
type ChangeTracker struct {
	id      uuid.UUID
	version uint
	pending domain.DomainEvents
}

// ID returns the aggregate's unique identifier.
func (c *ChangeTracker) ID() uuid.UUID {
	return c.id
}

// Version returns the aggregate's current version: the number of events
// applied, including pending ones.
func (c *ChangeTracker) Version() uint {
	return c.version
}

// BaseVersion returns the version the aggregate was loaded at, excluding
// pending events. It is the expected version for the optimistic concurrency
// check when the pending events are appended.
func (c *ChangeTracker) BaseVersion() uint {
	return c.version - uint(len(c.pending))
}

// PendingEvents returns a copy of the events produced since load, oldest first.
func (c *ChangeTracker) PendingEvents() domain.DomainEvents {
	return slices.Clone(c.pending)
}

// Record registers a newly produced event and advances the version.
func (c *ChangeTracker) Record(event domain.DomainEvent) {
	c.pending = append(c.pending, event)
	c.version++
}

// Restore resets the tracker to a replayed identity and version with no
// pending events. Used by replay, never during command handling.
func (c *ChangeTracker) Restore(id uuid.UUID, version uint) {
	c.id = id
	c.version = version
	c.pending = nil
}

// MarkCommitted clears the pending events after a successful save.
func (c *ChangeTracker) MarkCommitted() {
	c.pending = nil
}
