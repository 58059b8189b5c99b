package eventstore

import (
	"context"

	"github.com/google/uuid"
)

// EventStore is the contract every event store engine implements: an
// append-only, per-aggregate-stream log of immutable events with an
// optimistic concurrency guard on append.
type EventStore interface {
	// Append durably writes the given events to the aggregate's stream,
	// atomically (all-or-nothing), assigning versions
	// expectedVersion+1 .. expectedVersion+n and the RecordedAt timestamps.
	//
	// Returns ErrConcurrencyConflict if the stream's current highest version
	// differs from expectedVersion at write time. Appends to different
	// aggregate ids never coordinate with each other.
	Append(
		ctx context.Context,
		aggregateID uuid.UUID,
		expectedVersion AggregateVersionUint,
		event StorableEvent,
		additionalEvents ...StorableEvent,
	) error

	// Read returns the aggregate's events with version > fromVersion, oldest
	// first. A never-written aggregate yields an empty slice, not an error.
	// Pass fromVersion 0 for the full stream, or a snapshot's version for the
	// tail beyond it.
	Read(ctx context.Context, aggregateID uuid.UUID, fromVersion AggregateVersionUint) (StorableEvents, error)
}

// NotificationLog is the contract for a gapless, globally ordered index over
// aggregate creations and changes. One log instance serves one aggregate
// kind; the log alone assigns positions.
type NotificationLog interface {
	// Append assigns the next position (last + 1, starting at 1) and durably
	// records the entry. Concurrent appends serialize; positions never
	// interleave and never leave holes.
	Append(ctx context.Context, aggregateID uuid.UUID, originatorVersion AggregateVersionUint) (LogPositionUint64, error)

	// Read returns entries matching the range options, ordered by position
	// (descending by default), truncated to the limit if one is set.
	// Reading never blocks writers and never observes a torn append.
	Read(ctx context.Context, options ...ReadOption) (Notifications, error)
}

// SnapshotStore is the contract for the optional snapshot cache. Snapshots
// are pure optimization: loading may always fall back to full replay, and
// a stale or missing snapshot is never an error.
type SnapshotStore interface {
	// SaveSnapshot stores the snapshot, replacing any previous one for the
	// same aggregate id.
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error

	// LoadSnapshot returns the stored snapshot for the aggregate id, or
	// ok=false when none exists.
	LoadSnapshot(ctx context.Context, aggregateID uuid.UUID) (Snapshot, bool, error)

	// DeleteSnapshot removes the stored snapshot for the aggregate id, if any.
	DeleteSnapshot(ctx context.Context, aggregateID uuid.UUID) error
}
