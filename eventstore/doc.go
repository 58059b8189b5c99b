// Package eventstore provides the core abstractions for the event-sourced
// aggregate store: the storable event record, the notification log entry,
// snapshots, common error definitions and the observability interfaces
// shared by every engine.
//
// Aggregates are persisted as ordered, append-only streams of immutable
// events keyed by aggregate id. Every append is guarded by an optimistic
// concurrency check on the stream's current version; a separate, gapless
// notification log provides a globally ordered index over aggregate
// creations and changes for cursor-based pagination.
//
// Key types:
//   - StorableEvent: one immutable event of one aggregate stream
//   - Notification: one entry of a gapless notification log
//   - Snapshot: an optional cached projection of an aggregate's state
//   - EventStore, NotificationLog, SnapshotStore: the engine contracts
//
// Common usage pattern:
//
//	events, err := store.Read(ctx, aggregateID, 0)
//	if err != nil {
//		// handle error
//	}
//	// ... replay events, decide, produce new events ...
//	err = store.Append(ctx, aggregateID, expectedVersion, newEvent)
//	if errors.Is(err, eventstore.ErrConcurrencyConflict) {
//		// reload the aggregate and retry the command against fresh state
//	}
package eventstore
