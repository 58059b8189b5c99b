// Package memoryengine provides in-memory implementations of the eventstore
// contracts: EventStore, NotificationLog and SnapshotStore.
//
// The engine honors the same semantics as the durable engines - optimistic
// concurrency on append, gapless notification positions, torn-write-free
// reads - guarded by per-store mutexes instead of database constraints.
// It is intended for tests and ephemeral deployments; nothing survives
// process exit.
package memoryengine
