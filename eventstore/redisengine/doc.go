// Package redisengine provides a Redis-backed implementation of the
// eventstore.SnapshotStore contract.
//
// Snapshots are pure optimization, which makes Redis a good fit: a snapshot
// that expires or a Redis that loses its data only costs a longer replay,
// never correctness. An optional TTL lets deployments bound staleness without
// any cleanup job.
package redisengine
