// Package postgresengine provides the Postgres-backed implementations of the
// eventstore contracts: EventStore, NotificationLog and SnapshotStore.
//
// All three stores build their SQL with goqu and talk to Postgres through a
// small adapter interface, so clients can bring a pgxpool.Pool, a sql.DB or a
// sqlx.DB; each store has one factory per library.
//
// The event store enforces optimistic concurrency without transactions or
// locks: an append is a single conditional INSERT ... SELECT guarded by a CTE
// that reads the stream's current head version. When another writer moved the
// head first, the guard matches nothing, zero rows are inserted and the append
// reports eventstore.ErrConcurrencyConflict. The notification log assigns its
// gapless positions the same way, with a head-position CTE and a bounded
// internal retry, since two appends racing for the same position is not a
// business conflict.
//
// Expected schema (table names are configurable per store):
//
//	CREATE TABLE events (
//	    aggregate_id      uuid                     NOT NULL,
//	    aggregate_version bigint                   NOT NULL,
//	    event_type        text                     NOT NULL,
//	    payload           jsonb                    NOT NULL,
//	    recorded_at       timestamp with time zone NOT NULL,
//	    PRIMARY KEY (aggregate_id, aggregate_version)
//	);
//
//	CREATE TABLE notifications (
//	    position           bigint NOT NULL PRIMARY KEY,
//	    aggregate_id       uuid   NOT NULL,
//	    originator_version bigint NOT NULL
//	);
//
//	CREATE TABLE snapshots (
//	    aggregate_id      uuid                     NOT NULL PRIMARY KEY,
//	    aggregate_version bigint                   NOT NULL,
//	    data              jsonb                    NOT NULL,
//	    taken_at          timestamp with time zone NOT NULL
//	);
package postgresengine
