// Package adapters bridges the Postgres engine to the supported database
// access libraries: pgx (pgxpool.Pool), database/sql (sql.DB) and sqlx
// (sqlx.DB). The engine itself only depends on the small DBAdapter interface;
// which library actually talks to Postgres is decided by the factory the
// client calls.
//
// The pgx adapter optionally holds a second pool pointing at a read replica.
// Reads are routed to the replica only when the caller opted into eventual
// consistency via the context; everything else goes to the primary.
package adapters
