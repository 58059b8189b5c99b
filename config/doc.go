// Package config provides environment-driven wiring helpers for the
// infrastructure the repositories sit on: Postgres connection pools
// (pgxpool, database/sql, sqlx), the Redis client for snapshots, and
// Kafka broker addresses for the notification relay.
//
// Every helper reads its environment variable once and falls back to a
// local-development default, so a bare `go test` against docker-compose
// works without any configuration.
package config
