// Package repository composes the event store, the notification log and the
// aggregate runtime into per-kind repositories for Unit, Tenant and Lease.
//
// Each repository shares one generic core. Writes append the aggregate's
// pending events at its loaded base version and then record a notification;
// loads read the stream (optionally snapshot-plus-tail) and replay it.
// Listings are driven by the notification log: every entry is resolved back
// through Get, and entries that no longer resolve, for example tombstoned
// aggregates, are skipped.
//
// A repository never retries a concurrency conflict; callers wrap their
// load-decide-save cycle with aggregate.RetryOnConflict when they want that.
package repository
