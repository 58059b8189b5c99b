package eventstore

import (
	"errors"
)

var (
	// ErrConcurrencyConflict is returned when an append finds the stream's
	// current version differs from the expected version: another writer got
	// there first. Recoverable by reloading the aggregate and retrying the
	// command; the store itself never retries.
	ErrConcurrencyConflict = errors.New("concurrency conflict, stream version differs from expected version")

	// ErrNilDatabaseConnection is returned when a nil connection handle is supplied to an engine factory.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyEventsTableName is returned when an empty events table name is supplied.
	ErrEmptyEventsTableName = errors.New("events table name must not be empty")

	// ErrEmptyNotificationsTableName is returned when an empty notifications table name is supplied.
	ErrEmptyNotificationsTableName = errors.New("notifications table name must not be empty")

	// ErrEmptySnapshotsTableName is returned when an empty snapshots table name is supplied.
	ErrEmptySnapshotsTableName = errors.New("snapshots table name must not be empty")

	// ErrNoEventsToAppend is returned when an append is attempted with zero events.
	ErrNoEventsToAppend = errors.New("no events to append")

	// ErrBuildingQueryFailed is returned when SQL query construction fails.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrQueryingEventsFailed is returned when the database read fails.
	ErrQueryingEventsFailed = errors.New("querying events failed")

	// ErrAppendingEventFailed is returned when the database write fails.
	ErrAppendingEventFailed = errors.New("appending events failed")

	// ErrAppendingNotificationFailed is returned when the notification log write fails.
	ErrAppendingNotificationFailed = errors.New("appending notification failed")

	// ErrReadingNotificationsFailed is returned when the notification log read fails.
	ErrReadingNotificationsFailed = errors.New("reading notifications failed")

	// ErrScanningDBRowFailed is returned when a database row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning database row failed")

	// ErrGettingRowsAffectedFailed is returned when the affected row count cannot be determined.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
)

// AggregateVersionUint is a type alias for uint, representing an aggregate
// stream version. Versions start at 1 for the creation event and increase by
// exactly 1 per event with no gaps.
type AggregateVersionUint = uint

// LogPositionUint64 is a type alias for uint64, representing a notification
// log position. Positions start at 1 and form a gapless, strictly increasing
// sequence per log instance.
type LogPositionUint64 = uint64
