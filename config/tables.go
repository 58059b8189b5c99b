package config

import "fmt"

// Each aggregate kind gets its own events table, notifications table, and
// snapshots table. Separate tables keep the per-kind notification logs
// gapless independently of each other and let the kinds be archived or
// scaled separately.

// EventsTableName returns the events table name for an aggregate kind,
// e.g. "events_unit".
func EventsTableName(kind string) string {
	return fmt.Sprintf("events_%s", kind)
}

// NotificationsTableName returns the notification log table name for an
// aggregate kind, e.g. "notifications_unit".
func NotificationsTableName(kind string) string {
	return fmt.Sprintf("notifications_%s", kind)
}

// SnapshotsTableName returns the snapshots table name for an aggregate
// kind, e.g. "snapshots_unit".
func SnapshotsTableName(kind string) string {
	return fmt.Sprintf("snapshots_%s", kind)
}
