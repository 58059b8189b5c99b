package eventstore

import "context"

// ConsistencyLevel defines the consistency requirements for store read operations.
type ConsistencyLevel int

const (
	// StrongConsistency requires reads from the primary database to ensure
	// read-after-write consistency. This is the default: a repository that
	// just appended events must see its own writes when it reloads a stream.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from replica databases, trading
	// consistency for performance. Suitable for listing and pagination reads
	// that can tolerate slightly stale data.
	EventualConsistency
)

// contextKey is a private type to prevent context key collisions.
type contextKey string

// consistencyLevelKey is the context key used to store consistency level preferences.
const consistencyLevelKey contextKey = "eventstore.consistency_level"

// WithStrongConsistency returns a context that signals store reads should use
// the primary database.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that signals store reads may use
// replica databases.
//
// Typically used for notification log pagination and list queries:
//
//	ctx = eventstore.WithEventualConsistency(ctx)
//	entries, err := log.Read(ctx, eventstore.WithAfterPosition(cursor))
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context,
// defaulting to StrongConsistency, the safe choice for read-check-write cycles.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(consistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

// String provides a string representation of ConsistencyLevel for logging.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
