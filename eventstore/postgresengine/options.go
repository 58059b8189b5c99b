package postgresengine

import (
	"github.com/leaseworks/rentledger/eventstore"
)

const (
	defaultEventsTableName        = "events"
	defaultNotificationsTableName = "notifications"
	defaultSnapshotsTableName     = "snapshots"
)

// config holds the shared configuration all three Postgres stores are built
// from; each store picks the fields it needs.
type config struct {
	eventsTableName        string
	notificationsTableName string
	snapshotsTableName     string
	logger                 eventstore.Logger
	contextualLogger       eventstore.ContextualLogger
	metricsCollector       eventstore.MetricsCollector
	tracingCollector       eventstore.TracingCollector
}

// Option defines a functional option for configuring the Postgres stores.
type Option func(*config) error

func defaultStoreConfig() config {
	return config{
		eventsTableName:        defaultEventsTableName,
		notificationsTableName: defaultNotificationsTableName,
		snapshotsTableName:     defaultSnapshotsTableName,
	}
}

func applyOptions(options []Option) (config, error) {
	cfg := defaultStoreConfig()

	for _, option := range options {
		if err := option(&cfg); err != nil {
			return config{}, err
		}
	}

	return cfg, nil
}

// WithEventsTableName sets the table name for the event store.
func WithEventsTableName(tableName string) Option {
	return func(cfg *config) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		cfg.eventsTableName = tableName

		return nil
	}
}

// WithNotificationsTableName sets the table name for the notification log.
func WithNotificationsTableName(tableName string) Option {
	return func(cfg *config) error {
		if tableName == "" {
			return eventstore.ErrEmptyNotificationsTableName
		}

		cfg.notificationsTableName = tableName

		return nil
	}
}

// WithSnapshotsTableName sets the table name for the snapshot store.
func WithSnapshotsTableName(tableName string) Option {
	return func(cfg *config) error {
		if tableName == "" {
			return eventstore.ErrEmptySnapshotsTableName
		}

		cfg.snapshotsTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Event counts, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger eventstore.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the store.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(cfg *config) error {
		cfg.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the store.
// The collector will receive performance and operational metrics including
// operation durations, event counts, concurrency conflicts, and database errors.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(cfg *config) error {
		cfg.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the store.
// The collector will receive distributed tracing information including
// span creation per operation, context propagation, and error tracking.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(cfg *config) error {
		cfg.tracingCollector = collector
		return nil
	}
}
