package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/leaseworks/rentledger/eventstore"
)

const (
	logMsgSQLExecuted    = "executed sql for: "
	logMsgOperation      = "eventstore operation: "
	logAttrError         = "error"
	logAttrQuery         = "query"
	logAttrDurationMS    = "duration_ms"
	logAttrEventCount    = "event_count"
	logAttrRowsAffected  = "rows_affected"
	logAttrAggregateID   = "aggregate_id"
	logAttrExpected      = "expected_version"
	logAttrPosition      = "position"
	logAttrAttempt       = "attempt"
	logAttrConsistency   = "consistency_level"
	operationAppend      = "append"
	operationRead        = "read"
	operationLogAppend   = "log_append"
	operationLogRead     = "log_read"
	operationSnapSave    = "snapshot_save"
	operationSnapLoad    = "snapshot_load"
	operationSnapDelete  = "snapshot_delete"
	statusSuccess        = "success"
	statusError          = "error"
	metricOpDuration     = "eventstore_operation_duration_seconds"
	metricEventsAppended = "eventstore_events_appended_total"
	metricEventsRead     = "eventstore_events_read_total"
	metricConflicts      = "eventstore_concurrency_conflicts_total"
	metricErrors         = "eventstore_errors_total"
	metricPositionRaces  = "eventstore_position_races_total"
	spanNamePrefix       = "eventstore."
	spanAttrOperation    = "operation"
	spanAttrErrorType    = "error_type"
	spanAttrEventCount   = "event_count"
	spanAttrDurationMS   = "duration_ms"
)

// instrumentation bundles the optional observability collaborators shared by
// the three Postgres stores. Every method tolerates nil collaborators, so the
// stores call them unconditionally.
type instrumentation struct {
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metricsCollector eventstore.MetricsCollector
	tracingCollector eventstore.TracingCollector
}

func newInstrumentation(cfg config) instrumentation {
	return instrumentation{
		logger:           cfg.logger,
		contextualLogger: cfg.contextualLogger,
		metricsCollector: cfg.metricsCollector,
		tracingCollector: cfg.tracingCollector,
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (in instrumentation) logQueryWithDuration(ctx context.Context, sqlQuery, operation string, duration time.Duration) {
	if in.contextualLogger != nil {
		in.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if in.logger != nil {
		in.logger.Debug(logMsgSQLExecuted+operation, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level.
func (in instrumentation) logOperation(ctx context.Context, operation string, args ...any) {
	if in.contextualLogger != nil {
		in.contextualLogger.InfoContext(ctx, logMsgOperation+operation, args...)
		return
	}

	if in.logger != nil {
		in.logger.Info(logMsgOperation+operation, args...)
	}
}

// logError logs error information at error level.
func (in instrumentation) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if in.contextualLogger != nil {
		in.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if in.logger != nil {
		in.logger.Error(message, allArgs...)
	}
}

// logWarn logs non-critical issues at warn level.
func (in instrumentation) logWarn(ctx context.Context, message string, args ...any) {
	if in.contextualLogger != nil {
		in.contextualLogger.WarnContext(ctx, message, args...)
		return
	}

	if in.logger != nil {
		in.logger.Warn(message, args...)
	}
}

// recordDuration records an operation duration metric, preferring the
// context-aware collector methods when the collector supports them.
func (in instrumentation) recordDuration(ctx context.Context, operation, status string, duration time.Duration) {
	if in.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, "status": status}

	if contextual, ok := in.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricOpDuration, duration, labels)
		return
	}

	in.metricsCollector.RecordDuration(metricOpDuration, duration, labels)
}

// recordValue records a value metric such as an event count.
func (in instrumentation) recordValue(ctx context.Context, metric, operation string, value float64) {
	if in.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, "status": statusSuccess}

	if contextual, ok := in.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	in.metricsCollector.RecordValue(metric, value, labels)
}

// incrementCounter increments a counter metric with the given labels.
func (in instrumentation) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if in.metricsCollector == nil {
		return
	}

	if contextual, ok := in.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	in.metricsCollector.IncrementCounter(metric, labels)
}

// recordError records an error metric for a failed operation.
func (in instrumentation) recordError(ctx context.Context, operation, errorType string) {
	in.incrementCounter(ctx, metricErrors, map[string]string{
		spanAttrOperation: operation,
		"status":          statusError,
		spanAttrErrorType: errorType,
	})
}

// recordConcurrencyConflict records a concurrency conflict metric.
func (in instrumentation) recordConcurrencyConflict(ctx context.Context, operation string) {
	in.incrementCounter(ctx, metricConflicts, map[string]string{
		spanAttrOperation: operation,
		"conflict_type":   "concurrency",
	})
}

// startSpan starts a tracing span for the operation if tracing is configured.
func (in instrumentation) startSpan(ctx context.Context, operation string) (context.Context, eventstore.SpanContext) {
	if in.tracingCollector == nil {
		return ctx, nil
	}

	return in.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
		spanAttrOperation: operation,
	})
}

// finishSpanSuccess finishes a span for a successful operation.
func (in instrumentation) finishSpanSuccess(span eventstore.SpanContext, duration time.Duration, attrs map[string]string) {
	if in.tracingCollector == nil || span == nil {
		return
	}

	span.SetStatus(statusSuccess)
	span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))

	in.tracingCollector.FinishSpan(span, statusSuccess, attrs)
}

// finishSpanError finishes a span for a failed operation.
func (in instrumentation) finishSpanError(span eventstore.SpanContext, errorType string) {
	if in.tracingCollector == nil || span == nil {
		return
	}

	span.SetStatus(statusError)
	span.AddAttribute(spanAttrErrorType, errorType)

	in.tracingCollector.FinishSpan(span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
