package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/leaseworks/rentledger/eventstore"
	"github.com/leaseworks/rentledger/eventstore/postgresengine/internal/adapters"
)

const (
	logMsgNotificationAppended   = "notification appended"
	logMsgNotificationsRead      = "notifications read"
	logMsgPositionRaceRetried    = "notification position race, retrying"
	logMsgBuildLogQueryFailed    = "failed to build notification log query"
	logMsgLogAppendFailed        = "database execution failed during notification append"
	logMsgLogReadFailed          = "database query failed during notification read"
	colPosition                  = "position"
	colOriginatorVersion         = "originator_version"
	aliasHeadPosition            = "head_position"
	errTypePositionRaceExhausted = "position_race_exhausted"

	// uniqueViolationCode is the Postgres SQLSTATE for a unique constraint violation.
	uniqueViolationCode = "23505"

	// maxPositionRaceRetries bounds the internal retry loop for two appends
	// racing for the same position. The race resolves itself as soon as one
	// writer commits, so a handful of attempts is plenty.
	maxPositionRaceRetries = 10
)

// NotificationLog is the Postgres implementation of eventstore.NotificationLog.
//
// Positions are assigned by the database in the append statement itself: a CTE
// reads the current highest position and the insert writes head+1. The primary
// key on position turns a lost race into a unique violation, which the log
// retries internally since it is not a business conflict.
type NotificationLog struct {
	db        adapters.DBAdapter
	tableName string
	inst      instrumentation
}

// NewNotificationLogFromPGXPool creates a new NotificationLog using a pgx pool with optional configuration.
func NewNotificationLogFromPGXPool(db *pgxpool.Pool, options ...Option) (NotificationLog, error) {
	if db == nil {
		return NotificationLog{}, eventstore.ErrNilDatabaseConnection
	}

	return newNotificationLog(adapters.NewPGXAdapter(db), options)
}

// NewNotificationLogFromPGXPoolWithReplica creates a new NotificationLog using
// a primary pgx pool plus a read replica pool for eventually consistent reads.
func NewNotificationLogFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (NotificationLog, error) {
	if db == nil || replica == nil {
		return NotificationLog{}, eventstore.ErrNilDatabaseConnection
	}

	return newNotificationLog(adapters.NewPGXAdapterWithReplica(db, replica), options)
}

// NewNotificationLogFromSQLDB creates a new NotificationLog using a sql.DB with optional configuration.
func NewNotificationLogFromSQLDB(db *sql.DB, options ...Option) (NotificationLog, error) {
	if db == nil {
		return NotificationLog{}, eventstore.ErrNilDatabaseConnection
	}

	return newNotificationLog(adapters.NewSQLAdapter(db), options)
}

// NewNotificationLogFromSQLX creates a new NotificationLog using a sqlx.DB with optional configuration.
func NewNotificationLogFromSQLX(db *sqlx.DB, options ...Option) (NotificationLog, error) {
	if db == nil {
		return NotificationLog{}, eventstore.ErrNilDatabaseConnection
	}

	return newNotificationLog(adapters.NewSQLXAdapter(db), options)
}

func newNotificationLog(db adapters.DBAdapter, options []Option) (NotificationLog, error) {
	cfg, err := applyOptions(options)
	if err != nil {
		return NotificationLog{}, err
	}

	return NotificationLog{
		db:        db,
		tableName: cfg.notificationsTableName,
		inst:      newInstrumentation(cfg),
	}, nil
}

// Append assigns the next position and durably records the entry.
func (nl NotificationLog) Append(
	ctx context.Context,
	aggregateID uuid.UUID,
	originatorVersion eventstore.AggregateVersionUint,
) (eventstore.LogPositionUint64, error) {

	ctx, span := nl.inst.startSpan(ctx, operationLogAppend)

	// The insert must go through Query for RETURNING; force strong
	// consistency so a replica-routing adapter never sends it to a replica.
	ctx = eventstore.WithStrongConsistency(ctx)

	sqlQuery, buildQueryErr := nl.buildAppendQuery(aggregateID, originatorVersion)
	if buildQueryErr != nil {
		nl.inst.logError(ctx, logMsgBuildLogQueryFailed, buildQueryErr, logAttrAggregateID, aggregateID)
		nl.inst.recordError(ctx, operationLogAppend, errTypeBuildQuery)
		nl.inst.finishSpanError(span, errTypeBuildQuery)

		return 0, buildQueryErr
	}

	var lastErr error

	for attempt := 1; attempt <= maxPositionRaceRetries; attempt++ {
		position, appendErr := nl.executeAppendQuery(ctx, sqlQuery)

		switch {
		case appendErr == nil:
			nl.inst.logOperation(ctx, logMsgNotificationAppended,
				logAttrAggregateID, aggregateID,
				logAttrPosition, position)
			nl.inst.finishSpanSuccess(span, 0, nil)

			return position, nil

		case isUniqueViolation(appendErr):
			nl.inst.logWarn(ctx, logMsgPositionRaceRetried,
				logAttrAggregateID, aggregateID,
				logAttrAttempt, attempt)
			nl.inst.incrementCounter(ctx, metricPositionRaces, map[string]string{
				spanAttrOperation: operationLogAppend,
			})
			lastErr = appendErr

		default:
			nl.inst.logError(ctx, logMsgLogAppendFailed, appendErr, logAttrAggregateID, aggregateID)
			nl.inst.recordError(ctx, operationLogAppend, errTypeExec)
			nl.inst.finishSpanError(span, errTypeExec)

			return 0, errors.Join(eventstore.ErrAppendingNotificationFailed, appendErr)
		}
	}

	nl.inst.recordError(ctx, operationLogAppend, errTypePositionRaceExhausted)
	nl.inst.finishSpanError(span, errTypePositionRaceExhausted)

	return 0, errors.Join(eventstore.ErrAppendingNotificationFailed, lastErr)
}

// Read returns entries matching the range options, ordered by position
// (descending unless ascending was requested), truncated to the limit.
func (nl NotificationLog) Read(ctx context.Context, options ...eventstore.ReadOption) (eventstore.Notifications, error) {
	ctx, span := nl.inst.startSpan(ctx, operationLogRead)

	selection := eventstore.BuildReadSelection(options...)

	sqlQuery, buildQueryErr := nl.buildReadQuery(selection)
	if buildQueryErr != nil {
		nl.inst.logError(ctx, logMsgBuildLogQueryFailed, buildQueryErr)
		nl.inst.recordError(ctx, operationLogRead, errTypeBuildQuery)
		nl.inst.finishSpanError(span, errTypeBuildQuery)

		return nil, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := nl.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	nl.inst.logQueryWithDuration(ctx, sqlQuery, operationLogRead, duration)

	if queryErr != nil {
		nl.inst.logError(ctx, logMsgLogReadFailed, queryErr, logAttrQuery, sqlQuery)
		nl.inst.recordError(ctx, operationLogRead, errTypeQuery)
		nl.inst.finishSpanError(span, errTypeQuery)

		return nil, errors.Join(eventstore.ErrReadingNotificationsFailed, queryErr)
	}
	defer nl.closeRows(ctx, rows)

	entries, scanErr := nl.scanNotificationRows(ctx, rows)
	if scanErr != nil {
		nl.inst.recordError(ctx, operationLogRead, errTypeScan)
		nl.inst.finishSpanError(span, errTypeScan)

		return nil, scanErr
	}

	nl.inst.logOperation(ctx, logMsgNotificationsRead,
		logAttrEventCount, len(entries),
		logAttrDurationMS, toMilliseconds(duration),
		logAttrConsistency, eventstore.GetConsistencyLevel(ctx).String())
	nl.inst.recordDuration(ctx, operationLogRead, statusSuccess, duration)
	nl.inst.finishSpanSuccess(span, duration, nil)

	return entries, nil
}

// executeAppendQuery runs the conditional insert and scans the returned position.
func (nl NotificationLog) executeAppendQuery(ctx context.Context, sqlQuery string) (eventstore.LogPositionUint64, error) {
	start := time.Now()
	rows, queryErr := nl.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	nl.inst.logQueryWithDuration(ctx, sqlQuery, operationLogAppend, duration)

	if queryErr != nil {
		return 0, queryErr
	}
	defer nl.closeRows(ctx, rows)

	if !rows.Next() {
		// RETURNING always yields the inserted row; no row means the
		// insert itself inserted nothing, which cannot happen here.
		return 0, eventstore.ErrAppendingNotificationFailed
	}

	var position int64
	if scanErr := rows.Scan(&position); scanErr != nil {
		return 0, errors.Join(eventstore.ErrScanningDBRowFailed, scanErr)
	}

	nl.inst.recordDuration(ctx, operationLogAppend, statusSuccess, duration)

	return eventstore.LogPositionUint64(position), nil
}

func (nl NotificationLog) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		nl.inst.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (nl NotificationLog) scanNotificationRows(ctx context.Context, rows adapters.DBRows) (eventstore.Notifications, error) {
	var (
		position          int64
		aggregateIDString string
		originatorVersion int64
	)

	entries := make(eventstore.Notifications, 0)

	for rows.Next() {
		if scanErr := rows.Scan(&position, &aggregateIDString, &originatorVersion); scanErr != nil {
			nl.inst.logError(ctx, logMsgScanRowFailed, scanErr)

			return nil, errors.Join(eventstore.ErrScanningDBRowFailed, scanErr)
		}

		aggregateID, parseErr := uuid.Parse(aggregateIDString)
		if parseErr != nil {
			nl.inst.logError(ctx, logMsgScanRowFailed, parseErr, logAttrAggregateID, aggregateIDString)

			return nil, errors.Join(eventstore.ErrScanningDBRowFailed, parseErr)
		}

		entries = append(entries, eventstore.Notification{
			Position:          eventstore.LogPositionUint64(position),
			AggregateID:       aggregateID,
			OriginatorVersion: eventstore.AggregateVersionUint(originatorVersion),
		})
	}

	return entries, nil
}

func (nl NotificationLog) buildAppendQuery(
	aggregateID uuid.UUID,
	originatorVersion eventstore.AggregateVersionUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt := builder.
		From(nl.tableName).
		Select(goqu.COALESCE(goqu.MAX(colPosition), 0).As(aliasHeadPosition))

	selectStmt := builder.
		From(cteHead).
		Select(
			goqu.L(aliasHeadPosition+" + 1"),
			goqu.L(castUUID, aggregateID.String()),
			goqu.L(castBigint, int64(originatorVersion)),
		)

	insertStmt := builder.
		Insert(nl.tableName).
		Cols(colPosition, colAggregateID, colOriginatorVersion).
		FromQuery(selectStmt).
		With(cteHead, cteStmt).
		Returning(colPosition)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (nl NotificationLog) buildReadQuery(selection eventstore.ReadSelection) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(nl.tableName).
		Select(colPosition, colAggregateID, colOriginatorVersion)

	if selection.AfterPosition > 0 {
		selectStmt = selectStmt.Where(goqu.C(colPosition).Gt(int64(selection.AfterPosition)))
	}

	if selection.UpToPosition > 0 {
		selectStmt = selectStmt.Where(goqu.C(colPosition).Lte(int64(selection.UpToPosition)))
	}

	if selection.Ascending {
		selectStmt = selectStmt.Order(goqu.I(colPosition).Asc())
	} else {
		selectStmt = selectStmt.Order(goqu.I(colPosition).Desc())
	}

	if selection.Limit > 0 {
		selectStmt = selectStmt.Limit(uint(selection.Limit))
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// isUniqueViolation reports whether the error is a Postgres unique constraint
// violation (SQLSTATE 23505). The pgx driver surfaces a typed *pgconn.PgError;
// lib/pq behind database/sql does not, so those fall back to textual matching.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}

	msg := err.Error()

	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, uniqueViolationCode)
}
