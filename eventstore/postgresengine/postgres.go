package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/leaseworks/rentledger/eventstore"
	"github.com/leaseworks/rentledger/eventstore/postgresengine/internal/adapters"
)

const (
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgReadCompleted            = "read completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	colAggregateID                 = "aggregate_id"
	colAggregateVersion            = "aggregate_version"
	colEventType                   = "event_type"
	colPayload                     = "payload"
	colRecordedAt                  = "recorded_at"
	cteHead                        = "head"
	cteVals                        = "vals"
	aliasHeadVersion               = "head_version"
	dialectPostgres                = "postgres"
	castUUID                       = "?::uuid"
	castBigint                     = "?::bigint"
	castText                       = "?::text"
	castJsonb                      = "?::jsonb"
	castTimestamp                  = "?::timestamp with time zone"
	errTypeBuildQuery              = "build_query"
	errTypeQuery                   = "query"
	errTypeExec                    = "exec"
	errTypeScan                    = "scan"
	errTypeConflict                = "concurrency_conflict"
)

type sqlQueryString = string

// EventStore is the Postgres implementation of eventstore.EventStore: an
// append-only table of per-aggregate event streams with a conditional-insert
// optimistic concurrency guard.
type EventStore struct {
	db              adapters.DBAdapter
	eventsTableName string
	inst            instrumentation
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options)
}

// NewEventStoreFromPGXPoolWithReplica creates a new EventStore using a primary
// pgx pool plus a read replica pool. Reads hit the replica only when the
// caller opted into eventual consistency via the context.
func NewEventStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil || replica == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapterWithReplica(db, replica), options)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options)
}

func newEventStore(db adapters.DBAdapter, options []Option) (EventStore, error) {
	cfg, err := applyOptions(options)
	if err != nil {
		return EventStore{}, err
	}

	return EventStore{
		db:              db,
		eventsTableName: cfg.eventsTableName,
		inst:            newInstrumentation(cfg),
	}, nil
}

// Read retrieves the aggregate's events with version greater than fromVersion,
// ordered by version ascending.
func (es EventStore) Read(
	ctx context.Context,
	aggregateID uuid.UUID,
	fromVersion eventstore.AggregateVersionUint,
) (eventstore.StorableEvents, error) {

	ctx, span := es.inst.startSpan(ctx, operationRead)

	sqlQuery, buildQueryErr := es.buildSelectQuery(aggregateID, fromVersion)
	if buildQueryErr != nil {
		es.inst.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr, logAttrAggregateID, aggregateID)
		es.inst.recordError(ctx, operationRead, errTypeBuildQuery)
		es.inst.finishSpanError(span, errTypeBuildQuery)

		return nil, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	es.inst.logQueryWithDuration(ctx, sqlQuery, operationRead, duration)

	if queryErr != nil {
		es.inst.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		es.inst.recordError(ctx, operationRead, errTypeQuery)
		es.inst.finishSpanError(span, errTypeQuery)

		return nil, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}
	defer es.closeRows(ctx, rows)

	eventStream, scanErr := es.scanEventRows(ctx, aggregateID, rows)
	if scanErr != nil {
		es.inst.recordError(ctx, operationRead, errTypeScan)
		es.inst.finishSpanError(span, errTypeScan)

		return nil, scanErr
	}

	es.inst.logOperation(ctx, logMsgReadCompleted,
		logAttrAggregateID, aggregateID,
		logAttrEventCount, len(eventStream),
		logAttrDurationMS, toMilliseconds(duration),
		logAttrConsistency, eventstore.GetConsistencyLevel(ctx).String())
	es.inst.recordDuration(ctx, operationRead, statusSuccess, duration)
	es.inst.recordValue(ctx, metricEventsRead, operationRead, float64(len(eventStream)))
	es.inst.finishSpanSuccess(span, duration, map[string]string{
		spanAttrEventCount: fmt.Sprintf("%d", len(eventStream)),
	})

	return eventStream, nil
}

// Append attempts to append one or multiple eventstore.StorableEvent(s) onto
// the aggregate's stream, assigning versions expectedVersion+1 onwards and the
// RecordedAt timestamps.
//
// The conditional insert only matches when the stream's current head version
// still equals expectedVersion; zero affected rows therefore means another
// writer moved the stream first and eventstore.ErrConcurrencyConflict is
// returned.
//
// The insert query appending multiple events atomically is heavier than the
// one for a single event. One command should typically produce one event;
// only supply multiple events when they genuinely belong to one atomic change.
func (es EventStore) Append(
	ctx context.Context,
	aggregateID uuid.UUID,
	expectedVersion eventstore.AggregateVersionUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	ctx, span := es.inst.startSpan(ctx, operationAppend)

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	recordedAt := time.Now().UTC().Truncate(time.Microsecond)

	sqlQuery, buildQueryErr := es.buildAppendQuery(aggregateID, expectedVersion, allEvents, recordedAt)
	if buildQueryErr != nil {
		es.inst.logError(ctx, logMsgBuildInsertQueryFailed, buildQueryErr, logAttrEventCount, len(allEvents))
		es.inst.recordError(ctx, operationAppend, errTypeBuildQuery)
		es.inst.finishSpanError(span, errTypeBuildQuery)

		return buildQueryErr
	}

	start := time.Now()
	result, execErr := es.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	es.inst.logQueryWithDuration(ctx, sqlQuery, operationAppend, duration)

	if execErr != nil {
		es.inst.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		es.inst.recordError(ctx, operationAppend, errTypeExec)
		es.inst.finishSpanError(span, errTypeExec)

		return errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		es.inst.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		es.inst.recordError(ctx, operationAppend, errTypeExec)
		es.inst.finishSpanError(span, errTypeExec)

		return errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected < int64(len(allEvents)) {
		es.inst.logOperation(ctx, logMsgConcurrencyConflict,
			logAttrAggregateID, aggregateID,
			logAttrExpected, expectedVersion,
			logAttrRowsAffected, rowsAffected)
		es.inst.recordConcurrencyConflict(ctx, operationAppend)
		es.inst.finishSpanError(span, errTypeConflict)

		return eventstore.ErrConcurrencyConflict
	}

	es.inst.logOperation(ctx, logMsgEventsAppended,
		logAttrAggregateID, aggregateID,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, toMilliseconds(duration))
	es.inst.recordDuration(ctx, operationAppend, statusSuccess, duration)
	es.inst.recordValue(ctx, metricEventsAppended, operationAppend, float64(len(allEvents)))
	es.inst.finishSpanSuccess(span, duration, map[string]string{
		spanAttrEventCount: fmt.Sprintf("%d", len(allEvents)),
	})

	return nil
}

// closeRows safely closes database rows and logs any errors.
func (es EventStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		es.inst.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// scanEventRows converts database rows into storable events.
func (es EventStore) scanEventRows(
	ctx context.Context,
	aggregateID uuid.UUID,
	rows adapters.DBRows,
) (eventstore.StorableEvents, error) {

	var (
		version    int64
		eventType  string
		payload    []byte
		recordedAt time.Time
	)

	eventStream := make(eventstore.StorableEvents, 0)

	for rows.Next() {
		if scanErr := rows.Scan(&version, &eventType, &payload, &recordedAt); scanErr != nil {
			es.inst.logError(ctx, logMsgScanRowFailed, scanErr)

			return nil, errors.Join(eventstore.ErrScanningDBRowFailed, scanErr)
		}

		event, buildErr := eventstore.BuildStorableEvent(
			aggregateID,
			eventstore.AggregateVersionUint(version),
			eventType,
			payload,
		)
		if buildErr != nil {
			es.inst.logError(ctx, logMsgBuildStorableEventFailed, buildErr, colEventType, eventType)

			return nil, buildErr
		}

		event.RecordedAt = recordedAt
		eventStream = append(eventStream, event)
	}

	return eventStream, nil
}

func (es EventStore) buildSelectQuery(
	aggregateID uuid.UUID,
	fromVersion eventstore.AggregateVersionUint,
) (sqlQueryString, error) {

	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventsTableName).
		Select(colAggregateVersion, colEventType, colPayload, colRecordedAt).
		Where(
			goqu.Ex{colAggregateID: aggregateID.String()},
			goqu.C(colAggregateVersion).Gt(int64(fromVersion)),
		).
		Order(goqu.I(colAggregateVersion).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildAppendQuery builds the appropriate conditional insert for single or multiple events.
func (es EventStore) buildAppendQuery(
	aggregateID uuid.UUID,
	expectedVersion eventstore.AggregateVersionUint,
	allEvents eventstore.StorableEvents,
	recordedAt time.Time,
) (sqlQueryString, error) {

	if len(allEvents) == 1 {
		return es.buildInsertQueryForSingleEvent(aggregateID, expectedVersion, allEvents[0], recordedAt)
	}

	return es.buildInsertQueryForMultipleEvents(aggregateID, expectedVersion, allEvents, recordedAt)
}

func (es EventStore) buildInsertQueryForSingleEvent(
	aggregateID uuid.UUID,
	expectedVersion eventstore.AggregateVersionUint,
	event eventstore.StorableEvent,
	recordedAt time.Time,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// The CTE reads the stream's current head version.
	cteStmt := builder.
		From(es.eventsTableName).
		Select(goqu.MAX(colAggregateVersion).As(aliasHeadVersion)).
		Where(goqu.Ex{colAggregateID: aggregateID.String()})

	// The SELECT for the INSERT only yields a row while the head still
	// equals the expected version.
	selectStmt := builder.
		From(cteHead).
		Select(
			goqu.L(castUUID, aggregateID.String()),
			goqu.L(castBigint, int64(expectedVersion)+1),
			goqu.L(castText, event.EventType),
			goqu.L(castJsonb, string(event.PayloadJSON)),
			goqu.L(castTimestamp, recordedAt),
		).
		Where(goqu.COALESCE(goqu.C(aliasHeadVersion), 0).Eq(goqu.V(int64(expectedVersion))))

	insertStmt := builder.
		Insert(es.eventsTableName).
		Cols(colAggregateID, colAggregateVersion, colEventType, colPayload, colRecordedAt).
		FromQuery(selectStmt).
		With(cteHead, cteStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es EventStore) buildInsertQueryForMultipleEvents(
	aggregateID uuid.UUID,
	expectedVersion eventstore.AggregateVersionUint,
	allEvents eventstore.StorableEvents,
	recordedAt time.Time,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt := builder.
		From(es.eventsTableName).
		Select(goqu.MAX(colAggregateVersion).As(aliasHeadVersion)).
		Where(goqu.Ex{colAggregateID: aggregateID.String()})

	// One SELECT per event, combined with UNION ALL, each carrying its
	// pre-assigned version.
	unionStatements := make([]*goqu.SelectDataset, len(allEvents))
	for i, e := range allEvents {
		unionStatements[i] = builder.
			Select(
				goqu.L(castUUID, aggregateID.String()).As(colAggregateID),
				goqu.L(castBigint, int64(expectedVersion)+int64(i)+1).As(colAggregateVersion),
				goqu.L(castText, e.EventType).As(colEventType),
				goqu.L(castJsonb, string(e.PayloadJSON)).As(colPayload),
				goqu.L(castTimestamp, recordedAt).As(colRecordedAt),
			)
	}

	valuesStmt := unionStatements[0]
	for i := 1; i < len(unionStatements); i++ {
		valuesStmt = valuesStmt.UnionAll(unionStatements[i])
	}

	valsAggregateID := fmt.Sprintf("%s.%s", cteVals, colAggregateID)
	valsAggregateVersion := fmt.Sprintf("%s.%s", cteVals, colAggregateVersion)
	valsEventType := fmt.Sprintf("%s.%s", cteVals, colEventType)
	valsPayload := fmt.Sprintf("%s.%s", cteVals, colPayload)
	valsRecordedAt := fmt.Sprintf("%s.%s", cteVals, colRecordedAt)

	insertStmt := builder.
		Insert(es.eventsTableName).
		Cols(colAggregateID, colAggregateVersion, colEventType, colPayload, colRecordedAt).
		With(cteHead, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteHead, cteVals).
				Select(valsAggregateID, valsAggregateVersion, valsEventType, valsPayload, valsRecordedAt).
				Where(goqu.COALESCE(goqu.C(aliasHeadVersion), 0).Eq(goqu.V(int64(expectedVersion)))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}
