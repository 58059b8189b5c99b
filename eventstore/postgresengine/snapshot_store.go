package postgresengine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/leaseworks/rentledger/eventstore"
	"github.com/leaseworks/rentledger/eventstore/postgresengine/internal/adapters"
)

const (
	logMsgSnapshotSaved          = "snapshot saved"
	logMsgSnapshotDeleted        = "snapshot deleted"
	logMsgBuildSnapshotSQLFailed = "failed to build snapshot query"
	logMsgSnapshotSaveFailed     = "database execution failed during snapshot save"
	logMsgSnapshotLoadFailed     = "database query failed during snapshot load"
	logMsgSnapshotDeleteFailed   = "database execution failed during snapshot delete"
	colSnapshotData              = "data"
	colSnapshotTakenAt           = "taken_at"
)

// SnapshotStore is the Postgres implementation of eventstore.SnapshotStore.
// One row per aggregate id; saving replaces any previous snapshot via upsert.
type SnapshotStore struct {
	db        adapters.DBAdapter
	tableName string
	inst      instrumentation
}

// NewSnapshotStoreFromPGXPool creates a new SnapshotStore using a pgx pool with optional configuration.
func NewSnapshotStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (SnapshotStore, error) {
	if db == nil {
		return SnapshotStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newSnapshotStore(adapters.NewPGXAdapter(db), options)
}

// NewSnapshotStoreFromSQLDB creates a new SnapshotStore using a sql.DB with optional configuration.
func NewSnapshotStoreFromSQLDB(db *sql.DB, options ...Option) (SnapshotStore, error) {
	if db == nil {
		return SnapshotStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newSnapshotStore(adapters.NewSQLAdapter(db), options)
}

// NewSnapshotStoreFromSQLX creates a new SnapshotStore using a sqlx.DB with optional configuration.
func NewSnapshotStoreFromSQLX(db *sqlx.DB, options ...Option) (SnapshotStore, error) {
	if db == nil {
		return SnapshotStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newSnapshotStore(adapters.NewSQLXAdapter(db), options)
}

func newSnapshotStore(db adapters.DBAdapter, options []Option) (SnapshotStore, error) {
	cfg, err := applyOptions(options)
	if err != nil {
		return SnapshotStore{}, err
	}

	return SnapshotStore{
		db:        db,
		tableName: cfg.snapshotsTableName,
		inst:      newInstrumentation(cfg),
	}, nil
}

// SaveSnapshot stores the snapshot, replacing any previous one for the same aggregate id.
func (ss SnapshotStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	ctx, span := ss.inst.startSpan(ctx, operationSnapSave)

	if validateErr := snapshot.Validate(); validateErr != nil {
		ss.inst.finishSpanError(span, errTypeBuildQuery)
		return validateErr
	}

	sqlQuery, buildQueryErr := ss.buildUpsertQuery(snapshot)
	if buildQueryErr != nil {
		ss.inst.logError(ctx, logMsgBuildSnapshotSQLFailed, buildQueryErr, logAttrAggregateID, snapshot.AggregateID)
		ss.inst.recordError(ctx, operationSnapSave, errTypeBuildQuery)
		ss.inst.finishSpanError(span, errTypeBuildQuery)

		return buildQueryErr
	}

	start := time.Now()
	_, execErr := ss.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	ss.inst.logQueryWithDuration(ctx, sqlQuery, operationSnapSave, duration)

	if execErr != nil {
		ss.inst.logError(ctx, logMsgSnapshotSaveFailed, execErr, logAttrAggregateID, snapshot.AggregateID)
		ss.inst.recordError(ctx, operationSnapSave, errTypeExec)
		ss.inst.finishSpanError(span, errTypeExec)

		return errors.Join(eventstore.ErrSavingSnapshotFailed, execErr)
	}

	ss.inst.logOperation(ctx, logMsgSnapshotSaved,
		logAttrAggregateID, snapshot.AggregateID,
		logAttrDurationMS, toMilliseconds(duration))
	ss.inst.recordDuration(ctx, operationSnapSave, statusSuccess, duration)
	ss.inst.finishSpanSuccess(span, duration, nil)

	return nil
}

// LoadSnapshot returns the stored snapshot for the aggregate id, or ok=false when none exists.
func (ss SnapshotStore) LoadSnapshot(ctx context.Context, aggregateID uuid.UUID) (eventstore.Snapshot, bool, error) {
	ctx, span := ss.inst.startSpan(ctx, operationSnapLoad)

	sqlQuery, buildQueryErr := ss.buildSelectQuery(aggregateID)
	if buildQueryErr != nil {
		ss.inst.logError(ctx, logMsgBuildSnapshotSQLFailed, buildQueryErr, logAttrAggregateID, aggregateID)
		ss.inst.recordError(ctx, operationSnapLoad, errTypeBuildQuery)
		ss.inst.finishSpanError(span, errTypeBuildQuery)

		return eventstore.Snapshot{}, false, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := ss.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	ss.inst.logQueryWithDuration(ctx, sqlQuery, operationSnapLoad, duration)

	if queryErr != nil {
		ss.inst.logError(ctx, logMsgSnapshotLoadFailed, queryErr, logAttrAggregateID, aggregateID)
		ss.inst.recordError(ctx, operationSnapLoad, errTypeQuery)
		ss.inst.finishSpanError(span, errTypeQuery)

		return eventstore.Snapshot{}, false, errors.Join(eventstore.ErrLoadingSnapshotFailed, queryErr)
	}
	defer ss.closeRows(ctx, rows)

	if !rows.Next() {
		ss.inst.finishSpanSuccess(span, duration, nil)
		return eventstore.Snapshot{}, false, nil
	}

	var (
		version int64
		data    []byte
		takenAt time.Time
	)

	if scanErr := rows.Scan(&version, &data, &takenAt); scanErr != nil {
		ss.inst.logError(ctx, logMsgScanRowFailed, scanErr, logAttrAggregateID, aggregateID)
		ss.inst.recordError(ctx, operationSnapLoad, errTypeScan)
		ss.inst.finishSpanError(span, errTypeScan)

		return eventstore.Snapshot{}, false, errors.Join(eventstore.ErrScanningDBRowFailed, scanErr)
	}

	snapshot := eventstore.Snapshot{
		AggregateID:      aggregateID,
		AggregateVersion: eventstore.AggregateVersionUint(version),
		Data:             json.RawMessage(data),
		TakenAt:          takenAt,
	}

	ss.inst.recordDuration(ctx, operationSnapLoad, statusSuccess, duration)
	ss.inst.finishSpanSuccess(span, duration, nil)

	return snapshot, true, nil
}

// DeleteSnapshot removes the stored snapshot for the aggregate id, if any.
func (ss SnapshotStore) DeleteSnapshot(ctx context.Context, aggregateID uuid.UUID) error {
	ctx, span := ss.inst.startSpan(ctx, operationSnapDelete)

	sqlQuery, buildQueryErr := ss.buildDeleteQuery(aggregateID)
	if buildQueryErr != nil {
		ss.inst.logError(ctx, logMsgBuildSnapshotSQLFailed, buildQueryErr, logAttrAggregateID, aggregateID)
		ss.inst.recordError(ctx, operationSnapDelete, errTypeBuildQuery)
		ss.inst.finishSpanError(span, errTypeBuildQuery)

		return buildQueryErr
	}

	start := time.Now()
	_, execErr := ss.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	ss.inst.logQueryWithDuration(ctx, sqlQuery, operationSnapDelete, duration)

	if execErr != nil {
		ss.inst.logError(ctx, logMsgSnapshotDeleteFailed, execErr, logAttrAggregateID, aggregateID)
		ss.inst.recordError(ctx, operationSnapDelete, errTypeExec)
		ss.inst.finishSpanError(span, errTypeExec)

		return errors.Join(eventstore.ErrDeletingSnapshotFailed, execErr)
	}

	ss.inst.logOperation(ctx, logMsgSnapshotDeleted, logAttrAggregateID, aggregateID)
	ss.inst.recordDuration(ctx, operationSnapDelete, statusSuccess, duration)
	ss.inst.finishSpanSuccess(span, duration, nil)

	return nil
}

func (ss SnapshotStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		ss.inst.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (ss SnapshotStore) buildUpsertQuery(snapshot eventstore.Snapshot) (sqlQueryString, error) {
	record := goqu.Record{
		colAggregateID:      goqu.L(castUUID, snapshot.AggregateID.String()),
		colAggregateVersion: goqu.L(castBigint, int64(snapshot.AggregateVersion)),
		colSnapshotData:     goqu.L(castJsonb, string(snapshot.Data)),
		colSnapshotTakenAt:  goqu.L(castTimestamp, snapshot.TakenAt),
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(ss.tableName).
		Rows(record).
		OnConflict(goqu.DoUpdate(colAggregateID, goqu.Record{
			colAggregateVersion: goqu.L(castBigint, int64(snapshot.AggregateVersion)),
			colSnapshotData:     goqu.L(castJsonb, string(snapshot.Data)),
			colSnapshotTakenAt:  goqu.L(castTimestamp, snapshot.TakenAt),
		}))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (ss SnapshotStore) buildSelectQuery(aggregateID uuid.UUID) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(ss.tableName).
		Select(colAggregateVersion, colSnapshotData, colSnapshotTakenAt).
		Where(goqu.Ex{colAggregateID: aggregateID.String()})

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (ss SnapshotStore) buildDeleteQuery(aggregateID uuid.UUID) (sqlQueryString, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(ss.tableName).
		Where(goqu.Ex{colAggregateID: aggregateID.String()})

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}
