package redisengine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/leaseworks/rentledger/eventstore"
)

const defaultKeyPrefix = "snapshot:"

// ErrEmptyKeyPrefix is returned when an empty key prefix is supplied.
var ErrEmptyKeyPrefix = errors.New("key prefix must not be empty")

// storedSnapshot is the JSON document kept under the aggregate's key.
type storedSnapshot struct {
	AggregateVersion eventstore.AggregateVersionUint `json:"aggregate_version"`
	Data             json.RawMessage                 `json:"data"`
	TakenAt          time.Time                       `json:"taken_at"`
}

// SnapshotStore is the Redis implementation of eventstore.SnapshotStore.
// One key per aggregate id; saving replaces any previous snapshot.
type SnapshotStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration // 0 = keys never expire
	logger    eventstore.Logger
}

// Option defines a functional option for configuring the SnapshotStore.
type Option func(*SnapshotStore) error

// WithKeyPrefix sets the prefix prepended to the aggregate id to form the Redis key.
func WithKeyPrefix(prefix string) Option {
	return func(ss *SnapshotStore) error {
		if prefix == "" {
			return ErrEmptyKeyPrefix
		}

		ss.keyPrefix = prefix

		return nil
	}
}

// WithTTL sets an expiry on saved snapshots. An expired snapshot simply reads
// as missing, and the next save recreates it.
func WithTTL(ttl time.Duration) Option {
	return func(ss *SnapshotStore) error {
		ss.ttl = ttl
		return nil
	}
}

// WithLogger sets the logger for the SnapshotStore.
func WithLogger(logger eventstore.Logger) Option {
	return func(ss *SnapshotStore) error {
		ss.logger = logger
		return nil
	}
}

// NewSnapshotStore creates a new SnapshotStore on the given Redis client with
// optional configuration. Any client satisfying redis.UniversalClient works:
// single node, cluster or sentinel.
func NewSnapshotStore(client redis.UniversalClient, options ...Option) (*SnapshotStore, error) {
	if client == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	ss := &SnapshotStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}

	for _, option := range options {
		if err := option(ss); err != nil {
			return nil, err
		}
	}

	return ss, nil
}

// SaveSnapshot implements eventstore.SnapshotStore.
func (ss *SnapshotStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	document, marshalErr := jsoniter.ConfigFastest.Marshal(storedSnapshot{
		AggregateVersion: snapshot.AggregateVersion,
		Data:             snapshot.Data,
		TakenAt:          snapshot.TakenAt,
	})
	if marshalErr != nil {
		return errors.Join(eventstore.ErrSavingSnapshotFailed, marshalErr)
	}

	if setErr := ss.client.Set(ctx, ss.key(snapshot.AggregateID), document, ss.ttl).Err(); setErr != nil {
		ss.logError("failed to save snapshot", setErr, snapshot.AggregateID)

		return errors.Join(eventstore.ErrSavingSnapshotFailed, setErr)
	}

	return nil
}

// LoadSnapshot implements eventstore.SnapshotStore.
func (ss *SnapshotStore) LoadSnapshot(ctx context.Context, aggregateID uuid.UUID) (eventstore.Snapshot, bool, error) {
	document, getErr := ss.client.Get(ctx, ss.key(aggregateID)).Bytes()
	if getErr != nil {
		if errors.Is(getErr, redis.Nil) {
			return eventstore.Snapshot{}, false, nil
		}

		ss.logError("failed to load snapshot", getErr, aggregateID)

		return eventstore.Snapshot{}, false, errors.Join(eventstore.ErrLoadingSnapshotFailed, getErr)
	}

	var stored storedSnapshot
	if unmarshalErr := jsoniter.ConfigFastest.Unmarshal(document, &stored); unmarshalErr != nil {
		ss.logError("failed to decode snapshot document", unmarshalErr, aggregateID)

		return eventstore.Snapshot{}, false, errors.Join(eventstore.ErrLoadingSnapshotFailed, unmarshalErr)
	}

	snapshot := eventstore.Snapshot{
		AggregateID:      aggregateID,
		AggregateVersion: stored.AggregateVersion,
		Data:             stored.Data,
		TakenAt:          stored.TakenAt,
	}

	return snapshot, true, nil
}

// DeleteSnapshot implements eventstore.SnapshotStore.
func (ss *SnapshotStore) DeleteSnapshot(ctx context.Context, aggregateID uuid.UUID) error {
	if delErr := ss.client.Del(ctx, ss.key(aggregateID)).Err(); delErr != nil {
		ss.logError("failed to delete snapshot", delErr, aggregateID)

		return errors.Join(eventstore.ErrDeletingSnapshotFailed, delErr)
	}

	return nil
}

func (ss *SnapshotStore) key(aggregateID uuid.UUID) string {
	return ss.keyPrefix + aggregateID.String()
}

func (ss *SnapshotStore) logError(msg string, err error, aggregateID uuid.UUID) {
	if ss.logger != nil {
		ss.logger.Error(msg, "error", err.Error(), "aggregate_id", aggregateID.String())
	}
}
