package eventstore

import (
	"encoding/json"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/google/uuid"
)

var (
	// ErrInvalidSnapshotJSON is returned when snapshot JSON data is malformed or invalid.
	ErrInvalidSnapshotJSON = errors.New("snapshot json is not valid")

	// ErrSavingSnapshotFailed is returned when the snapshot save operation fails.
	ErrSavingSnapshotFailed = errors.New("saving snapshot failed")

	// ErrLoadingSnapshotFailed is returned when the snapshot load operation fails.
	ErrLoadingSnapshotFailed = errors.New("loading snapshot failed")

	// ErrDeletingSnapshotFailed is returned when the snapshot delete operation fails.
	ErrDeletingSnapshotFailed = errors.New("deleting snapshot failed")
)

// Snapshot represents a stored aggregate state at a known version, enabling
// loads to replay only the event tail beyond AggregateVersion instead of the
// full history. Replaying snapshot-plus-tail must yield exactly the state a
// full replay would; correctness never depends on a snapshot being present.
type Snapshot struct {
	AggregateID      uuid.UUID
	AggregateVersion AggregateVersionUint // version of the last event folded into Data
	Data             json.RawMessage      // serialized aggregate state
	TakenAt          time.Time
}

// Validate ensures the snapshot has valid data for storage operations.
func (s Snapshot) Validate() error {
	if s.AggregateID == uuid.Nil {
		return ErrNilAggregateID
	}

	if s.AggregateVersion == 0 {
		return ErrZeroAggregateVersion
	}

	if !jsoniter.ConfigFastest.Valid(s.Data) {
		return ErrInvalidSnapshotJSON
	}

	return nil
}

// BuildSnapshot creates a new Snapshot with validation.
func BuildSnapshot(
	aggregateID uuid.UUID,
	aggregateVersion AggregateVersionUint,
	data json.RawMessage,
) (Snapshot, error) {

	snapshot := Snapshot{
		AggregateID:      aggregateID,
		AggregateVersion: aggregateVersion,
		Data:             data,
		TakenAt:          time.Now(),
	}

	if err := snapshot.Validate(); err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}
