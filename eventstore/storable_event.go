package eventstore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/google/uuid"
)

var (
	// ErrInvalidPayloadJSON is returned when the payload is not valid JSON.
	ErrInvalidPayloadJSON = errors.New("payload json is not valid")

	// ErrNilAggregateID is returned when the aggregate id is the nil UUID.
	ErrNilAggregateID = errors.New("aggregate id must not be nil")

	// ErrZeroAggregateVersion is returned when the aggregate version is zero; versions start at 1.
	ErrZeroAggregateVersion = errors.New("aggregate version must be greater than zero")

	// ErrEmptyEventType is returned when the event type is empty.
	ErrEmptyEventType = errors.New("event type must not be empty")
)

// StorableEvents is an alias type for a slice of StorableEvent.
type StorableEvents = []StorableEvent

// StorableEvent is the DTO (data transfer object) used by the EventStore to
// append events and query them back.
//
// It is built on scalars to be completely agnostic of the implementation of
// Domain Events in the client code. AggregateVersion is the aggregate's
// version after this event is applied; for a given aggregate id the versions
// form a contiguous sequence starting at 1, which is the basis of the
// optimistic concurrency check. RecordedAt is assigned by the engine at
// append time, never by the caller.
//
// While its properties are exported, it should only be constructed with the
// supplied factory method BuildStorableEvent.
type StorableEvent struct {
	AggregateID      uuid.UUID
	AggregateVersion AggregateVersionUint
	EventType        string
	PayloadJSON      []byte
	RecordedAt       time.Time
}

// BuildStorableEvent is a factory method for StorableEvent.
//
// It populates the StorableEvent with the given scalar input and validates it.
// RecordedAt stays zero; the engine assigns it when the event is appended.
func BuildStorableEvent(
	aggregateID uuid.UUID,
	aggregateVersion AggregateVersionUint,
	eventType string,
	payloadJSON []byte,
) (StorableEvent, error) {

	if aggregateID == uuid.Nil {
		return StorableEvent{}, ErrNilAggregateID
	}

	if aggregateVersion == 0 {
		return StorableEvent{}, ErrZeroAggregateVersion
	}

	if eventType == "" {
		return StorableEvent{}, ErrEmptyEventType
	}

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return StorableEvent{}, ErrInvalidPayloadJSON
	}

	return StorableEvent{
		AggregateID:      aggregateID,
		AggregateVersion: aggregateVersion,
		EventType:        eventType,
		PayloadJSON:      payloadJSON,
	}, nil
}
