package memoryengine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/eventstore"
)

// EventStore is an in-memory eventstore.EventStore. Streams are independent:
// appends to different aggregate ids only contend on the map lock, never on
// each other's version check.
type EventStore struct {
	mu      sync.RWMutex
	streams map[uuid.UUID]eventstore.StorableEvents
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{streams: make(map[uuid.UUID]eventstore.StorableEvents)}
}

// Append implements eventstore.EventStore. The whole check-and-append runs
// under the write lock, so concurrent appends to the same stream serialize
// and exactly one writer with a stale expected version loses.
func (s *EventStore) Append(
	ctx context.Context,
	aggregateID uuid.UUID,
	expectedVersion eventstore.AggregateVersionUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[aggregateID]

	currentVersion := eventstore.AggregateVersionUint(0)
	if len(stream) > 0 {
		currentVersion = stream[len(stream)-1].AggregateVersion
	}

	if currentVersion != expectedVersion {
		return eventstore.ErrConcurrencyConflict
	}

	recordedAt := time.Now().UTC()

	for i, e := range allEvents {
		e.AggregateID = aggregateID
		e.AggregateVersion = expectedVersion + eventstore.AggregateVersionUint(i) + 1
		e.RecordedAt = recordedAt
		stream = append(stream, e)
	}

	s.streams[aggregateID] = stream

	return nil
}

// Read implements eventstore.EventStore. It returns a copy, so a caller can
// never observe a concurrent append mid-slice.
func (s *EventStore) Read(
	ctx context.Context,
	aggregateID uuid.UUID,
	fromVersion eventstore.AggregateVersionUint,
) (eventstore.StorableEvents, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[aggregateID]

	events := make(eventstore.StorableEvents, 0, len(stream))
	for _, e := range stream {
		if e.AggregateVersion > fromVersion {
			events = append(events, e)
		}
	}

	return events, nil
}

// NotificationLog is an in-memory eventstore.NotificationLog with a single
// mutex as its sequencer: positions are assigned under the lock and are
// therefore gapless and strictly increasing.
type NotificationLog struct {
	mu      sync.RWMutex
	entries eventstore.Notifications
}

// NewNotificationLog creates an empty in-memory notification log.
func NewNotificationLog() *NotificationLog {
	return &NotificationLog{}
}

// Append implements eventstore.NotificationLog.
func (l *NotificationLog) Append(
	ctx context.Context,
	aggregateID uuid.UUID,
	originatorVersion eventstore.AggregateVersionUint,
) (eventstore.LogPositionUint64, error) {

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	position := eventstore.LogPositionUint64(len(l.entries)) + 1

	l.entries = append(l.entries, eventstore.Notification{
		Position:          position,
		AggregateID:       aggregateID,
		OriginatorVersion: originatorVersion,
	})

	return position, nil
}

// Read implements eventstore.NotificationLog.
func (l *NotificationLog) Read(ctx context.Context, options ...eventstore.ReadOption) (eventstore.Notifications, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	selection := eventstore.BuildReadSelection(options...)

	l.mu.RLock()
	defer l.mu.RUnlock()

	matched := make(eventstore.Notifications, 0, len(l.entries))
	for _, entry := range l.entries {
		if selection.Matches(entry.Position) {
			matched = append(matched, entry)
		}
	}

	if !selection.Ascending {
		slices.Reverse(matched)
	}

	if selection.Limit > 0 && len(matched) > selection.Limit {
		matched = matched[:selection.Limit]
	}

	return matched, nil
}

// SnapshotStore is an in-memory eventstore.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]eventstore.Snapshot
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[uuid.UUID]eventstore.Snapshot)}
}

// SaveSnapshot implements eventstore.SnapshotStore.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := snapshot.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.AggregateID] = snapshot

	return nil
}

// LoadSnapshot implements eventstore.SnapshotStore.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context, aggregateID uuid.UUID) (eventstore.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return eventstore.Snapshot{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[aggregateID]

	return snapshot, ok, nil
}

// DeleteSnapshot implements eventstore.SnapshotStore.
func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, aggregateID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, aggregateID)

	return nil
}
