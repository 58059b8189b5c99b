package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/codec"
	"github.com/leaseworks/rentledger/domain"
	"github.com/leaseworks/rentledger/eventstore"
)

var (
	// ErrNilEventStore is returned when a repository is constructed without an event store.
	ErrNilEventStore = errors.New("event store must not be nil")

	// ErrNilNotificationLog is returned when a repository is constructed without a notification log.
	ErrNilNotificationLog = errors.New("notification log must not be nil")

	// ErrNilSnapshotStore is returned when a nil snapshot store is passed to WithSnapshotStore.
	ErrNilSnapshotStore = errors.New("snapshot store must not be nil")

	// ErrNilCodecRegistry is returned when a nil registry is passed to WithCodecRegistry.
	ErrNilCodecRegistry = errors.New("codec registry must not be nil")

	// ErrNoPendingEvents is returned when a save is attempted for an aggregate
	// that has produced no events since it was loaded.
	ErrNoPendingEvents = errors.New("aggregate has no pending events to save")
)

// Root is the behavior the repository core needs from an aggregate root; the
// aggregate.ChangeTracker embedded in each kind provides most of it.
type Root interface {
	ID() uuid.UUID
	Version() uint
	BaseVersion() uint
	PendingEvents() domain.DomainEvents
	MarkCommitted()
	IsRemoved() bool
}

// binding ties the generic core to one aggregate kind: how to decode its
// stored events and how to rebuild its root from history or snapshot.
type binding[A Root] struct {
	decodeEvent     func(*codec.Registry, eventstore.StorableEvent) (domain.DomainEvent, error)
	fromHistory     func(domain.DomainEvents) (A, error)
	fromSnapshot    func(data []byte, version uint) (A, error)
	foldTail        func(A, domain.DomainEvents) error
	marshalSnapshot func(A) ([]byte, error)
}

// settings holds the optional collaborators shared by all repository kinds.
type settings struct {
	snapshots eventstore.SnapshotStore
	codecs    *codec.Registry
	logger    eventstore.Logger
}

// Option defines a functional option for configuring a repository.
type Option func(*settings) error

// WithSnapshotStore enables snapshot-accelerated loads: Get reads the
// snapshot plus the event tail beyond it, and every successful save refreshes
// the snapshot. Correctness never depends on the snapshot store; failures
// there only cost replay time.
func WithSnapshotStore(store eventstore.SnapshotStore) Option {
	return func(s *settings) error {
		if store == nil {
			return ErrNilSnapshotStore
		}

		s.snapshots = store

		return nil
	}
}

// WithCodecRegistry replaces the default codec registry used for payload
// encoding and decoding.
func WithCodecRegistry(registry *codec.Registry) Option {
	return func(s *settings) error {
		if registry == nil {
			return ErrNilCodecRegistry
		}

		s.codecs = registry

		return nil
	}
}

// WithLogger sets the logger for the repository.
func WithLogger(logger eventstore.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

func applySettings(options []Option) (settings, error) {
	s := settings{codecs: codec.NewDefaultRegistry()}

	for _, option := range options {
		if err := option(&s); err != nil {
			return settings{}, err
		}
	}

	return s, nil
}

// core is the generic repository implementation shared by all kinds.
type core[A Root] struct {
	events    eventstore.EventStore
	log       eventstore.NotificationLog
	snapshots eventstore.SnapshotStore
	codecs    *codec.Registry
	logger    eventstore.Logger
	bind      binding[A]
}

func newCore[A Root](
	events eventstore.EventStore,
	log eventstore.NotificationLog,
	bind binding[A],
	options []Option,
) (core[A], error) {

	if events == nil {
		return core[A]{}, ErrNilEventStore
	}

	if log == nil {
		return core[A]{}, ErrNilNotificationLog
	}

	s, err := applySettings(options)
	if err != nil {
		return core[A]{}, err
	}

	return core[A]{
		events:    events,
		log:       log,
		snapshots: s.snapshots,
		codecs:    s.codecs,
		logger:    s.logger,
		bind:      bind,
	}, nil
}

// commit appends the root's pending events at its base version, marks them
// committed, refreshes the snapshot and records the notification.
//
// Payload encoding runs before any write, so a codec.ErrNoCodecRegistered
// fails the whole commit with nothing persisted. When the event append
// succeeds but the notification append fails, the returned error wraps
// eventstore.ErrAppendingNotificationFailed and the events ARE durable: the
// aggregate is findable by id but not yet listed until a later save appends
// its next notification.
func (c core[A]) commit(ctx context.Context, root A) error {
	pending := root.PendingEvents()
	if len(pending) == 0 {
		return ErrNoPendingEvents
	}

	base := root.BaseVersion()

	storables := make(eventstore.StorableEvents, 0, len(pending))
	for i, event := range pending {
		payload, encodeErr := codec.MarshalPayload(c.codecs, event)
		if encodeErr != nil {
			return encodeErr
		}

		storable, buildErr := eventstore.BuildStorableEvent(
			root.ID(),
			base+eventstore.AggregateVersionUint(i)+1,
			event.IsEventType(),
			payload,
		)
		if buildErr != nil {
			return buildErr
		}

		storables = append(storables, storable)
	}

	if appendErr := c.events.Append(ctx, root.ID(), base, storables[0], storables[1:]...); appendErr != nil {
		return appendErr
	}

	root.MarkCommitted()

	c.refreshSnapshot(ctx, root)

	if _, logErr := c.log.Append(ctx, root.ID(), root.Version()); logErr != nil {
		c.warn("notification append failed after event append; aggregate findable by id but not yet listed",
			"aggregate_id", root.ID().String(), "error", logErr.Error())

		return errors.Join(eventstore.ErrAppendingNotificationFailed, logErr)
	}

	return nil
}

// get loads and replays the aggregate. A tombstoned or never-written
// aggregate reports (zero, false, nil): not found is not an error.
func (c core[A]) get(ctx context.Context, id uuid.UUID) (A, bool, error) {
	var zero A

	if c.snapshots != nil {
		root, resolved, err := c.getViaSnapshot(ctx, id)
		if err != nil {
			return zero, false, err
		}

		if resolved {
			if root.IsRemoved() {
				return zero, false, nil
			}

			return root, true, nil
		}
	}

	storables, readErr := c.events.Read(ctx, id, 0)
	if readErr != nil {
		return zero, false, readErr
	}

	if len(storables) == 0 {
		return zero, false, nil
	}

	history, decodeErr := c.decodeAll(storables)
	if decodeErr != nil {
		return zero, false, decodeErr
	}

	root, replayErr := c.bind.fromHistory(history)
	if replayErr != nil {
		return zero, false, replayErr
	}

	if root.IsRemoved() {
		return zero, false, nil
	}

	return root, true, nil
}

// getViaSnapshot tries the snapshot-plus-tail path. resolved=false means the
// caller should fall back to full replay; only event store failures surface
// as errors, snapshot store trouble just costs the shortcut.
func (c core[A]) getViaSnapshot(ctx context.Context, id uuid.UUID) (A, bool, error) {
	var zero A

	snapshot, found, loadErr := c.snapshots.LoadSnapshot(ctx, id)
	if loadErr != nil {
		c.warn("snapshot load failed, falling back to full replay",
			"aggregate_id", id.String(), "error", loadErr.Error())

		return zero, false, nil
	}

	if !found {
		return zero, false, nil
	}

	root, restoreErr := c.bind.fromSnapshot(snapshot.Data, snapshot.AggregateVersion)
	if restoreErr != nil {
		c.warn("snapshot restore failed, falling back to full replay",
			"aggregate_id", id.String(), "error", restoreErr.Error())

		return zero, false, nil
	}

	tail, readErr := c.events.Read(ctx, id, snapshot.AggregateVersion)
	if readErr != nil {
		return zero, false, readErr
	}

	if len(tail) > 0 {
		events, decodeErr := c.decodeAll(tail)
		if decodeErr != nil {
			return zero, false, decodeErr
		}

		if foldErr := c.bind.foldTail(root, events); foldErr != nil {
			return zero, false, foldErr
		}
	}

	return root, true, nil
}

// all resolves every distinct aggregate the notification log knows about, in
// first-notified order. Entries that no longer resolve are skipped.
func (c core[A]) all(ctx context.Context) ([]A, error) {
	entries, readErr := c.log.Read(ctx, eventstore.Ascending())
	if readErr != nil {
		return nil, readErr
	}

	seen := make(map[uuid.UUID]struct{}, len(entries))
	roots := make([]A, 0, len(entries))

	for _, entry := range entries {
		if _, dup := seen[entry.AggregateID]; dup {
			continue
		}
		seen[entry.AggregateID] = struct{}{}

		root, ok := c.resolve(ctx, entry)
		if !ok {
			continue
		}

		roots = append(roots, root)
	}

	return roots, nil
}

// paginate reads one ascending page of notification log entries past the
// cursor and resolves them. The returned cursor is the position of the last
// entry read, whether or not it resolved, so paging always makes progress;
// pass it back via the next call to continue. cursor==after means the log is
// exhausted.
func (c core[A]) paginate(
	ctx context.Context,
	after eventstore.LogPositionUint64,
	limit int,
) ([]A, eventstore.LogPositionUint64, error) {

	entries, readErr := c.log.Read(ctx,
		eventstore.WithAfterPosition(after),
		eventstore.WithLimit(limit),
		eventstore.Ascending())
	if readErr != nil {
		return nil, after, readErr
	}

	cursor := after
	seen := make(map[uuid.UUID]struct{}, len(entries))
	roots := make([]A, 0, len(entries))

	for _, entry := range entries {
		cursor = entry.Position

		if _, dup := seen[entry.AggregateID]; dup {
			continue
		}
		seen[entry.AggregateID] = struct{}{}

		root, ok := c.resolve(ctx, entry)
		if !ok {
			continue
		}

		roots = append(roots, root)
	}

	return roots, cursor, nil
}

// resolve turns one notification log entry back into an aggregate, reporting
// ok=false for entries that no longer resolve.
func (c core[A]) resolve(ctx context.Context, entry eventstore.Notification) (A, bool) {
	var zero A

	root, ok, getErr := c.get(ctx, entry.AggregateID)
	if getErr != nil {
		c.warn("skipping unresolvable notification entry",
			"aggregate_id", entry.AggregateID.String(),
			"position", entry.Position,
			"error", getErr.Error())

		return zero, false
	}

	return root, ok
}

// refreshSnapshot stores the root's current state in the snapshot store,
// or drops the stored snapshot once the root is removed. Failures are
// logged and swallowed; snapshots are an optimization only.
func (c core[A]) refreshSnapshot(ctx context.Context, root A) {
	if c.snapshots == nil || c.bind.marshalSnapshot == nil {
		return
	}

	if root.IsRemoved() {
		if deleteErr := c.snapshots.DeleteSnapshot(ctx, root.ID()); deleteErr != nil {
			c.warn("snapshot delete failed", "aggregate_id", root.ID().String(), "error", deleteErr.Error())
		}

		return
	}

	data, marshalErr := c.bind.marshalSnapshot(root)
	if marshalErr != nil {
		c.warn("snapshot marshal failed", "aggregate_id", root.ID().String(), "error", marshalErr.Error())
		return
	}

	snapshot, buildErr := eventstore.BuildSnapshot(root.ID(), root.Version(), data)
	if buildErr != nil {
		c.warn("snapshot build failed", "aggregate_id", root.ID().String(), "error", buildErr.Error())
		return
	}

	if saveErr := c.snapshots.SaveSnapshot(ctx, snapshot); saveErr != nil {
		c.warn("snapshot save failed", "aggregate_id", root.ID().String(), "error", saveErr.Error())
	}
}

func (c core[A]) decodeAll(storables eventstore.StorableEvents) (domain.DomainEvents, error) {
	events := make(domain.DomainEvents, 0, len(storables))

	for _, storable := range storables {
		event, decodeErr := c.bind.decodeEvent(c.codecs, storable)
		if decodeErr != nil {
			return nil, decodeErr
		}

		events = append(events, event)
	}

	return events, nil
}

func (c core[A]) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
