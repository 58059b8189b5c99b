package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/aggregate"
	"github.com/leaseworks/rentledger/codec"
	"github.com/leaseworks/rentledger/domain"
	"github.com/leaseworks/rentledger/domain/unit"
	"github.com/leaseworks/rentledger/eventstore"
)

// UnitRepository persists and lists Unit aggregates.
type UnitRepository struct {
	core core[*unit.Unit]
}

// NewUnitRepository creates a repository for Unit aggregates on the given
// stores. The notification log must be the unit kind's own log instance.
func NewUnitRepository(
	events eventstore.EventStore,
	log eventstore.NotificationLog,
	options ...Option,
) (*UnitRepository, error) {

	c, err := newCore(events, log, binding[*unit.Unit]{
		decodeEvent:     decodeUnitEvent,
		fromHistory:     unit.FromHistory,
		fromSnapshot:    unit.FromSnapshot,
		foldTail:        (*unit.Unit).FoldTail,
		marshalSnapshot: (*unit.Unit).MarshalSnapshot,
	}, options)
	if err != nil {
		return nil, err
	}

	return &UnitRepository{core: c}, nil
}

// Create persists a newly created unit: its events are appended at expected
// version 0, so creating the same id twice fails with ErrConcurrencyConflict.
func (r *UnitRepository) Create(ctx context.Context, u *unit.Unit) error {
	return r.core.commit(ctx, u)
}

// Save appends the unit's pending events at its loaded version.
func (r *UnitRepository) Save(ctx context.Context, u *unit.Unit) error {
	return r.core.commit(ctx, u)
}

// Get loads the unit by id. A never-created or removed unit reports
// (nil, false, nil); not found is not an error.
func (r *UnitRepository) Get(ctx context.Context, unitID uuid.UUID) (*unit.Unit, bool, error) {
	return r.core.get(ctx, unitID)
}

// All returns every known unit in first-notified order.
func (r *UnitRepository) All(ctx context.Context) ([]*unit.Unit, error) {
	return r.core.all(ctx)
}

// Paginate resolves one page of units from the notification log, ascending
// past the cursor. The returned cursor feeds the next call; it equals the
// input cursor when the log is exhausted.
func (r *UnitRepository) Paginate(
	ctx context.Context,
	after eventstore.LogPositionUint64,
	limit int,
) ([]*unit.Unit, eventstore.LogPositionUint64, error) {

	return r.core.paginate(ctx, after, limit)
}

// AvailableUnits returns the units currently on the market and not occupied.
func (r *UnitRepository) AvailableUnits(ctx context.Context) ([]*unit.Unit, error) {
	units, err := r.core.all(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]*unit.Unit, 0, len(units))
	for _, u := range units {
		if u.IsLeasable() && !u.IsLeased() {
			available = append(available, u)
		}
	}

	return available, nil
}

// decodeUnitEvent rebuilds a unit domain event from its stored form. The
// switch is the storage-side counterpart of the aggregate's closed event set.
func decodeUnitEvent(codecs *codec.Registry, storable eventstore.StorableEvent) (domain.DomainEvent, error) {
	switch storable.EventType {
	case unit.CreatedEventType:
		var e unit.Created
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case unit.MarkedAsLeasedEventType:
		var e unit.MarkedAsLeased
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case unit.MarkedAsAvailableEventType:
		var e unit.MarkedAsAvailable
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case unit.MarkedAsUnleasableEventType:
		var e unit.MarkedAsUnleasable
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case unit.MarkedAsLeasableEventType:
		var e unit.MarkedAsLeasable
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case unit.AmenitiesUpdatedEventType:
		var e unit.AmenitiesUpdated
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case unit.AddressUpdatedEventType:
		var e unit.AddressUpdated
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case unit.BuiltInYearUpdatedEventType:
		var e unit.BuiltInYearUpdated
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case unit.RemovedEventType:
		var e unit.Removed
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	default:
		return nil, fmt.Errorf("%w: unknown event type %s for unit aggregate",
			aggregate.ErrInvalidEventSequence, storable.EventType)
	}
}
