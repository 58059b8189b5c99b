package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/aggregate"
	"github.com/leaseworks/rentledger/codec"
	"github.com/leaseworks/rentledger/domain"
	"github.com/leaseworks/rentledger/domain/lease"
	"github.com/leaseworks/rentledger/eventstore"
)

// LeaseRepository persists and lists Lease aggregates.
type LeaseRepository struct {
	core core[*lease.Lease]
}

// NewLeaseRepository creates a repository for Lease aggregates on the given
// stores. The notification log must be the lease kind's own log instance.
func NewLeaseRepository(
	events eventstore.EventStore,
	log eventstore.NotificationLog,
	options ...Option,
) (*LeaseRepository, error) {

	c, err := newCore(events, log, binding[*lease.Lease]{
		decodeEvent:     decodeLeaseEvent,
		fromHistory:     lease.FromHistory,
		fromSnapshot:    lease.FromSnapshot,
		foldTail:        (*lease.Lease).FoldTail,
		marshalSnapshot: (*lease.Lease).MarshalSnapshot,
	}, options)
	if err != nil {
		return nil, err
	}

	return &LeaseRepository{core: c}, nil
}

// Create persists a newly created lease: its events are appended at expected
// version 0, so creating the same id twice fails with ErrConcurrencyConflict.
func (r *LeaseRepository) Create(ctx context.Context, l *lease.Lease) error {
	return r.core.commit(ctx, l)
}

// Save appends the lease's pending events at its loaded version.
func (r *LeaseRepository) Save(ctx context.Context, l *lease.Lease) error {
	return r.core.commit(ctx, l)
}

// Get loads the lease by id. A never-created or removed lease reports
// (nil, false, nil); not found is not an error.
func (r *LeaseRepository) Get(ctx context.Context, leaseID uuid.UUID) (*lease.Lease, bool, error) {
	return r.core.get(ctx, leaseID)
}

// All returns every known lease in first-notified order.
func (r *LeaseRepository) All(ctx context.Context) ([]*lease.Lease, error) {
	return r.core.all(ctx)
}

// Paginate resolves one page of leases from the notification log, ascending
// past the cursor. The returned cursor feeds the next call; it equals the
// input cursor when the log is exhausted.
func (r *LeaseRepository) Paginate(
	ctx context.Context,
	after eventstore.LogPositionUint64,
	limit int,
) ([]*lease.Lease, eventstore.LogPositionUint64, error) {

	return r.core.paginate(ctx, after, limit)
}

// ByUnitID returns the leases attached to the given unit, in first-notified
// order. A unit can appear on multiple leases over its lifetime.
func (r *LeaseRepository) ByUnitID(ctx context.Context, unitID uuid.UUID) ([]*lease.Lease, error) {
	leases, err := r.core.all(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*lease.Lease, 0, len(leases))
	for _, l := range leases {
		if l.UnitID() == unitID {
			matched = append(matched, l)
		}
	}

	return matched, nil
}

// ByTenantID returns the leases the given tenant is currently a party to.
func (r *LeaseRepository) ByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*lease.Lease, error) {
	leases, err := r.core.all(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*lease.Lease, 0, len(leases))
	for _, l := range leases {
		if l.HasTenant(tenantID) {
			matched = append(matched, l)
		}
	}

	return matched, nil
}

// ActiveLeases returns the leases whose term covers the given date.
func (r *LeaseRepository) ActiveLeases(ctx context.Context, asOf domain.Date) ([]*lease.Lease, error) {
	leases, err := r.core.all(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*lease.Lease, 0, len(leases))
	for _, l := range leases {
		if l.IsActive(asOf) {
			active = append(active, l)
		}
	}

	return active, nil
}

// decodeLeaseEvent rebuilds a lease domain event from its stored form.
func decodeLeaseEvent(codecs *codec.Registry, storable eventstore.StorableEvent) (domain.DomainEvent, error) {
	switch storable.EventType {
	case lease.CreatedEventType:
		var e lease.Created
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case lease.SignedByTenantEventType:
		var e lease.SignedByTenant
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case lease.TenantAddedEventType:
		var e lease.TenantAdded
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case lease.TenantRemovedEventType:
		var e lease.TenantRemoved
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case lease.DatesUpdatedEventType:
		var e lease.DatesUpdated
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case lease.RemovedEventType:
		var e lease.Removed
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	default:
		return nil, fmt.Errorf("%w: unknown event type %s for lease aggregate",
			aggregate.ErrInvalidEventSequence, storable.EventType)
	}
}
