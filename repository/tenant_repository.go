package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/aggregate"
	"github.com/leaseworks/rentledger/codec"
	"github.com/leaseworks/rentledger/domain"
	"github.com/leaseworks/rentledger/domain/tenant"
	"github.com/leaseworks/rentledger/eventstore"
)

// TenantRepository persists and lists Tenant aggregates.
type TenantRepository struct {
	core core[*tenant.Tenant]
}

// NewTenantRepository creates a repository for Tenant aggregates on the given
// stores. The notification log must be the tenant kind's own log instance.
func NewTenantRepository(
	events eventstore.EventStore,
	log eventstore.NotificationLog,
	options ...Option,
) (*TenantRepository, error) {

	c, err := newCore(events, log, binding[*tenant.Tenant]{
		decodeEvent:     decodeTenantEvent,
		fromHistory:     tenant.FromHistory,
		fromSnapshot:    tenant.FromSnapshot,
		foldTail:        (*tenant.Tenant).FoldTail,
		marshalSnapshot: (*tenant.Tenant).MarshalSnapshot,
	}, options)
	if err != nil {
		return nil, err
	}

	return &TenantRepository{core: c}, nil
}

// Create persists a newly created tenant: its events are appended at expected
// version 0, so creating the same id twice fails with ErrConcurrencyConflict.
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	return r.core.commit(ctx, t)
}

// Save appends the tenant's pending events at its loaded version.
func (r *TenantRepository) Save(ctx context.Context, t *tenant.Tenant) error {
	return r.core.commit(ctx, t)
}

// Get loads the tenant by id. A never-created or removed tenant reports
// (nil, false, nil); not found is not an error.
func (r *TenantRepository) Get(ctx context.Context, tenantID uuid.UUID) (*tenant.Tenant, bool, error) {
	return r.core.get(ctx, tenantID)
}

// All returns every known tenant in first-notified order.
func (r *TenantRepository) All(ctx context.Context) ([]*tenant.Tenant, error) {
	return r.core.all(ctx)
}

// Paginate resolves one page of tenants from the notification log, ascending
// past the cursor. The returned cursor feeds the next call; it equals the
// input cursor when the log is exhausted.
func (r *TenantRepository) Paginate(
	ctx context.Context,
	after eventstore.LogPositionUint64,
	limit int,
) ([]*tenant.Tenant, eventstore.LogPositionUint64, error) {

	return r.core.paginate(ctx, after, limit)
}

// ByIdentificationNumber finds the tenant carrying the given identification
// number. Identification numbers are assigned at creation and never change,
// so at most one tenant matches.
func (r *TenantRepository) ByIdentificationNumber(
	ctx context.Context,
	identificationNumber string,
) (*tenant.Tenant, bool, error) {

	tenants, err := r.core.all(ctx)
	if err != nil {
		return nil, false, err
	}

	for _, t := range tenants {
		if t.IdentificationNumber() == identificationNumber {
			return t, true, nil
		}
	}

	return nil, false, nil
}

// ApprovedTenants returns the tenants currently approved to sign leases.
func (r *TenantRepository) ApprovedTenants(ctx context.Context) ([]*tenant.Tenant, error) {
	tenants, err := r.core.all(ctx)
	if err != nil {
		return nil, err
	}

	approved := make([]*tenant.Tenant, 0, len(tenants))
	for _, t := range tenants {
		if t.IsApproved() {
			approved = append(approved, t)
		}
	}

	return approved, nil
}

// decodeTenantEvent rebuilds a tenant domain event from its stored form.
func decodeTenantEvent(codecs *codec.Registry, storable eventstore.StorableEvent) (domain.DomainEvent, error) {
	switch storable.EventType {
	case tenant.CreatedEventType:
		var e tenant.Created
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case tenant.ApprovedEventType:
		var e tenant.Approved
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case tenant.DisapprovedEventType:
		var e tenant.Disapproved
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case tenant.ContactInfoUpdatedEventType:
		var e tenant.ContactInfoUpdated
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	case tenant.RemovedEventType:
		var e tenant.Removed
		if err := codec.UnmarshalPayload(codecs, storable.PayloadJSON, &e); err != nil {
			return nil, err
		}
		return e, nil

	default:
		return nil, fmt.Errorf("%w: unknown event type %s for tenant aggregate",
			aggregate.ErrInvalidEventSequence, storable.EventType)
	}
}
