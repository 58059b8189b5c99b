package lease

import (
	"time"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/domain"
)

// Event type identifiers for the Lease aggregate.
const (
	CreatedEventType        = "LeaseCreated"
	SignedByTenantEventType = "LeaseSignedByTenant"
	TenantAddedEventType    = "LeaseTenantAdded"
	TenantRemovedEventType  = "LeaseTenantRemoved"
	DatesUpdatedEventType   = "LeaseDatesUpdated"
	RemovedEventType        = "LeaseRemoved"
)

// Created represents that a lease contract was drawn up for a unit and a
// set of tenants.
type Created struct {
	LeaseID    uuid.UUID
	UnitID     uuid.UUID
	TenantIDs  []uuid.UUID
	StartDate  domain.Date
	EndDate    domain.Date
	OccurredAt domain.OccurredAtTS
}

// BuildCreated creates a new Created event.
func BuildCreated(
	leaseID uuid.UUID,
	unitID uuid.UUID,
	tenantIDs []uuid.UUID,
	startDate domain.Date,
	endDate domain.Date,
	occurredAt time.Time,
) Created {

	return Created{
		LeaseID:    leaseID,
		UnitID:     unitID,
		TenantIDs:  tenantIDs,
		StartDate:  startDate,
		EndDate:    endDate,
		OccurredAt: domain.ToOccurredAt(occurredAt),
	}
}

func (e Created) IsEventType() string      { return CreatedEventType }
func (e Created) HasOccurredAt() time.Time { return e.OccurredAt }

// SignedByTenant represents that the tenants signed the lease.
type SignedByTenant struct {
	LeaseID    uuid.UUID
	SignedAt   time.Time
	OccurredAt domain.OccurredAtTS
}

// BuildSignedByTenant creates a new SignedByTenant event.
func BuildSignedByTenant(leaseID uuid.UUID, occurredAt time.Time) SignedByTenant {
	return SignedByTenant{
		LeaseID:    leaseID,
		SignedAt:   domain.ToOccurredAt(occurredAt),
		OccurredAt: domain.ToOccurredAt(occurredAt),
	}
}

func (e SignedByTenant) IsEventType() string      { return SignedByTenantEventType }
func (e SignedByTenant) HasOccurredAt() time.Time { return e.OccurredAt }

// TenantAdded represents that a tenant joined the lease.
type TenantAdded struct {
	LeaseID    uuid.UUID
	TenantID   uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildTenantAdded creates a new TenantAdded event.
func BuildTenantAdded(leaseID uuid.UUID, tenantID uuid.UUID, occurredAt time.Time) TenantAdded {
	return TenantAdded{LeaseID: leaseID, TenantID: tenantID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e TenantAdded) IsEventType() string      { return TenantAddedEventType }
func (e TenantAdded) HasOccurredAt() time.Time { return e.OccurredAt }

// TenantRemoved represents that a tenant left the lease.
type TenantRemoved struct {
	LeaseID    uuid.UUID
	TenantID   uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildTenantRemoved creates a new TenantRemoved event.
func BuildTenantRemoved(leaseID uuid.UUID, tenantID uuid.UUID, occurredAt time.Time) TenantRemoved {
	return TenantRemoved{LeaseID: leaseID, TenantID: tenantID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e TenantRemoved) IsEventType() string      { return TenantRemovedEventType }
func (e TenantRemoved) HasOccurredAt() time.Time { return e.OccurredAt }

// DatesUpdated represents that the lease's date range changed.
// A zero date means the corresponding bound is unchanged.
type DatesUpdated struct {
	LeaseID    uuid.UUID
	StartDate  domain.Date
	EndDate    domain.Date
	OccurredAt domain.OccurredAtTS
}

// BuildDatesUpdated creates a new DatesUpdated event.
func BuildDatesUpdated(leaseID uuid.UUID, startDate domain.Date, endDate domain.Date, occurredAt time.Time) DatesUpdated {
	return DatesUpdated{
		LeaseID:    leaseID,
		StartDate:  startDate,
		EndDate:    endDate,
		OccurredAt: domain.ToOccurredAt(occurredAt),
	}
}

func (e DatesUpdated) IsEventType() string      { return DatesUpdatedEventType }
func (e DatesUpdated) HasOccurredAt() time.Time { return e.OccurredAt }

// Removed is the tombstone event for a lease.
type Removed struct {
	LeaseID    uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildRemoved creates a new Removed event.
func BuildRemoved(leaseID uuid.UUID, occurredAt time.Time) Removed {
	return Removed{LeaseID: leaseID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e Removed) IsEventType() string      { return RemovedEventType }
func (e Removed) HasOccurredAt() time.Time { return e.OccurredAt }
