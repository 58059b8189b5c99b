// Package lease implements the Lease aggregate: a rental contract between a
// unit and a set of tenants, derived entirely from its ordered event history.
//
// A lease references its unit and tenants by identifier only. Resolving those
// identifiers to current state is an explicit read-only query against the
// respective repository, never an ownership pointer held by the lease.
package lease

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/aggregate"
	"github.com/leaseworks/rentledger/domain"
)

// Kind is the aggregate kind identifier for leases.
const Kind = "lease"

const (
	failureReasonRemoved     = "lease has been removed"
	failureReasonNoUnit      = "lease requires a unit id"
	failureReasonNoTenants   = "lease requires at least one tenant"
	failureReasonDatesNotSet = "lease requires a start date and an end date"
	failureReasonDateRange   = "lease end date must be strictly after the start date"
)

// Lease is the aggregate root for a rental contract.
type Lease struct {
	aggregate.ChangeTracker

	unitID         uuid.UUID
	tenantIDs      []uuid.UUID
	startDate      domain.Date
	endDate        domain.Date
	signedByTenant bool
	signedAt       time.Time
	removed        bool
	generatedAt    time.Time
}

// Create draws up a new lease contract. The end date must be strictly after
// the start date; equal dates are rejected.
func Create(
	leaseID uuid.UUID,
	unitID uuid.UUID,
	tenantIDs []uuid.UUID,
	startDate domain.Date,
	endDate domain.Date,
	now time.Time,
) (*Lease, error) {

	if unitID == uuid.Nil {
		return nil, domain.NewValidationError(failureReasonNoUnit)
	}

	if len(tenantIDs) == 0 {
		return nil, domain.NewValidationError(failureReasonNoTenants)
	}

	if startDate.IsZero() || endDate.IsZero() {
		return nil, domain.NewValidationError(failureReasonDatesNotSet)
	}

	if !endDate.After(startDate) {
		return nil, domain.NewValidationError(failureReasonDateRange)
	}

	l := &Lease{}
	l.raise(BuildCreated(leaseID, unitID, slices.Clone(tenantIDs), startDate, endDate, now))

	return l, nil
}

// FromHistory replays an event history into a Lease.
func FromHistory(history domain.DomainEvents) (*Lease, error) {
	l, version, err := aggregate.Replay(&Lease{}, history, func(state *Lease, event domain.DomainEvent) (*Lease, error) {
		return state, state.apply(event)
	})
	if err != nil {
		return nil, err
	}

	l.Restore(l.ID(), version)

	return l, nil
}

// SignByTenant records that the tenants signed the lease.
func (l *Lease) SignByTenant(now time.Time) error {
	if l.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	l.raise(BuildSignedByTenant(l.ID(), now))

	return nil
}

// AddTenant adds a tenant to the lease. Adding a tenant who is already on
// the lease is a no-op: no event is produced.
func (l *Lease) AddTenant(tenantID uuid.UUID, now time.Time) error {
	if l.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	if slices.Contains(l.tenantIDs, tenantID) {
		return nil
	}

	l.raise(BuildTenantAdded(l.ID(), tenantID, now))

	return nil
}

// RemoveTenant removes a tenant from the lease. Removing a tenant who is not
// on the lease is a no-op: no event is produced.
func (l *Lease) RemoveTenant(tenantID uuid.UUID, now time.Time) error {
	if l.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	if !slices.Contains(l.tenantIDs, tenantID) {
		return nil
	}

	l.raise(BuildTenantRemoved(l.ID(), tenantID, now))

	return nil
}

// UpdateDates changes the lease's date range. A zero date leaves the
// corresponding bound unchanged; the resulting range must keep the end date
// strictly after the start date.
func (l *Lease) UpdateDates(startDate domain.Date, endDate domain.Date, now time.Time) error {
	if l.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	newStart := l.startDate
	if !startDate.IsZero() {
		newStart = startDate
	}

	newEnd := l.endDate
	if !endDate.IsZero() {
		newEnd = endDate
	}

	if !newEnd.After(newStart) {
		return domain.NewValidationError(failureReasonDateRange)
	}

	l.raise(BuildDatesUpdated(l.ID(), startDate, endDate, now))

	return nil
}

// Remove records the tombstone event for the lease.
func (l *Lease) Remove(now time.Time) error {
	if l.removed {
		return nil
	}

	l.raise(BuildRemoved(l.ID(), now))

	return nil
}

// UnitID returns the identifier of the leased unit.
func (l *Lease) UnitID() uuid.UUID {
	return l.unitID
}

// TenantIDs returns a copy of the identifiers of the tenants on the lease.
func (l *Lease) TenantIDs() []uuid.UUID {
	return slices.Clone(l.tenantIDs)
}

// HasTenant reports whether the given tenant is on the lease.
func (l *Lease) HasTenant(tenantID uuid.UUID) bool {
	return slices.Contains(l.tenantIDs, tenantID)
}

// StartDate returns the first day of the lease term.
func (l *Lease) StartDate() domain.Date {
	return l.startDate
}

// EndDate returns the last day of the lease term.
func (l *Lease) EndDate() domain.Date {
	return l.endDate
}

// IsSignedByTenant reports whether the tenants signed the lease.
func (l *Lease) IsSignedByTenant() bool {
	return l.signedByTenant
}

// SignedAt returns when the lease was signed; zero when unsigned.
func (l *Lease) SignedAt() time.Time {
	return l.signedAt
}

// IsActive reports whether the lease is signed and its term covers the given date.
func (l *Lease) IsActive(asOf domain.Date) bool {
	return l.signedByTenant &&
		!l.startDate.After(asOf) &&
		!asOf.After(l.endDate)
}

// IsRemoved reports whether the lease has been tombstoned.
func (l *Lease) IsRemoved() bool {
	return l.removed
}

// GeneratedAt returns when the lease contract was drawn up.
func (l *Lease) GeneratedAt() time.Time {
	return l.generatedAt
}

func (l *Lease) raise(event domain.DomainEvent) {
	if err := l.apply(event); err != nil {
		panic(fmt.Sprintf("lease: applying self-produced event %s: %v", event.IsEventType(), err))
	}

	l.Record(event)
}

// apply folds a single event into the lease's state.
func (l *Lease) apply(event domain.DomainEvent) error {
	switch e := event.(type) {
	case Created:
		l.Restore(e.LeaseID, l.Version())
		l.unitID = e.UnitID
		l.tenantIDs = e.TenantIDs
		l.startDate = e.StartDate
		l.endDate = e.EndDate
		l.signedByTenant = false
		l.signedAt = time.Time{}
		l.generatedAt = e.OccurredAt

	case SignedByTenant:
		l.signedByTenant = true
		l.signedAt = e.SignedAt

	case TenantAdded:
		if !slices.Contains(l.tenantIDs, e.TenantID) {
			l.tenantIDs = append(l.tenantIDs, e.TenantID)
		}

	case TenantRemoved:
		l.tenantIDs = slices.DeleteFunc(l.tenantIDs, func(id uuid.UUID) bool {
			return id == e.TenantID
		})

	case DatesUpdated:
		if !e.StartDate.IsZero() {
			l.startDate = e.StartDate
		}
		if !e.EndDate.IsZero() {
			l.endDate = e.EndDate
		}

	case Removed:
		l.removed = true

	default:
		return fmt.Errorf("unexpected event type %s for lease aggregate", event.IsEventType())
	}

	return nil
}
