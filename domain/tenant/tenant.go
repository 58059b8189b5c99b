// Package tenant implements the Tenant aggregate: a prospective renter whose
// state is derived entirely from its ordered event history.
package tenant

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/aggregate"
	"github.com/leaseworks/rentledger/domain"
)

// Kind is the aggregate kind identifier for tenants.
const Kind = "tenant"

const (
	failureReasonRemoved          = "tenant has been removed"
	failureReasonNoIdentification = "tenant identification number must not be empty"
	failureReasonNoName           = "tenant first and last name must not be empty"
	failureReasonNoDateOfBirth    = "tenant date of birth must not be empty"
	failureReasonNothingToUpdate  = "contact info update requires an email or a phone number"
)

// Tenant is the aggregate root for a prospective renter.
type Tenant struct {
	aggregate.ChangeTracker

	identificationNumber string
	firstName            string
	lastName             string
	email                string
	phoneNumber          string
	dateOfBirth          domain.Date
	isApproved           bool
	removed              bool
	createdAt            time.Time
}

// Create registers a new tenant. The creation event gets version 1.
func Create(
	tenantID uuid.UUID,
	identificationNumber string,
	firstName string,
	lastName string,
	email string,
	phoneNumber string,
	dateOfBirth domain.Date,
	now time.Time,
) (*Tenant, error) {

	if identificationNumber == "" {
		return nil, domain.NewValidationError(failureReasonNoIdentification)
	}

	if firstName == "" || lastName == "" {
		return nil, domain.NewValidationError(failureReasonNoName)
	}

	if dateOfBirth.IsZero() {
		return nil, domain.NewValidationError(failureReasonNoDateOfBirth)
	}

	t := &Tenant{}
	t.raise(BuildCreated(tenantID, identificationNumber, firstName, lastName, email, phoneNumber, dateOfBirth, now))

	return t, nil
}

// FromHistory replays an event history into a Tenant.
func FromHistory(history domain.DomainEvents) (*Tenant, error) {
	t, version, err := aggregate.Replay(&Tenant{}, history, func(state *Tenant, event domain.DomainEvent) (*Tenant, error) {
		return state, state.apply(event)
	})
	if err != nil {
		return nil, err
	}

	t.Restore(t.ID(), version)

	return t, nil
}

// Approve marks the tenant as having passed screening.
func (t *Tenant) Approve(now time.Time) error {
	if t.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	t.raise(BuildApproved(t.ID(), now))

	return nil
}

// Disapprove revokes the tenant's approval.
func (t *Tenant) Disapprove(now time.Time) error {
	if t.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	t.raise(BuildDisapproved(t.ID(), now))

	return nil
}

// UpdateContactInfo changes the tenant's email and/or phone number.
// Empty arguments leave the corresponding field unchanged; at least one
// must be given.
func (t *Tenant) UpdateContactInfo(email string, phoneNumber string, now time.Time) error {
	if t.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	if email == "" && phoneNumber == "" {
		return domain.NewValidationError(failureReasonNothingToUpdate)
	}

	t.raise(BuildContactInfoUpdated(t.ID(), email, phoneNumber, now))

	return nil
}

// Remove records the tombstone event for the tenant.
func (t *Tenant) Remove(now time.Time) error {
	if t.removed {
		return nil
	}

	t.raise(BuildRemoved(t.ID(), now))

	return nil
}

// IdentificationNumber returns the tenant's unique identification number.
func (t *Tenant) IdentificationNumber() string {
	return t.identificationNumber
}

// FirstName returns the tenant's first name.
func (t *Tenant) FirstName() string {
	return t.firstName
}

// LastName returns the tenant's last name.
func (t *Tenant) LastName() string {
	return t.lastName
}

// FullName returns the tenant's display name.
func (t *Tenant) FullName() string {
	return t.firstName + " " + t.lastName
}

// Email returns the tenant's email address.
func (t *Tenant) Email() string {
	return t.email
}

// PhoneNumber returns the tenant's phone number.
func (t *Tenant) PhoneNumber() string {
	return t.phoneNumber
}

// DateOfBirth returns the tenant's date of birth.
func (t *Tenant) DateOfBirth() domain.Date {
	return t.dateOfBirth
}

// IsApproved reports whether the tenant has passed screening.
func (t *Tenant) IsApproved() bool {
	return t.isApproved
}

// IsRemoved reports whether the tenant has been tombstoned.
func (t *Tenant) IsRemoved() bool {
	return t.removed
}

// CreatedAt returns when the tenant was registered.
func (t *Tenant) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Tenant) raise(event domain.DomainEvent) {
	if err := t.apply(event); err != nil {
		panic(fmt.Sprintf("tenant: applying self-produced event %s: %v", event.IsEventType(), err))
	}

	t.Record(event)
}

// apply folds a single event into the tenant's state.
func (t *Tenant) apply(event domain.DomainEvent) error {
	switch e := event.(type) {
	case Created:
		t.Restore(e.TenantID, t.Version())
		t.identificationNumber = e.IdentificationNumber
		t.firstName = e.FirstName
		t.lastName = e.LastName
		t.email = e.Email
		t.phoneNumber = e.PhoneNumber
		t.dateOfBirth = e.DateOfBirth
		t.isApproved = false
		t.createdAt = e.OccurredAt

	case Approved:
		t.isApproved = true

	case Disapproved:
		t.isApproved = false

	case ContactInfoUpdated:
		if e.Email != "" {
			t.email = e.Email
		}
		if e.PhoneNumber != "" {
			t.phoneNumber = e.PhoneNumber
		}

	case Removed:
		t.removed = true

	default:
		return fmt.Errorf("unexpected event type %s for tenant aggregate", event.IsEventType())
	}

	return nil
}
