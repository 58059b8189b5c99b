package tenant

import (
	"time"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/domain"
)

// Event type identifiers for the Tenant aggregate.
const (
	CreatedEventType            = "TenantCreated"
	ApprovedEventType           = "TenantApproved"
	DisapprovedEventType        = "TenantDisapproved"
	ContactInfoUpdatedEventType = "TenantContactInfoUpdated"
	RemovedEventType            = "TenantRemoved"
)

// Created represents that a prospective renter was registered.
type Created struct {
	TenantID             uuid.UUID
	IdentificationNumber string
	FirstName            string
	LastName             string
	Email                string
	PhoneNumber          string
	DateOfBirth          domain.Date
	OccurredAt           domain.OccurredAtTS
}

// BuildCreated creates a new Created event.
func BuildCreated(
	tenantID uuid.UUID,
	identificationNumber string,
	firstName string,
	lastName string,
	email string,
	phoneNumber string,
	dateOfBirth domain.Date,
	occurredAt time.Time,
) Created {

	return Created{
		TenantID:             tenantID,
		IdentificationNumber: identificationNumber,
		FirstName:            firstName,
		LastName:             lastName,
		Email:                email,
		PhoneNumber:          phoneNumber,
		DateOfBirth:          dateOfBirth,
		OccurredAt:           domain.ToOccurredAt(occurredAt),
	}
}

func (e Created) IsEventType() string      { return CreatedEventType }
func (e Created) HasOccurredAt() time.Time { return e.OccurredAt }

// Approved represents that the tenant passed screening.
type Approved struct {
	TenantID   uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildApproved creates a new Approved event.
func BuildApproved(tenantID uuid.UUID, occurredAt time.Time) Approved {
	return Approved{TenantID: tenantID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e Approved) IsEventType() string      { return ApprovedEventType }
func (e Approved) HasOccurredAt() time.Time { return e.OccurredAt }

// Disapproved represents that the tenant's approval was revoked.
type Disapproved struct {
	TenantID   uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildDisapproved creates a new Disapproved event.
func BuildDisapproved(tenantID uuid.UUID, occurredAt time.Time) Disapproved {
	return Disapproved{TenantID: tenantID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e Disapproved) IsEventType() string      { return DisapprovedEventType }
func (e Disapproved) HasOccurredAt() time.Time { return e.OccurredAt }

// ContactInfoUpdated represents that the tenant's contact details changed.
// Empty fields mean "unchanged".
type ContactInfoUpdated struct {
	TenantID    uuid.UUID
	Email       string
	PhoneNumber string
	OccurredAt  domain.OccurredAtTS
}

// BuildContactInfoUpdated creates a new ContactInfoUpdated event.
func BuildContactInfoUpdated(tenantID uuid.UUID, email string, phoneNumber string, occurredAt time.Time) ContactInfoUpdated {
	return ContactInfoUpdated{
		TenantID:    tenantID,
		Email:       email,
		PhoneNumber: phoneNumber,
		OccurredAt:  domain.ToOccurredAt(occurredAt),
	}
}

func (e ContactInfoUpdated) IsEventType() string      { return ContactInfoUpdatedEventType }
func (e ContactInfoUpdated) HasOccurredAt() time.Time { return e.OccurredAt }

// Removed is the tombstone event for a tenant.
type Removed struct {
	TenantID   uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildRemoved creates a new Removed event.
func BuildRemoved(tenantID uuid.UUID, occurredAt time.Time) Removed {
	return Removed{TenantID: tenantID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e Removed) IsEventType() string      { return RemovedEventType }
func (e Removed) HasOccurredAt() time.Time { return e.OccurredAt }
