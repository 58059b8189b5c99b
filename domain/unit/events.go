package unit

import (
	"time"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/domain"
)

// Event type identifiers for the Unit aggregate. Together they form the
// closed set of state transitions a Unit can undergo; the fold function in
// this package matches on them exhaustively.
const (
	CreatedEventType            = "UnitCreated"
	MarkedAsLeasedEventType     = "UnitMarkedAsLeased"
	MarkedAsAvailableEventType  = "UnitMarkedAsAvailable"
	MarkedAsUnleasableEventType = "UnitMarkedAsUnleasable"
	MarkedAsLeasableEventType   = "UnitMarkedAsLeasable"
	AmenitiesUpdatedEventType   = "UnitAmenitiesUpdated"
	AddressUpdatedEventType     = "UnitAddressUpdated"
	BuiltInYearUpdatedEventType = "UnitBuiltInYearUpdated"
	RemovedEventType            = "UnitRemoved"
)

// Created represents that a rental unit was registered.
type Created struct {
	UnitID      uuid.UUID
	Address     string
	Amenities   []string
	BuiltInYear int // 0 when unknown
	OccurredAt  domain.OccurredAtTS
}

// BuildCreated creates a new Created event.
func BuildCreated(unitID uuid.UUID, address string, amenities []string, builtInYear int, occurredAt time.Time) Created {
	return Created{
		UnitID:      unitID,
		Address:     address,
		Amenities:   amenities,
		BuiltInYear: builtInYear,
		OccurredAt:  domain.ToOccurredAt(occurredAt),
	}
}

func (e Created) IsEventType() string      { return CreatedEventType }
func (e Created) HasOccurredAt() time.Time { return e.OccurredAt }

// MarkedAsLeased represents that the unit is now occupied by an active lease.
type MarkedAsLeased struct {
	UnitID     uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildMarkedAsLeased creates a new MarkedAsLeased event.
func BuildMarkedAsLeased(unitID uuid.UUID, occurredAt time.Time) MarkedAsLeased {
	return MarkedAsLeased{UnitID: unitID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e MarkedAsLeased) IsEventType() string      { return MarkedAsLeasedEventType }
func (e MarkedAsLeased) HasOccurredAt() time.Time { return e.OccurredAt }

// MarkedAsAvailable represents that the unit is no longer occupied.
type MarkedAsAvailable struct {
	UnitID     uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildMarkedAsAvailable creates a new MarkedAsAvailable event.
func BuildMarkedAsAvailable(unitID uuid.UUID, occurredAt time.Time) MarkedAsAvailable {
	return MarkedAsAvailable{UnitID: unitID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e MarkedAsAvailable) IsEventType() string      { return MarkedAsAvailableEventType }
func (e MarkedAsAvailable) HasOccurredAt() time.Time { return e.OccurredAt }

// MarkedAsUnleasable represents that the unit was withdrawn from the rental market.
type MarkedAsUnleasable struct {
	UnitID     uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildMarkedAsUnleasable creates a new MarkedAsUnleasable event.
func BuildMarkedAsUnleasable(unitID uuid.UUID, occurredAt time.Time) MarkedAsUnleasable {
	return MarkedAsUnleasable{UnitID: unitID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e MarkedAsUnleasable) IsEventType() string      { return MarkedAsUnleasableEventType }
func (e MarkedAsUnleasable) HasOccurredAt() time.Time { return e.OccurredAt }

// MarkedAsLeasable represents that the unit was returned to the rental market.
type MarkedAsLeasable struct {
	UnitID     uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildMarkedAsLeasable creates a new MarkedAsLeasable event.
func BuildMarkedAsLeasable(unitID uuid.UUID, occurredAt time.Time) MarkedAsLeasable {
	return MarkedAsLeasable{UnitID: unitID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e MarkedAsLeasable) IsEventType() string      { return MarkedAsLeasableEventType }
func (e MarkedAsLeasable) HasOccurredAt() time.Time { return e.OccurredAt }

// AmenitiesUpdated represents that the unit's amenity list was replaced.
type AmenitiesUpdated struct {
	UnitID     uuid.UUID
	Amenities  []string
	OccurredAt domain.OccurredAtTS
}

// BuildAmenitiesUpdated creates a new AmenitiesUpdated event.
func BuildAmenitiesUpdated(unitID uuid.UUID, amenities []string, occurredAt time.Time) AmenitiesUpdated {
	return AmenitiesUpdated{UnitID: unitID, Amenities: amenities, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e AmenitiesUpdated) IsEventType() string      { return AmenitiesUpdatedEventType }
func (e AmenitiesUpdated) HasOccurredAt() time.Time { return e.OccurredAt }

// AddressUpdated represents that the unit's address was corrected.
type AddressUpdated struct {
	UnitID     uuid.UUID
	Address    string
	OccurredAt domain.OccurredAtTS
}

// BuildAddressUpdated creates a new AddressUpdated event.
func BuildAddressUpdated(unitID uuid.UUID, address string, occurredAt time.Time) AddressUpdated {
	return AddressUpdated{UnitID: unitID, Address: address, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e AddressUpdated) IsEventType() string      { return AddressUpdatedEventType }
func (e AddressUpdated) HasOccurredAt() time.Time { return e.OccurredAt }

// BuiltInYearUpdated represents that the unit's construction year was set.
type BuiltInYearUpdated struct {
	UnitID      uuid.UUID
	BuiltInYear int
	OccurredAt  domain.OccurredAtTS
}

// BuildBuiltInYearUpdated creates a new BuiltInYearUpdated event.
func BuildBuiltInYearUpdated(unitID uuid.UUID, builtInYear int, occurredAt time.Time) BuiltInYearUpdated {
	return BuiltInYearUpdated{UnitID: unitID, BuiltInYear: builtInYear, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e BuiltInYearUpdated) IsEventType() string      { return BuiltInYearUpdatedEventType }
func (e BuiltInYearUpdated) HasOccurredAt() time.Time { return e.OccurredAt }

// Removed is the tombstone event: the unit is withdrawn for good and no
// longer resolvable, while its history stays auditable.
type Removed struct {
	UnitID     uuid.UUID
	OccurredAt domain.OccurredAtTS
}

// BuildRemoved creates a new Removed event.
func BuildRemoved(unitID uuid.UUID, occurredAt time.Time) Removed {
	return Removed{UnitID: unitID, OccurredAt: domain.ToOccurredAt(occurredAt)}
}

func (e Removed) IsEventType() string      { return RemovedEventType }
func (e Removed) HasOccurredAt() time.Time { return e.OccurredAt }
