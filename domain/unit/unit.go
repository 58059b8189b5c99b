// Package unit implements the Unit aggregate: a rental property whose state
// is derived entirely from its ordered event history.
package unit

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/aggregate"
	"github.com/leaseworks/rentledger/domain"
)

// Kind is the aggregate kind identifier for units.
const Kind = "unit"

const (
	minBuiltInYear = 1800

	failureReasonNotLeasable = "unit is not leasable"
	failureReasonRemoved     = "unit has been removed"
	failureReasonNoAddress   = "unit address must not be empty"
)

// Unit is the aggregate root for a rental property. All fields are
// unexported: state changes only through commands that record events,
// so that state is always a pure function of the event history.
type Unit struct {
	aggregate.ChangeTracker

	address     string
	amenities   []string
	builtInYear int
	isLeasable  bool
	isLeased    bool
	removed     bool
	createdAt   time.Time
}

// Create registers a new rental unit. The creation event gets version 1.
func Create(unitID uuid.UUID, address string, amenities []string, builtInYear int, now time.Time) (*Unit, error) {
	if address == "" {
		return nil, domain.NewValidationError(failureReasonNoAddress)
	}

	if err := validateBuiltInYear(builtInYear, now); err != nil {
		return nil, err
	}

	u := &Unit{}
	u.raise(BuildCreated(unitID, address, slices.Clone(amenities), builtInYear, now))

	return u, nil
}

// FromHistory replays an event history into a Unit. The returned aggregate
// carries no pending events; its version equals the number of events folded.
func FromHistory(history domain.DomainEvents) (*Unit, error) {
	u, version, err := aggregate.Replay(&Unit{}, history, func(state *Unit, event domain.DomainEvent) (*Unit, error) {
		return state, state.apply(event)
	})
	if err != nil {
		return nil, err
	}

	u.Restore(u.ID(), version)

	return u, nil
}

// MarkAsLeased flags the unit as occupied. Fails when the unit has been
// withdrawn from the market: an unleasable unit cannot be leased.
func (u *Unit) MarkAsLeased(now time.Time) error {
	if u.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	if !u.isLeasable {
		return domain.NewValidationError(failureReasonNotLeasable)
	}

	u.raise(BuildMarkedAsLeased(u.ID(), now))

	return nil
}

// MarkAsAvailable flags the unit as no longer occupied.
func (u *Unit) MarkAsAvailable(now time.Time) error {
	if u.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	u.raise(BuildMarkedAsAvailable(u.ID(), now))

	return nil
}

// MarkAsUnleasable withdraws the unit from the rental market.
func (u *Unit) MarkAsUnleasable(now time.Time) error {
	if u.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	u.raise(BuildMarkedAsUnleasable(u.ID(), now))

	return nil
}

// MarkAsLeasable returns the unit to the rental market.
func (u *Unit) MarkAsLeasable(now time.Time) error {
	if u.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	u.raise(BuildMarkedAsLeasable(u.ID(), now))

	return nil
}

// UpdateAmenities replaces the unit's amenity list.
func (u *Unit) UpdateAmenities(amenities []string, now time.Time) error {
	if u.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	u.raise(BuildAmenitiesUpdated(u.ID(), slices.Clone(amenities), now))

	return nil
}

// UpdateAddress corrects the unit's address.
func (u *Unit) UpdateAddress(address string, now time.Time) error {
	if u.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	if address == "" {
		return domain.NewValidationError(failureReasonNoAddress)
	}

	u.raise(BuildAddressUpdated(u.ID(), address, now))

	return nil
}

// UpdateBuiltInYear sets the unit's construction year, which must fall
// within [1800, current year].
func (u *Unit) UpdateBuiltInYear(year int, now time.Time) error {
	if u.removed {
		return domain.NewValidationError(failureReasonRemoved)
	}

	if year == 0 {
		return domain.NewValidationErrorf("built-in year must be between %d and %d", minBuiltInYear, now.Year())
	}

	if err := validateBuiltInYear(year, now); err != nil {
		return err
	}

	u.raise(BuildBuiltInYearUpdated(u.ID(), year, now))

	return nil
}

// Remove records the tombstone event. The unit stops resolving via Get and
// listings, while its event history remains auditable.
func (u *Unit) Remove(now time.Time) error {
	if u.removed {
		return nil // already tombstoned, nothing to record
	}

	u.raise(BuildRemoved(u.ID(), now))

	return nil
}

// Address returns the unit's address.
func (u *Unit) Address() string {
	return u.address
}

// Amenities returns a copy of the unit's amenity list.
func (u *Unit) Amenities() []string {
	return slices.Clone(u.amenities)
}

// BuiltInYear returns the unit's construction year, 0 when unknown.
func (u *Unit) BuiltInYear() int {
	return u.builtInYear
}

// IsLeasable reports whether the unit is on the rental market.
func (u *Unit) IsLeasable() bool {
	return u.isLeasable
}

// IsLeased reports whether the unit is currently occupied.
func (u *Unit) IsLeased() bool {
	return u.isLeased
}

// IsRemoved reports whether the unit has been tombstoned.
func (u *Unit) IsRemoved() bool {
	return u.removed
}

// CreatedAt returns when the unit was registered.
func (u *Unit) CreatedAt() time.Time {
	return u.createdAt
}

// raise applies the event and records it as pending. It must only be called
// after all command preconditions have passed; apply never fails for events
// produced by the commands of this package.
func (u *Unit) raise(event domain.DomainEvent) {
	if err := u.apply(event); err != nil {
		panic(fmt.Sprintf("unit: applying self-produced event %s: %v", event.IsEventType(), err))
	}

	u.Record(event)
}

// apply folds a single event into the unit's state. It is the exhaustive
// match over the closed event set of this aggregate kind.
func (u *Unit) apply(event domain.DomainEvent) error {
	switch e := event.(type) {
	case Created:
		u.Restore(e.UnitID, u.Version())
		u.address = e.Address
		u.amenities = e.Amenities
		u.builtInYear = e.BuiltInYear
		u.isLeasable = true
		u.isLeased = false
		u.createdAt = e.OccurredAt

	case MarkedAsLeased:
		u.isLeased = true

	case MarkedAsAvailable:
		u.isLeased = false

	case MarkedAsUnleasable:
		u.isLeasable = false

	case MarkedAsLeasable:
		u.isLeasable = true

	case AmenitiesUpdated:
		u.amenities = e.Amenities

	case AddressUpdated:
		u.address = e.Address

	case BuiltInYearUpdated:
		u.builtInYear = e.BuiltInYear

	case Removed:
		u.removed = true

	default:
		return fmt.Errorf("unexpected event type %s for unit aggregate", event.IsEventType())
	}

	return nil
}

func validateBuiltInYear(year int, now time.Time) error {
	if year == 0 {
		return nil // unknown construction year is allowed at creation
	}

	if year < minBuiltInYear || year > now.Year() {
		return domain.NewValidationErrorf("built-in year must be between %d and %d", minBuiltInYear, now.Year())
	}

	return nil
}
