package unit

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/aggregate"
	"github.com/leaseworks/rentledger/domain"
)

// snapshotState mirrors the unit's derived state for snapshot serialization.
// Snapshots are an optimization only; a unit restored from a snapshot plus
// the event tail beyond it must equal a full replay.
type snapshotState struct {
	UnitID      uuid.UUID `json:"unit_id"`
	Address     string    `json:"address"`
	Amenities   []string  `json:"amenities"`
	BuiltInYear int       `json:"built_in_year"`
	IsLeasable  bool      `json:"is_leasable"`
	IsLeased    bool      `json:"is_leased"`
	Removed     bool      `json:"removed"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarshalSnapshot serializes the unit's derived state for the snapshot store.
func (u *Unit) MarshalSnapshot() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(snapshotState{
		UnitID:      u.ID(),
		Address:     u.address,
		Amenities:   u.amenities,
		BuiltInYear: u.builtInYear,
		IsLeasable:  u.isLeasable,
		IsLeased:    u.isLeased,
		Removed:     u.removed,
		CreatedAt:   u.createdAt,
	})
}

// FromSnapshot restores a unit from snapshot data taken at the given version.
func FromSnapshot(data []byte, version uint) (*Unit, error) {
	var state snapshotState
	if err := jsoniter.ConfigFastest.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	u := &Unit{
		address:     state.Address,
		amenities:   state.Amenities,
		builtInYear: state.BuiltInYear,
		isLeasable:  state.IsLeasable,
		isLeased:    state.IsLeased,
		removed:     state.Removed,
		createdAt:   state.CreatedAt,
	}
	u.Restore(state.UnitID, version)

	return u, nil
}

// FoldTail folds events recorded after the snapshot into the unit,
// advancing its version by the number of events folded.
func (u *Unit) FoldTail(tail domain.DomainEvents) error {
	base := u.Version()

	_, folded, err := aggregate.Replay(u, tail, func(state *Unit, event domain.DomainEvent) (*Unit, error) {
		return state, state.apply(event)
	})
	if err != nil {
		return err
	}

	u.Restore(u.ID(), base+folded)

	return nil
}
