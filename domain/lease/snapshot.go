package lease

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/aggregate"
	"github.com/leaseworks/rentledger/domain"
)

// snapshotState mirrors the lease's derived state for snapshot serialization.
type snapshotState struct {
	LeaseID        uuid.UUID   `json:"lease_id"`
	UnitID         uuid.UUID   `json:"unit_id"`
	TenantIDs      []uuid.UUID `json:"tenant_ids"`
	StartDate      domain.Date `json:"start_date"`
	EndDate        domain.Date `json:"end_date"`
	SignedByTenant bool        `json:"signed_by_tenant"`
	SignedAt       time.Time   `json:"signed_at"`
	Removed        bool        `json:"removed"`
	GeneratedAt    time.Time   `json:"generated_at"`
}

// MarshalSnapshot serializes the lease's derived state for the snapshot store.
func (l *Lease) MarshalSnapshot() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(snapshotState{
		LeaseID:        l.ID(),
		UnitID:         l.unitID,
		TenantIDs:      l.tenantIDs,
		StartDate:      l.startDate,
		EndDate:        l.endDate,
		SignedByTenant: l.signedByTenant,
		SignedAt:       l.signedAt,
		Removed:        l.removed,
		GeneratedAt:    l.generatedAt,
	})
}

// FromSnapshot restores a lease from snapshot data taken at the given version.
func FromSnapshot(data []byte, version uint) (*Lease, error) {
	var state snapshotState
	if err := jsoniter.ConfigFastest.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	l := &Lease{
		unitID:         state.UnitID,
		tenantIDs:      state.TenantIDs,
		startDate:      state.StartDate,
		endDate:        state.EndDate,
		signedByTenant: state.SignedByTenant,
		signedAt:       state.SignedAt,
		removed:        state.Removed,
		generatedAt:    state.GeneratedAt,
	}
	l.Restore(state.LeaseID, version)

	return l, nil
}

// FoldTail folds events recorded after the snapshot into the lease,
// advancing its version by the number of events folded.
func (l *Lease) FoldTail(tail domain.DomainEvents) error {
	base := l.Version()

	_, folded, err := aggregate.Replay(l, tail, func(state *Lease, event domain.DomainEvent) (*Lease, error) {
		return state, state.apply(event)
	})
	if err != nil {
		return err
	}

	l.Restore(l.ID(), base+folded)

	return nil
}
