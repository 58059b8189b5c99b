package tenant

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/aggregate"
	"github.com/leaseworks/rentledger/domain"
)

// snapshotState mirrors the tenant's derived state for snapshot serialization.
type snapshotState struct {
	TenantID             uuid.UUID   `json:"tenant_id"`
	IdentificationNumber string      `json:"identification_number"`
	FirstName            string      `json:"first_name"`
	LastName             string      `json:"last_name"`
	Email                string      `json:"email"`
	PhoneNumber          string      `json:"phone_number"`
	DateOfBirth          domain.Date `json:"date_of_birth"`
	IsApproved           bool        `json:"is_approved"`
	Removed              bool        `json:"removed"`
	CreatedAt            time.Time   `json:"created_at"`
}

// MarshalSnapshot serializes the tenant's derived state for the snapshot store.
func (t *Tenant) MarshalSnapshot() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(snapshotState{
		TenantID:             t.ID(),
		IdentificationNumber: t.identificationNumber,
		FirstName:            t.firstName,
		LastName:             t.lastName,
		Email:                t.email,
		PhoneNumber:          t.phoneNumber,
		DateOfBirth:          t.dateOfBirth,
		IsApproved:           t.isApproved,
		Removed:              t.removed,
		CreatedAt:            t.createdAt,
	})
}

// FromSnapshot restores a tenant from snapshot data taken at the given version.
func FromSnapshot(data []byte, version uint) (*Tenant, error) {
	var state snapshotState
	if err := jsoniter.ConfigFastest.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	t := &Tenant{
		identificationNumber: state.IdentificationNumber,
		firstName:            state.FirstName,
		lastName:             state.LastName,
		email:                state.Email,
		phoneNumber:          state.PhoneNumber,
		dateOfBirth:          state.DateOfBirth,
		isApproved:           state.IsApproved,
		removed:              state.Removed,
		createdAt:            state.CreatedAt,
	}
	t.Restore(state.TenantID, version)

	return t, nil
}

// FoldTail folds events recorded after the snapshot into the tenant,
// advancing its version by the number of events folded.
func (t *Tenant) FoldTail(tail domain.DomainEvents) error {
	base := t.Version()

	_, folded, err := aggregate.Replay(t, tail, func(state *Tenant, event domain.DomainEvent) (*Tenant, error) {
		return state, state.apply(event)
	})
	if err != nil {
		return err
	}

	t.Restore(t.ID(), base+folded)

	return nil
}
