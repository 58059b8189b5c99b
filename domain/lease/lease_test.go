package lease_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaseworks/rentledger/domain"
	"github.com/leaseworks/rentledger/domain/lease"
)

func Test_Create_Success(t *testing.T) {
	// arrange
	leaseID := uuid.New()
	unitID := uuid.New()
	tenantID := uuid.New()
	startDate := domain.BuildDate(2026, time.September, 1)
	endDate := domain.BuildDate(2027, time.August, 31)

	// act
	l, err := lease.Create(leaseID, unitID, []uuid.UUID{tenantID}, startDate, endDate, time.Now())

	// assert
	require.NoError(t, err)
	assert.Equal(t, leaseID, l.ID())
	assert.Equal(t, uint(1), l.Version())
	assert.Equal(t, unitID, l.UnitID())
	assert.Equal(t, []uuid.UUID{tenantID}, l.TenantIDs())
	assert.Equal(t, startDate, l.StartDate())
	assert.Equal(t, endDate, l.EndDate())
	assert.False(t, l.IsSignedByTenant())
}

func Test_Create_Fails_WhenEndDateEqualsStartDate(t *testing.T) {
	// arrange
	sameDay := domain.BuildDate(2026, time.September, 1)

	// act
	l, err := lease.Create(uuid.New(), uuid.New(), []uuid.UUID{uuid.New()}, sameDay, sameDay, time.Now())

	// assert - the end date must be strictly after the start date
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Nil(t, l)
}

func Test_Create_Fails_WhenEndDateBeforeStartDate(t *testing.T) {
	// arrange
	startDate := domain.BuildDate(2026, time.September, 1)
	endDate := domain.BuildDate(2026, time.August, 1)

	// act
	l, err := lease.Create(uuid.New(), uuid.New(), []uuid.UUID{uuid.New()}, startDate, endDate, time.Now())

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Nil(t, l)
}

func Test_Create_Fails_WhenNoTenants(t *testing.T) {
	// arrange
	startDate := domain.BuildDate(2026, time.September, 1)
	endDate := domain.BuildDate(2027, time.August, 31)

	// act
	l, err := lease.Create(uuid.New(), uuid.New(), nil, startDate, endDate, time.Now())

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Nil(t, l)
}

func Test_Create_Fails_WhenUnitIDIsMissing(t *testing.T) {
	// arrange
	startDate := domain.BuildDate(2026, time.September, 1)
	endDate := domain.BuildDate(2027, time.August, 31)

	// act
	l, err := lease.Create(uuid.New(), uuid.Nil, []uuid.UUID{uuid.New()}, startDate, endDate, time.Now())

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Nil(t, l)
}

func Test_SignByTenant_Success(t *testing.T) {
	// arrange
	l := givenCreatedLease(t)
	now := time.Now()

	// act
	err := l.SignByTenant(now)

	// assert
	require.NoError(t, err)
	assert.True(t, l.IsSignedByTenant())
	assert.False(t, l.SignedAt().IsZero())
}

func Test_AddTenant_IsIdempotent(t *testing.T) {
	// arrange
	l := givenCreatedLease(t)
	now := time.Now()
	newTenantID := uuid.New()
	require.NoError(t, l.AddTenant(newTenantID, now))
	versionAfterFirstAdd := l.Version()

	// act - adding the same tenant again records nothing
	err := l.AddTenant(newTenantID, now)

	// assert
	require.NoError(t, err)
	assert.Equal(t, versionAfterFirstAdd, l.Version())
	assert.True(t, l.HasTenant(newTenantID))
	assert.Len(t, l.TenantIDs(), 2)
}

func Test_RemoveTenant_IsIdempotent(t *testing.T) {
	// arrange
	l := givenCreatedLease(t)
	now := time.Now()
	unknownTenantID := uuid.New()

	// act - removing a tenant who is not on the lease records nothing
	err := l.RemoveTenant(unknownTenantID, now)

	// assert
	require.NoError(t, err)
	assert.Equal(t, uint(1), l.Version())
}

func Test_RemoveTenant_Success(t *testing.T) {
	// arrange
	l := givenCreatedLease(t)
	now := time.Now()
	tenantID := l.TenantIDs()[0]

	// act
	err := l.RemoveTenant(tenantID, now)

	// assert
	require.NoError(t, err)
	assert.False(t, l.HasTenant(tenantID))
	assert.Empty(t, l.TenantIDs())
}

func Test_UpdateDates_Fails_WhenResultingRangeIsInvalid(t *testing.T) {
	// arrange
	l := givenCreatedLease(t)

	// act - moving the start date past the unchanged end date
	err := l.UpdateDates(domain.BuildDate(2027, time.September, 1), domain.Date{}, time.Now())

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func Test_UpdateDates_PartialUpdateKeepsOtherBound(t *testing.T) {
	// arrange
	l := givenCreatedLease(t)
	originalStart := l.StartDate()
	newEnd := domain.BuildDate(2028, time.August, 31)

	// act
	err := l.UpdateDates(domain.Date{}, newEnd, time.Now())

	// assert
	require.NoError(t, err)
	assert.Equal(t, originalStart, l.StartDate())
	assert.Equal(t, newEnd, l.EndDate())
}

func Test_IsActive_CoversTermBoundsInclusive(t *testing.T) {
	// arrange
	l := givenCreatedLease(t)
	require.NoError(t, l.SignByTenant(time.Now()))

	// act + assert - both term bounds count as active
	assert.True(t, l.IsActive(l.StartDate()))
	assert.True(t, l.IsActive(l.EndDate()))
	assert.True(t, l.IsActive(domain.BuildDate(2027, time.January, 15)))
	assert.False(t, l.IsActive(domain.BuildDate(2026, time.August, 31)))
	assert.False(t, l.IsActive(domain.BuildDate(2027, time.September, 1)))
}

func Test_IsActive_False_WhenUnsigned(t *testing.T) {
	// arrange
	l := givenCreatedLease(t)

	// act + assert - an unsigned lease is never active
	assert.False(t, l.IsActive(domain.BuildDate(2027, time.January, 15)))
}

func Test_Commands_Fail_WhenLeaseIsRemoved(t *testing.T) {
	// arrange
	l := givenCreatedLease(t)
	now := time.Now()
	require.NoError(t, l.Remove(now))

	// act + assert
	assert.Error(t, l.SignByTenant(now))
	assert.Error(t, l.AddTenant(uuid.New(), now))
	assert.Error(t, l.UpdateDates(domain.Date{}, domain.BuildDate(2028, time.August, 31), now))
}

func Test_FromHistory_RebuildsIdenticalState(t *testing.T) {
	// arrange
	l := givenCreatedLease(t)
	now := time.Now()
	addedTenantID := uuid.New()
	require.NoError(t, l.SignByTenant(now))
	require.NoError(t, l.AddTenant(addedTenantID, now))
	history := l.PendingEvents()

	// act
	replayed, err := lease.FromHistory(history)

	// assert
	require.NoError(t, err)
	assert.Equal(t, l.ID(), replayed.ID())
	assert.Equal(t, uint(3), replayed.Version())
	assert.Empty(t, replayed.PendingEvents())
	assert.Equal(t, l.UnitID(), replayed.UnitID())
	assert.Equal(t, l.TenantIDs(), replayed.TenantIDs())
	assert.True(t, replayed.IsSignedByTenant())
	assert.True(t, replayed.HasTenant(addedTenantID))
}

func givenCreatedLease(t *testing.T) *lease.Lease {
	t.Helper()

	l, err := lease.Create(
		uuid.New(),
		uuid.New(),
		[]uuid.UUID{uuid.New()},
		domain.BuildDate(2026, time.September, 1),
		domain.BuildDate(2027, time.August, 31),
		time.Now(),
	)
	require.NoError(t, err)

	return l
}
