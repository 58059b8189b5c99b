package unit_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaseworks/rentledger/domain"
	"github.com/leaseworks/rentledger/domain/unit"
)

func Test_Create_Success(t *testing.T) {
	// arrange
	unitID := uuid.New()
	now := time.Now()

	// act
	u, err := unit.Create(unitID, "12 Elm Street, Springfield", []string{"parking", "balcony"}, 1985, now)

	// assert
	require.NoError(t, err)
	assert.Equal(t, unitID, u.ID())
	assert.Equal(t, uint(1), u.Version())
	assert.Equal(t, uint(0), u.BaseVersion())
	assert.Len(t, u.PendingEvents(), 1)
	assert.Equal(t, "12 Elm Street, Springfield", u.Address())
	assert.Equal(t, []string{"parking", "balcony"}, u.Amenities())
	assert.Equal(t, 1985, u.BuiltInYear())
	assert.True(t, u.IsLeasable())
	assert.False(t, u.IsLeased())
}

func Test_Create_Fails_WhenAddressIsEmpty(t *testing.T) {
	// arrange
	unitID := uuid.New()
	now := time.Now()

	// act
	u, err := unit.Create(unitID, "", nil, 1985, now)

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Nil(t, u)
}

func Test_Create_Fails_WhenBuiltInYearOutOfRange(t *testing.T) {
	// arrange
	unitID := uuid.New()
	now := time.Now()

	// act
	u, err := unit.Create(unitID, "12 Elm Street, Springfield", nil, now.Year()+1, now)

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Nil(t, u)
}

func Test_Create_Success_WhenBuiltInYearUnknown(t *testing.T) {
	// arrange
	unitID := uuid.New()
	now := time.Now()

	// act - year 0 means unknown and is allowed at creation
	u, err := unit.Create(unitID, "12 Elm Street, Springfield", nil, 0, now)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, u.BuiltInYear())
}

func Test_MarkAsLeased_Success(t *testing.T) {
	// arrange
	u := givenCreatedUnit(t)

	// act
	err := u.MarkAsLeased(time.Now())

	// assert
	require.NoError(t, err)
	assert.True(t, u.IsLeased())
	assert.Equal(t, uint(2), u.Version())
}

func Test_MarkAsLeased_Fails_WhenUnitIsUnleasable(t *testing.T) {
	// arrange
	u := givenCreatedUnit(t)
	now := time.Now()
	require.NoError(t, u.MarkAsUnleasable(now))

	// act
	err := u.MarkAsLeased(now)

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.False(t, u.IsLeased())
}

func Test_MarkAsLeasable_ReturnsUnitToMarket(t *testing.T) {
	// arrange
	u := givenCreatedUnit(t)
	now := time.Now()
	require.NoError(t, u.MarkAsUnleasable(now))

	// act
	err := u.MarkAsLeasable(now)

	// assert
	require.NoError(t, err)
	assert.True(t, u.IsLeasable())
	require.NoError(t, u.MarkAsLeased(now))
	assert.True(t, u.IsLeased())
}

func Test_MarkAsAvailable_ClearsLeasedFlag(t *testing.T) {
	// arrange
	u := givenCreatedUnit(t)
	now := time.Now()
	require.NoError(t, u.MarkAsLeased(now))

	// act
	err := u.MarkAsAvailable(now)

	// assert
	require.NoError(t, err)
	assert.False(t, u.IsLeased())
}

func Test_UpdateAddress_Fails_WhenAddressIsEmpty(t *testing.T) {
	// arrange
	u := givenCreatedUnit(t)

	// act
	err := u.UpdateAddress("", time.Now())

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func Test_UpdateBuiltInYear_Fails_WhenYearBefore1800(t *testing.T) {
	// arrange
	u := givenCreatedUnit(t)

	// act
	err := u.UpdateBuiltInYear(1799, time.Now())

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func Test_Remove_IsIdempotent(t *testing.T) {
	// arrange
	u := givenCreatedUnit(t)
	now := time.Now()
	require.NoError(t, u.Remove(now))
	versionAfterFirstRemove := u.Version()

	// act - removing again records nothing
	err := u.Remove(now)

	// assert
	require.NoError(t, err)
	assert.True(t, u.IsRemoved())
	assert.Equal(t, versionAfterFirstRemove, u.Version())
}

func Test_Commands_Fail_WhenUnitIsRemoved(t *testing.T) {
	// arrange
	u := givenCreatedUnit(t)
	now := time.Now()
	require.NoError(t, u.Remove(now))

	// act + assert
	assert.Error(t, u.MarkAsLeased(now))
	assert.Error(t, u.MarkAsAvailable(now))
	assert.Error(t, u.MarkAsUnleasable(now))
	assert.Error(t, u.MarkAsLeasable(now))
	assert.Error(t, u.UpdateAmenities([]string{"garden"}, now))
	assert.Error(t, u.UpdateAddress("1 New Street", now))
	assert.Error(t, u.UpdateBuiltInYear(1990, now))
}

func Test_FromHistory_RebuildsIdenticalState(t *testing.T) {
	// arrange
	u := givenCreatedUnit(t)
	now := time.Now()
	require.NoError(t, u.MarkAsLeased(now))
	require.NoError(t, u.UpdateAmenities([]string{"garden", "garage"}, now))
	history := u.PendingEvents()

	// act
	replayed, err := unit.FromHistory(history)

	// assert
	require.NoError(t, err)
	assert.Equal(t, u.ID(), replayed.ID())
	assert.Equal(t, uint(3), replayed.Version())
	assert.Equal(t, uint(3), replayed.BaseVersion())
	assert.Empty(t, replayed.PendingEvents())
	assert.Equal(t, u.Address(), replayed.Address())
	assert.Equal(t, u.Amenities(), replayed.Amenities())
	assert.Equal(t, u.IsLeased(), replayed.IsLeased())
	assert.Equal(t, u.IsLeasable(), replayed.IsLeasable())
}

func Test_FromHistory_IsDeterministic(t *testing.T) {
	// arrange
	u := givenCreatedUnit(t)
	now := time.Now()
	require.NoError(t, u.MarkAsUnleasable(now))
	require.NoError(t, u.MarkAsLeasable(now))
	require.NoError(t, u.MarkAsLeased(now))
	history := u.PendingEvents()

	// act
	first, err1 := unit.FromHistory(history)
	second, err2 := unit.FromHistory(history)

	// assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first.Version(), second.Version())
	assert.Equal(t, first.Address(), second.Address())
	assert.Equal(t, first.IsLeased(), second.IsLeased())
	assert.Equal(t, first.IsLeasable(), second.IsLeasable())
	assert.Equal(t, first.IsRemoved(), second.IsRemoved())
}

func givenCreatedUnit(t *testing.T) *unit.Unit {
	t.Helper()

	u, err := unit.Create(uuid.New(), "12 Elm Street, Springfield", []string{"parking"}, 1985, time.Now())
	require.NoError(t, err)

	return u
}
