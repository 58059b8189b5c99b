package tenant_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaseworks/rentledger/domain"
	"github.com/leaseworks/rentledger/domain/tenant"
)

func Test_Create_Success(t *testing.T) {
	// arrange
	tenantID := uuid.New()
	now := time.Now()
	dateOfBirth := domain.BuildDate(1990, time.March, 14)

	// act
	created, err := tenant.Create(tenantID, "ID-12345", "Jane", "Miller", "jane@example.com", "+1-555-0147", dateOfBirth, now)

	// assert
	require.NoError(t, err)
	assert.Equal(t, tenantID, created.ID())
	assert.Equal(t, uint(1), created.Version())
	assert.Equal(t, "ID-12345", created.IdentificationNumber())
	assert.Equal(t, "Jane Miller", created.FullName())
	assert.Equal(t, dateOfBirth, created.DateOfBirth())
	assert.False(t, created.IsApproved())
}

func Test_Create_Fails_WhenIdentificationNumberIsEmpty(t *testing.T) {
	// arrange
	now := time.Now()

	// act
	created, err := tenant.Create(uuid.New(), "", "Jane", "Miller", "", "", domain.BuildDate(1990, time.March, 14), now)

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Nil(t, created)
}

func Test_Create_Fails_WhenNameIsIncomplete(t *testing.T) {
	// arrange
	now := time.Now()

	// act
	created, err := tenant.Create(uuid.New(), "ID-12345", "Jane", "", "", "", domain.BuildDate(1990, time.March, 14), now)

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Nil(t, created)
}

func Test_Create_Fails_WhenDateOfBirthIsMissing(t *testing.T) {
	// arrange
	now := time.Now()

	// act
	created, err := tenant.Create(uuid.New(), "ID-12345", "Jane", "Miller", "", "", domain.Date{}, now)

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Nil(t, created)
}

func Test_Approve_ThenDisapprove(t *testing.T) {
	// arrange
	subject := givenCreatedTenant(t)
	now := time.Now()

	// act + assert
	require.NoError(t, subject.Approve(now))
	assert.True(t, subject.IsApproved())

	require.NoError(t, subject.Disapprove(now))
	assert.False(t, subject.IsApproved())
	assert.Equal(t, uint(3), subject.Version())
}

func Test_UpdateContactInfo_PartialUpdateKeepsOtherField(t *testing.T) {
	// arrange
	subject := givenCreatedTenant(t)
	now := time.Now()

	// act - empty phone number leaves the stored one unchanged
	err := subject.UpdateContactInfo("jane.miller@example.com", "", now)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "jane.miller@example.com", subject.Email())
	assert.Equal(t, "+1-555-0147", subject.PhoneNumber())
}

func Test_UpdateContactInfo_Fails_WhenNothingToUpdate(t *testing.T) {
	// arrange
	subject := givenCreatedTenant(t)

	// act
	err := subject.UpdateContactInfo("", "", time.Now())

	// assert
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func Test_Remove_IsIdempotent(t *testing.T) {
	// arrange
	subject := givenCreatedTenant(t)
	now := time.Now()
	require.NoError(t, subject.Remove(now))
	versionAfterFirstRemove := subject.Version()

	// act
	err := subject.Remove(now)

	// assert
	require.NoError(t, err)
	assert.True(t, subject.IsRemoved())
	assert.Equal(t, versionAfterFirstRemove, subject.Version())
}

func Test_Commands_Fail_WhenTenantIsRemoved(t *testing.T) {
	// arrange
	subject := givenCreatedTenant(t)
	now := time.Now()
	require.NoError(t, subject.Remove(now))

	// act + assert
	assert.Error(t, subject.Approve(now))
	assert.Error(t, subject.Disapprove(now))
	assert.Error(t, subject.UpdateContactInfo("new@example.com", "", now))
}

func Test_FromHistory_RebuildsIdenticalState(t *testing.T) {
	// arrange
	subject := givenCreatedTenant(t)
	now := time.Now()
	require.NoError(t, subject.Approve(now))
	require.NoError(t, subject.UpdateContactInfo("", "+1-555-0199", now))
	history := subject.PendingEvents()

	// act
	replayed, err := tenant.FromHistory(history)

	// assert
	require.NoError(t, err)
	assert.Equal(t, subject.ID(), replayed.ID())
	assert.Equal(t, uint(3), replayed.Version())
	assert.Empty(t, replayed.PendingEvents())
	assert.Equal(t, subject.IdentificationNumber(), replayed.IdentificationNumber())
	assert.Equal(t, subject.Email(), replayed.Email())
	assert.Equal(t, subject.PhoneNumber(), replayed.PhoneNumber())
	assert.True(t, replayed.IsApproved())
}

func givenCreatedTenant(t *testing.T) *tenant.Tenant {
	t.Helper()

	subject, err := tenant.Create(
		uuid.New(),
		"ID-12345",
		"Jane",
		"Miller",
		"jane@example.com",
		"+1-555-0147",
		domain.BuildDate(1990, time.March, 14),
		time.Now(),
	)
	require.NoError(t, err)

	return subject
}
