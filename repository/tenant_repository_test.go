package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaseworks/rentledger/domain"
	"github.com/leaseworks/rentledger/domain/tenant"
	"github.com/leaseworks/rentledger/eventstore/memoryengine"
	"github.com/leaseworks/rentledger/repository"
)

func newTenantRepository(t *testing.T, options ...repository.Option) *repository.TenantRepository {
	t.Helper()

	repo, err := repository.NewTenantRepository(
		memoryengine.NewEventStore(),
		memoryengine.NewNotificationLog(),
		options...)
	require.NoError(t, err)

	return repo
}

func Test_TenantRepository_CreateAndGet(t *testing.T) {
	// arrange
	ctx := context.Background()
	repo := newTenantRepository(t)

	created := givenTenant(t, "ID-10001", "Jane", "Miller")
	require.NoError(t, repo.Create(ctx, created))

	// act
	loaded, found, err := repo.Get(ctx, created.ID())

	// assert
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID(), loaded.ID())
	assert.Equal(t, "ID-10001", loaded.IdentificationNumber())
	assert.Equal(t, "Jane Miller", loaded.FullName())
	assert.False(t, loaded.IsApproved())
}

func Test_TenantRepository_ByIdentificationNumber(t *testing.T) {
	// arrange
	ctx := context.Background()
	repo := newTenantRepository(t)

	wanted := givenTenant(t, "ID-10001", "Jane", "Miller")
	other := givenTenant(t, "ID-10002", "Tom", "Baker")
	require.NoError(t, repo.Create(ctx, wanted))
	require.NoError(t, repo.Create(ctx, other))

	// act
	found, ok, err := repo.ByIdentificationNumber(ctx, "ID-10001")

	// assert
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, wanted.ID(), found.ID())
}

func Test_TenantRepository_ByIdentificationNumber_UnknownNumberReportsNotFound(t *testing.T) {
	// arrange
	ctx := context.Background()
	repo := newTenantRepository(t)
	require.NoError(t, repo.Create(ctx, givenTenant(t, "ID-10001", "Jane", "Miller")))

	// act
	found, ok, err := repo.ByIdentificationNumber(ctx, "ID-99999")

	// assert
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, found)
}

func Test_TenantRepository_ApprovedTenants(t *testing.T) {
	// arrange
	ctx := context.Background()
	repo := newTenantRepository(t)

	approved := givenTenant(t, "ID-10001", "Jane", "Miller")
	pending := givenTenant(t, "ID-10002", "Tom", "Baker")
	revoked := givenTenant(t, "ID-10003", "Sue", "Clarke")
	require.NoError(t, repo.Create(ctx, approved))
	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.Create(ctx, revoked))

	now := time.Now()

	loaded, _, err := repo.Get(ctx, approved.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.Approve(now))
	require.NoError(t, repo.Save(ctx, loaded))

	loaded, _, err = repo.Get(ctx, revoked.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.Approve(now))
	require.NoError(t, loaded.Disapprove(now))
	require.NoError(t, repo.Save(ctx, loaded))

	// act
	approvedTenants, listErr := repo.ApprovedTenants(ctx)

	// assert
	require.NoError(t, listErr)
	require.Len(t, approvedTenants, 1)
	assert.Equal(t, approved.ID(), approvedTenants[0].ID())
}

func Test_TenantRepository_All_SkipsRemovedTenants(t *testing.T) {
	// arrange
	ctx := context.Background()
	repo := newTenantRepository(t)

	removed := givenTenant(t, "ID-10001", "Jane", "Miller")
	kept := givenTenant(t, "ID-10002", "Tom", "Baker")
	require.NoError(t, repo.Create(ctx, removed))
	require.NoError(t, repo.Create(ctx, kept))

	loaded, _, err := repo.Get(ctx, removed.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.Remove(time.Now()))
	require.NoError(t, repo.Save(ctx, loaded))

	// act
	tenants, listErr := repo.All(ctx)

	// assert
	require.NoError(t, listErr)
	require.Len(t, tenants, 1)
	assert.Equal(t, kept.ID(), tenants[0].ID())
}

func givenTenant(t *testing.T, identificationNumber string, firstName string, lastName string) *tenant.Tenant {
	t.Helper()

	created, err := tenant.Create(
		uuid.New(),
		identificationNumber,
		firstName,
		lastName,
		"someone@example.com",
		"+1-555-0147",
		domain.BuildDate(1990, time.March, 14),
		time.Now(),
	)
	require.NoError(t, err)

	return created
}
