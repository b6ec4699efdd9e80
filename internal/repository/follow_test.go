package repository

import (
	"context"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_CreateAndGetByPair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	follow := &models.Follow{FollowerID: alice.ID, FollowingID: bob.ID, Status: models.FollowStatusPending}
	require.NoError(t, repo.Create(ctx, follow))
	assert.NotZero(t, follow.ID)

	got, err := repo.GetByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.FollowStatusPending, got.Status)

	// The reverse direction is a different edge.
	reverse, err := repo.GetByPair(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, reverse)
}

func TestFollowRepository_CreateDuplicatePairConflicts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: alice.ID, FollowingID: bob.ID}))

	err := repo.Create(ctx, &models.Follow{FollowerID: alice.ID, FollowingID: bob.ID})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
}

func TestFollowRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	follow := &models.Follow{FollowerID: alice.ID, FollowingID: bob.ID, Status: models.FollowStatusPending}
	require.NoError(t, repo.Create(ctx, follow))

	require.NoError(t, repo.UpdateStatus(ctx, follow.ID, models.FollowStatusAccepted))

	got, err := repo.GetByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusAccepted, got.Status)

	err = repo.UpdateStatus(ctx, 9999, models.FollowStatusAccepted)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestFollowRepository_Listings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	// alice -> bob accepted, carol -> bob pending, bob -> carol accepted.
	require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: alice.ID, FollowingID: bob.ID, Status: models.FollowStatusAccepted}))
	require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: carol.ID, FollowingID: bob.ID, Status: models.FollowStatusPending}))
	require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: bob.ID, FollowingID: carol.ID, Status: models.FollowStatusAccepted}))

	followers, err := repo.GetFollowers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1, "pending requests are not followers")
	assert.Equal(t, "alice", followers[0].Username)

	followings, err := repo.GetFollowings(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followings, 1)
	assert.Equal(t, "carol", followings[0].Username)

	pending, err := repo.GetPendingRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "carol", pending[0].Follower.Username)

	ids, err := repo.GetAcceptedFollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)
}

func TestFollowRepository_DeleteCascadesWithUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	require.NoError(t, repo.Create(ctx, &models.Follow{FollowerID: alice.ID, FollowingID: bob.ID, Status: models.FollowStatusAccepted}))

	require.NoError(t, userRepo.Delete(ctx, bob.ID))

	got, err := repo.GetByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "edge should disappear with the followee")
}
