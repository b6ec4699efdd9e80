// Package service implements the application's business logic.
package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
)

// FollowService owns the follow-edge state machine and answers all content
// access questions. An edge is a directed (follower -> followee) pair and is
// independent from its reverse.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

func (s *FollowService) resolveUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

// RequestFollow creates a PENDING edge from the follower to the target user.
func (s *FollowService) RequestFollow(ctx context.Context, followerID uint, targetUsername string) (*models.Follow, error) {
	target, err := s.resolveUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, models.NewBadRequestError("You cannot follow yourself")
	}

	existing, err := s.followRepo.GetByPair(ctx, followerID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.FollowStatusAccepted {
			return nil, models.NewConflictError("You are already following this user")
		}
		return nil, models.NewConflictError("Follow request already pending")
	}

	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: target.ID,
		Status:      models.FollowStatusPending,
	}
	// A racing duplicate insert is rejected by the unique pair index and
	// surfaces here as Conflict.
	if err := s.followRepo.Create(ctx, follow); err != nil {
		return nil, err
	}
	return follow, nil
}

// AcceptFollow flips the requester's PENDING edge toward the user to ACCEPTED.
func (s *FollowService) AcceptFollow(ctx context.Context, userID uint, requesterUsername string) (*models.Follow, error) {
	requester, err := s.resolveUsername(ctx, requesterUsername)
	if err != nil {
		return nil, err
	}

	edge, err := s.followRepo.GetByPair(ctx, requester.ID, userID)
	if err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, models.NewNotFoundError("Follow request", requesterUsername)
	}
	if edge.Status == models.FollowStatusAccepted {
		return nil, models.NewConflictError("Follow request already accepted")
	}

	if err := s.followRepo.UpdateStatus(ctx, edge.ID, models.FollowStatusAccepted); err != nil {
		return nil, err
	}
	edge.Status = models.FollowStatusAccepted
	return edge, nil
}

// RejectFollow deletes the requester's PENDING edge toward the user.
func (s *FollowService) RejectFollow(ctx context.Context, userID uint, requesterUsername string) error {
	requester, err := s.resolveUsername(ctx, requesterUsername)
	if err != nil {
		return err
	}

	edge, err := s.followRepo.GetByPair(ctx, requester.ID, userID)
	if err != nil {
		return err
	}
	if edge == nil {
		return models.NewNotFoundError("Follow request", requesterUsername)
	}
	if edge.Status == models.FollowStatusAccepted {
		return models.NewConflictError("Follow already accepted; remove the follower instead")
	}

	return s.followRepo.Delete(ctx, edge.ID)
}

// Unfollow deletes the caller's edge toward the target, whether it was still
// pending or already accepted. The removed edge is returned so callers can
// phrase the outcome.
func (s *FollowService) Unfollow(ctx context.Context, followerID uint, targetUsername string) (*models.Follow, error) {
	target, err := s.resolveUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, models.NewBadRequestError("You cannot unfollow yourself")
	}

	edge, err := s.followRepo.GetByPair(ctx, followerID, target.ID)
	if err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, models.NewConflictError("You are not following this user")
	}

	if err := s.followRepo.Delete(ctx, edge.ID); err != nil {
		return nil, err
	}
	return edge, nil
}

// RemoveFollower deletes an ACCEPTED edge pointing at the user.
func (s *FollowService) RemoveFollower(ctx context.Context, userID uint, followerUsername string) error {
	follower, err := s.resolveUsername(ctx, followerUsername)
	if err != nil {
		return err
	}

	edge, err := s.followRepo.GetByPair(ctx, follower.ID, userID)
	if err != nil {
		return err
	}
	if edge == nil {
		return models.NewNotFoundError("Follower", followerUsername)
	}
	if edge.Status == models.FollowStatusPending {
		return models.NewConflictError("Follow request not yet accepted")
	}

	return s.followRepo.Delete(ctx, edge.ID)
}

// CanAccess is the single authority on whether an actor may see content
// owned by another user. Anonymous actors have ID 0 and only see PUBLIC
// content.
func (s *FollowService) CanAccess(ctx context.Context, actorID, ownerID uint, visibility models.Visibility) (bool, error) {
	if visibility == models.VisibilityPublic {
		return true, nil
	}
	if actorID == 0 {
		return false, nil
	}
	if actorID == ownerID {
		return true, nil
	}

	edge, err := s.followRepo.GetByPair(ctx, actorID, ownerID)
	if err != nil {
		return false, err
	}
	return edge != nil && edge.Status == models.FollowStatusAccepted, nil
}

// GetFollowers lists the accepted followers of the named user.
func (s *FollowService) GetFollowers(ctx context.Context, username string) ([]models.User, error) {
	user, err := s.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.GetFollowers(ctx, user.ID)
}

// GetFollowings lists the users the named user follows with ACCEPTED status.
func (s *FollowService) GetFollowings(ctx context.Context, username string) ([]models.User, error) {
	user, err := s.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.GetFollowings(ctx, user.ID)
}

// GetPendingRequests lists incoming follow requests awaiting the user's
// decision.
func (s *FollowService) GetPendingRequests(ctx context.Context, userID uint) ([]models.Follow, error) {
	return s.followRepo.GetPendingRequests(ctx, userID)
}

// AcceptedFollowingIDs returns the IDs of users the actor follows with
// ACCEPTED status.
func (s *FollowService) AcceptedFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followRepo.GetAcceptedFollowingIDs(ctx, userID)
}
