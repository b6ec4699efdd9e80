package service

import (
	"context"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
)

type voteAction string

const (
	actionUpvote voteAction = "upvote"
	actionDown   voteAction = "downvote"
	actionRemove voteAction = "remove"
)

type transitionKey struct {
	current models.VoteType
	action  voteAction
}

type transition struct {
	postDelta   int
	authorDelta int
	result      models.VoteType
}

// voteTransitions encodes every legal (current state, action) pair with the
// reputation deltas it causes. The author delta is suppressed later when the
// voter is the post's own author. Combinations absent from the table are
// rejected before lookup.
var voteTransitions = map[transitionKey]transition{
	{models.VoteTypeNone, actionUpvote}: {postDelta: +1, authorDelta: +1, result: models.VoteTypeUp},
	{models.VoteTypeNone, actionDown}:   {postDelta: -1, authorDelta: 0, result: models.VoteTypeDown},
	{models.VoteTypeDown, actionUpvote}: {postDelta: +2, authorDelta: +1, result: models.VoteTypeUp},
	{models.VoteTypeUp, actionDown}:     {postDelta: -2, authorDelta: -1, result: models.VoteTypeDown},
	{models.VoteTypeUp, actionRemove}:   {postDelta: -1, authorDelta: -1, result: models.VoteTypeNone},
	{models.VoteTypeDown, actionRemove}: {postDelta: +1, authorDelta: 0, result: models.VoteTypeNone},
}

// VoteService maintains the one-vote-per-(user, post) ledger and the
// reputation counters it drives.
type VoteService struct {
	voteRepo repository.VoteRepository
	postRepo repository.PostRepository
	follows  *FollowService
}

// NewVoteService returns a new VoteService.
func NewVoteService(voteRepo repository.VoteRepository, postRepo repository.PostRepository, follows *FollowService) *VoteService {
	return &VoteService{
		voteRepo: voteRepo,
		postRepo: postRepo,
		follows:  follows,
	}
}

// Upvote records an upvote by the actor on the post.
func (s *VoteService) Upvote(ctx context.Context, actorID, postID uint) (models.VoteType, error) {
	return s.apply(ctx, actorID, postID, actionUpvote)
}

// Downvote records a downvote by the actor on the post.
func (s *VoteService) Downvote(ctx context.Context, actorID, postID uint) (models.VoteType, error) {
	return s.apply(ctx, actorID, postID, actionDown)
}

// RemoveVote withdraws the actor's existing vote on the post.
func (s *VoteService) RemoveVote(ctx context.Context, actorID, postID uint) (models.VoteType, error) {
	return s.apply(ctx, actorID, postID, actionRemove)
}

func (s *VoteService) apply(ctx context.Context, actorID, postID uint, action voteAction) (models.VoteType, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return models.VoteTypeNone, err
	}

	allowed, err := s.follows.CanAccess(ctx, actorID, post.UserID, post.Visibility)
	if err != nil {
		return models.VoteTypeNone, err
	}
	if !allowed {
		return models.VoteTypeNone, models.NewUnauthorizedError("You do not have access to this post")
	}

	existing, err := s.voteRepo.GetByUserAndPost(ctx, actorID, postID)
	if err != nil {
		return models.VoteTypeNone, err
	}
	current := models.VoteTypeNone
	if existing != nil {
		current = existing.Type
	}

	switch {
	case current == models.VoteTypeUp && action == actionUpvote:
		return models.VoteTypeNone, models.NewConflictError("You have already upvoted this post")
	case current == models.VoteTypeDown && action == actionDown:
		return models.VoteTypeNone, models.NewConflictError("You have already downvoted this post")
	case current == models.VoteTypeNone && action == actionRemove:
		return models.VoteTypeNone, models.NewNotFoundError("Vote", postID)
	}

	t := voteTransitions[transitionKey{current: current, action: action}]

	mutation := repository.VoteMutation{
		PostID:      post.ID,
		AuthorID:    post.UserID,
		PostDelta:   t.postDelta,
		AuthorDelta: t.authorDelta,
	}
	if actorID == post.UserID {
		mutation.AuthorDelta = 0
	}

	switch {
	case t.result == models.VoteTypeNone:
		mutation.DeleteVoteID = existing.ID
	case existing == nil:
		mutation.Upsert = &models.Vote{UserID: actorID, PostID: post.ID, Type: t.result}
	default:
		existing.Type = t.result
		mutation.Upsert = existing
	}

	// A racing duplicate insert trips the unique (user, post) index inside
	// the transaction and comes back as Conflict.
	if err := s.voteRepo.Apply(ctx, mutation); err != nil {
		return models.VoteTypeNone, err
	}

	middleware.VoteTransitions.WithLabelValues(string(action)).Inc()
	return t.result, nil
}
