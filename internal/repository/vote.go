package repository

import (
	"context"
	"errors"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// VoteMutation describes one vote action as a single atomic unit: the change
// to the voter's vote row plus the reputation deltas it causes.
type VoteMutation struct {
	// Upsert, when non-nil, is the vote row to create or update in place.
	Upsert *models.Vote
	// DeleteVoteID, when non-zero, is the vote row to remove instead.
	DeleteVoteID uint

	PostID      uint
	AuthorID    uint
	PostDelta   int
	AuthorDelta int
}

// VoteRepository defines persistence operations for votes.
type VoteRepository interface {
	GetByUserAndPost(ctx context.Context, userID, postID uint) (*models.Vote, error)
	Apply(ctx context.Context, mutation VoteMutation) error
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository returns a new VoteRepository implementation.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// GetByUserAndPost returns the user's vote on the post, or (nil, nil) when
// they have not voted.
func (r *voteRepository) GetByUserAndPost(ctx context.Context, userID, postID uint) (*models.Vote, error) {
	var vote models.Vote
	err := readDB(r.db).WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &vote, nil
}

// Apply runs the whole mutation in one transaction so that the vote row and
// both reputation counters can never diverge.
func (r *voteRepository) Apply(ctx context.Context, mutation VoteMutation) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Apply", "votes")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch {
		case mutation.Upsert != nil:
			if err := tx.Save(mutation.Upsert).Error; err != nil {
				return err
			}
		case mutation.DeleteVoteID != 0:
			if err := tx.Delete(&models.Vote{}, mutation.DeleteVoteID).Error; err != nil {
				return err
			}
		}

		if mutation.PostDelta != 0 {
			err := tx.Model(&models.Post{}).
				Where("id = ?", mutation.PostID).
				Update("reputation", gorm.Expr("reputation + ?", mutation.PostDelta)).Error
			if err != nil {
				return err
			}
		}
		if mutation.AuthorDelta != 0 {
			err := tx.Model(&models.User{}).
				Where("id = ?", mutation.AuthorID).
				Update("reputation", gorm.Expr("reputation + ?", mutation.AuthorDelta)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Vote already recorded")
		}
		return models.NewInternalError(err)
	}

	cache.InvalidatePost(ctx, mutation.PostID)
	cache.InvalidateUser(ctx, mutation.AuthorID, "")
	return nil
}
