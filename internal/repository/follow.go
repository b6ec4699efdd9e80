package repository

import (
	"context"
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	GetByPair(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	UpdateStatus(ctx context.Context, followID uint, status models.FollowStatus) error
	Delete(ctx context.Context, followID uint) error
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowings(ctx context.Context, userID uint) ([]models.User, error)
	GetPendingRequests(ctx context.Context, userID uint) ([]models.Follow, error)
	GetAcceptedFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Follow relationship already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetByPair looks up the directed edge follower -> following. Absence is not
// an error: it returns (nil, nil).
func (r *followRepository) GetByPair(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	err := readDB(r.db).WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &follow, nil
}

func (r *followRepository) UpdateStatus(ctx context.Context, followID uint, status models.FollowStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("id = ?", followID).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Follow", followID)
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followID uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Follow{}, followID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ? AND follows.status = ?", userID, models.FollowStatusAccepted).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) GetFollowings(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ? AND follows.status = ?", userID, models.FollowStatusAccepted).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// GetPendingRequests returns incoming requests awaiting the user's decision,
// with the requesting user preloaded.
func (r *followRepository) GetPendingRequests(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := readDB(r.db).WithContext(ctx).
		Preload("Follower").
		Where("following_id = ? AND status = ?", userID, models.FollowStatusPending).
		Order("created_at DESC").
		Find(&follows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

func (r *followRepository) GetAcceptedFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
