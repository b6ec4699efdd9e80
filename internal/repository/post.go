package repository

import (
	"context"
	"errors"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts and their photos.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, includePrivate bool, limit, offset int) ([]models.Post, error)
	GetByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, error)
	GetPublicExcluding(ctx context.Context, excludedAuthorIDs []uint, limit int) ([]models.Post, error)
	UpdateWithPhotos(ctx context.Context, post *models.Post, photos []models.Photo) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func withPostAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("User")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.CacheAside(ctx, key, &post, cache.PostTTL, func() error {
		err := withPostAssociations(readDB(r.db).WithContext(ctx)).First(&post, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, includePrivate bool, limit, offset int) ([]models.Post, error) {
	q := withPostAssociations(readDB(r.db).WithContext(ctx)).
		Where("user_id = ?", userID)
	if !includePrivate {
		q = q.Where("visibility = ?", models.VisibilityPublic)
	}

	var posts []models.Post
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// GetByAuthors returns posts from the given authors regardless of
// visibility, newest first.
func (r *postRepository) GetByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}

	var posts []models.Post
	err := withPostAssociations(readDB(r.db).WithContext(ctx)).
		Where("user_id IN ?", authorIDs).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// GetPublicExcluding returns public posts from authors outside the excluded
// set, newest first.
func (r *postRepository) GetPublicExcluding(ctx context.Context, excludedAuthorIDs []uint, limit int) ([]models.Post, error) {
	q := withPostAssociations(readDB(r.db).WithContext(ctx)).
		Where("visibility = ?", models.VisibilityPublic)
	if len(excludedAuthorIDs) > 0 {
		q = q.Where("user_id NOT IN ?", excludedAuthorIDs)
	}

	var posts []models.Post
	err := q.Order("created_at DESC").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// UpdateWithPhotos saves the post's own columns and replaces its photo rows
// in a single transaction. Reputation is omitted; it moves only with votes.
func (r *postRepository) UpdateWithPhotos(ctx context.Context, post *models.Post, photos []models.Photo) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "UpdateWithPhotos", "posts")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Photos", "User", "reputation").Save(post).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Photo{}).Error; err != nil {
			return err
		}
		for i := range photos {
			photos[i].ID = 0
			photos[i].PostID = post.ID
		}
		if len(photos) > 0 {
			if err := tx.Create(&photos).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	post.Photos = photos
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	// Photos and votes cascade at the database level.
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
