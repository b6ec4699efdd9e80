package repository

import (
	"context"
	"errors"

	"agora/internal/cache"
	"agora/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetForUpdate(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID serves reads through the cache. The cached JSON never carries the
// password hash, so the returned copy must not be saved back wholesale; write
// paths start from GetForUpdate.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.CacheAside(ctx, key, &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetForUpdate reads the full row from the primary database, bypassing both
// the cache and the read replica.
func (r *userRepository) GetForUpdate(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByUsername caches positive lookups only; a miss always goes to the
// database, so the key never has to encode absence.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	key := cache.UsernameKey(username)

	if found, err := cache.GetJSON(ctx, key, &user); err == nil && found {
		return &user, nil
	}
	if err := readDB(r.db).WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	_ = cache.SetJSON(ctx, key, user, cache.UserTTL)
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Update writes the profile columns only. Reputation belongs to the vote
// ledger and is never written here, so a stale read cannot roll it back. An
// empty password means "unchanged"; the column is non-null and always hashed.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	columns := []string{"name", "username", "email", "profile_picture"}
	if user.Password != "" {
		columns = append(columns, "password")
	}

	err := r.db.WithContext(ctx).Model(user).Select(columns).Updates(user).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID, user.Username)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	// Dependent rows (posts, photos, follows, votes) go with the user via
	// ON DELETE CASCADE foreign keys.
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id, "")
	return nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	err := readDB(r.db).WithContext(ctx).
		Where("LOWER(username) LIKE LOWER(?) OR LOWER(name) LIKE LOWER(?)", pattern, pattern).
		Order("username ASC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
