package service

import (
	"context"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/storage"
	"agora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const maxSearchResults = 25

// UpdateProfileInput is the validated payload for editing one's own profile.
// Nil pointer fields are left unchanged.
type UpdateProfileInput struct {
	Name     *string
	Username *string
	Email    *string
	Password *string
}

// UserService provides profile and directory operations.
type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	store    storage.ObjectStore
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository, store storage.ObjectStore) *UserService {
	return &UserService{
		userRepo: userRepo,
		postRepo: postRepo,
		store:    store,
	}
}

// GetOwnProfile returns the authenticated user's profile.
func (s *UserService) GetOwnProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetUserByUsername returns the named user's public profile.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

// UpdateOwnProfile applies the requested profile changes. The read-modify-write
// starts from an uncached row so no cached copy ever reaches the persistence
// layer.
func (s *UserService) UpdateOwnProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldUsername := user.Username

	if in.Username != nil && *in.Username != user.Username {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewBadRequestError(err.Error())
		}
		existing, err := s.userRepo.GetByUsername(ctx, *in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewConflictError("Username already taken")
		}
		user.Username = *in.Username
	}

	if in.Email != nil && *in.Email != user.Email {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewBadRequestError(err.Error())
		}
		user.Email = *in.Email
	}

	if in.Name != nil {
		user.Name = *in.Name
	}

	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewBadRequestError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	// The unique indexes still arbitrate a racing username or email change.
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if oldUsername != user.Username {
		cache.Invalidate(ctx, cache.UsernameKey(oldUsername))
	}
	return user, nil
}

// DeleteOwnProfile removes the account. Photo objects of the user's posts
// are deleted from the store first; the database rows then cascade away with
// the user.
func (s *UserService) DeleteOwnProfile(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return err
	}

	const batch = 100
	for offset := 0; ; offset += batch {
		posts, err := s.postRepo.GetByUserID(ctx, userID, true, batch, offset)
		if err != nil {
			return err
		}
		for _, post := range posts {
			for _, photo := range post.Photos {
				if err := s.store.Delete(ctx, photo.URL); err != nil {
					return models.NewServiceUnavailableError(err)
				}
			}
		}
		if len(posts) < batch {
			break
		}
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.UsernameKey(user.Username))
	return nil
}

// SearchUsers finds users whose username or display name contains the query.
// An empty query matches nobody.
func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	if query == "" {
		return []models.User{}, nil
	}
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.Search(ctx, query, limit, offset)
}
