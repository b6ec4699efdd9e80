package service

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/storage"
)

const (
	// DefaultFeedLimit is the page size when the caller does not specify one.
	DefaultFeedLimit = 10
	// MaxFeedLimit caps the page size a caller may request.
	MaxFeedLimit = 50
	// PublicFeedLimit is the fixed page size for unauthenticated feed reads.
	PublicFeedLimit = 20
)

// PhotoUpload carries one uploaded photo's bytes and declared content type.
type PhotoUpload struct {
	Content     []byte
	ContentType string
}

// CreatePostInput is the validated payload for creating a post.
type CreatePostInput struct {
	Description string
	Latitude    float64
	Longitude   float64
	Visibility  models.Visibility
	Photos      []PhotoUpload
}

// UpdatePostInput is the validated payload for editing a post. Nil pointer
// fields are left unchanged.
type UpdatePostInput struct {
	Description     *string
	Visibility      *models.Visibility
	RemovePhotoURLs []string
	AddPhotos       []PhotoUpload
}

// PostService owns post lifecycle and the visibility-gated feed. Every read
// goes through FollowService.CanAccess; no access logic lives here.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	follows  *FollowService
	store    storage.ObjectStore
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, follows *FollowService, store storage.ObjectStore) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		follows:  follows,
		store:    store,
	}
}

func (s *PostService) putPhoto(ctx context.Context, photo PhotoUpload) (string, error) {
	url, err := s.store.Put(ctx, photo.Content, photo.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return "", models.NewBadRequestError("One of the uploaded files is not a valid image")
		}
		if errors.Is(err, storage.ErrTooLarge) {
			return "", models.NewBadRequestError("One of the uploaded files is too large")
		}
		return "", models.NewServiceUnavailableError(err)
	}
	middleware.PhotoUploads.Inc()
	return url, nil
}

// CreatePost stores the photos and persists the post with its photo records.
// Photo upload order defines display order.
func (s *PostService) CreatePost(ctx context.Context, actorID uint, in CreatePostInput) (*models.Post, error) {
	if len(in.Photos) < models.MinPostPhotos || len(in.Photos) > models.MaxPostPhotos {
		return nil, models.NewBadRequestError(fmt.Sprintf("A post needs between %d and %d photos", models.MinPostPhotos, models.MaxPostPhotos))
	}
	if len(in.Description) > models.MaxPostDescriptionLen {
		return nil, models.NewBadRequestError("Description is too long")
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if !in.Visibility.Valid() {
		return nil, models.NewBadRequestError("Visibility must be PUBLIC or PRIVATE")
	}

	photos := make([]models.Photo, 0, len(in.Photos))
	for i, upload := range in.Photos {
		url, err := s.putPhoto(ctx, upload)
		if err != nil {
			// Earlier uploads may be orphaned; a later-failing DB write has
			// the same accepted failure mode.
			return nil, err
		}
		photos = append(photos, models.Photo{URL: url, Position: i})
	}

	post := &models.Post{
		UserID:      actorID,
		Description: in.Description,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Visibility:  in.Visibility,
		Photos:      photos,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost returns the post if the actor may see it.
func (s *PostService) GetPost(ctx context.Context, actorID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.follows.CanAccess(ctx, actorID, post.UserID, post.Visibility)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewUnauthorizedError("You do not have access to this post")
	}
	return post, nil
}

// GetUserPosts returns the named user's posts; PRIVATE posts are included
// only for the owner and accepted followers.
func (s *PostService) GetUserPosts(ctx context.Context, actorID uint, ownerUsername string, limit, offset int) ([]models.Post, error) {
	owner, err := s.userRepo.GetByUsername(ctx, ownerUsername)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, models.NewNotFoundError("User", ownerUsername)
	}

	includePrivate, err := s.follows.CanAccess(ctx, actorID, owner.ID, models.VisibilityPrivate)
	if err != nil {
		return nil, err
	}

	limit, offset = clampPage(limit, offset)
	return s.postRepo.GetByUserID(ctx, owner.ID, includePrivate, limit, offset)
}

// GetFeed assembles the two-tier feed: first the most recent posts from
// accepted followees, then, if the page is short, recent PUBLIC posts from
// everyone else. Tier order is never re-sorted across the boundary.
func (s *PostService) GetFeed(ctx context.Context, actorID uint, page, limit int) ([]models.Post, error) {
	if actorID == 0 {
		return s.GetPublicFeed(ctx)
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	followedIDs, err := s.follows.AcceptedFollowingIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}

	feed, err := s.postRepo.GetByAuthors(ctx, followedIDs, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	if shortfall := limit - len(feed); shortfall > 0 {
		// Excluding every followed author (and the actor) also excludes any
		// post tier-1 already returned.
		excluded := append(append([]uint{}, followedIDs...), actorID)
		filler, err := s.postRepo.GetPublicExcluding(ctx, excluded, shortfall)
		if err != nil {
			return nil, err
		}
		feed = append(feed, filler...)
	}

	return feed, nil
}

// GetPublicFeed returns the most recent PUBLIC posts at a fixed page size.
func (s *PostService) GetPublicFeed(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.GetPublicExcluding(ctx, nil, PublicFeedLimit)
}

// UpdatePost edits the actor's own post. All checks run before any object
// store call, so a rejected update has zero side effects.
func (s *PostService) UpdatePost(ctx context.Context, actorID, postID uint, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != actorID {
		return nil, models.NewUnauthorizedError("You can only edit your own posts")
	}

	owned := make(map[string]bool, len(post.Photos))
	for _, photo := range post.Photos {
		owned[photo.URL] = true
	}
	removing := make(map[string]bool, len(in.RemovePhotoURLs))
	for _, url := range in.RemovePhotoURLs {
		if !owned[url] {
			return nil, models.NewUnauthorizedError("Photo does not belong to this post")
		}
		removing[url] = true
	}

	netCount := len(post.Photos) - len(removing) + len(in.AddPhotos)
	if netCount > models.MaxPostPhotos {
		return nil, models.NewUnauthorizedError(fmt.Sprintf("A post cannot have more than %d photos", models.MaxPostPhotos))
	}

	if in.Description != nil {
		if len(*in.Description) > models.MaxPostDescriptionLen {
			return nil, models.NewBadRequestError("Description is too long")
		}
		post.Description = *in.Description
	}
	if in.Visibility != nil {
		if !in.Visibility.Valid() {
			return nil, models.NewBadRequestError("Visibility must be PUBLIC or PRIVATE")
		}
		post.Visibility = *in.Visibility
	}

	// Objects are deleted from the store before their rows go, so the
	// database never references a missing object.
	kept := make([]models.Photo, 0, netCount)
	for _, photo := range post.Photos {
		if removing[photo.URL] {
			if err := s.store.Delete(ctx, photo.URL); err != nil {
				return nil, models.NewServiceUnavailableError(err)
			}
			continue
		}
		kept = append(kept, photo)
	}

	for _, upload := range in.AddPhotos {
		url, err := s.putPhoto(ctx, upload)
		if err != nil {
			return nil, err
		}
		kept = append(kept, models.Photo{URL: url})
	}
	for i := range kept {
		kept[i].Position = i
	}

	if err := s.postRepo.UpdateWithPhotos(ctx, post, kept); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes the actor's own post, photo objects first.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return models.NewConflictError("You can only delete your own posts")
	}

	for _, photo := range post.Photos {
		if err := s.store.Delete(ctx, photo.URL); err != nil {
			return models.NewServiceUnavailableError(err)
		}
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
