package service

import (
	"context"
	"errors"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getForUpdateFn  func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	searchFn        func(context.Context, string, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetForUpdate(ctx context.Context, id uint) (*models.User, error) {
	return s.getForUpdateFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, q string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, q, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:      func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getForUpdateFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:   func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 99, Username: username}, nil
		},
		createFn: func(context.Context, *models.User) error { return nil },
		updateFn: func(context.Context, *models.User) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
		searchFn: func(context.Context, string, int, int) ([]models.User, error) { return nil, nil },
	}
}

type followRepoStub struct {
	createFn                  func(context.Context, *models.Follow) error
	getByPairFn               func(context.Context, uint, uint) (*models.Follow, error)
	updateStatusFn            func(context.Context, uint, models.FollowStatus) error
	deleteFn                  func(context.Context, uint) error
	getFollowersFn            func(context.Context, uint) ([]models.User, error)
	getFollowingsFn           func(context.Context, uint) ([]models.User, error)
	getPendingRequestsFn      func(context.Context, uint) ([]models.Follow, error)
	getAcceptedFollowingIDsFn func(context.Context, uint) ([]uint, error)
}

func (s *followRepoStub) Create(ctx context.Context, follow *models.Follow) error {
	return s.createFn(ctx, follow)
}
func (s *followRepoStub) GetByPair(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	return s.getByPairFn(ctx, followerID, followingID)
}
func (s *followRepoStub) UpdateStatus(ctx context.Context, followID uint, status models.FollowStatus) error {
	return s.updateStatusFn(ctx, followID, status)
}
func (s *followRepoStub) Delete(ctx context.Context, followID uint) error {
	return s.deleteFn(ctx, followID)
}
func (s *followRepoStub) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.getFollowersFn(ctx, userID)
}
func (s *followRepoStub) GetFollowings(ctx context.Context, userID uint) ([]models.User, error) {
	return s.getFollowingsFn(ctx, userID)
}
func (s *followRepoStub) GetPendingRequests(ctx context.Context, userID uint) ([]models.Follow, error) {
	return s.getPendingRequestsFn(ctx, userID)
}
func (s *followRepoStub) GetAcceptedFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.getAcceptedFollowingIDsFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:                  func(context.Context, *models.Follow) error { return nil },
		getByPairFn:               func(context.Context, uint, uint) (*models.Follow, error) { return nil, nil },
		updateStatusFn:            func(context.Context, uint, models.FollowStatus) error { return nil },
		deleteFn:                  func(context.Context, uint) error { return nil },
		getFollowersFn:            func(context.Context, uint) ([]models.User, error) { return nil, nil },
		getFollowingsFn:           func(context.Context, uint) ([]models.User, error) { return nil, nil },
		getPendingRequestsFn:      func(context.Context, uint) ([]models.Follow, error) { return nil, nil },
		getAcceptedFollowingIDsFn: func(context.Context, uint) ([]uint, error) { return nil, nil },
	}
}

type postRepoStub struct {
	createFn             func(context.Context, *models.Post) error
	getByIDFn            func(context.Context, uint) (*models.Post, error)
	getByUserIDFn        func(context.Context, uint, bool, int, int) ([]models.Post, error)
	getByAuthorsFn       func(context.Context, []uint, int, int) ([]models.Post, error)
	getPublicExcludingFn func(context.Context, []uint, int) ([]models.Post, error)
	updateWithPhotosFn   func(context.Context, *models.Post, []models.Photo) error
	deleteFn             func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, includePrivate bool, limit, offset int) ([]models.Post, error) {
	return s.getByUserIDFn(ctx, userID, includePrivate, limit, offset)
}
func (s *postRepoStub) GetByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, error) {
	return s.getByAuthorsFn(ctx, authorIDs, limit, offset)
}
func (s *postRepoStub) GetPublicExcluding(ctx context.Context, excludedAuthorIDs []uint, limit int) ([]models.Post, error) {
	return s.getPublicExcludingFn(ctx, excludedAuthorIDs, limit)
}
func (s *postRepoStub) UpdateWithPhotos(ctx context.Context, post *models.Post, photos []models.Photo) error {
	return s.updateWithPhotosFn(ctx, post, photos)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Visibility: models.VisibilityPublic}, nil
		},
		getByUserIDFn:        func(context.Context, uint, bool, int, int) ([]models.Post, error) { return nil, nil },
		getByAuthorsFn:       func(context.Context, []uint, int, int) ([]models.Post, error) { return nil, nil },
		getPublicExcludingFn: func(context.Context, []uint, int) ([]models.Post, error) { return nil, nil },
		updateWithPhotosFn:   func(context.Context, *models.Post, []models.Photo) error { return nil },
		deleteFn:             func(context.Context, uint) error { return nil },
	}
}

type voteRepoStub struct {
	getByUserAndPostFn func(context.Context, uint, uint) (*models.Vote, error)
	applyFn            func(context.Context, repository.VoteMutation) error
}

func (s *voteRepoStub) GetByUserAndPost(ctx context.Context, userID, postID uint) (*models.Vote, error) {
	return s.getByUserAndPostFn(ctx, userID, postID)
}
func (s *voteRepoStub) Apply(ctx context.Context, mutation repository.VoteMutation) error {
	return s.applyFn(ctx, mutation)
}

func noopVoteRepo() *voteRepoStub {
	return &voteRepoStub{
		getByUserAndPostFn: func(context.Context, uint, uint) (*models.Vote, error) { return nil, nil },
		applyFn:            func(context.Context, repository.VoteMutation) error { return nil },
	}
}

type objectStoreStub struct {
	putFn    func(context.Context, []byte, string) (string, error)
	deleteFn func(context.Context, string) error
}

func (s *objectStoreStub) Put(ctx context.Context, content []byte, contentType string) (string, error) {
	return s.putFn(ctx, content, contentType)
}
func (s *objectStoreStub) Delete(ctx context.Context, url string) error {
	return s.deleteFn(ctx, url)
}

func noopObjectStore() *objectStoreStub {
	n := 0
	return &objectStoreStub{
		putFn: func(context.Context, []byte, string) (string, error) {
			n++
			return "/media/" + string(rune('a'+n-1)) + ".webp", nil
		},
		deleteFn: func(context.Context, string) error { return nil },
	}
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
}
