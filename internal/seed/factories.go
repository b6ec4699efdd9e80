// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password assigned to every seeded user.
const DefaultPassword = "Password123!"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand

	// bcrypt is slow; all seeded users share one hash.
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) (*Factory, error) {
	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	return &Factory{
		db:           db,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}, nil
}

// CreateUser persists a user with generated profile data.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	user := &models.User{
		Username: fmt.Sprintf("%s_%s%d", first, last, f.rng.Intn(1000)),
		Email:    gofakeit.Email(),
		Name:     first + " " + last,
		Password: f.passwordHash,
	}
	for _, o := range overrides {
		o(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a geotagged post with one to three photos.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	visibility := models.VisibilityPublic
	if f.rng.Intn(100) < 30 {
		visibility = models.VisibilityPrivate
	}

	post := &models.Post{
		UserID:      user.ID,
		Description: gofakeit.Sentence(8),
		Latitude:    gofakeit.Latitude(),
		Longitude:   gofakeit.Longitude(),
		Visibility:  visibility,
	}

	numPhotos := models.MinPostPhotos + f.rng.Intn(models.MaxPostPhotos)
	for i := 0; i < numPhotos; i++ {
		post.Photos = append(post.Photos, models.Photo{
			URL:      fmt.Sprintf("/media/%s.webp", gofakeit.UUID()),
			Position: i,
		})
	}

	// Realistic created_at spread over the last 90 days.
	daysBack := f.rng.Intn(90)
	minsBack := f.rng.Intn(24 * 60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, o := range overrides {
		o(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateFollow persists a directed follow edge with the given status.
func (f *Factory) CreateFollow(follower, following *models.User, status models.FollowStatus) error {
	follow := &models.Follow{
		FollowerID:  follower.ID,
		FollowingID: following.ID,
		Status:      status,
	}
	return f.db.Create(follow).Error
}

// CreateVote persists a vote without touching reputation; the seeder
// recomputes reputation in bulk after all votes exist.
func (f *Factory) CreateVote(user *models.User, post *models.Post, voteType models.VoteType) error {
	vote := &models.Vote{
		UserID: user.ID,
		PostID: post.ID,
		Type:   voteType,
	}
	return f.db.Create(vote).Error
}
