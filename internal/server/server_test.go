package server

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// fakeStore is an in-memory object store for handler tests.
type fakeStore struct {
	mu      sync.Mutex
	puts    int
	deleted []string
}

func (f *fakeStore) Put(_ context.Context, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	return fmt.Sprintf("/media/photo-%d.webp", f.puts), nil
}

func (f *fakeStore) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

func newHandlerTestServer(t *testing.T, db *gorm.DB) (*Server, *fakeStore) {
	t.Helper()

	store := &fakeStore{}
	cfg := &config.Config{JWTSecret: "test_secret_0123456789abcdef0123"}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	s := &Server{
		config:     cfg,
		db:         db,
		userRepo:   userRepo,
		postRepo:   postRepo,
		followRepo: followRepo,
		voteRepo:   voteRepo,
		store:      store,
	}
	s.followService = service.NewFollowService(followRepo, userRepo)
	s.postService = service.NewPostService(postRepo, userRepo, s.followService, store)
	s.voteService = service.NewVoteService(voteRepo, postRepo, s.followService)
	s.userService = service.NewUserService(userRepo, postRepo, store)

	middleware.InitMiddleware(cfg, nil)
	return s, store
}

func newTestApp() *fiber.App {
	return fiber.New()
}

// asUser injects an authenticated user ID the way the auth middleware would.
func asUser(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func createHandlerTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Name:     username,
		Password: string(hashed),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createHandlerTestPost(t *testing.T, db *gorm.DB, userID uint, visibility models.Visibility) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:      userID,
		Description: "a post",
		Latitude:    37.9838,
		Longitude:   23.7275,
		Visibility:  visibility,
		Photos: []models.Photo{
			{URL: "/media/existing.webp", Position: 0},
		},
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}
