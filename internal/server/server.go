// Package server contains the HTTP handlers and route wiring for the Agora API.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "agora/docs" // swagger docs
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"
	"agora/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds the application's dependencies and HTTP handlers.
type Server struct {
	app            *fiber.App
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	voteRepo   repository.VoteRepository
	store      storage.ObjectStore

	userService   *service.UserService
	postService   *service.PostService
	followService *service.FollowService
	voteService   *service.VoteService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Initialize Redis
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	store, err := storage.NewDiskStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("object store init failed: %w", err)
	}

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("agora-api")

	return newServer(cfg, db, redisClient, store, prom), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and the
// object store itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.ObjectStore) (*Server, error) {
	prom := middleware.InitMetrics("agora-api")
	return newServer(cfg, db, redisClient, store, prom), nil
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.ObjectStore, prom *fiberprometheus.FiberPrometheus) *Server {
	// Revoked-token checks go through the cache layer; the middleware package
	// only sees a function so it stays decoupled from Redis.
	middleware.InitMiddleware(cfg, cache.IsTokenRevoked)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		postRepo:       postRepo,
		followRepo:     followRepo,
		voteRepo:       voteRepo,
		store:          store,
	}

	server.followService = service.NewFollowService(followRepo, userRepo)
	server.postService = service.NewPostService(postRepo, userRepo, server.followService, store)
	server.voteService = service.NewVoteService(voteRepo, postRepo, server.followService)
	server.userService = service.NewUserService(userRepo, postRepo, store)

	return server
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Distributed tracing
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Agora Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Processed uploads are served straight from disk.
	if s.config.MediaDir != "" {
		app.Static("/media", s.config.MediaDir)
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", middleware.AuthRequired, s.Logout)

	// Feed is readable anonymously at a reduced, fixed page size.
	api.Get("/feed", middleware.AuthOptional, s.GetFeed)

	// User routes. Define specific routes BEFORE the generic /:username route.
	users := api.Group("/users")
	users.Get("/search", middleware.AuthRequired, s.SearchUsers)
	users.Get("/me", middleware.AuthRequired, s.GetMyProfile)
	users.Put("/me", middleware.AuthRequired, s.UpdateMyProfile)
	users.Delete("/me", middleware.AuthRequired, s.DeleteMyProfile)
	users.Get("/me/follow-requests", middleware.AuthRequired, s.GetFollowRequests)
	users.Post("/me/follow-requests/:username/accept", middleware.AuthRequired, s.AcceptFollowRequest)
	users.Post("/me/follow-requests/:username/reject", middleware.AuthRequired, s.RejectFollowRequest)
	users.Delete("/me/followers/:username", middleware.AuthRequired, s.RemoveFollower)
	users.Get("/:username/posts", middleware.AuthOptional, s.GetUserPosts)
	users.Get("/:username/followers", middleware.AuthOptional, s.GetFollowers)
	users.Get("/:username/followings", middleware.AuthOptional, s.GetFollowings)
	users.Post("/:username/follow", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 20, time.Minute, "follow"), s.FollowUser)
	users.Delete("/:username/follow", middleware.AuthRequired, s.UnfollowUser)
	// Generic /:username route must be last
	users.Get("/:username", middleware.AuthOptional, s.GetUserProfile)

	// Post routes. Define specific /:id/:resource routes BEFORE generic /:id.
	posts := api.Group("/posts")
	posts.Post("/", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/upvote", middleware.AuthRequired, s.UpvotePost)
	posts.Post("/:id/downvote", middleware.AuthRequired, s.DownvotePost)
	posts.Delete("/:id/vote", middleware.AuthRequired, s.RemoveVote)
	posts.Get("/:id", middleware.AuthOptional, s.GetPost)
	posts.Put("/:id", middleware.AuthRequired, s.UpdatePost)
	posts.Delete("/:id", middleware.AuthRequired, s.DeletePost)
}

// LivenessCheck reports whether the process is running.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// ReadinessCheck reports whether the server can serve traffic.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API keeps working without Redis (cache misses, no blacklist),
		// so a missing client degrades readiness but is reported distinctly.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// HealthCheck handles GET /api/
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Agora",
		"version": "1.0.0",
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Agora API",
		BodyLimit: bodyLimitBytes(s.config),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// bodyLimitBytes sizes the request body cap from the per-photo upload limit,
// leaving room for a full multipart form of maximum-size photos.
func bodyLimitBytes(cfg *config.Config) int {
	perPhotoMB := cfg.MediaMaxUploadSizeMB
	if perPhotoMB <= 0 {
		perPhotoMB = 10
	}
	return (perPhotoMB*models.MaxPostPhotos + 1) * 1024 * 1024
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
