// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "auconnect/docs" // swagger docs
	"auconnect/internal/config"
	"auconnect/internal/email"
	"auconnect/internal/middleware"
	"auconnect/internal/models"
	"auconnect/internal/notifications"
	"auconnect/internal/repository"
	"auconnect/internal/service"
	"auconnect/internal/storage"
	"auconnect/internal/tasks"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// APIPrefix is the base path of every versioned route.
const APIPrefix = "/api/connect/v1"

// Deps are the already-initialized clients a Server is built from. Redis,
// Mailer and Media are optional.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Mailer email.Sender
	Media  storage.MediaStore
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo         repository.UserRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	notificationRepo repository.NotificationRepository
	jobPostRepo      repository.JobPostRepository
	jobAppRepo       repository.JobApplicationRepository
	connectionRepo   repository.ConnectionRepository

	notifier *notifications.Notifier
	hub      *notifications.Hub
	tasks    *tasks.Queue
	media    storage.MediaStore

	commentService      *service.CommentService
	notificationService *service.NotificationService
	postService         *service.PostService
	connectionService   *service.ConnectionService
	jobService          *service.JobService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// The bootstrap layer establishes DB/Redis; tests pass in-memory equivalents.
func NewServerWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	s := &Server{
		config:           cfg,
		db:               deps.DB,
		redis:            deps.Redis,
		promMiddleware:   middleware.InitMetrics("auconnect-api"),
		userRepo:         repository.NewUserRepository(deps.DB),
		postRepo:         repository.NewPostRepository(deps.DB),
		commentRepo:      repository.NewCommentRepository(deps.DB),
		notificationRepo: repository.NewNotificationRepository(deps.DB),
		jobPostRepo:      repository.NewJobPostRepository(deps.DB),
		jobAppRepo:       repository.NewJobApplicationRepository(deps.DB),
		connectionRepo:   repository.NewConnectionRepository(deps.DB),
		media:            deps.Media,
	}
	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())

	s.tasks = tasks.NewQueue(cfg.EmailWorkers, cfg.EmailQueueSize, tasks.LogSink{Logger: middleware.Logger})

	var publisher service.Publisher
	if deps.Redis != nil {
		s.notifier = notifications.NewNotifier(deps.Redis)
		s.hub = notifications.NewHub()
		publisher = s.notifier
	}

	s.notificationService = service.NewNotificationService(service.NotificationServiceDeps{
		Notifications: s.notificationRepo,
		Users:         s.userRepo,
		JobPosts:      s.jobPostRepo,
		Publisher:     publisher,
		Cache:         deps.Redis,
		Mailer:        deps.Mailer,
		Tasks:         s.tasks,
		AppURL:        cfg.AppURL,
	})
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.userRepo, s.notificationService)
	s.postService = service.NewPostService(s.postRepo, s.userRepo, s.notificationService)
	s.connectionService = service.NewConnectionService(s.connectionRepo, s.userRepo, s.notificationService)
	s.jobService = service.NewJobService(s.jobPostRepo, s.jobAppRepo, s.userRepo, s.notificationService)

	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "AU Connect API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group(APIPrefix, middleware.AuthRequired(middleware.AuthConfig{
		Secret:     s.config.JWTSecret,
		CookieName: s.config.AuthCookieName,
		Redis:      s.redis,
	}))

	posts := v1.Group("/posts")
	// Define specific /:postId/:resource routes BEFORE generic /:postId route
	posts.Get("/:postId/comments/:commentId/replies", s.ListReplies)
	posts.Delete("/:postId/comments/:commentId", s.DeleteComment)
	posts.Get("/:postId/comments", s.ListComments)
	posts.Post("/:postId/comments", middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:postId/share", s.SharePost)
	posts.Get("/:postId", s.GetPost)

	notifs := v1.Group("/notifications")
	notifs.Get("/", s.ListNotifications)
	notifs.Get("/unread-count", s.GetUnreadCount)
	// mark-all-read must be registered before /:id
	notifs.Patch("/mark-all-read", s.MarkAllNotificationsRead)
	notifs.Patch("/:id", s.MarkNotificationRead)

	connections := v1.Group("/connections")
	connections.Post("/requests/:requestId/accept", s.AcceptConnectionRequest)
	connections.Post("/:userId", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "connection_request"), s.SendConnectionRequest)

	jobs := v1.Group("/jobs")
	jobs.Post("/:jobPostId/apply", middleware.RateLimit(
		s.redis, 10, time.Minute, "job_apply"), s.ApplyToJob)

	users := v1.Group("/users")
	users.Get("/:userId/posts", s.ListUserPosts)

	v1.Get("/fetch-media", s.FetchMedia)
	v1.Get("/ws", s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: without it the service is degraded, not unready.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start wires realtime delivery and starts listening on the configured port.
func (s *Server) Start() error {
	app := s.App()

	if s.hub != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start hub wiring",
				slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the subscriber goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
		}
	}

	// Let queued emails finish before the clients they use go away.
	if s.tasks != nil {
		if err := s.tasks.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error draining task queue", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
