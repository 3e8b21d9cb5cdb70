package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/internal/database"
	"github.com/insertapp/insert/internal/handlers"
	"github.com/insertapp/insert/internal/middleware"
	"github.com/insertapp/insert/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	services, err := services.New(cfg, app.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = services

	app.handlers = handlers.New(app.logger, services)

	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// StartPointsProcessor runs the review event consumer until ctx is
// cancelled.
func (a *App) StartPointsProcessor(ctx context.Context) {
	go func() {
		if err := a.services.PointsProcessor.Run(ctx, a.services.MessageBus); err != nil && ctx.Err() == nil {
			a.logger.WithError(err).Error("Points processor stopped")
		}
	}()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	a.services.Health.Close()

	if err := a.services.MessageBus.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing message bus")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))
	router.Use(middleware.Security())

	// Health check endpoint (no auth required)
	router.GET("/health", a.handlers.Health.Check)

	// Prometheus metrics endpoint (no auth required)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Token issuance sits outside the authenticated group: it is the entry
	// point that produces the bearer token the group requires.
	router.POST("/api/v1/auth/tokens", a.handlers.Auth.IssueToken)

	// API routes
	api := router.Group("/api/v1")
	{
		api.Use(middleware.Auth(a.services.Auth, a.logger))
		api.Use(middleware.RateLimit(a.services.RateLimit, a.logger))

		api.DELETE("/auth/tokens", a.handlers.Auth.RevokeToken)

		api.POST("/recommendations", a.handlers.Recommendation.Generate)
		api.GET("/places/:placeId", a.handlers.Recommendation.GetPlaceDetail)

		schedules := api.Group("/schedules")
		{
			schedules.POST("", a.handlers.Schedule.Create)
			schedules.GET("", a.handlers.Schedule.List)
			schedules.DELETE("/:entryId", a.handlers.Schedule.Delete)
		}

		reviews := api.Group("/reviews")
		{
			reviews.POST("", a.handlers.Review.Create)
			reviews.GET("", a.handlers.Review.List)
		}
	}

	a.router = router
}
