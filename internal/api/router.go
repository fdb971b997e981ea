package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/userboard/registration-system/internal/api/handler"
	"github.com/userboard/registration-system/internal/api/middleware"
	"github.com/userboard/registration-system/internal/api/view"
	"github.com/userboard/registration-system/internal/core/service"
	"github.com/userboard/registration-system/internal/infrastructure/config"
	"github.com/userboard/registration-system/internal/infrastructure/db/postgres"
	redisdb "github.com/userboard/registration-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := redisdb.NewSessionRepository(rdb)
	identity := service.NewIdentityService(userRepo, log)
	sessions := service.NewSessionService(identity, sessionRepo, cfg.SessionSecret, cfg.SessionTTL, log)
	users := handler.NewUserHandler(identity, sessions, cfg.SessionTTL)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("userboard"))
	e.Use(middleware.LoadSession(sessions))

	// --- Pages ---
	e.GET("/", users.Home)
	e.GET("/register", users.RegisterForm)
	e.POST("/register", users.Register)
	e.GET("/login", users.LoginForm)
	e.POST("/login", users.Login)
	e.GET("/logout", users.Logout, middleware.RequireUser())
	e.GET("/user/:id", users.Profile)
	e.GET("/user/:id/edit", users.EditForm, middleware.RequireUser())
	e.POST("/user/:id/edit", users.Edit, middleware.RequireUser())

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/healthz", healthHandler.Liveness)             // liveness  – is the process alive?
	e.GET("/healthz/ready", readinessHandler.Readiness)   // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
