package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/infra/config"
	"github.com/arklim/workforce-api/internal/transport/http/handlers"
	"github.com/arklim/workforce-api/internal/transport/http/middleware"
	"github.com/arklim/workforce-api/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Users         *usecase.UserService
	Roles         *usecase.RoleService
	PasswordReset *usecase.PasswordResetService
	Documents     *usecase.DocumentService
	Exports       *usecase.ExportService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware. The
// content-type gate guards only the /api group; probes and metrics stay
// outside it.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(deps.Services.Auth)
	manageUsers := middleware.RequireRole(domain.RoleAdmin, domain.RoleTeamLeader)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	api := r.Group("/api", middleware.ContentTypeGate(deps.Config.API.AllowedContentTypes))
	{
		baseURL := deps.Config.App.BaseURL()

		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.PasswordReset)
		authHandler.RegisterRoutes(api.Group("/auth"),
			buildRateLimit(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts),
			buildRateLimit(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts),
		)

		roleHandler := handlers.NewRoleHandler(deps.Services.Roles)
		roleHandler.RegisterRoutes(api.Group("/roles", requireAuth, adminOnly))

		usersGroup := api.Group("/users", requireAuth)
		userHandler := handlers.NewUserHandler(deps.Services.Users)
		userHandler.RegisterRoutes(usersGroup, manageUsers)

		exportHandler := handlers.NewExportHandler(deps.Services.Exports)
		exportHandler.RegisterRoutes(usersGroup, api.Group("/exports", requireAuth))

		documentHandler := handlers.NewDocumentHandler(deps.Services.Documents, baseURL)
		documentHandler.RegisterRoutes(api.Group("/documents", requireAuth), api.Group("/files", requireAuth))
	}

	return r
}

func buildRateLimit(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
