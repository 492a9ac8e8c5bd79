package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/infra/config"
	"github.com/Grimm02938/COCMarket/internal/transport/http/handlers"
	"github.com/Grimm02938/COCMarket/internal/transport/http/middleware"
	"github.com/Grimm02938/COCMarket/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth     *usecase.AuthService
	Products *usecase.ProductService
	Reviews  *usecase.ReviewService
	Users    *usecase.UserService
	Checkout *usecase.CheckoutService
	Seed     *usecase.SeedService
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

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	r.Use(deps.Metrics.Handler())

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)

	checks := map[string]handlers.Pinger{}
	if deps.Database != nil {
		checks["mongo"] = deps.Database.Ping
	}
	if deps.Cache != nil {
		checks["redis"] = deps.Cache.HealthCheck
	}

	healthHandler := handlers.NewHealthHandler(checks)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		isDev := deps.Config.App.Env == "development"

		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(api.Group("/auth"), buildAuthRouteLimits(deps))

		productHandler := handlers.NewProductHandler(deps.Services.Products, deps.Services.Reviews)
		productHandler.RegisterRoutes(api.Group("/products"), authMiddleware)

		reviewHandler := handlers.NewReviewHandler(deps.Services.Reviews)
		reviewHandler.RegisterRoutes(api.Group("/reviews"), authMiddleware)

		userHandler := handlers.NewUserHandler(deps.Services.Users)
		userHandler.RegisterRoutes(api.Group("/users"), authMiddleware)

		if deps.Services.Checkout != nil {
			checkoutHandler := handlers.NewCheckoutHandler(deps.Services.Checkout)
			checkoutHandler.RegisterRoutes(api.Group("/stripe"), authMiddleware)
		}

		catalogHandler := handlers.NewCatalogHandler(deps.Services.Products, deps.Services.Seed)
		catalogHandler.RegisterRoutes(api, isDev)
	}

	return r
}

// buildAuthRouteLimits assembles the per-IP limits guarding each credential
// endpoint separately.
func buildAuthRouteLimits(deps Dependencies) handlers.AuthRouteLimits {
	limits := handlers.AuthRouteLimits{}
	if deps.RateLimiter == nil || deps.Config == nil {
		return limits
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	limits.Login = buildRateLimit(deps.RateLimiter, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts, window)
	limits.Register = buildRateLimit(deps.RateLimiter, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts, window)
	limits.SocialLogin = buildRateLimit(deps.RateLimiter, "auth_social_ip", deps.Config.RateLimit.SocialLoginMaxAttempts, window)
	return limits
}

func buildRateLimit(limiter *middleware.RateLimiter, name string, limit int, window time.Duration) []gin.HandlerFunc {
	if limit <= 0 {
		return nil
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}
	return []gin.HandlerFunc{limiter.RateLimit(rule)}
}
