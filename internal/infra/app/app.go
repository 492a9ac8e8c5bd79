package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/infra/config"
	"github.com/Grimm02938/COCMarket/internal/infra/database"
	"github.com/Grimm02938/COCMarket/internal/infra/identity"
	kafkainfra "github.com/Grimm02938/COCMarket/internal/infra/kafka"
	"github.com/Grimm02938/COCMarket/internal/infra/logger"
	"github.com/Grimm02938/COCMarket/internal/infra/payments"
	redisinfra "github.com/Grimm02938/COCMarket/internal/infra/redis"
	"github.com/Grimm02938/COCMarket/internal/infra/telemetry"
	mongorepo "github.com/Grimm02938/COCMarket/internal/repository/mongo"
	redisrepo "github.com/Grimm02938/COCMarket/internal/repository/redis"
	"github.com/Grimm02938/COCMarket/internal/transport/http/middleware"
	"github.com/Grimm02938/COCMarket/internal/transport/http/routes"
	"github.com/Grimm02938/COCMarket/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	mongo  *database.Mongo
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
	tracer *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metricsProvider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	mongoDB, err := database.NewMongo(ctx, cfg.Mongo, log)
	if err != nil {
		return nil, fmt.Errorf("init mongo: %w", err)
	}

	repos := mongorepo.NewRepositories(mongoDB.Database())
	if err := repos.EnsureIndexes(ctx); err != nil {
		_ = mongoDB.Close(ctx)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		_ = mongoDB.Close(ctx)
		return nil, fmt.Errorf("init redis: %w", err)
	}

	var eventPublisher port.EventPublisher
	var kafkaProducer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	verifier := identity.NewFirebaseVerifier(cfg.Firebase, log)
	gateway := payments.NewStripeGateway(cfg.Stripe, log)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		TTL: rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	var authOpts []usecase.AuthOption
	if cfg.Auth.SessionTTL > 0 {
		authOpts = append(authOpts, usecase.WithSessionTTL(cfg.Auth.SessionTTL))
	}

	authService := usecase.NewAuthService(repos.Users, repos.Sessions, eventPublisher, verifier, log, authOpts...)
	productService := usecase.NewProductService(repos.Products, eventPublisher, log)
	reviewService := usecase.NewReviewService(repos.Reviews, repos.Products, log)
	userService := usecase.NewUserService(repos.Users, repos.Reviews, log)
	checkoutService := usecase.NewCheckoutService(repos.Products, repos.Users, gateway, eventPublisher, log)
	seedService := usecase.NewSeedService(repos.Products, repos.Users, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Registerer: metricsProvider.Registerer(),
	})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    mongoDB,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:     authService,
			Products: productService,
			Reviews:  reviewService,
			Users:    userService,
			Checkout: checkoutService,
			Seed:     seedService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		mongo:  mongoDB,
		redis:  redisClient,
		kafka:  kafkaProducer,
		tracer: tracer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.mongo != nil {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = a.mongo.Close(closeCtx)
			cancel()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			_ = a.kafka.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = a.tracer.Shutdown(shutdownCtx)
			cancel()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting marketplace API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
