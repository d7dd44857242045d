package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/infra/config"
	"github.com/arklim/workforce-api/internal/infra/database"
	"github.com/arklim/workforce-api/internal/infra/kafka"
	"github.com/arklim/workforce-api/internal/infra/logger"
	"github.com/arklim/workforce-api/internal/infra/queue"
	redisinfra "github.com/arklim/workforce-api/internal/infra/redis"
	"github.com/arklim/workforce-api/internal/infra/security"
	"github.com/arklim/workforce-api/internal/infra/storage"
	postgresrepo "github.com/arklim/workforce-api/internal/repository/postgres"
	redisrepo "github.com/arklim/workforce-api/internal/repository/redis"
	"github.com/arklim/workforce-api/internal/transport/http/middleware"
	"github.com/arklim/workforce-api/internal/transport/http/routes"
	"github.com/arklim/workforce-api/internal/usecase"
)

// Application owns the API server and the resources behind it.
type Application struct {
	cfg      *config.AppConfig
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafka.Producer
	server   *http.Server
}

// New builds the API application: connections, repositories, services, and
// the HTTP engine.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := security.ConfigureArgon2(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	denylist := redisrepo.NewTokenDenylistRepository(redisClient.Client(), cfg.Redis.DenylistPrefix)
	rateStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "wf:ratelimit",
		TTL:       cfg.RateLimit.WindowDuration,
	})

	events, producer := newEventPublisher(cfg, log)

	dispatcher, err := queue.NewRedisQueue(redisClient.Client(), queue.Config{
		Stream: cfg.Queue.Stream,
		Group:  cfg.Queue.Group,
		JobTTL: cfg.Queue.JobTTL,
	}, log)
	if err != nil {
		closeProducer(producer, log)
		redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init queue: %w", err)
	}

	store, err := storage.NewLocalStore(cfg.Storage.Directory)
	if err != nil {
		closeProducer(producer, log)
		redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	baseURL := cfg.App.BaseURL()
	tokens := security.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	otp := security.NewOTPManager(cfg.Auth.SecretKey, cfg.Auth.PasswordSalt, cfg.Auth.ResetTokenExpires)
	validator := security.DefaultPasswordValidator()

	services := routes.ServiceSet{
		Auth:          usecase.NewAuthService(repos.Users, denylist, tokens, events),
		Users:         usecase.NewUserService(repos.Users, validator),
		Roles:         usecase.NewRoleService(repos.Roles),
		PasswordReset: usecase.NewPasswordResetService(repos.Users, otp, tokens, dispatcher, events, validator, baseURL),
		Documents:     usecase.NewDocumentService(repos.Documents, store),
		Exports:       usecase.NewExportService(dispatcher, events, baseURL),
	}

	if err := seedTestUser(ctx, repos.Users, cfg.Seed, log); err != nil {
		log.Warn("seed test user", zap.Error(err))
	}

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		log.Warn("register http metrics", zap.Error(err))
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: middleware.NewRateLimiter(rateStore, log),
		Metrics:     metrics,
		Services:    services,
		Database:    pool,
		Cache:       redisClient,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Application{
		cfg:      cfg,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		server:   server,
	}, nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.close()
	if err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}

	a.logger.Info("http server stopped")
	return nil
}

func (a *Application) close() {
	closeProducer(a.producer, a.logger)
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.logger.Sync()
}

// newEventPublisher connects the Kafka producer when brokers are configured
// and falls back to a log-only publisher otherwise, so single-node
// deployments run without a broker.
func newEventPublisher(cfg *config.AppConfig, log *zap.Logger) (port.EventPublisher, *kafka.Producer) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("no kafka brokers configured, audit events are log-only")
		return kafka.NewStubPublisher(log), nil
	}

	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Warn("kafka producer unavailable, audit events are log-only", zap.Error(err))
		return kafka.NewStubPublisher(log), nil
	}

	return kafka.NewEventPublisher(producer, cfg.App, log), producer
}

func closeProducer(producer *kafka.Producer, log *zap.Logger) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		log.Warn("close kafka producer", zap.Error(err))
	}
}

// seedTestUser provisions the configured bootstrap account on first start.
// An existing account with the same email is left untouched.
func seedTestUser(ctx context.Context, users port.UserRepository, cfg config.SeedSettings, log *zap.Logger) error {
	if cfg.TestUserEmail == "" || cfg.TestUserPassword == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, cfg.TestUserEmail); err == nil {
		return nil
	}

	hash, err := security.HashPassword(cfg.TestUserPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        cfg.TestUserEmail,
		PasswordHash: hash,
		FSUniquifier: uuid.NewString(),
		Active:       true,
		Roles:        []string{domain.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("create seed user: %w", err)
	}

	log.Info("seeded bootstrap user", zap.String("email", cfg.TestUserEmail))
	return nil
}
