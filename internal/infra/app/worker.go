package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/workforce-api/internal/infra/config"
	"github.com/arklim/workforce-api/internal/infra/convert"
	"github.com/arklim/workforce-api/internal/infra/database"
	"github.com/arklim/workforce-api/internal/infra/logger"
	"github.com/arklim/workforce-api/internal/infra/mail"
	"github.com/arklim/workforce-api/internal/infra/queue"
	redisinfra "github.com/arklim/workforce-api/internal/infra/redis"
	"github.com/arklim/workforce-api/internal/infra/storage"
	postgresrepo "github.com/arklim/workforce-api/internal/repository/postgres"
	"github.com/arklim/workforce-api/internal/worker"
)

// WorkerApp owns the background task consumer and its resources.
type WorkerApp struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	queue  *queue.RedisQueue
	tasks  *worker.Worker
}

// NewWorker builds the worker application sharing the API's queue, storage
// directory, and database.
func NewWorker(ctx context.Context, cfg *config.AppConfig) (*WorkerApp, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
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

	taskQueue, err := queue.NewRedisQueue(redisClient.Client(), queue.Config{
		Stream: cfg.Queue.Stream,
		Group:  cfg.Queue.Group,
		JobTTL: cfg.Queue.JobTTL,
	}, log)
	if err != nil {
		redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init queue: %w", err)
	}

	store, err := storage.NewLocalStore(cfg.Storage.Directory)
	if err != nil {
		redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	converter := convert.NewLibreOfficeConverter("", cfg.Queue.ConvertTimeout, log)
	mailer := mail.NewSMTPMailer(cfg.Mail, log)

	tasks := worker.New(repos.Users, repos.Documents, store, converter, mailer, log)

	return &WorkerApp{
		cfg:    cfg,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		queue:  taskQueue,
		tasks:  tasks,
	}, nil
}

// Run consumes tasks until ctx is canceled.
func (a *WorkerApp) Run(ctx context.Context) error {
	concurrency := a.cfg.Queue.Concurrency
	a.logger.Info("worker consuming",
		zap.String("stream", a.cfg.Queue.Stream),
		zap.Int("concurrency", concurrency),
	)

	a.queue.Start(ctx, concurrency, a.tasks)
	<-ctx.Done()

	if err := a.redis.Close(); err != nil {
		a.logger.Warn("close redis", zap.Error(err))
	}
	a.pool.Close()

	a.logger.Info("worker stopped")
	_ = a.logger.Sync()
	return nil
}
