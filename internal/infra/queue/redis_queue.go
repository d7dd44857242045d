package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
)

// Task type markers on stream messages.
const (
	TaskExport     = "export"
	TaskResetEmail = "reset_email"
)

// ErrJobNotFound is returned by Job when no status record exists for the id.
var ErrJobNotFound = port.ErrJobNotFound

// Handler processes consumed tasks. The export handler receives the job with
// its status already moved to running.
type Handler interface {
	HandleExport(ctx context.Context, job domain.ExportJob) error
	HandleResetEmail(ctx context.Context, mail port.ResetEmail) error
}

// RedisQueue is a Redis-streams backed task queue. Producers append tasks to
// a single stream; a consumer group of workers reads, retries, and acks them.
// Export job state lives in per-job hashes with a TTL so finished jobs age
// out on their own.
type RedisQueue struct {
	client       *redis.Client
	logger       *zap.Logger
	stream       string
	group        string
	consumerBase string
	jobTTL       time.Duration
	maxRetries   int
	block        time.Duration
	claimIdle    time.Duration
	retryDelay   time.Duration
	maxLen       int64
	readCount    int64
	claimCount   int64
	once         sync.Once
}

// Config tunes queue behavior. Zero values fall back to defaults.
type Config struct {
	Stream     string
	Group      string
	Consumer   string
	JobTTL     time.Duration
	MaxRetries int
	Block      time.Duration
	ClaimIdle  time.Duration
	RetryDelay time.Duration
	MaxLen     int64
	ReadCount  int64
	ClaimCount int64
}

// NewRedisQueue builds a queue on an existing Redis client.
func NewRedisQueue(client *redis.Client, cfg Config, log *zap.Logger) (*RedisQueue, error) {
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		return nil, errors.New("queue stream required")
	}
	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "workers"
	}
	consumer := strings.TrimSpace(cfg.Consumer)
	if consumer == "" {
		consumer = uuid.NewString()
	}
	jobTTL := cfg.JobTTL
	if jobTTL <= 0 {
		jobTTL = 24 * time.Hour
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	block := cfg.Block
	if block <= 0 {
		block = 5 * time.Second
	}
	claimIdle := cfg.ClaimIdle
	if claimIdle <= 0 {
		claimIdle = 30 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	readCount := cfg.ReadCount
	if readCount <= 0 {
		readCount = 10
	}
	claimCount := cfg.ClaimCount
	if claimCount <= 0 {
		claimCount = 10
	}

	return &RedisQueue{
		client:       client,
		logger:       log,
		stream:       stream,
		group:        group,
		consumerBase: consumer,
		jobTTL:       jobTTL,
		maxRetries:   maxRetries,
		block:        block,
		claimIdle:    claimIdle,
		retryDelay:   retryDelay,
		maxLen:       maxLen,
		readCount:    readCount,
		claimCount:   claimCount,
	}, nil
}

// EnqueueExport records the job as pending and appends it to the stream.
func (q *RedisQueue) EnqueueExport(ctx context.Context, job domain.ExportJob) error {
	if job.ID == "" {
		return errors.New("queue: export job id required")
	}

	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.Status = domain.ExportStatusPending
	job.UpdatedAt = now

	if err := q.writeJob(ctx, job); err != nil {
		return err
	}

	return q.append(ctx, map[string]any{
		"task":   TaskExport,
		"job_id": job.ID,
	})
}

// EnqueueResetEmail appends an email-send task. Reset emails carry no status
// record; delivery is retried by the consumer and then dropped.
func (q *RedisQueue) EnqueueResetEmail(ctx context.Context, mail port.ResetEmail) error {
	payload, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("queue: marshal reset email: %w", err)
	}

	return q.append(ctx, map[string]any{
		"task":    TaskResetEmail,
		"payload": string(payload),
	})
}

func (q *RedisQueue) append(ctx context.Context, values map[string]any) error {
	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("queue: append task: %w", err)
	}
	return nil
}

// Job loads the tracked state of an export job.
func (q *RedisQueue) Job(ctx context.Context, jobID string) (*domain.ExportJob, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrJobNotFound
	}

	data, err := q.client.HGetAll(ctx, q.jobKey(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: load job: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrJobNotFound
	}

	job := decodeJob(jobID, data)
	return &job, nil
}

// Start launches the consumer goroutines. They run until ctx is canceled.
func (q *RedisQueue) Start(ctx context.Context, concurrency int, handler Handler) {
	if concurrency <= 0 {
		concurrency = 1
	}
	q.ensureGroup(ctx)
	for i := 0; i < concurrency; i++ {
		consumer := fmt.Sprintf("%s-%d", q.consumerBase, i)
		go q.consumeLoop(ctx, consumer, handler)
	}
}

func (q *RedisQueue) ensureGroup(ctx context.Context) {
	q.once.Do(func() {
		err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			q.logger.Warn("create consumer group", zap.Error(err))
		}
	})
}

func (q *RedisQueue) consumeLoop(ctx context.Context, consumer string, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if msgs, err := q.claimPending(ctx, consumer); err == nil {
			for _, msg := range msgs {
				q.handleMessage(ctx, msg, handler)
			}
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: consumer,
			Streams:  []string{q.stream, ">"},
			Count:    q.readCount,
			Block:    q.block,
		}).Result()
		if err != nil {
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				q.handleMessage(ctx, msg, handler)
			}
		}
	}
}

func (q *RedisQueue) claimPending(ctx context.Context, consumer string) ([]redis.XMessage, error) {
	res, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: consumer,
		MinIdle:  q.claimIdle,
		Start:    "0-0",
		Count:    q.claimCount,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (q *RedisQueue) handleMessage(ctx context.Context, msg redis.XMessage, handler Handler) {
	task, _ := msg.Values["task"].(string)

	switch task {
	case TaskExport:
		q.handleExport(ctx, msg, handler)
	case TaskResetEmail:
		q.handleResetEmail(ctx, msg, handler)
	default:
		q.logger.Warn("dropping unknown task", zap.String("task", task), zap.String("msg_id", msg.ID))
		q.ackAndDel(ctx, msg.ID)
	}
}

func (q *RedisQueue) handleExport(ctx context.Context, msg redis.XMessage, handler Handler) {
	jobID, _ := msg.Values["job_id"].(string)
	if jobID == "" {
		q.ackAndDel(ctx, msg.ID)
		return
	}

	job, err := q.markRunning(ctx, jobID)
	if err != nil {
		q.logger.Error("load export job", zap.String("job_id", jobID), zap.Error(err))
		q.ackAndDel(ctx, msg.ID)
		return
	}

	err = handler.HandleExport(ctx, job.ExportJob)
	if err == nil {
		_ = q.markSucceeded(ctx, jobID)
		q.ackAndDel(ctx, msg.ID)
		return
	}

	if job.attempts >= q.maxRetries {
		_ = q.markFailed(ctx, jobID, err.Error())
		q.ackAndDel(ctx, msg.ID)
		return
	}

	q.logger.Warn("export attempt failed, requeueing",
		zap.String("job_id", jobID),
		zap.Int("attempt", job.attempts),
		zap.Error(err),
	)
	q.sleep(ctx)
	_ = q.requeueAndAck(ctx, msg.ID, msg.Values)
}

func (q *RedisQueue) handleResetEmail(ctx context.Context, msg redis.XMessage, handler Handler) {
	payload, _ := msg.Values["payload"].(string)

	var mail port.ResetEmail
	if err := json.Unmarshal([]byte(payload), &mail); err != nil {
		q.logger.Error("malformed reset email task", zap.String("msg_id", msg.ID), zap.Error(err))
		q.ackAndDel(ctx, msg.ID)
		return
	}

	if err := handler.HandleResetEmail(ctx, mail); err != nil {
		attempts := q.bumpAttempts(ctx, "mail:"+msg.ID)
		if attempts < q.maxRetries {
			q.sleep(ctx)
			_ = q.requeueAndAck(ctx, msg.ID, msg.Values)
			return
		}
		q.logger.Error("reset email task exhausted retries",
			zap.String("msg_id", msg.ID),
			zap.Error(err),
		)
	}

	q.ackAndDel(ctx, msg.ID)
}

func (q *RedisQueue) sleep(ctx context.Context) {
	if q.retryDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(q.retryDelay):
	}
}

func (q *RedisQueue) ackAndDel(ctx context.Context, msgID string) {
	_, _ = q.client.XAck(ctx, q.stream, q.group, msgID).Result()
	_, _ = q.client.XDel(ctx, q.stream, msgID).Result()
}

func (q *RedisQueue) requeueAndAck(ctx context.Context, msgID string, values map[string]any) error {
	pipe := q.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: values,
	})
	pipe.XAck(ctx, q.stream, q.group, msgID)
	pipe.XDel(ctx, q.stream, msgID)
	_, err := pipe.Exec(ctx)
	return err
}

func (q *RedisQueue) bumpAttempts(ctx context.Context, key string) int {
	full := fmt.Sprintf("task:%s:attempts:%s", q.stream, key)
	n, err := q.client.Incr(ctx, full).Result()
	if err != nil {
		return q.maxRetries
	}
	_ = q.client.Expire(ctx, full, q.jobTTL).Err()
	return int(n)
}

// trackedJob pairs the domain job with its attempt counter for retry checks.
type trackedJob struct {
	domain.ExportJob
	attempts int
}

func (q *RedisQueue) markRunning(ctx context.Context, jobID string) (trackedJob, error) {
	job, err := q.Job(ctx, jobID)
	if err != nil {
		return trackedJob{}, err
	}

	attempts := q.bumpAttempts(ctx, jobID)

	job.Status = domain.ExportStatusRunning
	job.UpdatedAt = time.Now().UTC()
	if err := q.writeJob(ctx, *job); err != nil {
		return trackedJob{}, err
	}

	return trackedJob{ExportJob: *job, attempts: attempts}, nil
}

func (q *RedisQueue) markSucceeded(ctx context.Context, jobID string) error {
	return q.finalize(ctx, jobID, domain.ExportStatusSucceeded, "")
}

func (q *RedisQueue) markFailed(ctx context.Context, jobID, errMsg string) error {
	return q.finalize(ctx, jobID, domain.ExportStatusFailed, errMsg)
}

func (q *RedisQueue) finalize(ctx context.Context, jobID string, status domain.ExportStatus, errMsg string) error {
	job, err := q.Job(ctx, jobID)
	if err != nil {
		return err
	}
	job.Status = status
	job.Error = errMsg
	job.UpdatedAt = time.Now().UTC()
	return q.writeJob(ctx, *job)
}

func (q *RedisQueue) writeJob(ctx context.Context, job domain.ExportJob) error {
	key := q.jobKey(job.ID)
	payload := map[string]any{
		"id":                job.ID,
		"kind":              string(job.Kind),
		"to_pdf":            strconv.FormatBool(job.ToPDF),
		"requester_id":      job.RequesterID,
		"internal_filename": job.InternalFilename,
		"status":            string(job.Status),
		"artifact_url":      job.ArtifactURL,
		"error":             job.Error,
		"created_at":        job.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":        job.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := q.client.HSet(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("queue: write job status: %w", err)
	}
	_ = q.client.Expire(ctx, key, q.jobTTL).Err()
	return nil
}

func (q *RedisQueue) jobKey(jobID string) string {
	return fmt.Sprintf("task:%s:%s", q.stream, jobID)
}

func decodeJob(jobID string, data map[string]string) domain.ExportJob {
	job := domain.ExportJob{ID: jobID}
	job.Kind = domain.ExportKind(data["kind"])
	job.ToPDF = data["to_pdf"] == "true"
	job.RequesterID = data["requester_id"]
	job.InternalFilename = data["internal_filename"]
	job.Status = domain.ExportStatus(data["status"])
	job.ArtifactURL = data["artifact_url"]
	job.Error = data["error"]
	if t, err := time.Parse(time.RFC3339Nano, data["created_at"]); err == nil {
		job.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, data["updated_at"]); err == nil {
		job.UpdatedAt = t
	}
	return job
}

var _ port.Dispatcher = (*RedisQueue)(nil)
