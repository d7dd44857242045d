package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
)

type fakeHandler struct {
	exportErr  error
	exports    []domain.ExportJob
	resetMails []port.ResetEmail
}

func (h *fakeHandler) HandleExport(_ context.Context, job domain.ExportJob) error {
	h.exports = append(h.exports, job)
	return h.exportErr
}

func (h *fakeHandler) HandleResetEmail(_ context.Context, mail port.ResetEmail) error {
	h.resetMails = append(h.resetMails, mail)
	return nil
}

func newTestQueue(t *testing.T, cfg Config) (*RedisQueue, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if cfg.Stream == "" {
		cfg.Stream = "default"
	}
	if cfg.Group == "" {
		cfg.Group = "workers"
	}

	q, err := NewRedisQueue(client, cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	return q, mr, client
}

func TestEnqueueExportRecordsPendingJob(t *testing.T) {
	q, _, client := newTestQueue(t, Config{})
	ctx := context.Background()

	job := domain.ExportJob{
		ID:               "job-1",
		Kind:             domain.ExportKindXLSX,
		RequesterID:      "user-1",
		InternalFilename: "abc.xlsx",
		ArtifactURL:      "http://localhost/files/abc.xlsx",
	}
	if err := q.EnqueueExport(ctx, job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := q.Job(ctx, "job-1")
	if err != nil {
		t.Fatalf("job: %v", err)
	}
	if got.Status != domain.ExportStatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
	if got.Kind != domain.ExportKindXLSX || got.InternalFilename != "abc.xlsx" {
		t.Errorf("job fields lost: %+v", got)
	}

	if n, _ := client.XLen(ctx, "default").Result(); n != 1 {
		t.Errorf("stream length = %d, want 1", n)
	}
}

func TestJobUnknownID(t *testing.T) {
	q, _, _ := newTestQueue(t, Config{})

	if _, err := q.Job(context.Background(), "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("job = %v, want ErrJobNotFound", err)
	}
}

func TestHandleExportSuccess(t *testing.T) {
	q, _, _ := newTestQueue(t, Config{})
	ctx := context.Background()

	job := domain.ExportJob{ID: "job-ok", Kind: domain.ExportKindDOCX, ToPDF: true}
	if err := q.EnqueueExport(ctx, job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	handler := &fakeHandler{}
	msg := redisMessage(t, q, ctx)
	q.handleMessage(ctx, msg, handler)

	if len(handler.exports) != 1 {
		t.Fatalf("handler calls = %d, want 1", len(handler.exports))
	}
	if handler.exports[0].Status != domain.ExportStatusRunning {
		t.Errorf("handler saw status %s, want running", handler.exports[0].Status)
	}

	got, err := q.Job(ctx, "job-ok")
	if err != nil {
		t.Fatalf("job: %v", err)
	}
	if got.Status != domain.ExportStatusSucceeded {
		t.Errorf("final status = %s, want succeeded", got.Status)
	}
}

func TestHandleExportExhaustedRetriesFails(t *testing.T) {
	q, _, _ := newTestQueue(t, Config{MaxRetries: 1, RetryDelay: time.Millisecond})
	ctx := context.Background()

	if err := q.EnqueueExport(ctx, domain.ExportJob{ID: "job-bad", Kind: domain.ExportKindXLSX}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	handler := &fakeHandler{exportErr: errors.New("render blew up")}
	msg := redisMessage(t, q, ctx)
	q.handleMessage(ctx, msg, handler)

	got, err := q.Job(ctx, "job-bad")
	if err != nil {
		t.Fatalf("job: %v", err)
	}
	if got.Status != domain.ExportStatusFailed {
		t.Errorf("final status = %s, want failed", got.Status)
	}
	if got.Error != "render blew up" {
		t.Errorf("error = %q, want render blew up", got.Error)
	}
}

func TestHandleResetEmail(t *testing.T) {
	q, _, _ := newTestQueue(t, Config{})
	ctx := context.Background()

	mail := port.ResetEmail{To: "user@example.com", Link: "http://localhost/reset/tok"}
	if err := q.EnqueueResetEmail(ctx, mail); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	handler := &fakeHandler{}
	msg := redisMessage(t, q, ctx)
	q.handleMessage(ctx, msg, handler)

	if len(handler.resetMails) != 1 {
		t.Fatalf("handler calls = %d, want 1", len(handler.resetMails))
	}
	if handler.resetMails[0] != mail {
		t.Errorf("mail = %+v, want %+v", handler.resetMails[0], mail)
	}
}

// redisMessage reads the single queued entry through the consumer group the
// same way the consume loop does.
func redisMessage(t *testing.T, q *RedisQueue, ctx context.Context) redis.XMessage {
	t.Helper()

	if err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err(); err != nil {
		t.Fatalf("create group: %v", err)
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: "test-consumer",
		Streams:  []string{q.stream, ">"},
		Count:    1,
	}).Result()
	if err != nil {
		t.Fatalf("read group: %v", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		t.Fatal("no message on stream")
	}
	return streams[0].Messages[0]
}
