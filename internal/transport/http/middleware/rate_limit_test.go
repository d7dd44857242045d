package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type memoryAttemptStore struct {
	attempts map[string][]time.Time
}

func newMemoryAttemptStore() *memoryAttemptStore {
	return &memoryAttemptStore{attempts: make(map[string][]time.Time)}
}

func (s *memoryAttemptStore) RecordAttempt(_ context.Context, identifier string, at time.Time) error {
	s.attempts[identifier] = append(s.attempts[identifier], at)
	return nil
}

func (s *memoryAttemptStore) CountAttempts(_ context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	count := 0
	for _, at := range s.attempts[identifier] {
		if !at.Before(reference.Add(-window)) {
			count++
		}
	}
	return count, nil
}

func (s *memoryAttemptStore) TrimWindow(_ context.Context, identifier string, window time.Duration, reference time.Time) error {
	kept := s.attempts[identifier][:0]
	for _, at := range s.attempts[identifier] {
		if !at.Before(reference.Add(-window)) {
			kept = append(kept, at)
		}
	}
	s.attempts[identifier] = kept
	return nil
}

func newLimitedRouter(t *testing.T, limit int, now func() time.Time) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(newMemoryAttemptStore(), zaptest.NewLogger(t)).WithClock(now)
	rule := RateLimitRule{
		Name:       "test",
		Limit:      limit,
		Window:     time.Minute,
		Identifier: ClientIPIdentifier(),
	}

	r := gin.New()
	r.POST("/login", limiter.RateLimit(rule), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	return r
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	clock := time.Now()
	r := newLimitedRouter(t, 2, func() time.Time { return clock })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first attempts = %v, want 200s", codes[:2])
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third attempt = %d, want 429", codes[2])
	}
}

func TestRateLimitWindowSlides(t *testing.T) {
	clock := time.Now()
	r := newLimitedRouter(t, 1, func() time.Time { return clock })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first attempt = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt = %d, want 429", w.Code)
	}

	clock = clock.Add(2 * time.Minute)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("attempt after window = %d, want 200", w.Code)
	}
}

func TestRateLimitScopesByIdentifier(t *testing.T) {
	clock := time.Now()
	r := newLimitedRouter(t, 1, func() time.Time { return clock })

	first := httptest.NewRequest(http.MethodPost, "/login", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("first client = %d, want 200", w.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/login", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, other)
	if w.Code != http.StatusOK {
		t.Fatalf("other client = %d, want 200", w.Code)
	}
}
