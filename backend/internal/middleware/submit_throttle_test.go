package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	appLogger "process-entry-app/backend/internal/infra/logger"
	"process-entry-app/backend/internal/infra/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	appLogger.Replace(zap.NewNop())
	os.Exit(m.Run())
}

func newThrottledEngine(throttle *SubmitThrottle) *gin.Engine {
	r := gin.New()
	r.POST("/submit", throttle.Handle(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func submit(r http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.RemoteAddr = "192.0.2.10:5000"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSubmitThrottleLimitsPerIP(t *testing.T) {
	r := newThrottledEngine(NewSubmitThrottle(ratelimit.NewMemoryLimiter(), 2, time.Minute))

	for i := 0; i < 2; i++ {
		if rec := submit(r); rec.Code != http.StatusCreated {
			t.Fatalf("submission %d: expected 201, got %d", i+1, rec.Code)
		}
	}
	rec := submit(r)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestSubmitThrottleDisabled(t *testing.T) {
	r := newThrottledEngine(NewSubmitThrottle(ratelimit.NewMemoryLimiter(), 0, time.Minute))
	for i := 0; i < 5; i++ {
		if rec := submit(r); rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 with throttle disabled, got %d", rec.Code)
		}
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, int, time.Duration) (ratelimit.AllowResult, error) {
	return ratelimit.AllowResult{}, errors.New("redis: connection refused")
}

func TestSubmitThrottleFailsOpen(t *testing.T) {
	r := newThrottledEngine(NewSubmitThrottle(brokenLimiter{}, 1, time.Minute))
	for i := 0; i < 3; i++ {
		if rec := submit(r); rec.Code != http.StatusCreated {
			t.Fatalf("limiter errors must not block submissions, got %d", rec.Code)
		}
	}
}

func TestSubmitThrottleHandleWithCustomResponse(t *testing.T) {
	throttle := NewSubmitThrottle(ratelimit.NewMemoryLimiter(), 1, time.Minute)
	var gotRetry time.Duration
	r := gin.New()
	r.POST("/submit", throttle.HandleWith(func(c *gin.Context, retryAfter time.Duration) {
		gotRetry = retryAfter
		c.String(http.StatusTooManyRequests, "slow down")
	}), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	if rec := submit(r); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	rec := submit(r)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Body.String() != "slow down" {
		t.Fatalf("expected custom body, got %q", rec.Body.String())
	}
	if gotRetry <= 0 {
		t.Fatalf("expected positive retry-after, got %s", gotRetry)
	}
}
