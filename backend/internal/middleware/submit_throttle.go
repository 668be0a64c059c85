package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	response "process-entry-app/backend/internal/infra/common"
	appLogger "process-entry-app/backend/internal/infra/logger"
	"process-entry-app/backend/internal/infra/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmitThrottle limits how often one client IP may submit records.
type SubmitThrottle struct {
	limiter ratelimit.Limiter
	limit   int
	window  time.Duration
	logger  *zap.SugaredLogger
}

// NewSubmitThrottle builds the middleware. limit <= 0 lets everything through.
func NewSubmitThrottle(limiter ratelimit.Limiter, limit int, window time.Duration) *SubmitThrottle {
	if window <= 0 {
		window = time.Minute
	}
	return &SubmitThrottle{
		limiter: limiter,
		limit:   limit,
		window:  window,
		logger:  appLogger.Component("middleware.throttle"),
	}
}

// LimitedFunc writes the response for a throttled request.
type LimitedFunc func(c *gin.Context, retryAfter time.Duration)

// Handle returns the gin middleware answering throttled requests with the JSON
// envelope. Limiter errors fail open.
func (m *SubmitThrottle) Handle() gin.HandlerFunc {
	return m.HandleWith(func(c *gin.Context, _ time.Duration) {
		response.Fail(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "too many submissions, try again shortly", nil)
	})
}

// HandleWith is Handle with a caller supplied response for throttled requests.
func (m *SubmitThrottle) HandleWith(onLimited LimitedFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || m.limiter == nil || m.limit <= 0 {
			c.Next()
			return
		}
		ip := strings.TrimSpace(c.ClientIP())
		if ip == "" {
			c.Next()
			return
		}

		res, err := m.limiter.Allow(c.Request.Context(), "submit:"+ip, m.limit, m.window)
		if err != nil {
			m.logger.Warnw("submit throttle check failed", "ip", ip, "error", err)
			c.Next()
			return
		}
		if !res.Allowed {
			if res.RetryAfter > 0 {
				c.Header("Retry-After", fmt.Sprintf("%d", int(res.RetryAfter.Seconds()+0.5)))
			}
			m.logger.Infow("submission throttled", "ip", ip, "retry_after", res.RetryAfter)
			onLimited(c, res.RetryAfter)
			c.Abort()
			return
		}
		c.Next()
	}
}
