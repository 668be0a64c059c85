package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"process-entry-app/backend/internal/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type RouterOptions struct {
	ProcessFormHandler   *handler.ProcessFormHandler
	ProcessRecordHandler *handler.ProcessRecordHandler
	Templates            *template.Template
	StaticFS             http.FileSystem
	HealthCheck          HealthCheck
	SubmitGuard          gin.HandlerFunc
	// FormSubmitGuard guards POST /; nil falls back to SubmitGuard.
	FormSubmitGuard gin.HandlerFunc
}

// NewRouter builds the gin engine: form pages, JSON API, health, metrics and
// static assets.
func NewRouter(opts RouterOptions) (*gin.Engine, error) {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  false,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
		AllowOriginFunc: func(origin string) bool {
			if origin == "" {
				return false
			}
			return strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:")
		},
	}))
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: gin.LogFormatter(func(params gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s\" %d %s\n",
				params.ClientIP,
				params.TimeStamp.Format(time.RFC3339),
				params.Method,
				params.Path,
				params.StatusCode,
				params.Latency,
			)
		}),
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	tmpl := opts.Templates
	if tmpl == nil {
		parsed, err := Templates()
		if err != nil {
			return nil, err
		}
		tmpl = parsed
	}
	r.SetHTMLTemplate(tmpl)

	static := opts.StaticFS
	if static == nil {
		embedded, err := NewStaticFS("")
		if err != nil {
			return nil, err
		}
		static = embedded
	}
	r.StaticFS("/static", static)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthz(opts.HealthCheck))

	guarded := func(guard, h gin.HandlerFunc) []gin.HandlerFunc {
		if guard == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{guard, h}
	}
	submit := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return guarded(opts.SubmitGuard, h)
	}

	if opts.ProcessFormHandler != nil {
		formGuard := opts.FormSubmitGuard
		if formGuard == nil {
			formGuard = opts.SubmitGuard
		}
		r.GET("/", opts.ProcessFormHandler.Show)
		r.POST("/", guarded(formGuard, opts.ProcessFormHandler.Submit)...)
	}

	api := r.Group("/api")
	{
		if opts.ProcessRecordHandler != nil {
			records := api.Group("/process-records")
			records.GET("", opts.ProcessRecordHandler.List)
			records.POST("", submit(opts.ProcessRecordHandler.Create)...)
			records.GET("/:id", opts.ProcessRecordHandler.Get)
		}
	}

	return r, nil
}

func healthz(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
