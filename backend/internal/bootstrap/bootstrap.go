package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"process-entry-app/backend/internal/app"
	"process-entry-app/backend/internal/handler"
	"process-entry-app/backend/internal/infra/ratelimit"
	"process-entry-app/backend/internal/middleware"
	"process-entry-app/backend/internal/repository"
	"process-entry-app/backend/internal/server"
	processsvc "process-entry-app/backend/internal/service/process"

	"go.uber.org/zap"
)

type Application struct {
	Resources  *app.Resources
	ProcessSvc *processsvc.Service
	Query      *processsvc.Query
	Router     http.Handler
}

// BuildApplication wires repository, workflow, handlers and router on top of
// already opened resources.
func BuildApplication(ctx context.Context, logger *zap.SugaredLogger, resources *app.Resources) (*Application, error) {
	if err := resources.Ping(ctx); err != nil {
		return nil, fmt.Errorf("store not reachable: %w", err)
	}

	repo := repository.NewProcessRecordRepository(resources.DB)

	processService := processsvc.NewService(repo, resources.Bus, processsvc.Options{
		Location: resources.Config.Location,
		Logger:   logger.With("component", "process.service"),
	})
	query := processsvc.NewQuery(repo)

	static, err := server.NewStaticFS(resources.Config.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	var limiter ratelimit.Limiter
	if resources.Redis != nil {
		limiter = ratelimit.NewRedisLimiter(resources.Redis, "processentry")
	} else {
		limiter = ratelimit.NewMemoryLimiter()
		if resources.Config.Throttle.Limit > 0 {
			logger.Infow("using in-memory submit throttle; counters are per instance")
		}
	}
	throttle := middleware.NewSubmitThrottle(limiter, resources.Config.Throttle.Limit, resources.Config.Throttle.Window)

	formHandler := handler.NewProcessFormHandler(processService)
	router, err := server.NewRouter(server.RouterOptions{
		ProcessFormHandler:   formHandler,
		ProcessRecordHandler: handler.NewProcessRecordHandler(processService, query),
		StaticFS:             static,
		HealthCheck:          resources.Ping,
		SubmitGuard:          throttle.Handle(),
		FormSubmitGuard:      throttle.HandleWith(formHandler.Throttled),
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	logger.Infow("application wired", "static_override", resources.Config.StaticDir != "")

	return &Application{
		Resources:  resources,
		ProcessSvc: processService,
		Query:      query,
		Router:     router,
	}, nil
}
