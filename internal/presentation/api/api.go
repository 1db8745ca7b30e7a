package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/melody/internal/infrastructure/configs"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/metrics"
	"github.com/hilthontt/melody/internal/infrastructure/ratelimiter"
	healthHandler "github.com/hilthontt/melody/internal/presentation/handler/health"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const APIPrefix = "/api/v1"

// Routes attaches a service's endpoints to a router.
type Routes interface {
	Routes(r chi.Router)
}

// InternalRoutes are mounted outside the public prefix, for calls between
// services.
type InternalRoutes interface {
	InternalRoutes(r chi.Router)
}

type Application struct {
	config        configs.Config
	service       string
	routes        Routes
	healthHandler *healthHandler.Handler
	logger        logging.Logger
	ratelimiter   ratelimiter.Limiter
	metrics       *metrics.Metrics
}

func NewApplication(
	config configs.Config,
	service string,
	routes Routes,
	healthHandler *healthHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
	metrics *metrics.Metrics,
) *Application {
	return &Application{
		config:        config,
		service:       service,
		routes:        routes,
		healthHandler: healthHandler,
		logger:        logger,
		ratelimiter:   ratelimiter,
		metrics:       metrics,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(app.loggerMiddleware)
	r.Use(app.prometheusMiddleware)
	r.Use(app.enableCors)

	r.Get("/health", app.healthHandler.GetHealth)
	r.Get("/healthz", app.healthHandler.GetHealth)
	r.Get("/ready", app.healthHandler.GetHealth)
	r.Get("/live", app.healthHandler.GetHealth)
	r.Handle("/metrics", app.metrics.Handler())

	if internal, ok := app.routes.(InternalRoutes); ok {
		r.Group(internal.InternalRoutes)
	}

	r.Route(APIPrefix, func(r chi.Router) {
		if app.ratelimiter != nil {
			r.Use(app.rateLimiterMiddleware)
		}
		app.routes.Routes(r)
	})

	return r
}

// Run serves mux until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then shuts the server down gracefully.
func (app *Application) Run(ctx context.Context, mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      otelhttp.NewHandler(mux, app.service),
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := make(chan error, 1)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "shutdown requested", map[logging.ExtraKey]any{
			logging.Service: app.service,
			"cause":         context.Cause(ctx).Error(),
		})

		shutdown <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		logging.Service: app.service,
		"addr":          srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		logging.Service: app.service,
		"addr":          srv.Addr,
	})

	return nil
}
