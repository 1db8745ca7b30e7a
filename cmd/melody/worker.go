package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	notificationService "github.com/hilthontt/melody/internal/application/notifications"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
	healthHandler "github.com/hilthontt/melody/internal/presentation/handler/health"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// exitRetriesExhausted is the status a supervisor sees when the worker gave
// up reconnecting.
const exitRetriesExhausted = 3

func runWorker(ctx context.Context, configFlag, policyFlag string) error {
	d, err := bootstrap("worker", configFlag)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		d.close(closeCtx)
	}()

	policyName := d.cfg.Worker.FailurePolicy
	if policyFlag != "" {
		policyName = policyFlag
	}
	policy, err := messaging.ParseFailurePolicy(policyName)
	if err != nil {
		return err
	}

	repo, err := notificationRepository(ctx, d)
	if err != nil {
		return err
	}

	worker := messaging.NewWorker(messaging.WorkerConfig{
		URL: d.cfg.RabbitMQ.URL,
		Topology: messaging.Topology{
			Exchange:           d.cfg.RabbitMQ.Exchange,
			Queue:              d.cfg.Worker.Queue,
			BindingKeys:        d.cfg.Worker.BindingKeys,
			DeadLetterExchange: d.cfg.Worker.DeadLetterExchange,
		},
		ConsumerTag:   d.cfg.Worker.ConsumerTag,
		DialTimeout:   d.cfg.RabbitMQ.DialTimeout,
		RetryDelay:    d.cfg.Worker.RetryDelay,
		MaxRetries:    d.cfg.Worker.MaxRetries,
		FailurePolicy: policy,
	}, notificationService.NewProjector(repo, d.logger), d.logger, messaging.WithWorkerMetrics(d.metrics))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := chi.NewRouter()
	r.Get("/health", healthHandler.NewHandler("worker").GetHealth)
	r.Handle("/metrics", d.metrics.Handler())
	srv := &http.Server{
		Addr:              d.cfg.Worker.MetricsAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.logger.Info(logging.Prometheus, logging.Startup, "metrics server has started", map[logging.ExtraKey]any{
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})

	err = g.Wait()
	if errors.Is(err, messaging.ErrRetriesExhausted) {
		d.logger.Error(logging.RabbitMQ, logging.Connect, "worker aborted", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
			"attempts":           worker.Attempts(),
		})
		return cli.Exit(err.Error(), exitRetriesExhausted)
	}
	return err
}
