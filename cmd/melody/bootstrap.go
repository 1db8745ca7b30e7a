package main

import (
	"context"
	"fmt"

	"github.com/hilthontt/melody/internal/infrastructure/collab"
	"github.com/hilthontt/melody/internal/infrastructure/configs"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
	"github.com/hilthontt/melody/internal/infrastructure/metrics"
	"github.com/hilthontt/melody/internal/infrastructure/tracing"
)

// deps holds what every process builds before its own components.
type deps struct {
	name    string
	cfg     *configs.Config
	logger  logging.Logger
	metrics *metrics.Metrics

	closers []func(context.Context) error
	// background runs next to the HTTP server and stops with it.
	background []func(context.Context) error
}

func bootstrap(name, configFlag string) (*deps, error) {
	cfg, err := configs.Load(configs.DetermineConfigPath(configFlag))
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
		AppName:  "melody-" + name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	shutdownTracer, err := tracing.InitTracer(tracing.Config{
		ServiceName: "melody-" + name,
		Environment: cfg.Service.Environment,
		Endpoint:    cfg.Tracing.Endpoint,
		Enabled:     cfg.Tracing.Enabled,
	})
	if err != nil {
		return nil, err
	}

	d := &deps{
		name:    name,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(name),
	}
	d.onClose(shutdownTracer)
	return d, nil
}

func (d *deps) runInBackground(fn func(context.Context) error) {
	d.background = append(d.background, fn)
}

func (d *deps) onClose(fn func(context.Context) error) {
	d.closers = append(d.closers, fn)
}

// close runs the registered closers in reverse order and flushes the logger.
func (d *deps) close(ctx context.Context) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			d.logger.Warn(logging.General, logging.Shutdown, "cleanup failed", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
	}
	_ = d.logger.Sync()
}

func (d *deps) publisher() *messaging.Publisher {
	return messaging.NewPublisher(messaging.PublisherConfig{
		URL:         d.cfg.RabbitMQ.URL,
		Exchange:    d.cfg.RabbitMQ.Exchange,
		DialTimeout: d.cfg.RabbitMQ.DialTimeout,
		AppID:       "melody-" + d.name,
	}, d.logger, messaging.WithPublisherMetrics(d.metrics))
}

func (d *deps) catalogClient() *collab.CatalogClient {
	return collab.NewCatalogClient(collab.NewClient(
		"catalog",
		d.cfg.Collaborators.CatalogBaseURL,
		d.cfg.Collaborators.Timeout,
		collab.WithMetrics(d.metrics),
	))
}

func (d *deps) profileClient() *collab.ProfileClient {
	return collab.NewProfileClient(collab.NewClient(
		"profile",
		d.cfg.Collaborators.ProfileBaseURL,
		d.cfg.Collaborators.Timeout,
		collab.WithMetrics(d.metrics),
	))
}
