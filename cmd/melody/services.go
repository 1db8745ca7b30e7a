package main

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	authService "github.com/hilthontt/melody/internal/application/auth"
	catalogService "github.com/hilthontt/melody/internal/application/catalog"
	libraryService "github.com/hilthontt/melody/internal/application/library"
	notificationService "github.com/hilthontt/melody/internal/application/notifications"
	playbackService "github.com/hilthontt/melody/internal/application/playback"
	profileService "github.com/hilthontt/melody/internal/application/profile"
	searchService "github.com/hilthontt/melody/internal/application/search"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
	"github.com/hilthontt/melody/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/melody/internal/infrastructure/repository"
	"github.com/hilthontt/melody/internal/persistence/db"
	persistence "github.com/hilthontt/melody/internal/persistence/repository"
	"github.com/hilthontt/melody/internal/presentation/api"
	authHandler "github.com/hilthontt/melody/internal/presentation/handler/auth"
	catalogHandler "github.com/hilthontt/melody/internal/presentation/handler/catalog"
	healthHandler "github.com/hilthontt/melody/internal/presentation/handler/health"
	libraryHandler "github.com/hilthontt/melody/internal/presentation/handler/library"
	notificationHandler "github.com/hilthontt/melody/internal/presentation/handler/notifications"
	playbackHandler "github.com/hilthontt/melody/internal/presentation/handler/playback"
	profileHandler "github.com/hilthontt/melody/internal/presentation/handler/profile"
	searchHandler "github.com/hilthontt/melody/internal/presentation/handler/search"
	"golang.org/x/sync/errgroup"
)

var serviceNames = []string{"auth", "profile", "catalog", "library", "playback", "notifications", "search"}

func runService(ctx context.Context, name, configFlag string, port uint16) error {
	d, err := bootstrap(name, configFlag)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		d.close(closeCtx)
	}()

	if port > 0 {
		d.cfg.HTTP.Port = port
	}

	routes, err := buildRoutes(ctx, d)
	if err != nil {
		d.logger.Error(logging.General, logging.Startup, "failed to build service", map[logging.ExtraKey]any{
			logging.Service:      name,
			logging.ErrorMessage: err.Error(),
		})
		return err
	}

	limiter := ratelimiter.New(ratelimiter.Config{
		MaxRatePerSecond: d.cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         d.cfg.RateLimiter.MaxBurst,
		CacheTTL:         d.cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  d.cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(*d.cfg, name, routes, healthHandler.NewHandler(name), d.logger, limiter, d.metrics)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return app.Run(gctx, app.Mount())
	})
	for _, run := range d.background {
		g.Go(func() error { return run(gctx) })
	}
	return g.Wait()
}

func buildRoutes(ctx context.Context, d *deps) (api.Routes, error) {
	switch d.name {
	case "auth":
		conn, err := postgresConn(ctx, d, db.AuthSchema)
		if err != nil {
			return nil, err
		}
		users, tokens := repository.NewUserRepository(), repository.NewTokenRepository()
		if conn != nil {
			users, tokens = persistence.NewPostgresUserRepository(conn), persistence.NewPostgresTokenRepository(conn)
		}
		svc := authService.NewService(users, tokens, d.profileClient(), d.publisher(), d.logger)
		return authHandler.NewHandler(svc, d.logger), nil

	case "profile":
		conn, err := postgresConn(ctx, d, db.ProfileSchema)
		if err != nil {
			return nil, err
		}
		repo := repository.NewProfileRepository()
		if conn != nil {
			repo = persistence.NewPostgresProfileRepository(conn)
		}
		svc := profileService.NewService(repo, d.publisher(), d.logger)
		return profileHandler.NewHandler(svc, d.logger), nil

	case "catalog":
		conn, err := postgresConn(ctx, d, db.CatalogSchema)
		if err != nil {
			return nil, err
		}
		repo := repository.NewCatalogRepository()
		if conn != nil {
			repo = persistence.NewPostgresCatalogRepository(conn)
		}
		svc := catalogService.NewService(repo, d.publisher(), d.logger)
		return catalogHandler.NewHandler(svc, d.logger), nil

	case "library":
		conn, err := postgresConn(ctx, d, db.LibrarySchema)
		if err != nil {
			return nil, err
		}
		repo := repository.NewLibraryRepository()
		if conn != nil {
			repo = persistence.NewPostgresLibraryRepository(conn)
		}
		svc := libraryService.NewService(repo, d.catalogClient(), d.publisher(), d.logger)
		return libraryHandler.NewHandler(svc, d.logger), nil

	case "playback":
		conn, err := postgresConn(ctx, d, db.PlaybackSchema)
		if err != nil {
			return nil, err
		}
		repo := repository.NewPlaybackRepository()
		if conn != nil {
			repo = persistence.NewPostgresPlaybackRepository(conn)
		}
		svc := playbackService.NewService(repo, d.catalogClient(), d.publisher(), d.logger)
		return playbackHandler.NewHandler(svc, d.logger), nil

	case "notifications":
		repo, err := notificationRepository(ctx, d)
		if err != nil {
			return nil, err
		}
		return notificationHandler.NewHandler(notificationService.NewService(repo), d.logger), nil

	case "search":
		policy, err := messaging.ParseFailurePolicy(d.cfg.Worker.FailurePolicy)
		if err != nil {
			return nil, err
		}
		index := repository.NewSearchIndex()
		worker := messaging.NewWorker(messaging.WorkerConfig{
			URL: d.cfg.RabbitMQ.URL,
			Topology: messaging.Topology{
				Exchange:           d.cfg.RabbitMQ.Exchange,
				Queue:              d.cfg.Search.Queue,
				BindingKeys:        searchService.BindingKeys,
				DeadLetterExchange: d.cfg.Worker.DeadLetterExchange,
			},
			ConsumerTag:   d.cfg.Search.ConsumerTag,
			DialTimeout:   d.cfg.RabbitMQ.DialTimeout,
			RetryDelay:    d.cfg.Worker.RetryDelay,
			MaxRetries:    d.cfg.Worker.MaxRetries,
			FailurePolicy: policy,
		}, searchService.NewProjector(index, d.logger), d.logger, messaging.WithWorkerMetrics(d.metrics))
		d.runInBackground(worker.Run)
		return searchHandler.NewHandler(searchService.NewService(index), d.logger), nil
	}

	return nil, fmt.Errorf("unknown service %q", d.name)
}

// postgresConn opens the service's database and applies its schema. It
// returns a nil connection when no DSN is configured, in which case the
// service keeps its data in memory.
func postgresConn(ctx context.Context, d *deps, schema []string) (*sql.DB, error) {
	if d.cfg.Postgres.DSN == "" {
		d.logger.Warn(logging.Storage, logging.Startup, "postgres.dsn not set, data is kept in memory", map[logging.ExtraKey]any{
			logging.Service: d.name,
		})
		return nil, nil
	}

	conn, err := db.NewPostgres(ctx, &db.PostgresConfig{
		DSN:             d.cfg.Postgres.DSN,
		MaxOpenConns:    d.cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    d.cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: d.cfg.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	d.onClose(func(context.Context) error { return conn.Close() })

	if err := db.EnsureSchema(ctx, conn, schema); err != nil {
		return nil, err
	}

	d.logger.Info(logging.Storage, logging.Startup, "connected to postgres", nil)
	return conn, nil
}

// notificationRepository uses MongoDB when a URI is configured. The worker
// and the notifications service only share data through MongoDB.
func notificationRepository(ctx context.Context, d *deps) (domain.NotificationRepository, error) {
	if d.cfg.Mongo.URI == "" {
		d.logger.Warn(logging.Storage, logging.Startup, "mongo.uri not set, notifications are kept in memory", nil)
		return repository.NewNotificationRepository(), nil
	}

	mongoCfg := &db.MongoConfig{
		URI:               d.cfg.Mongo.URI,
		Database:          d.cfg.Mongo.Database,
		ConnectionTimeout: d.cfg.Mongo.Timeout,
	}
	client, err := db.NewMongoClient(ctx, mongoCfg, d.logger)
	if err != nil {
		return nil, err
	}
	d.onClose(func(ctx context.Context) error { return db.DisconnectMongo(ctx, client) })

	database := db.GetDatabase(client, mongoCfg)
	if err := persistence.EnsureNotificationIndexes(ctx, database); err != nil {
		return nil, err
	}
	return persistence.NewMongoNotificationRepository(database), nil
}
