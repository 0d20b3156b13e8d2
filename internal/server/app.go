// Package server initializes and runs the taskkeeper server. It opens the
// database, applies migrations, builds the session authenticator and its
// optional revocation store, and runs the JSON API next to the gRPC health
// endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	gs "github.com/dmitrijs2005/taskkeeper/internal/server/grpc"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/dmitrijs2005/taskkeeper/internal/server/telemetry"
)

const (
	purgeInterval   = time.Hour
	metricsInterval = time.Minute
)

type expiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *goredis.Client
	purger  expiredPurger
	metrics *telemetry.Reporter
	handler *httpapi.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}

	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	m, err := repomanager.NewPostgresRepositoryManager(app.db)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	secrets, err := auth.NewSecrets(c.AccessTokenSecret, c.RefreshTokenSecret,
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if err != nil {
		return err
	}

	app.metrics = telemetry.NewReporter(app.logger)
	metrics, err := auth.NewMetrics(app.metrics.MeterProvider())
	if err != nil {
		return fmt.Errorf("metrics init error: %w", err)
	}

	opts := []auth.Option{auth.WithMetrics(metrics), auth.WithLogger(app.logger.With("module", "auth"))}

	switch c.RefreshRevocation {
	case config.RevocationPostgres:
		store := m.Revocations(app.db)
		opts = append(opts, auth.WithRevocationStore(store))
		if p, ok := store.(expiredPurger); ok {
			app.purger = p
		}
	case config.RevocationRedis:
		app.redis = revocations.NewClient(c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis init error: %w", err)
		}
		opts = append(opts, auth.WithRevocationStore(revocations.NewRedisRepository(app.redis)))
	}

	authenticator := auth.NewAuthenticator(auth.NewSigner(secrets), opts...)

	var export httpapi.ExportService
	if c.ExportEnabled() {
		export = services.NewExportService(app.db, m, c)
	}

	app.handler = httpapi.NewHandler(httpapi.Deps{
		Auth:          authenticator,
		Users:         services.NewUserService(app.db, m),
		Todos:         services.NewTodoService(app.db, m),
		Export:        export,
		Logger:        app.logger,
		SecureCookies: c.Production,
	})

	app.logger.Info(ctx, "App initialized",
		"refresh_revocation", c.RefreshRevocation,
		"export_enabled", c.ExportEnabled(),
		"production", c.Production,
	)

	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(app.handler, httpapi.RouterOptions{AllowedOrigins: app.config.AllowedOrigins})
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeRevocations drops expired rows from the postgres revocation list.
func (app *App) purgeRevocations(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := app.purger.PurgeExpired(ctx, now)
			if err != nil {
				app.logger.Warn(ctx, "revocation purge failed", "error", err)
				continue
			}
			app.logger.Debug(ctx, "revocation purge done", "deleted", n)
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.metrics.Run(ctx, metricsInterval)
	}()

	if app.purger != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.purgeRevocations(ctx)
		}()
	}

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
}
