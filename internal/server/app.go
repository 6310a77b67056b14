// Package server wires the wallet services together and runs them: the gRPC
// API, the metrics and health HTTP endpoint and the blacklist cleanup
// schedule. It stops all of them on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/dmitrijs2005/gowallet/internal/server/auth"
	"github.com/dmitrijs2005/gowallet/internal/server/config"
	"github.com/dmitrijs2005/gowallet/internal/server/metrics"
	"github.com/dmitrijs2005/gowallet/internal/server/notify"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gowallet/internal/server/services"
	"github.com/dmitrijs2005/gowallet/internal/server/worker/cleanup"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gowallet/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	manager   repomanager.RepositoryManager
	registry  *prometheus.Registry
	grpc      *gs.GRPCServer
	scheduler *cleanup.Scheduler
}

// newRepositoryManager is a seam for tests.
var newRepositoryManager = repomanager.New

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	manager, err := newRepositoryManager(ctx, c.StorageKind, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := manager.RunMigrations(ctx); err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app, err := build(ctx, c, logger, manager)
	if err != nil {
		_ = manager.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, manager repomanager.RepositoryManager) (*App, error) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	sink, err := newNotificationSink(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	codec := auth.NewCodec([]byte(c.SecretKey))
	verifier := services.NewCredentialVerifier(manager)
	blacklist := services.NewTokenBlacklist(manager, codec, c, logger)

	svc := gs.Services{
		Users:         services.NewUserService(manager, logger),
		Sessions:      services.NewSessionService(manager, verifier, codec, blacklist, c, collector, logger),
		Authenticator: services.NewAuthenticator(codec, blacklist, verifier, collector, logger),
		Blacklist:     blacklist,
		Ledger:        services.NewLedgerService(manager, notify.NewNotifier(sink), c, collector, logger),
	}

	if c.AdminEmail != "" && c.AdminPassword != "" {
		if err := svc.Users.EnsureAdmin(ctx, c.AdminEmail, c.AdminPassword); err != nil {
			return nil, fmt.Errorf("admin bootstrap: %w", err)
		}
	}

	if n, err := blacklist.Size(ctx); err == nil {
		collector.SetBlacklistSize(n)
	}

	scheduler, err := cleanup.NewScheduler(
		cleanup.NewJob(blacklist, collector, logger),
		c.CleanupSchedule, c.DeepCleanupSchedule, logger,
	)
	if err != nil {
		return nil, err
	}

	limiter := gs.NewLoginLimiter(c.LoginRatePerMinute, c.LoginBurst)

	return &App{
		config:    c,
		logger:    logger,
		manager:   manager,
		registry:  registry,
		grpc:      gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, limiter),
		scheduler: scheduler,
	}, nil
}

// newNotificationSink always logs notifications and also writes them to the
// S3 outbox when a bucket is configured.
func newNotificationSink(ctx context.Context, c *config.Config, logger logging.Logger) (notify.Sink, error) {
	sinks := notify.Multi{notify.NewLogSink(logger)}
	if c.S3Bucket == "" {
		return sinks, nil
	}

	client, err := notify.NewS3Client(ctx, notify.S3Config{
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 outbox: %w", err)
	}
	return append(sinks, notify.NewS3Outbox(client, c.S3Bucket)), nil
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

func (app *App) runMetricsServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           metrics.NewRouter(app.registry, app.manager.Conn()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Run blocks until ctx is cancelled, a signal arrives or one of the
// components fails. The first failure stops the others.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(ctx) })
	g.Go(func() error { return app.runMetricsServer(ctx) })
	g.Go(func() error { return app.scheduler.Start(ctx) })

	err := g.Wait()

	if cerr := app.manager.Close(); cerr != nil {
		app.logger.Error(context.Background(), "closing storage", "error", cerr.Error())
	}

	app.logger.Info(context.Background(), "App stopped")
	return err
}
