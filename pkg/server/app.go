package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"EmaPull/internal/service/stream"
	"EmaPull/internal/usecase"
	"EmaPull/pkg/cache"
	pkgch "EmaPull/pkg/clickhouse"
	"EmaPull/pkg/config"
	xhttp "EmaPull/pkg/http"
	applogger "EmaPull/pkg/logger"
)

// App encapsulates the entire application lifecycle: the interval
// pipeline loop, the optional kline stream updater, and the HTTP API.
type App struct {
	cfg        *config.Config
	pipeline   *usecase.Pipeline
	updater    *stream.Updater
	redis      *cache.RedisCache
	chClient   *pkgch.Client
	httpServer *xhttp.Server
	log        *applogger.Logger

	// Once makes Run execute a single pipeline pass and exit instead
	// of looping.
	Once bool

	closers []func() error
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	pipeline *usecase.Pipeline,
	updater *stream.Updater,
	redis *cache.RedisCache,
	chClient *pkgch.Client,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:      cfg,
		pipeline: pipeline,
		updater:  updater,
		redis:    redis,
		chClient: chClient,
		log:      log,
	}
}

// SetHTTPHandler injects the Echo handler serving the read API.
func (a *App) SetHTTPHandler(h xhttp.Handler) {
	a.httpServer = xhttp.NewServer(h,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)
}

// AddCloser registers a resource to close on shutdown.
func (a *App) AddCloser(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Run starts the application and blocks until interrupted. In Once
// mode it performs a single pipeline pass and returns.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.Once {
		_, err := a.pipeline.Run(ctx)
		a.closeAll()
		return err
	}

	// first pass immediately, then on the interval
	runErr := make(chan error, 1)
	go func() {
		if _, err := a.pipeline.Run(ctx); err != nil {
			runErr <- err
			return
		}
		ticker := time.NewTicker(a.cfg.Pipeline.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := a.pipeline.Run(ctx); err != nil {
					runErr <- err
					return
				}
			}
		}
	}()
	a.log.Info("pipeline loop started",
		applogger.Strings("symbols", a.cfg.Pipeline.Symbols),
		applogger.String("timeframe", a.cfg.Pipeline.Timeframe),
		applogger.Duration("interval", a.cfg.Pipeline.Interval),
	)

	if a.updater != nil {
		go a.updater.Run(ctx)
		a.log.Info("kline stream updater started")
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.log.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-runErr:
		// only an unusable cache aborts the loop
		a.log.Error("pipeline aborted", applogger.Error(err))
		a.shutdown(cancel)
		return err
	case <-sigCh:
		a.log.Info("shutdown signal received")
		return a.shutdown(cancel)
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(cancel context.CancelFunc) error {
	cancel()

	if a.updater != nil {
		if err := a.updater.Close(); err != nil {
			a.log.Warn("stream close error", applogger.Error(err))
		}
	}

	if a.httpServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancelShutdown()
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	a.closeAll()

	a.log.Info("shutdown complete")
	return nil
}

func (a *App) closeAll() {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.log.Warn("close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("redis close error", applogger.Error(err))
		}
	}
}
