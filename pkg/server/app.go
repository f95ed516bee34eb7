package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"LimesMS/internal/handler/ws"
	"LimesMS/pkg/config"
	xhttp "LimesMS/pkg/http"
	applogger "LimesMS/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	hub        *ws.Hub
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, log *applogger.Logger, srv *xhttp.Server, hub *ws.Hub) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{cfg: cfg, log: log, httpServer: srv, hub: hub}
}

// Run starts the HTTP server and blocks until ctx is done or an interrupt
// arrives, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("limes started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("series_source", a.cfg.Series.Source),
		applogger.String("default_profile", a.cfg.Signal.DefaultProfile),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown closes live sessions first so their refresh loops stop, then
// drains HTTP. Stores and clients are closed by the injector's cleanup.
func (a *App) shutdown() error {
	if a.hub != nil {
		a.hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
