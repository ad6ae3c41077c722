package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/danyanovich/dwfx2pdf/internal/infra/config"
	"github.com/danyanovich/dwfx2pdf/internal/transport"
)

type app struct {
	di  *dependencyInjector
	srv *http.Server
}

// New assembles the web entry point: the upload handler wired to the
// shared invoker, behind logging and recover middleware.
func New(ctx context.Context, cfg *config.Config) *app {
	di := NewDI(cfg)
	di.Logger()
	mux := http.NewServeMux()
	return &app{
		di: di,
		srv: &http.Server{
			Addr: net.JoinHostPort(cfg.Web.Host, strconv.Itoa(cfg.Web.Port)),
			Handler: transport.WithRecover(
				transport.WithLogging(
					di.Router(ctx).MountRoutes(mux),
				),
			),
		},
	}
}

func (a *app) Run(ctx context.Context) error {
	errCh := make(chan error)
	go func() {
		slog.Info("starting web server", slog.String("addr", a.srv.Addr))
		if e := a.srv.ListenAndServe(); e != nil && !errors.Is(e, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", e.Error()))
			errCh <- e
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		a.di.Config().Web.ShutdownTimeout.Std(),
	)
	defer cancel()

	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
		return err
	}

	if m := a.di.mirror; m != nil {
		if err := m.Stop(shutdownCtx); err != nil {
			slog.Warn("mirror stop", slog.String("error", err.Error()))
		}
	}

	slog.Info("server gracefully stopped")
	return nil
}

// RunConvert is the batch entry point: convert everything currently in the
// input directory and report the failure count.
func RunConvert(ctx context.Context, cfg *config.Config) error {
	di := NewDI(cfg)
	di.Logger()

	failures, err := di.Scheduler(ctx).ConvertAll(
		ctx,
		cfg.InputDir,
		cfg.OutputDir,
		cfg.Overwrite,
		cfg.Workers,
	)
	if err != nil {
		return err
	}
	if m := di.mirror; m != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout.Std())
		defer cancel()
		if err := m.Stop(stopCtx); err != nil {
			slog.Warn("mirror stop", slog.String("error", err.Error()))
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d conversion(s) failed", failures)
	}
	return nil
}

// RunWatch is the watch entry point: runs until ctx is canceled.
func RunWatch(ctx context.Context, cfg *config.Config) error {
	di := NewDI(cfg)
	di.Logger()

	err := di.Watcher(ctx).Run(ctx)

	if m := di.mirror; m != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout.Std())
		defer cancel()
		if err := m.Stop(stopCtx); err != nil {
			slog.Warn("mirror stop", slog.String("error", err.Error()))
		}
	}
	return err
}
