package app

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/danyanovich/dwfx2pdf/internal/batch"
	"github.com/danyanovich/dwfx2pdf/internal/convert"
	"github.com/danyanovich/dwfx2pdf/internal/infra/config"
	"github.com/danyanovich/dwfx2pdf/internal/mirror"
	"github.com/danyanovich/dwfx2pdf/internal/progress"
	"github.com/danyanovich/dwfx2pdf/internal/transport"
	"github.com/danyanovich/dwfx2pdf/internal/watch"
)

type Router interface {
	MountRoutes(*http.ServeMux) *http.ServeMux
}

// dependencyInjector wires the shared conversion stack lazily; every
// getter memoizes so the three entry points see the same invoker.
type dependencyInjector struct {
	cfg    *config.Config
	logger *slog.Logger

	invoker   *convert.Invoker
	mirror    *mirror.Mirror
	scheduler *batch.Scheduler
	watcher   *watch.Watcher
	handler   transport.Handler
	router    Router
}

func NewDI(cfg *config.Config) *dependencyInjector {
	return &dependencyInjector{cfg: cfg}
}

func (di *dependencyInjector) Config() *config.Config {
	return di.cfg
}

func (di *dependencyInjector) Logger() *slog.Logger {
	if di.logger == nil {
		di.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	slog.SetDefault(di.logger)
	return di.logger
}

func (di *dependencyInjector) Invoker(ctx context.Context) *convert.Invoker {
	if di.invoker == nil {
		cfg := di.Config()
		bin, err := convert.Locate(cfg.Converter.Binary, cfg.Converter.FallbackPaths)
		if err != nil {
			log.Fatalf("converter: %+v", err)
		}
		di.Logger().Info("using converter", slog.String("binary", bin))

		di.invoker = convert.NewInvoker(bin)

		if m := di.Mirror(ctx); m != nil {
			di.invoker.WithMirror(m)
		}
	}
	return di.invoker
}

func (di *dependencyInjector) Mirror(ctx context.Context) *mirror.Mirror {
	if di.mirror == nil {
		cfg := di.Config()
		if !cfg.Mirror.Enabled {
			return nil
		}

		m, err := mirror.New(ctx, cfg.Mirror)
		if err != nil {
			log.Fatalf("mirror: %+v", err)
		}
		m.Start(ctx)
		di.Logger().Info("pdf mirror enabled",
			slog.String("endpoint", cfg.Mirror.Endpoint),
			slog.String("bucket", cfg.Mirror.Bucket),
		)
		di.mirror = m
	}
	return di.mirror
}

func (di *dependencyInjector) Scheduler(ctx context.Context) *batch.Scheduler {
	if di.scheduler == nil {
		di.scheduler = batch.NewScheduler(di.Invoker(ctx), progress.NewLogReporter())
	}
	return di.scheduler
}

func (di *dependencyInjector) Watcher(ctx context.Context) *watch.Watcher {
	if di.watcher == nil {
		cfg := di.Config()
		di.watcher = watch.New(di.Invoker(ctx), cfg.InputDir, cfg.OutputDir, watch.Options{
			Overwrite:    cfg.Overwrite,
			PollInterval: cfg.Watch.PollInterval.Std(),
			MaxPolls:     cfg.Watch.MaxPolls,
		})
	}
	return di.watcher
}

func (di *dependencyInjector) Handler(ctx context.Context) transport.Handler {
	if di.handler == nil {
		cfg := di.Config()
		di.handler = transport.NewHandler(
			cfg.Web.MaxUploadMB,
			cfg.UploadDir,
			cfg.OutputDir,
			di.Invoker(ctx),
		)
	}
	return di.handler
}

func (di *dependencyInjector) Router(ctx context.Context) Router {
	if di.router == nil {
		di.router = transport.NewRouter(di.Handler(ctx))
	}
	return di.router
}
