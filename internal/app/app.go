package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/fibseq/internal/config"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/server"
	"github.com/agbru/fibseq/internal/ui"
)

// Application represents the fibseq application instance.
type Application struct {
	Config    config.AppConfig
	Engine    *sequence.Engine
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithEngine sets the sequence engine served by the application.
func WithEngine(e *sequence.Engine) AppOption {
	return func(a *Application) { a.Engine = e }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "fibseq"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.Engine == nil {
		app.Engine = sequence.New(sequence.WithShards(cfg.Shards))
	}
	return app, nil
}

// Run serves the sequence API until ctx is canceled or SIGINT/SIGTERM is
// received, and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	logger, err := logging.NewWithOptions(a.ErrWriter, logging.Options{
		Component: "fibseq",
		Level:     a.Config.LogLevel,
		Format:    a.Config.LogFormat,
		NoColor:   a.Config.NoColor,
	})
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error configuring logger: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	ui.InitTheme(a.Config.NoColor)
	srv := server.New(a.Engine, a.Config, server.WithLogger(logger))

	if !a.Config.Quiet {
		ui.PrintBanner(out, ui.BannerInfo{
			Version: Version,
			Addr:    a.Config.Addr(),
			Shards:  a.Engine.ShardCount(),
			Routes:  server.Routes(),
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return a.serve(ctx, srv, logger, sigCh)
}

// serve runs the server and its helpers until ctx is canceled or a signal
// arrives. An interrupt maps to ExitErrorCanceled; SIGTERM is a regular
// shutdown.
func (a *Application) serve(ctx context.Context, srv *server.Server, logger logging.Logger, signals <-chan os.Signal) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var interrupted atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case sig := <-signals:
			logger.Info("signal received, shutting down", logging.String("signal", sig.String()))
			interrupted.Store(sig == os.Interrupt)
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if a.Config.StatsInterval > 0 {
		g.Go(func() error {
			reportStats(gctx, a.Engine, logger, a.Config.StatsInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server terminated", err)
		return apperrors.ExitErrorGeneric
	}
	if interrupted.Load() {
		return apperrors.ExitErrorCanceled
	}
	return apperrors.ExitSuccess
}

// reportStats logs engine statistics every interval until ctx is done.
func reportStats(ctx context.Context, engine *sequence.Engine, logger logging.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := engine.Stats()
			logger.Info("engine stats",
				logging.Int("clients", st.Clients),
				logging.Int("cached_values", st.CachedValues))
		}
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// ExitCodeFor maps an error returned by New to a process exit code.
func ExitCodeFor(err error) int {
	var configErr apperrors.ConfigError
	switch {
	case err == nil, IsHelpError(err):
		return apperrors.ExitSuccess
	case errors.As(err, &configErr):
		return apperrors.ExitErrorConfig
	default:
		return apperrors.ExitErrorGeneric
	}
}
