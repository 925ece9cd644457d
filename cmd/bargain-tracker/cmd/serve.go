package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/bargain-tracker/internal/api"
	"github.com/donaldgifford/bargain-tracker/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	var noWorkers bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server, scheduler and workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), !noWorkers)
		},
	}
	cmd.Flags().BoolVar(&noWorkers, "no-workers", false, "serve the API and scheduler without processing tasks")

	return cmd
}

func runServe(parent context.Context, withWorkers bool) error {
	ctx, stop := signalContext(parent)
	defer stop()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	a.scheduler.RecoverStaleJobRuns(ctx)
	a.scheduler.Start()
	a.scheduler.SyncNextRunTimestamps()

	var wg sync.WaitGroup
	if withWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.pool().Run(ctx)
		}()
	}

	e := api.NewServer(api.Deps{
		Store:         a.store,
		Bargains:      a.registry,
		Tracker:       a.engine,
		Subscriptions: a.subs,
		Products:      a.catalog,
		Distributor:   a.scheduler,
		Queue:         a.engine,
		Jobs:          a.store,
	}, Version, logger.Component(a.log, "http"))
	e.Server.ReadTimeout = a.cfg.Server.ReadTimeout
	e.Server.WriteTimeout = a.cfg.Server.WriteTimeout

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	a.log.Info("starting server", "addr", addr, "workers", withWorkers)

	serveErr := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			a.log.Error("server error", "error", err)
		}
		stop()
	}

	a.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		a.log.Error("shutting down server", "error", err)
	}
	select {
	case <-a.scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		a.log.Warn("scheduler did not stop before timeout")
	}
	wg.Wait()

	a.log.Info("server stopped")
	return nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(contextOrBackground(parent), os.Interrupt, syscall.SIGTERM)
}
