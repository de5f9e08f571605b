package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/shelfd/internal/config"
	"github.com/nadzzz/shelfd/internal/health"
	"github.com/nadzzz/shelfd/internal/invoker"
	"github.com/nadzzz/shelfd/internal/invoker/cli"
	"github.com/nadzzz/shelfd/internal/invoker/ollama"
	"github.com/nadzzz/shelfd/internal/mediator"
	"github.com/nadzzz/shelfd/internal/transport"
	grpctransport "github.com/nadzzz/shelfd/internal/transport/grpc"
	httptransport "github.com/nadzzz/shelfd/internal/transport/http"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the query mediator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg, a.configFile)
		},
	}
}

// newInvoker builds the configured model backend, bounded to
// model.max_concurrent invocations at a time.
func newInvoker(cfg config.ModelConfig) (invoker.Invoker, error) {
	var inv invoker.Invoker
	switch cfg.Backend {
	case "cli":
		inv = cli.New(cfg)
		slog.Info("using model runtime", "runtime", cfg.Runtime, "model", cfg.Name, "timeout", cfg.Timeout)
	case "ollama":
		inv = ollama.New(cfg)
		slog.Info("using model server", "endpoint", cfg.Endpoint, "model", cfg.Name, "timeout", cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.Backend)
	}
	return invoker.Limit(inv, int64(cfg.MaxConcurrent), cfg.Timeout), nil
}

// newTransports returns the transports enabled in cfg. HTTP is always on.
func newTransports(cfg *config.Config, tracker *health.Tracker) []transport.Transport {
	transports := []transport.Transport{httptransport.New(cfg.Server.Addr(), tracker)}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, tracker))
	}
	return transports
}

func serve(ctx context.Context, cfg *config.Config, configFile string) error {
	slog.Info("shelfd starting", "version", version)

	config.WatchLogging(ctx, configFile)

	inv, err := newInvoker(cfg.Model)
	if err != nil {
		return err
	}
	defer inv.Close()

	tracker := health.NewTracker(inv.Model())
	m := mediator.New(inv, tracker)

	// The model is loaded before any transport accepts a query.
	m.Warmup(ctx, cfg.Model.WarmupPrompt, cfg.Model.WarmupTimeout)
	if ctx.Err() != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	transports := newTransports(cfg, tracker)

	errs := make(chan error, len(transports))
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, m.Handle); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
				errs <- fmt.Errorf("%s transport: %w", t.Name(), err)
			}
		}(t)
	}

	slog.Info("shelfd ready",
		"addr", cfg.Server.Addr(),
		"model", inv.Model(),
		"transports", len(transports))

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining...")
	case runErr = <-errs:
	}
	cancel()

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("shelfd stopped")
	return runErr
}
