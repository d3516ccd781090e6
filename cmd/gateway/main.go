// Command gateway serves the Skynet image gateway over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shamank/skynet-gateway/pkg/budget"
	"github.com/shamank/skynet-gateway/pkg/capability"
	"github.com/shamank/skynet-gateway/pkg/config"
	"github.com/shamank/skynet-gateway/pkg/pipeline"
	"github.com/shamank/skynet-gateway/pkg/server"
	"github.com/shamank/skynet-gateway/pkg/session"
	"github.com/shamank/skynet-gateway/pkg/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file; the environment overrides it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		zap.L().Fatal("gateway stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	health := server.NewHealth(cfg.HealthPort)
	provider := session.NewConfigProvider(cfg)

	if _, err := provider.Get(ctx); err != nil {
		if errors.Is(err, session.ErrProjectRole) {
			zap.L().Error("agent has no access to the project",
				zap.String("agent", cfg.AgentAddress),
				zap.String("project", cfg.ProjectID))
		}
		return fmt.Errorf("open session: %w", err)
	}
	defer provider.Close()
	health.SetServing(true)

	direct, err := storage.NewUploader(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	gate := budget.NewGate(provider, cfg.Budget())
	var opts []capability.Option
	if direct != nil {
		opts = append(opts, capability.WithDirectStorage(direct))
		zap.L().Info("direct storage enabled", zap.String("mode", cfg.StorageMode))
	}
	client := capability.New(cfg, provider, gate, opts...)
	images := pipeline.New(client, storage.NewDownloader(cfg.Timeouts.Download), client, cfg.IPFSGateway)
	srv := server.New(cfg.Port, images, client)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(health.Run)
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down")
		health.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Timeouts.Shutdown)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
