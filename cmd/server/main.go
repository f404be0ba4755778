package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appclipboard "patchbay/application/clipboard"
	"patchbay/application/composite"
	"patchbay/application/runtime"
	"patchbay/application/services"
	"patchbay/domain/catalog"
	domainconfig "patchbay/domain/config"
	infraclipboard "patchbay/infrastructure/clipboard"
	infraconfig "patchbay/infrastructure/config"
	"patchbay/infrastructure/diagnostics"
	"patchbay/infrastructure/engine"
	enginememory "patchbay/infrastructure/engine/memory"
	"patchbay/infrastructure/persistence/memory"
	"patchbay/interfaces/http/rest"
	"patchbay/pkg/config"
	"patchbay/pkg/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:   "patchbay",
		Short: "Audio graph editor backend",
	}
	root.AddCommand(serveCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	var listenAddr string
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New()
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}
			if catalogPath != "" {
				cfg.CatalogPath = catalogPath
			}
			return serve(cfg)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides LISTEN_ADDR)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog overlay file (overrides CATALOG_PATH)")
	return cmd
}

func serve(cfg *config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	// Catalog: builtin table, optionally overlaid and hot-reloaded from
	// a YAML file
	cat := catalog.Builtin()
	var watcher *infraconfig.CatalogWatcher
	if cfg.CatalogPath != "" {
		watcher, err = infraconfig.NewCatalogWatcher(cfg.CatalogPath, logger)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = watcher.Current()
		watcher.Start()
		defer watcher.Stop()
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	sink := diagnostics.NewSink(logger, 200)

	domainCfg := domainconfig.DefaultDomainConfig()
	audioEngine := engine.NewBreakerEngine(enginememory.New(), engine.DefaultBreakerConfig(), logger)
	rt := runtime.New(cat, audioEngine, domainCfg, sink, logger)

	store := services.NewGraphStore(services.Deps{
		Config:  domainCfg,
		Catalog: cat,
		Engine:  audioEngine,
		Runtime: rt,
		Sink:    sink,
		Logger:  logger,
		Metrics: metrics,
	})

	repo := memory.NewDefinitionRepository()
	definitions := composite.NewDefinitionService(repo, cat, logger)

	coordinator := appclipboard.NewCoordinator(infraclipboard.NewMemoryClipboard(), logger)
	coordinator.Register(appclipboard.FocusMain, store)

	router := rest.NewRouter(store, definitions, coordinator, cat, sink, registry, logger)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
