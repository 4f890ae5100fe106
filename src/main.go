package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/tunegate/tunegate/src/features/config"
	"github.com/tunegate/tunegate/src/features/hosting"
	"github.com/tunegate/tunegate/src/features/logging"
	"github.com/tunegate/tunegate/src/features/metrics"
	"github.com/tunegate/tunegate/src/features/resolving"
	"github.com/tunegate/tunegate/src/infra/upstream"
	"github.com/tunegate/tunegate/src/music"
)

const configPath = "config.yaml"

func main() {
	// Load configuration
	cfgManager, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reload the config when the file changes on disk
	cfgWatcher, err := config.NewWatcher(cfgManager, configPath)
	if err != nil {
		slog.Error("Failed to create config watcher", "error", err)
	} else if err := cfgWatcher.Start(ctx); err != nil {
		slog.Error("Failed to start config watcher", "error", err)
	} else {
		defer cfgWatcher.Stop()
	}

	recorder := metrics.NewRecorder()

	// Build the upstream client with the configured proxy and cookie
	// overrides
	opts := []upstream.Option{upstream.WithObserver(recorder.ObserveUpstream)}
	if proxy := cfgManager.Get().Upstream.Proxy; proxy != "" {
		opts = append(opts, upstream.WithProxy(proxy))
	}
	for name, cookie := range cfgManager.Get().Upstream.Cookies {
		provider, err := music.ParseProvider(name)
		if err != nil {
			slog.Warn("Ignoring cookie for unknown platform", "platform", name)
			continue
		}
		opts = append(opts, upstream.WithCookie(provider, cookie))
	}
	client := upstream.NewClient(opts...)

	// Create the resolving service
	resolvingService := resolving.NewService(client, recorder)

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, resolvingService, recorder)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
			cancel()
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
