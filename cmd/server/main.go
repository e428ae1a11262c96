package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/klfajardo/registro-evento-chile/internal/api"
	"github.com/klfajardo/registro-evento-chile/internal/config"
	"github.com/klfajardo/registro-evento-chile/internal/factory"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "registro-server",
		Short: "Event registration and check-in API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a TOML config file (env: "+config.EnvConfigFile+")")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close store", slog.String("error", err.Error()))
		}
	}()

	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_API_TOKEN is not set; bulk import is unprotected")
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:       logger,
		Metrics:      app.Metrics,
		Registration: app.Registration,
		Badge:        app.Badge,
		Access:       app.Access,
		Query:        app.Query,
		AdminToken:   app.AdminToken,
		DefaultSite:  app.DefaultSite,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
		slog.String("fallback_file", app.Fallback.Path()),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
