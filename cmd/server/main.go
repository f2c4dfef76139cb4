package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"censusdesk/internal/app"
	"censusdesk/internal/platform/config"
	"censusdesk/internal/platform/httpserver"
	"censusdesk/internal/platform/logger"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("error").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing censusdesk",
		"addr", cfg.Server.Addr,
		"environment", cfg.Environment,
		"version", app.Version,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Migrate(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	if err := a.Bootstrap(ctx); err != nil {
		log.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	srv := httpserver.New(cfg.Server.Addr, a.Router(), httpserver.Timeouts{
		Read:  cfg.Server.ReadTimeout,
		Write: cfg.Server.WriteTimeout,
		Idle:  cfg.Server.IdleTimeout,
	})
	if err := httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log); err != nil {
		log.Error("server error", "error", err)
		a.Close()
		os.Exit(1)
	}

	log.Info("server stopped")
}
