package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/componentbridge/internal/config"
	"github.com/GriffinCanCode/componentbridge/internal/logging"
	"github.com/GriffinCanCode/componentbridge/internal/server"
)

func main() {
	cfg := config.LoadOrDefault()

	// Flags override environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	env := flag.String("environment", cfg.Server.Environment, "Advertised host environment: web, desktop or mobile")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Server.Environment = *env
	cfg.Logging.Development = *dev

	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
	defer logger.Sync()

	logger.Info("Component host simulator",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", cfg.Server.Environment),
	)

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		os.Exit(1)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Shut down gracefully")
}
