package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/componentbridge/internal/bridge"
	"github.com/GriffinCanCode/componentbridge/internal/config"
	"github.com/GriffinCanCode/componentbridge/internal/editor"
	"github.com/GriffinCanCode/componentbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/componentbridge/internal/logging"
	"github.com/GriffinCanCode/componentbridge/internal/theme"
	"github.com/GriffinCanCode/componentbridge/internal/transport"
)

func main() {
	cfg := config.LoadOrDefault()

	// Flags override environment
	hostURL := flag.String("host", cfg.Transport.HostURL, "Host WebSocket URL")
	origin := flag.String("origin", cfg.Transport.Origin, "Origin presented to the host")
	metricsAddr := flag.String("metrics", cfg.Metrics.Address, "Metrics listen address, empty to disable")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg.Transport.HostURL = *hostURL
	cfg.Transport.Origin = *origin
	cfg.Metrics.Address = *metricsAddr
	cfg.Logging.Development = *dev

	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Component stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	logger = logger.Component("component")
	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)

	conn, err := transport.Dial(ctx, cfg.Transport.HostURL, transport.WebSocketOptions{
		Origin:         cfg.Transport.Origin,
		OutboundBuffer: cfg.Transport.OutboundBuffer,
		WriteTimeout:   cfg.Transport.WriteTimeout,
		MaxMessageSize: cfg.Transport.MaxMessageSize,
		Logger:         logger.Logger,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	ready := make(chan struct{})
	sheets := theme.Blank()
	bridgeCfg := cfg.BridgeConfig()
	bridgeCfg.StyleSheets = sheets
	bridgeCfg.Logger = logger.Logger
	bridgeCfg.Metrics = metrics
	bridgeCfg.OnReady = func() { close(ready) }
	b := bridge.New(conn, bridgeCfg)
	defer b.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.Run(ctx, conn)
	})

	if cfg.Metrics.Address != "" {
		metricsSrv := &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           monitoring.Handler(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Serving metrics", zap.String("addr", cfg.Metrics.Address))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		select {
		case <-ready:
		case <-ctx.Done():
			return ctx.Err()
		}
		ed := editor.New(b, sheets, os.Stdout, logger.Logger)
		if err := ed.Load(ctx); err != nil {
			return err
		}
		if err := ed.Run(ctx, os.Stdin); err != nil {
			return err
		}
		// Input finished; flush any held save and stop.
		if b.SavePending() {
			flushCtx, flushCancel := context.WithTimeout(ctx, 5*time.Second)
			defer flushCancel()
			if err := ed.Flush(flushCtx); err != nil {
				return err
			}
		}
		err := b.Close()
		cancel()
		return err
	})

	return g.Wait()
}
