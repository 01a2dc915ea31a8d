package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/componentbridge/internal/config"
	"github.com/GriffinCanCode/componentbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/componentbridge/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/componentbridge/internal/logging"
	"github.com/GriffinCanCode/componentbridge/internal/middleware"
	"github.com/GriffinCanCode/componentbridge/internal/ws"
)

// Server wraps the host simulator HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	handler  *ws.Handler
	store    *ws.Store
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	registry *prometheus.Registry
	tracer   *tracing.Tracer
	started  time.Time
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: nil config")
	}
	if logger == nil {
		logger = logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
	}
	logger = logger.Component("simulator")

	logger.Info("Initializing host simulator",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", cfg.Server.Environment),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := monitoring.NewMetrics(registry)

	tracer := tracing.New("host-simulator", logger.Logger)

	store := ws.NewStore()
	wsCfg := ws.DefaultConfig()
	wsCfg.Environment = cfg.Server.Environment
	wsCfg.MaxMessageSize = cfg.Transport.MaxMessageSize
	wsCfg.WriteTimeout = cfg.Transport.WriteTimeout
	wsCfg.Tracer = tracer
	handler := ws.NewHandler(wsCfg, store, logger.Logger, metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	s := &Server{
		router:   router,
		handler:  handler,
		store:    store,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		registry: registry,
		tracer:   tracer,
		started:  time.Now(),
	}

	router.GET("/", s.root)
	router.GET("/health", s.health)
	router.GET("/component", handler.HandleConnection)
	router.POST("/themes", s.broadcastThemes)
	router.GET("/items", s.listItems)
	router.GET("/items/:id", s.getItem)
	router.GET("/metrics", gin.WrapH(monitoring.Handler(registry)))
	router.GET("/metrics/json", s.metricsJSON)

	logger.Info("Server initialized successfully")
	return s, nil
}

// Handler returns the HTTP handler, for embedding and tests
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops the tracer and flushes the logger
func (s *Server) Close() error {
	s.tracer.Close()
	s.logger.Sync()
	return nil
}
