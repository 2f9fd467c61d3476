package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/switcher/internal/api/http"
	"github.com/GriffinCanCode/switcher/internal/api/middleware"
	"github.com/GriffinCanCode/switcher/internal/api/ws"
	"github.com/GriffinCanCode/switcher/internal/codec"
	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/config"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	dispatcher *applist.Dispatcher
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	registry   *prometheus.Registry
}

// Option customises a Server
type Option func(*Server)

// WithLogger replaces the logger built from the configuration
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
	}
	logger := s.logger

	logger.Info("Initializing switcher server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("snapshot_path", cfg.Switcher.SnapshotPath),
	)

	// Metrics live on a private registry served at /metrics
	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = monitoring.NewMetrics(s.registry)

	s.dispatcher = applist.NewDispatcher(types.DefaultSnapshot()).
		WithLogger(logger).
		WithMetrics(s.metrics)

	if err := s.loadStartupSnapshot(); err != nil {
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = s.newRouter()

	logger.Info("Server initialized successfully",
		zap.Int("apps", len(s.dispatcher.Snapshot().Apps)),
	)
	return s, nil
}

// loadStartupSnapshot dispatches the persisted snapshot, if one is configured.
// A missing file starts from defaults.
func (s *Server) loadStartupSnapshot() error {
	path := s.config.Switcher.SnapshotPath
	if path == "" {
		return nil
	}

	doc, err := codec.New(s.config.Switcher.MaxSnapshotBytes).ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Startup snapshot not found, using defaults", zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load startup snapshot: %w", err)
	}

	if _, err := s.dispatcher.Dispatch(applist.StartupLoaded{Document: doc}); err != nil {
		return fmt.Errorf("failed to apply startup snapshot: %w", err)
	}
	s.logger.Info("Loaded startup snapshot",
		zap.String("path", path),
		zap.Bool("legacy", !doc.IsCurrent()),
	)
	return nil
}

func (s *Server) newRouter() *gin.Engine {
	cfg := s.config
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.Logger(s.logger))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitFromConfig(cfg.RateLimit)))
	}

	apihttp.NewHandlers(s.dispatcher, s.metrics, s.logger).Register(router)
	router.GET("/ws", ws.NewHandler(s.dispatcher, s.metrics, s.logger).HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return router
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Dispatcher returns the live app list
func (s *Server) Dispatcher() *applist.Dispatcher {
	return s.dispatcher
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}

// Close flushes the logger
func (s *Server) Close() error {
	s.logger.Info("Server closed", zap.Uint64("revision", s.dispatcher.Revision()))
	_ = s.logger.Sync()
	return nil
}
