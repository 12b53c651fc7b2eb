package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/dwpnxt/backend/internal/api/http"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/api/middleware"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/analyze"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/assessment"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/upload"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/blob"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/tracing"
)

const (
	shutdownTimeout   = 15 * time.Second
	minPruneInterval  = time.Minute
	readHeaderTimeout = 10 * time.Second
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	sessions *assessment.Manager
	state    storage.Backend
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := newLogger(cfg.Logging)

	logger.Info("Initializing DWPNxt server",
		zap.String("addr", cfg.Addr()),
		zap.String("backend_url", cfg.Analysis.BackendURL),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("blob_driver", cfg.Blob.Driver),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	tracer := tracing.New("dwpnxt-backend", logger.Component("tracing"))

	state, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open selection storage: %w", err)
	}
	logger.Info("Selection storage opened",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("path", cfg.Storage.Path),
	)

	cat := catalog.Default()
	sessions := assessment.NewManager(cat, state, logger.Component("assessment"))

	store, err := newBlobStore(cfg, logger)
	if err != nil {
		tracer.Close()
		_ = state.Close()
		return nil, err
	}
	uploads := upload.NewRelay(store, upload.Options{MaxBytes: cfg.Upload.MaxBytes}, logger.Component("upload"))

	backend := httpclient.New(httpclient.Options{
		Name:    "analysis-backend",
		BaseURL: cfg.Analysis.BackendURL,
		Timeout: cfg.Analysis.Timeout,
	}, logger.Logger)
	fetcher := httpclient.New(httpclient.Options{
		Name:    "blob-fetch",
		Timeout: cfg.Analysis.Timeout,
	}, logger.Logger)
	analyses := analyze.NewRelay(backend, fetcher, analyze.Options{
		AllowedSources: allowedSources(cfg),
		FetchLimit:     cfg.Upload.MaxBytes,
	}, logger.Component("analyze"))

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.AllowOrigins...)))

	var relay []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Int("relay_rps", cfg.RateLimit.RelayRequestsPerSecond),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
		relay = append(relay, middleware.GlobalRateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RelayRequestsPerSecond,
			Burst:             cfg.RateLimit.RelayBurst,
		}))
	}

	handlers := apihttp.NewHandlers(cat, sessions, uploads, analyses, metrics, logger.Component("http"))

	// Oversized uploads must reach the relay to get its size message
	apihttp.RegisterRoutes(router, handlers, 2*cfg.Upload.MaxBytes, relay...)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if local, ok := store.(*blob.Local); ok {
		mount := staticMount(cfg.Blob.PublicURL)
		router.Static(mount, local.Dir())
		logger.Info("Serving local objects", zap.String("path", mount), zap.String("dir", local.Dir()))
	}

	logger.Info("Server initialized successfully", zap.Int("categories", cat.Len()))

	return &Server{
		router:   router,
		sessions: sessions,
		state:    state,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Router returns the HTTP handler
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pruneSessions(janitorCtx)
	}()
	defer func() {
		stopJanitor()
		wg.Wait()
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close releases storage and flushes telemetry
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.tracer.Close()

	if err := s.state.Close(); err != nil {
		s.logger.Error("Failed to close selection storage", zap.Error(err))
		return fmt.Errorf("failed to close selection storage: %w", err)
	}
	s.logger.Info("Closed selection storage")

	// Sync logger before exit
	_ = s.logger.Sync()

	return nil
}

// pruneSessions unmounts idle wizards until ctx is done
func (s *Server) pruneSessions(ctx context.Context) {
	idle := s.config.Server.SessionIdleTimeout
	if idle <= 0 {
		return
	}
	interval := max(idle/4, minPruneInterval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sessions.Prune(idle); removed > 0 {
				s.logger.Info("Pruned idle sessions", zap.Int("count", removed))
			}
			s.metrics.SetSessionsActive(s.sessions.Count())
		}
	}
}

func newLogger(cfg config.LogConfig) *logging.Logger {
	logCfg := logging.DefaultConfig()
	if cfg.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Level != "" && !cfg.Development {
		logCfg.Level = cfg.Level
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		logger = logging.NewDefault()
		logger.Warn("Invalid log level, using info", zap.String("level", cfg.Level))
	}
	return logger
}

func newBlobStore(cfg *config.Config, logger *logging.Logger) (blob.Store, error) {
	switch cfg.Blob.Driver {
	case blob.DriverRemote:
		if err := blob.CheckToken(cfg.Blob.Token); err != nil {
			// Uploads report this per request
			logger.Warn("Blob token problem", zap.Error(err))
		}
		client := httpclient.New(httpclient.Options{
			Name:    "blob-store",
			BaseURL: cfg.Blob.APIURL,
			Timeout: cfg.Analysis.Timeout,
		}, logger.Logger)
		return blob.NewRemote(client, cfg.Blob.Token, logger.Component("blob")), nil
	default:
		local, err := blob.NewLocal(cfg.Blob.Dir, cfg.Blob.PublicURL, logger.Component("blob"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local object store: %w", err)
		}
		return local, nil
	}
}

func allowedSources(cfg *config.Config) []string {
	if len(cfg.Analysis.AllowedSources) > 0 {
		return cfg.Analysis.AllowedSources
	}
	return []string{strings.TrimRight(cfg.Blob.PublicURL, "/") + "/"}
}

// staticMount is the path component of the public URL objects are served under
func staticMount(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/blobs"
	}
	return strings.TrimRight(u.Path, "/")
}
