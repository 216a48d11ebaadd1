package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raaihank/clip-sentinel/internal/config"
	"github.com/raaihank/clip-sentinel/internal/detector"
	"github.com/raaihank/clip-sentinel/internal/logger"
	"github.com/raaihank/clip-sentinel/internal/metrics"
	"go.uber.org/zap"
)

// Version is reported by the info endpoint
var Version = "dev"

// Server exposes the detector over HTTP
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	detector *detector.Detector
	limiter  *RateLimiter
	router   *mux.Router
	server   *http.Server
	stop     chan struct{}
}

// New creates a new server instance
func New(cfg *config.Config, det *detector.Detector, log *logger.Logger) (*Server, error) {
	if det == nil {
		return nil, fmt.Errorf("server requires a detector")
	}

	s := &Server{
		config:   cfg,
		logger:   log.WithComponent("server"),
		detector: det,
		limiter:  NewRateLimiter(cfg.Server.RateLimit),
		router:   mux.NewRouter(),
		stop:     make(chan struct{}),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metrics.Middleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")
	s.router.HandleFunc("/kinds", s.handleKinds).Methods("GET")
	s.router.HandleFunc("/presets", s.handlePresets).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Detection reads the clipboard, so it is rate limited per client
	detect := s.router.NewRoute().Subrouter()
	detect.Use(s.rateLimitMiddleware)
	detect.HandleFunc("/detect", s.handleDetect).Methods("POST")
	detect.HandleFunc("/presets/{name}/detect", s.handlePresetDetect).Methods("GET", "POST")
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting clip-sentinel server",
		zap.Int("port", s.config.Server.Port),
		zap.String("recognizer", s.config.Recognizer.Endpoint),
		zap.Bool("rate_limit", s.config.Server.RateLimit.Enabled),
	)

	s.limiter.StartCleanup(30*time.Minute, s.stop)

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping clip-sentinel server")
	close(s.stop)
	return s.server.Shutdown(ctx)
}
