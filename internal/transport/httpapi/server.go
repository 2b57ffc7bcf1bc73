// internal/transport/httpapi/server.go

// Package httpapi exposes the query workflow over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"airquality-agent/internal/cache"
	"airquality-agent/internal/common/config"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/common/observability"
	"airquality-agent/internal/workflow"
)

// HealthCheck probes one dependency for the /health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server wires the workflow engine to its HTTP surface.
type Server struct {
	engine  *workflow.Engine
	cache   *cache.Cache
	obs     *observability.Observability
	checks  []HealthCheck
	logger  logger.Logger
	httpSrv *http.Server
}

func NewServer(
	engine *workflow.Engine,
	resultCache *cache.Cache,
	obs *observability.Observability,
	checks []HealthCheck,
	cfg config.ServerConfig,
	log logger.Logger,
) *Server {
	s := &Server{
		engine: engine,
		cache:  resultCache,
		obs:    obs,
		checks: checks,
		logger: log.WithFields(map[string]interface{}{"component": "httpapi"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/query/select", s.handleSelect)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/cache/stats", s.handleCacheStats)

	readTimeout := time.Duration(cfg.ReadTimeout) * time.Millisecond
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := time.Duration(cfg.WriteTimeout) * time.Millisecond
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	s.httpSrv = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Handler exposes the routed mux, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server starting", map[string]interface{}{
		"address": s.httpSrv.Addr,
	})
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
