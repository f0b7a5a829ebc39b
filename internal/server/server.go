package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	config "github.com/mwantia/screener/internal/config/server"
	"github.com/mwantia/screener/pkg/explorer"
	"github.com/mwantia/screener/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a backing service is usable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server exposes one explorer session as a JSON API.
type Server struct {
	cfg      config.HTTPServerConfig
	explorer *explorer.Explorer
	health   HealthChecker
	log      log.LoggerService

	registry *prometheus.Registry
	metrics  *Metrics
	http     *http.Server
}

func NewServer(cfg config.HTTPServerConfig, e *explorer.Explorer, health HealthChecker, logger log.LoggerService) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		cfg:      cfg,
		explorer: e,
		health:   health,
		log:      logger,
		registry: registry,
		metrics:  NewMetrics(registry),
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/view", s.handleGetView)
	mux.HandleFunc("PUT /api/view", s.handleOpenView)
	mux.HandleFunc("PUT /api/view/filters/{column...}", s.handleSetFilter)
	mux.HandleFunc("DELETE /api/view/filters", s.handleClearFilters)
	mux.HandleFunc("POST /api/view/sort/{column...}", s.handleToggleSort)
	mux.HandleFunc("GET /api/view/export", s.handleExport)
	mux.HandleFunc("GET /api/view/snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /api/search", s.handleSearch)

	mux.HandleFunc("GET /api/queries", s.handleListQueries)
	mux.HandleFunc("GET /api/queries/recent", s.handleRecentQueries)
	mux.HandleFunc("GET /api/queries/draft", s.handleDraft)
	mux.HandleFunc("POST /api/queries", s.handleSaveQuery)
	mux.HandleFunc("DELETE /api/queries/{id}", s.handleDeleteQuery)
	mux.HandleFunc("POST /api/queries/{id}/load", s.handleLoadQuery)
	mux.HandleFunc("GET /api/tags", s.handleTags)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return s.metrics.instrument(s.logRequests(mux))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("%s %s", r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

// Serve listens on the configured address until ctx is done and then
// shuts down within timeout.
func (s *Server) Serve(ctx context.Context, timeout time.Duration) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}

	errs := make(chan error, 1)
	go func() {
		s.log.Info("Serving API at http://%s", ln.Addr().String())
		errs <- s.http.Serve(ln)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("Shutting down API server...")
	if err := s.http.Shutdown(shutdown); err != nil {
		return fmt.Errorf("failed to shutdown api server: %w", err)
	}
	return nil
}
