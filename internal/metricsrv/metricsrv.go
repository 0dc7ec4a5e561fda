// Package metricsrv exposes internal/obs metrics over a Prometheus
// /metrics HTTP endpoint, grounded on the arbitrage engine's
// infra/metrics package: a registry built from collectors.NewGoCollector
// plus a process collector, served through promhttp, logged via
// zerolog rather than the stdlib logger.
package metricsrv

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/veloxmarkets/lobcore/internal/obs"
)

// Server wraps an http.Server bound to a Prometheus registry seeded
// with an internal/obs bridge plus Go/process runtime collectors.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// New builds a metrics server listening on addr. metrics is scraped
// fresh on every request via the PrometheusBridge's pull model.
func New(addr string, metrics *obs.Metrics, logger zerolog.Logger) *Server {
	reg := prometheus.NewRegistry()
	bridge := obs.NewPrometheusBridge(metrics)
	_ = reg.Register(bridge)
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start begins serving in the background. Bind failures are logged,
// not fatal: a benchmark run should proceed without metrics scraping
// rather than abort.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("metrics server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
