// Package server exposes the statement pipeline over HTTP: one upload
// endpoint that runs ingest, categorization and insights, plus market
// quotes, health and metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/extrato-dev/extrato/internal/domain/categorization"
	"github.com/extrato-dev/extrato/internal/domain/ingest"
	"github.com/extrato-dev/extrato/internal/domain/insights"
	"github.com/extrato-dev/extrato/internal/domain/market"
	"github.com/extrato-dev/extrato/pkg/config"
)

// QuoteService fetches intraday bars; *market.Client is the production
// implementation.
type QuoteService interface {
	Intraday(ctx context.Context, symbol, interval, outputsize string) ([]market.Quote, error)
}

// Server wires the pipeline services behind an http.Server.
type Server struct {
	cfg       config.ServerConfig
	ingest    *ingest.Service
	engine    *categorization.Engine
	suggester *categorization.FuzzySuggester
	insights  *insights.Service
	market    QuoteService
	metrics   *Metrics
	logger    *slog.Logger
}

// New assembles the HTTP surface. The market client may be nil-keyed; its
// endpoint then answers 503. A nil suggester disables category hints.
func New(
	cfg config.ServerConfig,
	ingestSvc *ingest.Service,
	engine *categorization.Engine,
	suggester *categorization.FuzzySuggester,
	insightsSvc *insights.Service,
	marketClient QuoteService,
	metrics *Metrics,
	logger *slog.Logger,
) *Server {
	return &Server{
		cfg:       cfg,
		ingest:    ingestSvc,
		engine:    engine,
		suggester: suggester,
		insights:  insightsSvc,
		market:    marketClient,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handler builds the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/statement", s.handleStatement)
	mux.HandleFunc("GET /v1/market/quotes", s.handleQuotes)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimitPerSecond), s.cfg.RateLimitBurst)

	var handler http.Handler = mux
	handler = rateLimit(limiter, handler)
	handler = corsHandler(handler)
	handler = requestLogging(s.logger, handler)
	return handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.logger.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
