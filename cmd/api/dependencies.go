package main

import (
	"context"
	"log/slog"

	"github.com/extrato-dev/extrato/internal/ai"
	"github.com/extrato-dev/extrato/internal/domain/categorization"
	"github.com/extrato-dev/extrato/internal/domain/ingest"
	"github.com/extrato-dev/extrato/internal/domain/ingest/parser"
	"github.com/extrato-dev/extrato/internal/domain/ingest/pdfext"
	"github.com/extrato-dev/extrato/internal/domain/insights"
	"github.com/extrato-dev/extrato/internal/domain/market"
	"github.com/extrato-dev/extrato/internal/server"
	"github.com/extrato-dev/extrato/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	IngestService   *ingest.Service
	Engine          *categorization.Engine
	Suggester       *categorization.FuzzySuggester
	InsightsService *insights.Service
	MarketClient    *market.Client
	Metrics         *server.Metrics
	Server          *server.Server
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	parserCfg := parser.DefaultConfig()
	parserCfg.DebitIsMagnitude = cfg.Ingest.DebitIsMagnitude
	deps.IngestService = ingest.NewService(parserCfg, pdfext.PDFLayout{}, logger)

	rules := categorization.DefaultRuleset()
	deps.Engine = categorization.NewEngine(rules)
	deps.Suggester = categorization.NewFuzzySuggester(rules)

	summarizer, err := initSummarizer(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.InsightsService = insights.NewService(summarizer, cfg.Insights.RecurringThreshold, logger)

	deps.MarketClient = market.NewClient(cfg.Market.AlphaVantageAPIKey, logger)
	deps.Metrics = server.NewMetrics()
	deps.Server = server.New(
		cfg.Server,
		deps.IngestService,
		deps.Engine,
		deps.Suggester,
		deps.InsightsService,
		deps.MarketClient,
		deps.Metrics,
		logger,
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initSummarizer wires Gemini when a key is configured, otherwise the
// disabled no-op so the pipeline runs without commentary.
func initSummarizer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (insights.Summarizer, error) {
	if cfg.Gemini.APIKey == "" {
		logger.Info("gemini key absent, commentary disabled")
		return ai.Disabled{}, nil
	}

	gemini, err := ai.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	if err != nil {
		return nil, err
	}
	return gemini, nil
}
