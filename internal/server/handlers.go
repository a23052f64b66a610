package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/extrato-dev/extrato/internal/domain/categorization"
	"github.com/extrato-dev/extrato/internal/domain/ingest"
	"github.com/extrato-dev/extrato/internal/domain/market"
	"github.com/extrato-dev/extrato/internal/domain/transaction"
	"github.com/extrato-dev/extrato/pkg/money"
)

type transactionPayload struct {
	Date        *string `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	// CategoryHint is a fuzzy guess offered only when no rule matched.
	CategoryHint string `json:"category_hint,omitempty"`
}

type categoryTotalPayload struct {
	Category   string  `json:"category"`
	TotalSpent float64 `json:"total_spent"`
}

type insightsPayload struct {
	ID              string                 `json:"id"`
	CategorySummary []categoryTotalPayload `json:"category_summary"`
	RuleSuggestions []string               `json:"rule_suggestions"`
	Commentary      string                 `json:"commentary"`
	TotalSpent      float64                `json:"total_spent"`
	Income          float64                `json:"income"`
}

type statementResponse struct {
	Transactions []transactionPayload `json:"transactions"`
	Insights     insightsPayload      `json:"insights"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleStatement accepts a multipart statement upload, runs the full
// pipeline and returns transactions plus insights. Amounts are rounded to
// two decimals only here, at the response boundary.
func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unreadable upload")
		return
	}

	format := ingest.DetectFormat(header.Filename)
	txs, err := s.ingest.Parse(r.Context(), header.Filename, data)
	if err != nil {
		s.metrics.statementsIngested.WithLabelValues(string(format), "error").Inc()
		if errors.Is(err, ingest.ErrUnparsable) {
			s.writeError(w, http.StatusUnprocessableEntity, "could not parse statement")
			return
		}
		s.logger.Error("statement pipeline failed", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if len(txs) == 0 {
		s.metrics.statementsIngested.WithLabelValues(string(format), "empty").Inc()
		s.writeError(w, http.StatusBadRequest, "Nenhuma transação detectada no arquivo.")
		return
	}

	categorized := s.engine.Categorize(txs)

	bundle, err := s.insights.Generate(r.Context(), categorized)
	if err != nil {
		s.metrics.statementsIngested.WithLabelValues(string(format), "error").Inc()
		s.logger.Error("insight generation failed", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.metrics.statementsIngested.WithLabelValues(string(format), "ok").Inc()
	s.metrics.ingestDuration.Observe(time.Since(start).Seconds())

	resp := statementResponse{
		Transactions: make([]transactionPayload, 0, len(categorized)),
		Insights: insightsPayload{
			ID:              bundle.ID.String(),
			CategorySummary: make([]categoryTotalPayload, 0, len(bundle.CategorySummary)),
			RuleSuggestions: bundle.RuleSuggestions,
			Commentary:      bundle.Commentary,
			TotalSpent:      money.Float2(bundle.TotalSpent),
			Income:          money.Float2(bundle.Income),
		},
	}
	if resp.Insights.RuleSuggestions == nil {
		resp.Insights.RuleSuggestions = []string{}
	}
	for _, tx := range categorized {
		payload := transactionPayload{
			Date:        formatDate(tx.Transaction),
			Description: tx.Description,
			Amount:      money.Float2(tx.Amount),
			Category:    tx.Category,
		}
		if tx.Category == categorization.Outros && s.suggester != nil {
			if hint, ok := s.suggester.Suggest(tx.Description); ok {
				payload.CategoryHint = hint
			}
		}
		resp.Transactions = append(resp.Transactions, payload)
	}
	for _, row := range bundle.CategorySummary {
		resp.Insights.CategorySummary = append(resp.Insights.CategorySummary, categoryTotalPayload{
			Category:   row.Category,
			TotalSpent: money.Float2(row.Total),
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// quoteTailCount caps the quotes response to the most recent bars.
const quoteTailCount = 20

// handleQuotes proxies intraday quotes for a symbol, newest bars last.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quotes, err := s.market.Intraday(r.Context(), q.Get("symbol"), q.Get("interval"), q.Get("outputsize"))
	if err != nil {
		switch {
		case errors.Is(err, market.ErrNotConfigured):
			s.metrics.quoteRequests.WithLabelValues("unconfigured").Inc()
			s.writeError(w, http.StatusServiceUnavailable, "market data not configured")
		case errors.Is(err, market.ErrNoData):
			s.metrics.quoteRequests.WithLabelValues("no_data").Inc()
			s.writeError(w, http.StatusBadGateway, "market data unavailable")
		default:
			s.metrics.quoteRequests.WithLabelValues("error").Inc()
			s.logger.Error("quote fetch failed", slog.Any("error", err))
			s.writeError(w, http.StatusBadGateway, "market data unavailable")
		}
		return
	}

	if len(quotes) > quoteTailCount {
		quotes = quotes[len(quotes)-quoteTailCount:]
	}

	s.metrics.quoteRequests.WithLabelValues("ok").Inc()
	s.writeJSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}

func formatDate(tx transaction.Transaction) *string {
	if !tx.HasDate() {
		return nil
	}
	formatted := tx.Date.Format("2006-01-02")
	return &formatted
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
