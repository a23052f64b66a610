package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extrato-dev/extrato/internal/domain/categorization"
	"github.com/extrato-dev/extrato/internal/domain/ingest"
	"github.com/extrato-dev/extrato/internal/domain/ingest/parser"
	"github.com/extrato-dev/extrato/internal/domain/ingest/pdfext"
	"github.com/extrato-dev/extrato/internal/domain/insights"
	"github.com/extrato-dev/extrato/internal/domain/market"
	"github.com/extrato-dev/extrato/pkg/config"
)

type noopLayout struct{}

func (noopLayout) Tables(context.Context, []byte) ([]pdfext.Table, error) { return nil, nil }
func (noopLayout) TextLines(context.Context, []byte) ([]string, error)    { return nil, nil }

type stubQuotes struct {
	quotes []market.Quote
}

func (s stubQuotes) Intraday(context.Context, string, string, string) ([]market.Quote, error) {
	return s.quotes, nil
}

func newTestServer(t *testing.T, opts ...func(*testDeps)) *Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	cfg := config.ServerConfig{
		Host:               "localhost",
		Port:               0,
		RateLimitPerSecond: 100,
		RateLimitBurst:     100,
		MaxUploadBytes:     1 << 20,
	}

	rules := categorization.DefaultRuleset()
	deps := testDeps{market: market.NewClient("", logger)}
	for _, opt := range opts {
		opt(&deps)
	}

	ingestSvc := ingest.NewService(parser.DefaultConfig(), noopLayout{}, logger)
	engine := categorization.NewEngine(rules)
	suggester := categorization.NewFuzzySuggester(rules)
	insightsSvc := insights.NewService(nil, 0, logger)

	return New(cfg, ingestSvc, engine, suggester, insightsSvc, deps.market, NewMetrics(), logger)
}

type testDeps struct {
	market QuoteService
}

func withQuoteService(q QuoteService) func(*testDeps) {
	return func(d *testDeps) { d.market = q }
}

func uploadRequest(t *testing.T, filename string, contents []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(contents)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/statement", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleStatement(t *testing.T) {
	csvData := []byte("date;description;amount\n" +
		"03/10/2025;Supermercado XYZ;-320,45\n" +
		"01/10/2025;Salario;5000,00\n" +
		"05/10/2025;Uber Viagem;-24,90\n")

	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "extrato.csv", csvData))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions []struct {
			Date        *string `json:"date"`
			Description string  `json:"description"`
			Amount      float64 `json:"amount"`
			Category    string  `json:"category"`
		} `json:"transactions"`
		Insights struct {
			ID              string `json:"id"`
			CategorySummary []struct {
				Category   string  `json:"category"`
				TotalSpent float64 `json:"total_spent"`
			} `json:"category_summary"`
			RuleSuggestions []string `json:"rule_suggestions"`
			Commentary      string   `json:"commentary"`
			TotalSpent      float64  `json:"total_spent"`
			Income          float64  `json:"income"`
		} `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Transactions, 3)
	// Sorted by date ascending.
	require.NotNil(t, resp.Transactions[0].Date)
	assert.Equal(t, "2025-10-01", *resp.Transactions[0].Date)
	assert.Equal(t, "Salario", resp.Transactions[0].Description)
	assert.InDelta(t, 5000.00, resp.Transactions[0].Amount, 1e-9)

	assert.Equal(t, "alimentacao", resp.Transactions[1].Category)
	assert.InDelta(t, -320.45, resp.Transactions[1].Amount, 1e-9)
	assert.Equal(t, "transporte", resp.Transactions[2].Category)

	assert.NotEmpty(t, resp.Insights.ID)
	assert.Empty(t, resp.Insights.Commentary)
	assert.InDelta(t, 345.35, resp.Insights.TotalSpent, 1e-9)
	assert.InDelta(t, 5000.00, resp.Insights.Income, 1e-9)
	require.NotEmpty(t, resp.Insights.CategorySummary)
	assert.Equal(t, "alimentacao", resp.Insights.CategorySummary[0].Category)
	assert.NotEmpty(t, resp.Insights.RuleSuggestions)
}

func TestHandleStatementUnparsable(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "extrato.csv", []byte("")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not parse statement")
}

func TestHandleStatementMissingFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/statement", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStatementEmpty(t *testing.T) {
	// The noop layout yields a clean parse with zero rows.
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "extrato.pdf", []byte("%PDF-1.4")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nenhuma transação detectada no arquivo.")
}

func TestHandleQuotesTail(t *testing.T) {
	base := time.Date(2025, 10, 3, 9, 0, 0, 0, time.UTC)
	bars := make([]market.Quote, 0, 25)
	for i := 0; i < 25; i++ {
		bars = append(bars, market.Quote{
			Time:  base.Add(time.Duration(i) * time.Hour),
			Close: decimal.NewFromInt(int64(100 + i)),
		})
	}

	srv := newTestServer(t, withQuoteService(stubQuotes{quotes: bars}))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/market/quotes?symbol=IBM", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Quotes []struct {
			Time  time.Time `json:"time"`
			Close string    `json:"close"`
		} `json:"quotes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Quotes, quoteTailCount)
	// Oldest five bars are dropped; order stays oldest first.
	assert.Equal(t, "105", resp.Quotes[0].Close)
	assert.Equal(t, "124", resp.Quotes[len(resp.Quotes)-1].Close)
}

func TestHandleQuotesUnconfigured(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/market/quotes?symbol=IBM", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
