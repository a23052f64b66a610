// Package market fetches intraday stock quotes from Alpha Vantage. It is an
// optional companion to statement ingestion; without an API key the service
// stays wired but reports ErrNotConfigured.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotConfigured indicates the Alpha Vantage API key is missing.
var ErrNotConfigured = errors.New("market: alpha vantage api key not configured")

// ErrNoData indicates the provider answered without a time series, usually a
// rate-limit note or an unknown symbol.
var ErrNoData = errors.New("market: no time series in response")

const defaultBaseURL = "https://www.alphavantage.co/query"

// Defaults mirror the provider's own: hourly bars, latest 100 points.
const (
	DefaultSymbol     = "IBM"
	DefaultInterval   = "60min"
	DefaultOutputSize = "compact"
)

// Quote is one intraday bar.
type Quote struct {
	Time   time.Time       `json:"time"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// Client talks to the Alpha Vantage TIME_SERIES_INTRADAY endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds the quote client. An empty key yields a client whose
// calls fail with ErrNotConfigured rather than a nil client.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Intraday fetches intraday bars for a symbol, oldest first. Empty symbol,
// interval or outputsize fall back to the provider defaults.
func (c *Client) Intraday(ctx context.Context, symbol, interval, outputsize string) ([]Quote, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if symbol == "" {
		symbol = DefaultSymbol
	}
	if interval == "" {
		interval = DefaultInterval
	}
	if outputsize == "" {
		outputsize = DefaultOutputSize
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_INTRADAY")
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", outputsize)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("market: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market: fetch quotes: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("market: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market: unexpected status %d", resp.StatusCode)
	}

	quotes, err := parseIntraday(body, interval)
	if err != nil {
		c.logger.Warn("quote response carried no data",
			slog.String("symbol", symbol), slog.Any("error", err))
		return nil, err
	}

	c.logger.Info("quotes fetched",
		slog.String("symbol", symbol), slog.Int("bars", len(quotes)))
	return quotes, nil
}

type intradayBar struct {
	Open   decimal.Decimal `json:"1. open"`
	High   decimal.Decimal `json:"2. high"`
	Low    decimal.Decimal `json:"3. low"`
	Close  decimal.Decimal `json:"4. close"`
	Volume decimal.Decimal `json:"5. volume"`
}

func parseIntraday(body []byte, interval string) ([]Quote, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("market: decode response: %w", err)
	}

	series, ok := envelope[fmt.Sprintf("Time Series (%s)", interval)]
	if !ok {
		// Error payloads carry a Note or Error Message field instead.
		if msg, ok := envelope["Note"]; ok {
			return nil, fmt.Errorf("%w: %s", ErrNoData, msg)
		}
		if msg, ok := envelope["Error Message"]; ok {
			return nil, fmt.Errorf("%w: %s", ErrNoData, msg)
		}
		return nil, ErrNoData
	}

	var bars map[string]intradayBar
	if err := json.Unmarshal(series, &bars); err != nil {
		return nil, fmt.Errorf("market: decode time series: %w", err)
	}

	quotes := make([]Quote, 0, len(bars))
	for stamp, bar := range bars {
		ts, err := time.Parse("2006-01-02 15:04:05", stamp)
		if err != nil {
			continue
		}
		quotes = append(quotes, Quote{
			Time:   ts,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Time.Before(quotes[j].Time) })
	return quotes, nil
}
