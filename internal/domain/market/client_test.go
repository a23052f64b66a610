package market

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const intradayPayload = `{
  "Meta Data": {"1. Information": "Intraday (60min)", "2. Symbol": "IBM"},
  "Time Series (60min)": {
    "2026-08-28 16:00:00": {
      "1. open": "201.10", "2. high": "202.50", "3. low": "200.80",
      "4. close": "202.00", "5. volume": "31245"
    },
    "2026-08-28 15:00:00": {
      "1. open": "200.00", "2. high": "201.40", "3. low": "199.90",
      "4. close": "201.10", "5. volume": "28730"
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", slog.New(slog.DiscardHandler))
	c.baseURL = srv.URL
	return c
}

func TestIntraday(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"function":   r.URL.Query().Get("function"),
			"symbol":     r.URL.Query().Get("symbol"),
			"interval":   r.URL.Query().Get("interval"),
			"outputsize": r.URL.Query().Get("outputsize"),
			"apikey":     r.URL.Query().Get("apikey"),
		}
		w.Write([]byte(intradayPayload))
	})

	quotes, err := c.Intraday(context.Background(), "IBM", "60min", "compact")
	require.NoError(t, err)

	assert.Equal(t, "TIME_SERIES_INTRADAY", gotQuery["function"])
	assert.Equal(t, "IBM", gotQuery["symbol"])
	assert.Equal(t, "test-key", gotQuery["apikey"])

	require.Len(t, quotes, 2)
	// Oldest first.
	assert.True(t, quotes[0].Time.Before(quotes[1].Time))
	assert.Equal(t, "201.1", quotes[0].Close.String())
	assert.Equal(t, "202", quotes[1].Close.String())
}

func TestIntradayDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultSymbol, r.URL.Query().Get("symbol"))
		assert.Equal(t, DefaultInterval, r.URL.Query().Get("interval"))
		assert.Equal(t, DefaultOutputSize, r.URL.Query().Get("outputsize"))
		w.Write([]byte(intradayPayload))
	})

	_, err := c.Intraday(context.Background(), "", "", "")
	require.NoError(t, err)
}

func TestIntradayMissingKey(t *testing.T) {
	c := NewClient("", slog.New(slog.DiscardHandler))
	_, err := c.Intraday(context.Background(), "IBM", "60min", "compact")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestIntradayRateLimitNote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Please slow down."}`))
	})

	_, err := c.Intraday(context.Background(), "IBM", "60min", "compact")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestIntradayServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Intraday(context.Background(), "IBM", "60min", "compact")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}
