package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leeaandrob/coinpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketsBody = `[
  {"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":64250.12,"price_change_percentage_24h":6.2,
   "market_cap":1260000000000,"total_volume":28400000000,"high_24h":65100,"low_24h":60010},
  {"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3120.5,"price_change_percentage_24h":-1.0,
   "market_cap":375000000000,"total_volume":12000000000,"high_24h":null,"low_24h":null}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
		RetryWait: 5 * time.Millisecond,
	}, models.NewRegistry(), nil)
	return client, &hits
}

func TestFetchQuotes_BatchedRequest(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "market_cap_desc", r.URL.Query().Get("order"))
		w.Write([]byte(marketsBody))
	})

	quotes := client.FetchQuotes(context.Background(), []string{"BTC", "ETH"})

	require.Len(t, quotes, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.Equal(t, "BTC", quotes[0].Symbol)
	assert.Equal(t, 64250.12, quotes[0].Price)
	assert.Equal(t, 6.2, quotes[0].Change24h)
	assert.True(t, quotes[0].HasRange())
	assert.Equal(t, "ETH", quotes[1].Symbol)
	assert.False(t, quotes[1].HasRange(), "null high/low must not look like a range")
}

func TestFetchQuotes_UnmappedSymbolsMakeNoCall(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marketsBody))
	})

	quotes := client.FetchQuotes(context.Background(), []string{"SHIB", "PEPE"})

	assert.Empty(t, quotes)
	assert.NotNil(t, quotes)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestFetchQuotes_DropsUnmappedSymbols(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "solana", r.URL.Query().Get("ids"))
		w.Write([]byte(`[]`))
	})

	client.FetchQuotes(context.Background(), []string{"SHIB", "SOL"})
}

func TestFetchQuotes_RetriesAfterRateLimit(t *testing.T) {
	var calls int32
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(marketsBody))
	})

	quotes := client.FetchQuotes(context.Background(), []string{"BTC", "ETH"})

	assert.Len(t, quotes, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestFetchQuotes_StopsAtAttemptCeiling(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	quotes := client.FetchQuotes(context.Background(), []string{"BTC"})

	assert.Empty(t, quotes)
	assert.Equal(t, int32(DefaultMaxAttempts), atomic.LoadInt32(hits))
}

func TestFetchQuotes_NoRetryOnServerError(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	quotes := client.FetchQuotes(context.Background(), []string{"BTC"})

	assert.Empty(t, quotes)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestFetchQuotes_MalformedPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":{"error_code":1}}`))
	})

	assert.Empty(t, client.FetchQuotes(context.Background(), []string{"BTC"}))
}

func TestFetchQuotes_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, RetryWait: time.Millisecond}, models.NewRegistry(), nil)

	assert.Empty(t, client.FetchQuotes(context.Background(), []string{"BTC"}))
}

func TestFetchQuotes_SendsDemoKey(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(demoKeyHeader)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "cg-key"}, models.NewRegistry(), nil)
	client.FetchQuotes(context.Background(), []string{"BTC"})

	assert.Equal(t, "cg-key", got)
}

func TestFetchDetail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ids") == "bitcoin" {
			w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":64000,"ath":73750,"atl":67.81}]`))
			return
		}
		w.Write([]byte(`[]`))
	})

	detail, err := client.FetchDetail(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "BTC", detail.Symbol)
	assert.Equal(t, 73750.0, detail.ATH)

	_, err = client.FetchDetail(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchHistory(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/solana/market_chart", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		w.Write([]byte(`{"prices":[[1700000000000,55.5],[1700003600000,56.25]]}`))
	})

	points, err := client.FetchHistory(context.Background(), "solana", "7")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 56.25, points[1][1])
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidCoinID("avalanche-2"))
	assert.False(t, ValidCoinID("../etc"))
	assert.False(t, ValidCoinID("Bitcoin"))
	assert.True(t, ValidHistoryDays("max"))
	assert.False(t, ValidHistoryDays("14"))
}
