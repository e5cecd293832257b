// Package coingecko provides a client for the CoinGecko public market API.
// All quote lookups go through the batched /coins/markets endpoint.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/leeaandrob/coinpulse/internal/metrics"
	"github.com/leeaandrob/coinpulse/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the public v3 API root.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	// DefaultMaxAttempts bounds requests per lookup when rate limited.
	DefaultMaxAttempts = 3

	// DefaultRetryWait is the fixed pause between rate-limited attempts.
	DefaultRetryWait = 1500 * time.Millisecond

	// DefaultTimeout applies to every outbound request.
	DefaultTimeout = 10 * time.Second

	demoKeyHeader = "x-cg-demo-key"
)

// ErrNotFound is returned when a coin id yields no market data.
var ErrNotFound = errors.New("coin not found")

var coinIDPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// historyDays are the chart ranges the history endpoint accepts.
var historyDays = map[string]bool{
	"1": true, "7": true, "30": true, "365": true, "1825": true, "max": true,
}

// ValidCoinID reports whether id is safe to forward to the API.
func ValidCoinID(id string) bool {
	return coinIDPattern.MatchString(id)
}

// ValidHistoryDays reports whether days is an accepted chart range.
func ValidHistoryDays(days string) bool {
	return historyDays[days]
}

// Config holds the configuration for the CoinGecko client.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	RetryWait   time.Duration
	MaxAttempts int
}

// Client fetches market snapshots from CoinGecko.
type Client struct {
	http     *resty.Client
	registry *models.Registry
	metrics  *metrics.Recorder
}

// NewClient creates a new CoinGecko client. Only HTTP 429 responses are
// retried, with a fixed wait, up to MaxAttempts requests in total.
func NewClient(cfg Config, registry *models.Registry, rec *metrics.Recorder) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = DefaultRetryWait
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxAttempts - 1).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() == http.StatusTooManyRequests
		})

	if cfg.APIKey != "" {
		client.SetHeader(demoKeyHeader, cfg.APIKey)
	}

	return &Client{
		http:     client,
		registry: registry,
		metrics:  rec,
	}
}

// marketCoin mirrors one element of the /coins/markets response.
type marketCoin struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	MarketCap                float64 `json:"market_cap"`
	TotalVolume              float64 `json:"total_volume"`
	High24h                  float64 `json:"high_24h"`
	Low24h                   float64 `json:"low_24h"`
	ATH                      float64 `json:"ath"`
	ATL                      float64 `json:"atl"`
}

func (c *Client) toQuote(m marketCoin) models.AssetQuote {
	symbol := strings.ToUpper(m.Symbol)
	if a, ok := c.registry.AssetByCoinGeckoID(m.ID); ok {
		symbol = a.Symbol
	}
	return models.AssetQuote{
		Symbol:      symbol,
		Name:        m.Name,
		CoinGeckoID: m.ID,
		Image:       m.Image,
		Price:       m.CurrentPrice,
		Change24h:   m.PriceChangePercentage24h,
		MarketCap:   m.MarketCap,
		Volume24h:   m.TotalVolume,
		High24h:     m.High24h,
		Low24h:      m.Low24h,
	}
}

// FetchQuotes returns the current quotes for the given symbols in the
// provider's order (market cap descending). Symbols without a CoinGecko
// mapping are skipped. It never fails: rate limiting beyond the retry
// budget, bad statuses, transport errors and malformed payloads all yield
// an empty slice, which callers treat as "no data".
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) []models.AssetQuote {
	ids := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if id, ok := c.registry.CoinGeckoID(s); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []models.AssetQuote{}
	}

	start := time.Now()
	coins, err := c.markets(ctx, ids)
	c.metrics.RecordMarketFetch(err == nil, time.Since(start))
	if err != nil {
		log.Warn().
			Err(err).
			Strs("ids", ids).
			Msg("Market snapshot unavailable, continuing without quotes")
		return []models.AssetQuote{}
	}

	quotes := make([]models.AssetQuote, 0, len(coins))
	for _, m := range coins {
		quotes = append(quotes, c.toQuote(m))
	}

	log.Debug().
		Int("requested", len(ids)).
		Int("received", len(quotes)).
		Dur("took", time.Since(start)).
		Msg("Fetched market snapshot")

	return quotes
}

// FetchDetail returns the snapshot of a single coin plus all-time extremes.
func (c *Client) FetchDetail(ctx context.Context, coinID string) (*models.CoinDetail, error) {
	coins, err := c.markets(ctx, []string{coinID})
	if err != nil {
		return nil, err
	}
	if len(coins) == 0 {
		return nil, ErrNotFound
	}

	return &models.CoinDetail{
		AssetQuote: c.toQuote(coins[0]),
		ATH:        coins[0].ATH,
		ATL:        coins[0].ATL,
	}, nil
}

// FetchHistory returns [timestamp, price] points for the requested range.
func (c *Client) FetchHistory(ctx context.Context, coinID, days string) ([]models.PricePoint, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("vs_currency", "usd").
		SetQueryParam("days", days).
		Get("/coins/" + url.PathEscape(coinID) + "/market_chart")

	if err != nil {
		return nil, fmt.Errorf("failed to fetch market chart: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("market_chart API returned %d: %s", resp.StatusCode(), resp.String())
	}

	var chart struct {
		Prices []models.PricePoint `json:"prices"`
	}
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return nil, fmt.Errorf("failed to parse market chart: %w", err)
	}

	return chart.Prices, nil
}

// markets performs one batched /coins/markets request.
func (c *Client) markets(ctx context.Context, ids []string) ([]marketCoin, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("vs_currency", "usd").
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetQueryParam("order", "market_cap_desc").
		Get("/coins/markets")

	if err != nil {
		return nil, fmt.Errorf("failed to fetch markets: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("markets API returned %d: %s", resp.StatusCode(), resp.String())
	}

	var coins []marketCoin
	if err := json.Unmarshal(resp.Body(), &coins); err != nil {
		return nil, fmt.Errorf("failed to parse markets: %w", err)
	}

	return coins, nil
}
