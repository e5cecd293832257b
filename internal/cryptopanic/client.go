// Package cryptopanic fetches crypto news headlines from CryptoPanic.
package cryptopanic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/leeaandrob/coinpulse/internal/models"
)

const (
	DefaultBaseURL = "https://cryptopanic.com/api/free/v1"
	DefaultToken   = "demo"
	// MaxHeadlines is how many posts are returned per request.
	MaxHeadlines = 5
)

// Client fetches news posts for a set of currencies.
type Client struct {
	client *resty.Client
	token  string
}

type postsResponse struct {
	Results []models.NewsItem `json:"results"`
}

// NewClient creates a CryptoPanic client. An empty token uses the public
// demo token.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if token == "" {
		token = DefaultToken
	}
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
		token: token,
	}
}

// FetchNews returns up to MaxHeadlines news posts mentioning symbols.
func (c *Client) FetchNews(ctx context.Context, symbols []string) ([]models.NewsItem, error) {
	log.Debug().Strs("currencies", symbols).Msg("Fetching CryptoPanic news")

	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"auth_token": c.token,
			"kind":       "news",
			"public":     "true",
		})
	if len(symbols) > 0 {
		req.SetQueryParam("currencies", strings.Join(symbols, ","))
	}

	resp, err := req.Get("/posts/")
	if err != nil {
		return nil, fmt.Errorf("cryptopanic request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("cryptopanic API returned %d", resp.StatusCode())
	}

	var result postsResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse cryptopanic response: %w", err)
	}

	news := result.Results
	if len(news) > MaxHeadlines {
		news = news[:MaxHeadlines]
	}
	if news == nil {
		news = []models.NewsItem{}
	}
	return news, nil
}

// Fallback returns the static headlines shown when the feed is down.
func Fallback(now time.Time) []models.NewsItem {
	ts := now.UTC().Format(time.RFC3339)
	return []models.NewsItem{
		{Title: "Bitcoin hits new milestone as institutional adoption grows", URL: "#", Source: models.NewsSource{Title: "CryptoNews"}, PublishedAt: ts},
		{Title: "Ethereum upgrades promise faster transaction speeds", URL: "#", Source: models.NewsSource{Title: "CoinDesk"}, PublishedAt: ts},
		{Title: "DeFi protocols see record total value locked", URL: "#", Source: models.NewsSource{Title: "The Block"}, PublishedAt: ts},
	}
}
