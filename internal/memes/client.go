// Package memes collects crypto memes, preferring live Reddit posts and
// degrading to Imgflip templates and finally to captions alone.
package memes

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
	DefaultRedditURL  = "https://www.reddit.com/r/CryptoCurrencyMemes/hot.json?limit=30"
	DefaultImgflipURL = "https://api.imgflip.com/get_memes"
	userAgent         = "coinpulse/1.0"
)

// Source tells which tier produced a meme list.
type Source string

const (
	SourceReddit   Source = "reddit"
	SourceImgflip  Source = "imgflip"
	SourceCaptions Source = "captions"
)

// Captions are paired with Imgflip templates and are the last resort.
var Captions = []string{
	"When you buy the dip but it keeps dipping",
	"Me explaining Bitcoin to my family",
	"HODL gang checking charts at 3am",
	"When your altcoin finally pumps 2%",
	"Diamond hands vs paper hands",
	"That feeling when gas fees cost more than the transaction",
	"When someone says crypto is a scam",
	"Telling yourself you won't check the charts today",
}

// Config points the client at its sources.
type Config struct {
	RedditURL  string
	ImgflipURL string
	Timeout    time.Duration
}

// Client fetches memes.
type Client struct {
	client     *resty.Client
	redditURL  string
	imgflipURL string
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title    string `json:"title"`
				URL      string `json:"url"`
				PostHint string `json:"post_hint"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type imgflipResponse struct {
	Data struct {
		Memes []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"memes"`
	} `json:"data"`
}

// NewClient creates a meme client.
func NewClient(cfg Config) *Client {
	if cfg.RedditURL == "" {
		cfg.RedditURL = DefaultRedditURL
	}
	if cfg.ImgflipURL == "" {
		cfg.ImgflipURL = DefaultImgflipURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		client: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("User-Agent", userAgent),
		redditURL:  cfg.RedditURL,
		imgflipURL: cfg.ImgflipURL,
	}
}

// Fetch returns a meme list and the tier that produced it. It never
// fails; the captions tier needs no network.
func (c *Client) Fetch(ctx context.Context) ([]models.Meme, Source) {
	memes, err := c.reddit(ctx)
	if err == nil && len(memes) > 0 {
		return memes, SourceReddit
	}
	log.Warn().Err(err).Int("memes", len(memes)).Msg("Reddit memes unavailable, trying Imgflip")

	memes, err = c.imgflip(ctx)
	if err == nil && len(memes) > 0 {
		return memes, SourceImgflip
	}
	log.Warn().Err(err).Msg("Imgflip unavailable, serving captions only")

	return captionsOnly(), SourceCaptions
}

func (c *Client) reddit(ctx context.Context) ([]models.Meme, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.redditURL)
	if err != nil {
		return nil, fmt.Errorf("reddit request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit returned %d", resp.StatusCode())
	}

	var listing redditListing
	if err := json.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, fmt.Errorf("failed to parse reddit listing: %w", err)
	}

	var memes []models.Meme
	for _, child := range listing.Data.Children {
		p := child.Data
		if p.PostHint != "image" || !isImage(p.URL) {
			continue
		}
		memes = append(memes, models.Meme{Title: p.Title, URL: p.URL})
	}
	return memes, nil
}

func (c *Client) imgflip(ctx context.Context) ([]models.Meme, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.imgflipURL)
	if err != nil {
		return nil, fmt.Errorf("imgflip request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("imgflip returned %d", resp.StatusCode())
	}

	var result imgflipResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse imgflip response: %w", err)
	}

	templates := result.Data.Memes
	if len(templates) > len(Captions) {
		templates = templates[:len(Captions)]
	}
	memes := make([]models.Meme, 0, len(templates))
	for i, t := range templates {
		memes = append(memes, models.Meme{Title: Captions[i], URL: t.URL})
	}
	return memes, nil
}

func isImage(url string) bool {
	return strings.HasSuffix(url, ".jpg") || strings.HasSuffix(url, ".png") || strings.HasSuffix(url, ".gif")
}

func captionsOnly() []models.Meme {
	memes := make([]models.Meme, len(Captions))
	for i, c := range Captions {
		memes[i] = models.Meme{Title: c}
	}
	return memes
}
