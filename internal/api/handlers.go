package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/leeaandrob/coinpulse/internal/cache"
	"github.com/leeaandrob/coinpulse/internal/coingecko"
	"github.com/leeaandrob/coinpulse/internal/cryptopanic"
	"github.com/leeaandrob/coinpulse/internal/insight"
	"github.com/leeaandrob/coinpulse/internal/memes"
	"github.com/leeaandrob/coinpulse/internal/metrics"
	"github.com/leeaandrob/coinpulse/internal/models"
)

// Cache lifetimes per response kind.
const (
	pricesTTL       = 60 * time.Second
	historyShortTTL = 60 * time.Second
	historyTTL      = 300 * time.Second
	newsTTL         = 300 * time.Second
	memesTTL        = time.Hour
)

// InsightProducer runs the insight pipeline.
type InsightProducer interface {
	Produce(ctx context.Context, req models.InsightRequest, userID string) (*models.InsightResult, error)
}

// MarketData serves quotes, coin detail and price history.
type MarketData interface {
	FetchQuotes(ctx context.Context, symbols []string) []models.AssetQuote
	FetchDetail(ctx context.Context, coinID string) (*models.CoinDetail, error)
	FetchHistory(ctx context.Context, coinID, days string) ([]models.PricePoint, error)
}

// NewsFetcher returns headlines for a set of symbols.
type NewsFetcher interface {
	FetchNews(ctx context.Context, symbols []string) ([]models.NewsItem, error)
}

// MemeFetcher returns memes and the tier that produced them.
type MemeFetcher interface {
	Fetch(ctx context.Context) ([]models.Meme, memes.Source)
}

// UserStore persists users, preferences and votes.
type UserStore interface {
	EnsureUser(ctx context.Context, externalID string) (*models.User, error)
	UserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	SavePreferences(ctx context.Context, prefs *models.Preferences) error
	UpdateAssets(ctx context.Context, userID string, assets []string) error
	CastVote(ctx context.Context, userID string, section models.Section, contentID string, value int) (int, error)
	SectionVotes(ctx context.Context, userID string, section models.Section) (map[string]int, error)
}

// Handlers holds the API handlers.
type Handlers struct {
	registry *models.Registry
	insights InsightProducer
	market   MarketData
	news     NewsFetcher
	memes    MemeFetcher
	users    UserStore
	cache    cache.Cache
	metrics  *metrics.Recorder
	validate *validator.Validate
	now      func() time.Time
}

// NewHandlers creates new API handlers.
func NewHandlers(deps Deps) *Handlers {
	if deps.Registry == nil {
		deps.Registry = models.NewRegistry()
	}
	return &Handlers{
		registry: deps.Registry,
		insights: deps.Insights,
		market:   deps.Market,
		news:     deps.News,
		memes:    deps.Memes,
		users:    deps.Users,
		cache:    deps.Cache,
		metrics:  deps.Metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondErrorCode(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}

// decode reads a JSON body into dst and validates its struct tags.
func (h *Handlers) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

// knownSymbols normalizes symbols and reports whether all are supported.
func (h *Handlers) knownSymbols(symbols []string) ([]string, bool) {
	valid, unknown := h.registry.NormalizeSymbols(symbols)
	return valid, len(unknown) == 0
}

func cacheKey(prefix string, symbols []string) string {
	sorted := slices.Clone(symbols)
	slices.Sort(sorted)
	return prefix + ":" + strings.Join(sorted, ",")
}

// ============================================================================
// HEALTH
// ============================================================================

// HealthCheck returns service health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ============================================================================
// INSIGHT
// ============================================================================

type insightBody struct {
	Assets       []string `json:"assets" validate:"required,min=1,max=16,dive,required"`
	InvestorType string   `json:"investorType" validate:"required"`
}

// PostInsight returns a persona-tailored insight for the tracked assets.
func (h *Handlers) PostInsight(w http.ResponseWriter, r *http.Request) {
	var body insightBody
	if err := h.decode(r, &body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && strings.HasPrefix(verrs[0].StructField(), "InvestorType") {
			respondErrorCode(w, http.StatusBadRequest, "invalid_persona", "investorType is required")
			return
		}
		respondErrorCode(w, http.StatusBadRequest, "invalid_assets", "assets must be a non-empty list of symbols")
		return
	}

	res, err := h.insights.Produce(r.Context(), models.InsightRequest{
		Assets:  body.Assets,
		Persona: models.Persona(body.InvestorType),
	}, h.voterID(r.Context()))

	switch {
	case errors.Is(err, insight.ErrInvalidAssets):
		respondErrorCode(w, http.StatusBadRequest, "invalid_assets", err.Error())
	case errors.Is(err, insight.ErrInvalidPersona):
		respondErrorCode(w, http.StatusBadRequest, "invalid_persona", err.Error())
	case errors.Is(err, insight.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized")
	case err != nil:
		log.Error().Err(err).Msg("Insight pipeline failed")
		respondError(w, http.StatusInternalServerError, "Failed to produce insight")
	default:
		respondJSON(w, http.StatusOK, res)
	}
}

// voterID resolves the internal user id that votes are stored under,
// falling back to the external identity for users never synced.
func (h *Handlers) voterID(ctx context.Context) string {
	ext := externalID(ctx)
	if h.users == nil {
		return ext
	}
	user, err := h.users.UserByExternalID(ctx, ext)
	if err != nil {
		return ext
	}
	return user.ID
}

// ============================================================================
// PRICES
// ============================================================================

type pricesBody struct {
	Assets []string `json:"assets" validate:"max=16,dive,required"`
}

// PostPrices returns live quotes for the requested symbols. Unsupported
// symbols are ignored.
func (h *Handlers) PostPrices(w http.ResponseWriter, r *http.Request) {
	var body pricesBody
	if err := h.decode(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid assets")
		return
	}

	symbols, _ := h.registry.NormalizeSymbols(body.Assets)
	if len(symbols) == 0 {
		respondJSON(w, http.StatusOK, map[string]interface{}{"coins": []models.AssetQuote{}})
		return
	}

	coins, _ := cache.Remember(r.Context(), h.cache, h.metrics, cacheKey("prices", symbols), pricesTTL,
		func(ctx context.Context) ([]models.AssetQuote, error) {
			return h.market.FetchQuotes(ctx, symbols), nil
		},
		func(q []models.AssetQuote) bool { return len(q) > 0 },
	)

	if len(coins) == 0 {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"coins": []models.AssetQuote{},
			"error": "Failed to fetch prices",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"coins": coins})
}

// GetPriceDetail returns a single coin with all-time extremes.
func (h *Handlers) GetPriceDetail(w http.ResponseWriter, r *http.Request) {
	coinID := r.URL.Query().Get("coinId")
	if coinID == "" {
		respondError(w, http.StatusBadRequest, "Missing coinId")
		return
	}
	if !coingecko.ValidCoinID(coinID) {
		respondError(w, http.StatusBadRequest, "Invalid coinId")
		return
	}

	detail, err := h.market.FetchDetail(r.Context(), coinID)
	if errors.Is(err, coingecko.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Coin not found")
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("coin_id", coinID).Msg("Coin detail unavailable")
		respondError(w, http.StatusInternalServerError, "Failed to fetch coin data. Try again in a moment.")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// GetPriceHistory returns chart points for a coin.
func (h *Handlers) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	coinID := r.URL.Query().Get("coinId")
	days := r.URL.Query().Get("days")
	if days == "" {
		days = "7"
	}

	if coinID == "" {
		respondError(w, http.StatusBadRequest, "Missing coinId")
		return
	}
	if !coingecko.ValidCoinID(coinID) {
		respondError(w, http.StatusBadRequest, "Invalid coinId")
		return
	}
	if !coingecko.ValidHistoryDays(days) {
		respondError(w, http.StatusBadRequest, "Invalid days parameter")
		return
	}

	ttl := historyTTL
	if days == "1" {
		ttl = historyShortTTL
	}

	prices, err := cache.Remember(r.Context(), h.cache, h.metrics, "history:"+coinID+":"+days, ttl,
		func(ctx context.Context) ([]models.PricePoint, error) {
			return h.market.FetchHistory(ctx, coinID, days)
		}, nil)
	if err != nil {
		log.Warn().Err(err).Str("coin_id", coinID).Str("days", days).Msg("Price history unavailable")
		respondError(w, http.StatusInternalServerError, "Failed to fetch price history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"prices": prices})
}

// ============================================================================
// NEWS & MEMES
// ============================================================================

type newsBody struct {
	Assets []string `json:"assets" validate:"max=16,dive,required"`
}

// PostNews returns headlines for the tracked assets, or a static list when
// the feed is unavailable.
func (h *Handlers) PostNews(w http.ResponseWriter, r *http.Request) {
	var body newsBody
	if err := h.decode(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid assets")
		return
	}
	symbols, ok := h.knownSymbols(body.Assets)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid assets")
		return
	}

	news, err := cache.Remember(r.Context(), h.cache, h.metrics, cacheKey("news", symbols), newsTTL,
		func(ctx context.Context) ([]models.NewsItem, error) {
			return h.news.FetchNews(ctx, symbols)
		}, nil)
	if err != nil {
		log.Warn().Err(err).Msg("News feed unavailable, serving fallback headlines")
		news = cryptopanic.Fallback(h.now())
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"news": news})
}

type memeList struct {
	Memes  []models.Meme `json:"memes"`
	Source memes.Source  `json:"source"`
}

// GetMemes returns crypto memes.
func (h *Handlers) GetMemes(w http.ResponseWriter, r *http.Request) {
	list, _ := cache.Remember(r.Context(), h.cache, h.metrics, "memes", memesTTL,
		func(ctx context.Context) (memeList, error) {
			items, src := h.memes.Fetch(ctx)
			return memeList{Memes: items, Source: src}, nil
		},
		func(l memeList) bool { return l.Source != memes.SourceCaptions },
	)

	respondJSON(w, http.StatusOK, map[string]interface{}{"memes": list.Memes})
}
