package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leeaandrob/coinpulse/internal/cache"
	"github.com/leeaandrob/coinpulse/internal/coingecko"
	"github.com/leeaandrob/coinpulse/internal/insight"
	"github.com/leeaandrob/coinpulse/internal/memes"
	"github.com/leeaandrob/coinpulse/internal/models"
	"github.com/leeaandrob/coinpulse/internal/storage"
)

type fakeInsights struct {
	res    *models.InsightResult
	err    error
	calls  int
	userID string
}

func (f *fakeInsights) Produce(ctx context.Context, req models.InsightRequest, userID string) (*models.InsightResult, error) {
	f.calls++
	f.userID = userID
	return f.res, f.err
}

type fakeMarket struct {
	quotes      []models.AssetQuote
	detail      *models.CoinDetail
	detailErr   error
	history     []models.PricePoint
	historyErr  error
	quoteCalls  int
	historyDays string
}

func (f *fakeMarket) FetchQuotes(ctx context.Context, symbols []string) []models.AssetQuote {
	f.quoteCalls++
	return f.quotes
}

func (f *fakeMarket) FetchDetail(ctx context.Context, coinID string) (*models.CoinDetail, error) {
	return f.detail, f.detailErr
}

func (f *fakeMarket) FetchHistory(ctx context.Context, coinID, days string) ([]models.PricePoint, error) {
	f.historyDays = days
	return f.history, f.historyErr
}

type fakeNews struct {
	items []models.NewsItem
	err   error
}

func (f *fakeNews) FetchNews(ctx context.Context, symbols []string) ([]models.NewsItem, error) {
	return f.items, f.err
}

type fakeMemes struct{ calls int }

func (f *fakeMemes) Fetch(ctx context.Context) ([]models.Meme, memes.Source) {
	f.calls++
	return []models.Meme{{Title: "Dip", URL: "https://i.redd.it/a.jpg"}}, memes.SourceReddit
}

// fakeUsers is an in-memory UserStore.
type fakeUsers struct {
	users map[string]*models.User
	prefs map[string]*models.Preferences
	votes map[string]int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users: map[string]*models.User{},
		prefs: map[string]*models.Preferences{},
		votes: map[string]int{},
	}
}

func (f *fakeUsers) EnsureUser(ctx context.Context, ext string) (*models.User, error) {
	if u, ok := f.users[ext]; ok {
		return u, nil
	}
	u := &models.User{ID: "id-" + ext, ExternalID: ext}
	f.users[ext] = u
	return u, nil
}

func (f *fakeUsers) UserByExternalID(ctx context.Context, ext string) (*models.User, error) {
	if u, ok := f.users[ext]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUsers) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUsers) SavePreferences(ctx context.Context, p *models.Preferences) error {
	f.prefs[p.UserID] = p
	return nil
}

func (f *fakeUsers) UpdateAssets(ctx context.Context, userID string, assets []string) error {
	p, ok := f.prefs[userID]
	if !ok {
		return storage.ErrNotFound
	}
	p.Assets = assets
	return nil
}

func (f *fakeUsers) CastVote(ctx context.Context, userID string, section models.Section, contentID string, value int) (int, error) {
	key := userID + "|" + string(section) + "|" + contentID
	if f.votes[key] == value {
		delete(f.votes, key)
		return 0, nil
	}
	f.votes[key] = value
	return value, nil
}

func (f *fakeUsers) SectionVotes(ctx context.Context, userID string, section models.Section) (map[string]int, error) {
	out := map[string]int{}
	prefix := userID + "|" + string(section) + "|"
	for k, v := range f.votes {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out[k[len(prefix):]] = v
		}
	}
	return out, nil
}

type testEnv struct {
	insights *fakeInsights
	market   *fakeMarket
	news     *fakeNews
	memes    *fakeMemes
	users    *fakeUsers
	handler  http.Handler
}

func newEnv() *testEnv {
	env := &testEnv{
		insights: &fakeInsights{res: &models.InsightResult{Text: "Stay the course.", Source: models.ProvenanceTemplate}},
		market:   &fakeMarket{},
		news:     &fakeNews{},
		memes:    &fakeMemes{},
		users:    newFakeUsers(),
	}
	env.handler = NewRouter(Deps{
		Registry: models.NewRegistry(),
		Insights: env.insights,
		Market:   env.market,
		News:     env.news,
		Memes:    env.memes,
		Users:    env.users,
		Cache:    cache.NewMemory(),
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, user string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHealthIsPublic(t *testing.T) {
	rec, body := newEnv().do(t, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestInsight_RequiresIdentity(t *testing.T) {
	env := newEnv()

	rec, body := env.do(t, http.MethodPost, "/api/insight", "", map[string]interface{}{
		"assets": []string{"BTC"}, "investorType": "hodler",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", body["error"])
	assert.Zero(t, env.insights.calls)
}

func TestInsight_Success(t *testing.T) {
	env := newEnv()
	env.users.users["ext-1"] = &models.User{ID: "internal-1", ExternalID: "ext-1"}

	rec, body := env.do(t, http.MethodPost, "/api/insight", "ext-1", map[string]interface{}{
		"assets": []string{"BTC", "ETH"}, "investorType": "hodler",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Stay the course.", body["insight"])
	assert.Equal(t, "template", body["source"])
	assert.Equal(t, "internal-1", env.insights.userID)
}

func TestInsight_ValidationCodes(t *testing.T) {
	tests := []struct {
		name     string
		body     map[string]interface{}
		err      error
		wantCode string
	}{
		{"empty assets", map[string]interface{}{"assets": []string{}, "investorType": "hodler"}, nil, "invalid_assets"},
		{"missing persona", map[string]interface{}{"assets": []string{"BTC"}}, nil, "invalid_persona"},
		{"unknown asset", map[string]interface{}{"assets": []string{"PEPE"}, "investorType": "hodler"},
			fmt.Errorf("%w: unsupported symbols PEPE", insight.ErrInvalidAssets), "invalid_assets"},
		{"unknown persona", map[string]interface{}{"assets": []string{"BTC"}, "investorType": "whale"},
			fmt.Errorf("%w: \"whale\"", insight.ErrInvalidPersona), "invalid_persona"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv()
			env.insights.err = tt.err

			rec, body := env.do(t, http.MethodPost, "/api/insight", "ext-1", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestPrices_CachedAfterSuccess(t *testing.T) {
	env := newEnv()
	env.market.quotes = []models.AssetQuote{{Symbol: "BTC", Price: 64000}}

	for i := 0; i < 2; i++ {
		rec, body := env.do(t, http.MethodPost, "/api/prices", "ext-1", map[string]interface{}{"assets": []string{"BTC", "NOPE"}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, body["coins"], 1)
	}

	assert.Equal(t, 1, env.market.quoteCalls)
}

func TestPrices_FailureNotCached(t *testing.T) {
	env := newEnv()

	_, body := env.do(t, http.MethodPost, "/api/prices", "ext-1", map[string]interface{}{"assets": []string{"ETH"}})
	assert.Equal(t, "Failed to fetch prices", body["error"])
	assert.Empty(t, body["coins"])

	env.do(t, http.MethodPost, "/api/prices", "ext-1", map[string]interface{}{"assets": []string{"ETH"}})
	assert.Equal(t, 2, env.market.quoteCalls)
}

func TestPriceDetail(t *testing.T) {
	env := newEnv()

	rec, _ := env.do(t, http.MethodGet, "/api/prices/detail?coinId=Bad!", "ext-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.market.detailErr = coingecko.ErrNotFound
	rec, _ = env.do(t, http.MethodGet, "/api/prices/detail?coinId=bitcoin", "ext-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.market.detailErr = errors.New("502")
	rec, _ = env.do(t, http.MethodGet, "/api/prices/detail?coinId=bitcoin", "ext-1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	env.market.detailErr = nil
	env.market.detail = &models.CoinDetail{AssetQuote: models.AssetQuote{CoinGeckoID: "bitcoin", Price: 64000}, ATH: 73000}
	rec, body := env.do(t, http.MethodGet, "/api/prices/detail?coinId=bitcoin", "ext-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bitcoin", body["id"])
	assert.Equal(t, 73000.0, body["ath"])
}

func TestPriceHistory(t *testing.T) {
	env := newEnv()
	env.market.history = []models.PricePoint{{1700000000000, 64000}}

	rec, _ := env.do(t, http.MethodGet, "/api/prices/history?coinId=bitcoin&days=2", "ext-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/prices/history?coinId=bitcoin", "ext-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", env.market.historyDays)
	assert.Len(t, body["prices"], 1)
}

func TestNews_FallbackOnError(t *testing.T) {
	env := newEnv()
	env.news.err = errors.New("down")

	rec, body := env.do(t, http.MethodPost, "/api/news", "ext-1", map[string]interface{}{"assets": []string{"BTC"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["news"], 3)
}

func TestNews_RejectsUnknownAssets(t *testing.T) {
	rec, _ := newEnv().do(t, http.MethodPost, "/api/news", "ext-1", map[string]interface{}{"assets": []string{"LUNA"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemes_PublicAndCached(t *testing.T) {
	env := newEnv()

	for i := 0; i < 2; i++ {
		rec, body := env.do(t, http.MethodGet, "/api/memes", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, body["memes"], 1)
	}
	assert.Equal(t, 1, env.memes.calls)
}

func TestVote_Toggle(t *testing.T) {
	env := newEnv()
	vote := map[string]interface{}{"section": "news", "contentId": "story-1", "vote": 1}

	rec, _ := env.do(t, http.MethodPost, "/api/vote", "ext-1", vote)
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown user")

	env.do(t, http.MethodPost, "/api/user/sync", "ext-1", nil)

	_, body := env.do(t, http.MethodPost, "/api/vote", "ext-1", vote)
	assert.Equal(t, 1.0, body["vote"])

	_, body = env.do(t, http.MethodGet, "/api/vote?section=news", "ext-1", nil)
	assert.Equal(t, map[string]interface{}{"story-1": 1.0}, body["votes"])

	_, body = env.do(t, http.MethodPost, "/api/vote", "ext-1", vote)
	assert.Contains(t, body, "vote")
	assert.Nil(t, body["vote"])
}

func TestVote_Validation(t *testing.T) {
	env := newEnv()
	env.do(t, http.MethodPost, "/api/user/sync", "ext-1", nil)

	for _, body := range []map[string]interface{}{
		{"section": "weather", "contentId": "x", "vote": 1},
		{"section": "news", "contentId": "", "vote": 1},
		{"section": "news", "contentId": "x", "vote": 2},
		{"section": "news", "contentId": "x"},
	} {
		rec, _ := env.do(t, http.MethodPost, "/api/vote", "ext-1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%v", body)
	}

	rec, _ := env.do(t, http.MethodGet, "/api/vote?section=weather", "ext-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferences_Flow(t *testing.T) {
	env := newEnv()
	env.do(t, http.MethodPost, "/api/user/sync", "ext-1", nil)

	rec, _ := env.do(t, http.MethodPatch, "/api/preferences", "ext-1", map[string]interface{}{"assets": []string{"BTC"}})
	assert.Equal(t, http.StatusNotFound, rec.Code, "patch before onboarding")

	rec, _ = env.do(t, http.MethodPost, "/api/onboarding", "ext-1", map[string]interface{}{
		"assets": []string{"BTC", "ETH"}, "investorType": "nft-collector", "contentTypes": []string{"news", "fun"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodPatch, "/api/preferences", "ext-1", map[string]interface{}{"assets": []string{"sol"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"SOL"}, body["assets"])

	rec, body = env.do(t, http.MethodGet, "/api/preferences", "ext-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nft-collector", body["investorType"])
	assert.Equal(t, []interface{}{"SOL"}, body["assets"])
}

func TestOnboarding_Validation(t *testing.T) {
	env := newEnv()

	for _, body := range []map[string]interface{}{
		{"assets": []string{"BTC"}, "investorType": "whale", "contentTypes": []string{"news"}},
		{"assets": []string{"LUNA"}, "investorType": "hodler", "contentTypes": []string{"news"}},
		{"assets": []string{"BTC"}, "investorType": "hodler", "contentTypes": []string{"weather"}},
		{"assets": []string{}, "investorType": "hodler", "contentTypes": []string{"news"}},
	} {
		rec, _ := env.do(t, http.MethodPost, "/api/onboarding", "ext-1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%v", body)
	}
}

func TestUserSync(t *testing.T) {
	env := newEnv()

	rec, body := env.do(t, http.MethodPost, "/api/user/sync", "ext-9", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "id-ext-9", body["id"])
	assert.Equal(t, "ext-9", body["externalId"])
}
