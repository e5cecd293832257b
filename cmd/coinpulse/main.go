// CoinPulse - personalized crypto dashboard backend.
// Serves prices, news, memes, votes and persona-tailored market insights.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/leeaandrob/coinpulse/internal/api"
	"github.com/leeaandrob/coinpulse/internal/cache"
	"github.com/leeaandrob/coinpulse/internal/coingecko"
	"github.com/leeaandrob/coinpulse/internal/config"
	"github.com/leeaandrob/coinpulse/internal/cryptopanic"
	"github.com/leeaandrob/coinpulse/internal/feedback"
	"github.com/leeaandrob/coinpulse/internal/insight"
	"github.com/leeaandrob/coinpulse/internal/llm"
	"github.com/leeaandrob/coinpulse/internal/memes"
	"github.com/leeaandrob/coinpulse/internal/metrics"
	"github.com/leeaandrob/coinpulse/internal/models"
	"github.com/leeaandrob/coinpulse/internal/scheduler"
	"github.com/leeaandrob/coinpulse/internal/storage"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("CoinPulse - Starting dashboard backend")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	// Initialize storage
	store, err := storage.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer store.Close(ctx)

	// Response cache
	var responses cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.RedisURL, "coinpulse:")
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, cache reads will miss until it recovers")
		}
		defer rc.Close()
		responses = rc
		log.Info().Msg("Redis response cache initialized")
	}

	registry := models.NewRegistry()

	// Market data
	market := coingecko.NewClient(coingecko.Config{
		BaseURL:   cfg.CoinGeckoBaseURL,
		APIKey:    cfg.CoinGeckoAPIKey,
		Timeout:   cfg.CoinGeckoTimeout,
		RetryWait: cfg.CoinGeckoRetryWait,
	}, registry, rec)
	log.Info().Msg("CoinGecko client initialized")

	// Text providers
	primary, secondary := providers(cfg)

	remote := insight.NewRemoteClient(primary, secondary, registry, insight.RemoteConfig{
		Temperature: float32(cfg.LLMTemperature),
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
	}, rec)

	orchestrator := insight.NewOrchestrator(
		registry,
		market,
		feedback.NewAggregator(store),
		remote,
		insight.NewTemplateGenerator(registry, insight.SystemRand()),
		rec,
	)
	log.Info().Msg("Insight pipeline initialized")

	apiServer := api.NewServer(api.Deps{
		Registry: registry,
		Insights: orchestrator,
		Market:   market,
		News:     cryptopanic.NewClient("", cfg.CryptoPanicToken),
		Memes:    memes.NewClient(memes.Config{}),
		Users:    store,
		Cache:    responses,
		Metrics:  rec,
	}, cfg.HTTPAddr)

	// Background cache warming
	handlers := apiServer.Handlers()
	sched := scheduler.NewScheduler(time.Minute)
	sched.AddJob(&scheduler.Job{
		Name:       "warm-memes",
		Schedule:   scheduler.Schedule{Type: scheduler.ScheduleInterval, Interval: 55 * time.Minute},
		RunOnStart: true,
		Handler:    handlers.WarmMemes,
	})
	sched.AddJob(&scheduler.Job{
		Name:     "warm-history-7d",
		Schedule: scheduler.Schedule{Type: scheduler.ScheduleInterval, Interval: 4 * time.Minute},
		Timeout:  2 * time.Minute,
		Handler: func(ctx context.Context) error {
			return handlers.WarmHistory(ctx, "7")
		},
	})

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error().Err(err).Msg("API server error")
		}
	}()

	sched.Start()

	log.Info().
		Str("api", cfg.HTTPAddr).
		Msg("CoinPulse running")

	// Wait for shutdown signal
	<-sigChan
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	sched.Stop()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("CoinPulse stopped")
}

// providers builds the primary and secondary text providers. A provider
// without an API key is left nil so its attempts are skipped.
func providers(cfg *config.Config) (llm.Provider, llm.Provider) {
	var primary, secondary llm.Provider

	if cfg.OpenRouterAPIKey != "" {
		primary = llm.NewOpenAIProvider(llm.OpenAIConfig{
			Name:     "openrouter",
			APIKey:   cfg.OpenRouterAPIKey,
			Endpoint: cfg.OpenRouterEndpoint,
			Model:    cfg.PrimaryModel,
		})
		log.Info().Str("model", cfg.PrimaryModel).Msg("Primary provider initialized")
	} else {
		log.Warn().Msg("Primary provider not initialized (no API key)")
	}

	switch cfg.SecondaryProvider {
	case config.SecondaryAnthropic:
		if cfg.AnthropicAPIKey != "" {
			secondary = llm.NewAnthropicProvider(llm.AnthropicConfig{
				APIKey: cfg.AnthropicAPIKey,
				Model:  cfg.AnthropicModel,
			})
			log.Info().Str("model", cfg.AnthropicModel).Msg("Anthropic secondary provider initialized")
		}
	default:
		if cfg.DashScopeAPIKey != "" {
			secondary = llm.NewOpenAIProvider(llm.OpenAIConfig{
				Name:     "qwen",
				APIKey:   cfg.DashScopeAPIKey,
				Endpoint: cfg.DashScopeEndpoint,
				Model:    cfg.QwenModel,
			})
			log.Info().Str("model", cfg.QwenModel).Msg("Qwen secondary provider initialized")
		}
	}
	if secondary == nil {
		log.Warn().Str("provider", cfg.SecondaryProvider).Msg("Secondary provider not initialized (no API key)")
	}

	return primary, secondary
}
