package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/leeaandrob/coinpulse/internal/coingecko"
	"github.com/leeaandrob/coinpulse/internal/memes"
)

// WarmMemes refetches memes and stores them under the key GetMemes reads.
// Caption-only results are not stored.
func (h *Handlers) WarmMemes(ctx context.Context) error {
	if h.cache == nil {
		return nil
	}
	items, src := h.memes.Fetch(ctx)
	if src == memes.SourceCaptions {
		return errors.New("meme sources unavailable")
	}
	return h.cache.Set(ctx, "memes", memeList{Memes: items, Source: src}, memesTTL)
}

// WarmHistory refreshes the price history of every supported asset for
// one range. It keeps going past individual failures.
func (h *Handlers) WarmHistory(ctx context.Context, days string) error {
	if h.cache == nil {
		return nil
	}
	if !coingecko.ValidHistoryDays(days) {
		return fmt.Errorf("invalid days %q", days)
	}

	ttl := historyTTL
	if days == "1" {
		ttl = historyShortTTL
	}

	var errs []error
	for _, a := range h.registry.Assets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		prices, err := h.market.FetchHistory(ctx, a.CoinGeckoID, days)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.CoinGeckoID, err))
			continue
		}
		if err := h.cache.Set(ctx, "history:"+a.CoinGeckoID+":"+days, prices, ttl); err != nil {
			errs = append(errs, err)
		}
	}

	log.Debug().Str("days", days).Int("failed", len(errs)).Msg("Price history warmed")
	return errors.Join(errs...)
}
