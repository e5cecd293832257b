package insight

import (
	"fmt"

	"github.com/leeaandrob/coinpulse/internal/models"
)

// fragment renders one sentence from the aggregates, or "" when the data
// it needs is missing.
type fragment func(s marketStats) string

// variant is one way of composing the quantitative part of an insight.
type variant struct {
	name      string
	fragments []fragment
}

// compose renders the variant, dropping fragments without data.
func (v variant) compose(s marketStats) []string {
	out := make([]string, 0, len(v.fragments))
	for _, f := range v.fragments {
		if text := f(s); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func describe(q models.AssetQuote) string {
	return fmt.Sprintf("%s at %s (%s)", q.Symbol, FormatPrice(q.Price), FormatPercent(q.Change24h))
}

func leaderPrice(s marketStats) string {
	if len(s.quotes) == 1 {
		return fmt.Sprintf("%s is trading at %s, %s over the past 24 hours.",
			s.gainer.Symbol, FormatPrice(s.gainer.Price), FormatPercent(s.gainer.Change24h))
	}
	return fmt.Sprintf("%s leads your watchlist at %s, %s over the past 24 hours.",
		s.gainer.Symbol, FormatPrice(s.gainer.Price), FormatPercent(s.gainer.Change24h))
}

func laggard(s marketStats) string {
	if !s.distinct() {
		return ""
	}
	return fmt.Sprintf("%s is the weakest of the group at %s on the day.",
		s.loser.Symbol, FormatPercent(s.loser.Change24h))
}

func average(s marketStats) string {
	if len(s.quotes) < 2 {
		return ""
	}
	return fmt.Sprintf("Across your %d tracked assets the average 24h move is %s.",
		len(s.quotes), FormatPercent(s.average))
}

func quoteRange(pick func(marketStats) (models.AssetQuote, bool)) fragment {
	return func(s marketStats) string {
		q, ok := pick(s)
		if !ok || !q.HasRange() {
			return ""
		}
		return fmt.Sprintf("%s has traded between %s and %s in the last 24 hours.",
			q.Symbol, FormatPrice(q.Low24h), FormatPrice(q.High24h))
	}
}

var gainerRange = quoteRange(func(s marketStats) (models.AssetQuote, bool) {
	return s.gainer, true
})

var loserRange = quoteRange(func(s marketStats) (models.AssetQuote, bool) {
	return s.loser, s.distinct()
})

func spread(s marketStats) string {
	if !s.distinct() {
		return ""
	}
	return fmt.Sprintf("That leaves a %s percentage-point gap between %s and %s.",
		formatPoints(s.spread()), s.gainer.Symbol, s.loser.Symbol)
}

func volume(s marketStats) string {
	if s.gainer.Volume24h <= 0 {
		return ""
	}
	return fmt.Sprintf("%s has seen %s in 24h trading volume.",
		s.gainer.Symbol, formatCompact(s.gainer.Volume24h))
}

func breadth(s marketStats) string {
	if len(s.quotes) < 2 {
		return ""
	}
	return fmt.Sprintf("%d of your %d tracked assets are higher on the day.",
		s.advancers(), len(s.quotes))
}

func mood(s marketStats) string {
	pct := FormatPercent(s.average)
	switch {
	case s.average >= 3:
		return fmt.Sprintf("Your basket is running hot, averaging %s over 24 hours.", pct)
	case s.average > 0:
		return fmt.Sprintf("Your basket is drifting higher, averaging %s over 24 hours.", pct)
	case s.average <= -3:
		return fmt.Sprintf("Your basket is under clear pressure, averaging %s over 24 hours.", pct)
	case s.average < 0:
		return fmt.Sprintf("Your basket is slightly softer, averaging %s over 24 hours.", pct)
	default:
		return "Your basket is flat over the past 24 hours."
	}
}

func largestCap(s marketStats) string {
	q, ok := s.largest()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s remains your largest asset by market value at %s.",
		q.Symbol, formatCompact(q.MarketCap))
}

// platform highlights the first tracked asset from symbols with a role
// description, e.g. the chain an NFT collector cares about most.
func platform(role string, symbols ...string) fragment {
	return func(s marketStats) string {
		q, ok := s.first(symbols...)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%s, %s, sits %s.", q.Symbol, role, describeAt(q))
	}
}

func describeAt(q models.AssetQuote) string {
	return fmt.Sprintf("at %s (%s)", FormatPrice(q.Price), FormatPercent(q.Change24h))
}

func rivals(s marketStats) string {
	if !s.distinct() {
		return ""
	}
	return fmt.Sprintf("Comparing the extremes: %s versus %s.", describe(s.gainer), describe(s.loser))
}

var (
	nftChains  = platform("home to most of the NFT market", "ETH", "SOL")
	defiChains = platform("a core smart-contract platform for DeFi", "ETH", "SOL", "AVAX", "BNB")
)

func hodlerVariants() []variant {
	return []variant{
		{name: "hodler-leader-average", fragments: []fragment{leaderPrice, average}},
		{name: "hodler-cap-breadth", fragments: []fragment{largestCap, breadth}},
		{name: "hodler-mood-range", fragments: []fragment{mood, gainerRange}},
		{name: "hodler-leader-laggard", fragments: []fragment{leaderPrice, laggard, spread}},
	}
}

func dayTraderVariants() []variant {
	return []variant{
		{name: "trader-leader-range-volume", fragments: []fragment{leaderPrice, gainerRange, volume}},
		{name: "trader-laggard-range", fragments: []fragment{laggard, loserRange, spread}},
		{name: "trader-spread-breadth", fragments: []fragment{rivals, breadth, mood}},
		{name: "trader-volume-leader", fragments: []fragment{volume, leaderPrice}},
	}
}

func nftCollectorVariants() []variant {
	return []variant{
		{name: "nft-chain-leader", fragments: []fragment{nftChains, leaderPrice}},
		{name: "nft-mood-chain", fragments: []fragment{mood, nftChains}},
		{name: "nft-leader-laggard", fragments: []fragment{leaderPrice, laggard}},
		{name: "nft-breadth-cap", fragments: []fragment{breadth, largestCap}},
	}
}

func defiExplorerVariants() []variant {
	return []variant{
		{name: "defi-chain-average", fragments: []fragment{defiChains, average}},
		{name: "defi-leader-spread", fragments: []fragment{leaderPrice, spread}},
		{name: "defi-chain-laggard", fragments: []fragment{defiChains, laggard, loserRange}},
		{name: "defi-breadth-mood", fragments: []fragment{breadth, mood}},
	}
}
