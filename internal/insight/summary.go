package insight

import (
	"fmt"
	"strings"

	"github.com/leeaandrob/coinpulse/internal/models"
)

// SummaryLimit caps how many quotes go into a prompt summary.
const SummaryLimit = 6

// NoMarketData is the summary used when no quotes are available.
const NoMarketData = "Live market data is unavailable."

// MarketSummary renders quotes as one line per asset for the remote
// prompt. It is never shown to users.
func MarketSummary(quotes []models.AssetQuote) string {
	if len(quotes) == 0 {
		return NoMarketData
	}

	if len(quotes) > SummaryLimit {
		quotes = quotes[:SummaryLimit]
	}

	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		lines = append(lines, fmt.Sprintf("- %s: %s, %s in 24h (%s)",
			q.Symbol, FormatPrice(q.Price), FormatPercent(q.Change24h), trend(q.Change24h)))
	}
	return strings.Join(lines, "\n")
}

func trend(change float64) string {
	switch {
	case change >= 5:
		return "surging"
	case change >= 2:
		return "rising"
	case change > 0.5:
		return "edging higher"
	case change >= -0.5:
		return "flat"
	case change > -2:
		return "slipping"
	case change > -5:
		return "falling"
	default:
		return "sliding sharply"
	}
}
