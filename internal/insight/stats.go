package insight

import "github.com/leeaandrob/coinpulse/internal/models"

// marketStats are the aggregates every template variant draws from.
type marketStats struct {
	quotes  []models.AssetQuote
	gainer  models.AssetQuote
	loser   models.AssetQuote
	average float64
}

// computeStats derives the aggregates once per generation. quotes must be
// non-empty. Ties keep the first quote encountered.
func computeStats(quotes []models.AssetQuote) marketStats {
	s := marketStats{
		quotes: quotes,
		gainer: quotes[0],
		loser:  quotes[0],
	}

	var sum float64
	for i, q := range quotes {
		sum += q.Change24h
		if i == 0 {
			continue
		}
		if q.Change24h > s.gainer.Change24h {
			s.gainer = q
		}
		if q.Change24h < s.loser.Change24h {
			s.loser = q
		}
	}
	s.average = sum / float64(len(quotes))

	return s
}

// distinct reports whether gainer and loser are different assets.
func (s marketStats) distinct() bool {
	return len(s.quotes) > 1 && s.gainer.Symbol != s.loser.Symbol
}

func (s marketStats) spread() float64 {
	return s.gainer.Change24h - s.loser.Change24h
}

func (s marketStats) advancers() int {
	n := 0
	for _, q := range s.quotes {
		if q.Change24h > 0 {
			n++
		}
	}
	return n
}

// largest returns the quote with the highest market cap, if any has one.
func (s marketStats) largest() (models.AssetQuote, bool) {
	var best models.AssetQuote
	found := false
	for _, q := range s.quotes {
		if q.MarketCap > 0 && (!found || q.MarketCap > best.MarketCap) {
			best = q
			found = true
		}
	}
	return best, found
}

// first returns the first quote whose symbol is in symbols, honouring
// the order of symbols.
func (s marketStats) first(symbols ...string) (models.AssetQuote, bool) {
	for _, sym := range symbols {
		for _, q := range s.quotes {
			if q.Symbol == sym {
				return q, true
			}
		}
	}
	return models.AssetQuote{}, false
}
