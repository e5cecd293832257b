package models

// AssetQuote is one asset's market snapshot at fetch time.
type AssetQuote struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	CoinGeckoID string  `json:"id"`
	Image       string  `json:"image,omitempty"`
	Price       float64 `json:"current_price"`
	Change24h   float64 `json:"price_change_percentage_24h"`
	MarketCap   float64 `json:"market_cap"`
	Volume24h   float64 `json:"total_volume"`
	High24h     float64 `json:"high_24h"`
	Low24h      float64 `json:"low_24h"`
}

// HasRange reports whether a usable 24h high/low pair is present.
func (q AssetQuote) HasRange() bool {
	return q.High24h > 0 && q.Low24h > 0 && q.High24h >= q.Low24h
}

// CoinDetail extends a quote with all-time extremes for the detail view.
type CoinDetail struct {
	AssetQuote
	ATH float64 `json:"ath"`
	ATL float64 `json:"atl"`
}

// PricePoint is a [timestamp_ms, price] pair from a market chart.
type PricePoint [2]float64
