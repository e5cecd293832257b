// Package models defines the core data structures for CoinPulse.
package models

import "strings"

// Asset is one entry of the supported-asset allowlist.
type Asset struct {
	Symbol      string `json:"symbol"`
	Label       string `json:"label"`
	CoinGeckoID string `json:"coingecko_id"`
}

// DefaultAssets is the fixed set of assets the dashboard can track.
var DefaultAssets = []Asset{
	{Symbol: "BTC", Label: "Bitcoin (BTC)", CoinGeckoID: "bitcoin"},
	{Symbol: "ETH", Label: "Ethereum (ETH)", CoinGeckoID: "ethereum"},
	{Symbol: "SOL", Label: "Solana (SOL)", CoinGeckoID: "solana"},
	{Symbol: "BNB", Label: "BNB (BNB)", CoinGeckoID: "binancecoin"},
	{Symbol: "XRP", Label: "Ripple (XRP)", CoinGeckoID: "ripple"},
	{Symbol: "ADA", Label: "Cardano (ADA)", CoinGeckoID: "cardano"},
	{Symbol: "DOGE", Label: "Dogecoin (DOGE)", CoinGeckoID: "dogecoin"},
	{Symbol: "AVAX", Label: "Avalanche (AVAX)", CoinGeckoID: "avalanche-2"},
}

// ContentType is a dashboard content category chosen at onboarding.
type ContentType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DefaultContentTypes lists the selectable content categories.
var DefaultContentTypes = []ContentType{
	{ID: "news", Label: "Market News"},
	{ID: "prices", Label: "Coin Prices & Charts"},
	{ID: "social", Label: "Social & Community"},
	{ID: "fun", Label: "Fun & Memes"},
}

// Section names a dashboard block that users can vote on.
type Section string

const (
	SectionPrices  Section = "prices"
	SectionNews    Section = "news"
	SectionInsight Section = "insight"
	SectionMeme    Section = "meme"
)

// DefaultSections are the votable dashboard sections.
var DefaultSections = []Section{SectionPrices, SectionNews, SectionInsight, SectionMeme}

// Registry holds the read-only lookup tables shared by every request.
// Build it once with NewRegistry and pass it by pointer.
type Registry struct {
	assets       []Asset
	bySymbol     map[string]Asset
	byCoinGecko  map[string]Asset
	personas     []PersonaInfo
	byPersona    map[Persona]PersonaInfo
	contentTypes map[string]ContentType
	sections     map[Section]struct{}
}

// NewRegistry builds a registry from the default tables.
func NewRegistry() *Registry {
	r := &Registry{
		assets:       DefaultAssets,
		bySymbol:     make(map[string]Asset, len(DefaultAssets)),
		byCoinGecko:  make(map[string]Asset, len(DefaultAssets)),
		personas:     DefaultPersonas,
		byPersona:    make(map[Persona]PersonaInfo, len(DefaultPersonas)),
		contentTypes: make(map[string]ContentType, len(DefaultContentTypes)),
		sections:     make(map[Section]struct{}, len(DefaultSections)),
	}
	for _, a := range DefaultAssets {
		r.bySymbol[a.Symbol] = a
		r.byCoinGecko[a.CoinGeckoID] = a
	}
	for _, p := range DefaultPersonas {
		r.byPersona[p.ID] = p
	}
	for _, c := range DefaultContentTypes {
		r.contentTypes[c.ID] = c
	}
	for _, s := range DefaultSections {
		r.sections[s] = struct{}{}
	}
	return r
}

// Assets returns the supported assets in display order.
func (r *Registry) Assets() []Asset {
	out := make([]Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// Asset looks up an asset by ticker symbol.
func (r *Registry) Asset(symbol string) (Asset, bool) {
	a, ok := r.bySymbol[symbol]
	return a, ok
}

// AssetByCoinGeckoID looks up an asset by its CoinGecko identifier.
func (r *Registry) AssetByCoinGeckoID(id string) (Asset, bool) {
	a, ok := r.byCoinGecko[id]
	return a, ok
}

// CoinGeckoID maps a symbol to its provider identifier.
func (r *Registry) CoinGeckoID(symbol string) (string, bool) {
	a, ok := r.bySymbol[symbol]
	if !ok {
		return "", false
	}
	return a.CoinGeckoID, true
}

// Personas returns the investor personas in display order.
func (r *Registry) Personas() []PersonaInfo {
	out := make([]PersonaInfo, len(r.personas))
	copy(out, r.personas)
	return out
}

// Persona returns the descriptor for a persona.
func (r *Registry) Persona(p Persona) (PersonaInfo, bool) {
	info, ok := r.byPersona[p]
	return info, ok
}

// PersonaOrDefault returns the descriptor for p, falling back to the
// long-term holder persona for unknown values.
func (r *Registry) PersonaOrDefault(p Persona) PersonaInfo {
	if info, ok := r.byPersona[p]; ok {
		return info
	}
	return r.byPersona[PersonaHodler]
}

// ValidContentType reports whether id is a known content type.
func (r *Registry) ValidContentType(id string) bool {
	_, ok := r.contentTypes[id]
	return ok
}

// ValidSection reports whether s is a votable section.
func (r *Registry) ValidSection(s Section) bool {
	_, ok := r.sections[s]
	return ok
}

// NormalizeSymbols upper-cases, trims and de-duplicates symbols while
// keeping their first-seen order. It returns the normalized list and any
// symbols that are not in the registry.
func (r *Registry) NormalizeSymbols(symbols []string) (valid []string, unknown []string) {
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if seen[sym] {
			continue
		}
		seen[sym] = true
		if _, ok := r.bySymbol[sym]; !ok {
			unknown = append(unknown, s)
			continue
		}
		valid = append(valid, sym)
	}
	return valid, unknown
}
