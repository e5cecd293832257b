package models

// Persona is the investor style a user declares at onboarding.
type Persona string

const (
	PersonaHodler       Persona = "hodler"
	PersonaDayTrader    Persona = "day-trader"
	PersonaNFTCollector Persona = "nft-collector"
	PersonaDeFiExplorer Persona = "defi-explorer"
)

// PersonaInfo describes a persona for display and prompting.
type PersonaInfo struct {
	ID          Persona `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	// Focus is a short phrase used when describing the persona to a model.
	Focus string `json:"-"`
}

// DefaultPersonas lists the supported investor personas.
var DefaultPersonas = []PersonaInfo{
	{
		ID:          PersonaHodler,
		Label:       "HODLer",
		Description: "Buy and hold long-term",
		Focus:       "a long-term holder who cares about multi-year conviction, accumulation and risk management rather than daily noise",
	},
	{
		ID:          PersonaDayTrader,
		Label:       "Day Trader",
		Description: "Short-term trades for quick gains",
		Focus:       "a short-term trader who cares about intraday momentum, volatility, liquidity and disciplined risk limits",
	},
	{
		ID:          PersonaNFTCollector,
		Label:       "NFT Collector",
		Description: "Focused on digital collectibles",
		Focus:       "a digital collectibles enthusiast who cares about the health of the chains that host NFT marketplaces and creator activity",
	},
	{
		ID:          PersonaDeFiExplorer,
		Label:       "DeFi Explorer",
		Description: "Yield farming, staking, and protocols",
		Focus:       "a DeFi user who cares about protocol health, staking and yield opportunities, and smart-contract risk",
	},
}
