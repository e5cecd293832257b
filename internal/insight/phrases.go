package insight

import "github.com/leeaandrob/coinpulse/internal/models"

var hodlerPhrases = []string{
	"Daily swings matter far less than your conviction over a multi-year horizon.",
	"Stay focused on accumulation and let short-term noise pass you by.",
	"Periodic, disciplined buys tend to smooth out moves like these over time.",
	"This is a good moment to revisit your thesis rather than react to the tape.",
	"Keep your position sizes comfortable enough to hold through volatility.",
	"Patience has historically rewarded holders who avoid chasing daily moves.",
}

var dayTraderPhrases = []string{
	"Define your entries and stops before the next leg rather than during it.",
	"Momentum can fade quickly, so size positions with a clear exit plan.",
	"Watch liquidity around key levels before committing to a breakout.",
	"Keep risk per trade small so one bad fill does not define your day.",
	"Volatility cuts both ways; let your setup, not the move, drive the trade.",
	"Take partial profits into strength and avoid revenge trades on weakness.",
}

var nftCollectorPhrases = []string{
	"Chain health often sets the tone for floor prices and marketplace activity.",
	"Quiet markets can be a good time to research creators before the crowd returns.",
	"Keep an eye on gas costs before minting or moving collectibles.",
	"Collect what you genuinely value rather than chasing short-lived hype.",
	"Liquidity for collectibles can dry up fast, so avoid overextending.",
	"Community strength usually outlasts short-term price swings in the underlying chain.",
}

var defiExplorerPhrases = []string{
	"Review the protocols you use for changes in yields and total value locked.",
	"Double-check smart-contract risk before chasing a higher advertised yield.",
	"Staking rewards look different when the underlying asset moves, so track both.",
	"Spread exposure across protocols rather than concentrating in one pool.",
	"Watch collateral ratios closely if you borrow against volatile assets.",
	"Sustainable yield usually comes from real usage, not token emissions alone.",
}

// reviewTips close the no-data message. They must not contain figures.
var reviewTips = map[models.Persona]string{
	models.PersonaHodler:       "Take a moment to review your long-term allocation manually until live prices return.",
	models.PersonaDayTrader:    "Avoid opening new positions blind; check your exchange directly and review open orders manually.",
	models.PersonaNFTCollector: "Check marketplace floors directly and review your collection manually before making moves.",
	models.PersonaDeFiExplorer: "Review your open positions and collateral manually on the protocols you use.",
}
