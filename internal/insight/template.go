package insight

import (
	"fmt"
	"strings"

	"github.com/leeaandrob/coinpulse/internal/models"
)

type pool struct {
	variants []variant
	phrases  []string
}

// TemplateGenerator composes rule-based insights from live quotes. It is
// the fallback when no remote provider answers and never fails.
type TemplateGenerator struct {
	registry *models.Registry
	rnd      Rand
	pools    map[models.Persona]pool
}

// NewTemplateGenerator creates a generator. A nil rnd uses SystemRand.
func NewTemplateGenerator(registry *models.Registry, rnd Rand) *TemplateGenerator {
	if registry == nil {
		registry = models.NewRegistry()
	}
	if rnd == nil {
		rnd = SystemRand()
	}
	return &TemplateGenerator{
		registry: registry,
		rnd:      rnd,
		pools: map[models.Persona]pool{
			models.PersonaHodler:       {variants: hodlerVariants(), phrases: hodlerPhrases},
			models.PersonaDayTrader:    {variants: dayTraderVariants(), phrases: dayTraderPhrases},
			models.PersonaNFTCollector: {variants: nftCollectorVariants(), phrases: nftCollectorPhrases},
			models.PersonaDeFiExplorer: {variants: defiExplorerVariants(), phrases: defiExplorerPhrases},
		},
	}
}

// Generate returns an insight for persona. Empty quotes take the no-data
// path, which names the tracked assets without any figures.
func (g *TemplateGenerator) Generate(persona models.Persona, symbols []string, quotes []models.AssetQuote) string {
	text, _ := g.compose(persona, symbols, quotes)
	return text
}

// compose also returns the chosen variant name, or "" on the no-data path.
func (g *TemplateGenerator) compose(persona models.Persona, symbols []string, quotes []models.AssetQuote) (string, string) {
	info := g.registry.PersonaOrDefault(persona)

	if len(quotes) == 0 {
		return g.noData(info, symbols), ""
	}

	p, ok := g.pools[info.ID]
	if !ok {
		p = g.pools[models.PersonaHodler]
	}

	v := p.variants[g.rnd.IntN(len(p.variants))]
	phrase := p.phrases[g.rnd.IntN(len(p.phrases))]

	stats := computeStats(quotes)
	parts := v.compose(stats)
	if len(parts) == 0 {
		parts = []string{leaderPrice(stats)}
	}
	parts = append(parts, phrase)

	return strings.Join(parts, " "), v.name
}

func (g *TemplateGenerator) noData(info models.PersonaInfo, symbols []string) string {
	assets := "your tracked assets"
	if len(symbols) > 0 {
		assets = strings.Join(symbols, ", ")
	}
	tip, ok := reviewTips[info.ID]
	if !ok {
		tip = reviewTips[models.PersonaHodler]
	}
	return fmt.Sprintf("%s insight: live market data for %s is unavailable right now. %s", info.Label, assets, tip)
}
