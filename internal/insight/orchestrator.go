// Package insight produces persona-tailored market insights. A remote
// model is tried first and a rule-based template generator always
// answers when it cannot.
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/leeaandrob/coinpulse/internal/metrics"
	"github.com/leeaandrob/coinpulse/internal/models"
)

// QuoteFetcher returns live quotes. An empty result means no data.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, symbols []string) []models.AssetQuote
}

// FeedbackSource renders a user's vote history as prompt text.
type FeedbackSource interface {
	Aggregate(ctx context.Context, userID string) string
}

// RemoteGenerator is the best-effort remote path.
type RemoteGenerator interface {
	Generate(ctx context.Context, persona models.Persona, symbols []string, summary, feedback string) (string, bool)
}

// FallbackGenerator must always return non-empty text.
type FallbackGenerator interface {
	Generate(persona models.Persona, symbols []string, quotes []models.AssetQuote) string
}

// Orchestrator sequences one insight request end to end.
type Orchestrator struct {
	registry *models.Registry
	quotes   QuoteFetcher
	feedback FeedbackSource
	remote   RemoteGenerator
	template FallbackGenerator
	rec      *metrics.Recorder
}

// NewOrchestrator wires the pipeline. remote may be nil to always use
// the template path.
func NewOrchestrator(registry *models.Registry, quotes QuoteFetcher, feedback FeedbackSource, remote RemoteGenerator, template FallbackGenerator, rec *metrics.Recorder) *Orchestrator {
	if registry == nil {
		registry = models.NewRegistry()
	}
	return &Orchestrator{
		registry: registry,
		quotes:   quotes,
		feedback: feedback,
		remote:   remote,
		template: template,
		rec:      rec,
	}
}

// Validate checks req against the asset and persona allowlists and
// returns the normalized symbols.
func (o *Orchestrator) Validate(req models.InsightRequest) ([]string, error) {
	if len(req.Assets) == 0 {
		return nil, fmt.Errorf("%w: at least one asset is required", ErrInvalidAssets)
	}
	symbols, unknown := o.registry.NormalizeSymbols(req.Assets)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unsupported symbols %s", ErrInvalidAssets, strings.Join(unknown, ", "))
	}
	if _, ok := o.registry.Persona(req.Persona); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPersona, req.Persona)
	}
	return symbols, nil
}

// Produce returns an insight for req. The only errors are a missing user
// and an invalid request; upstream failures fall through to the template.
func (o *Orchestrator) Produce(ctx context.Context, req models.InsightRequest, userID string) (*models.InsightResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}
	symbols, err := o.Validate(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	var (
		quotes   []models.AssetQuote
		feedback string
		g        errgroup.Group
	)
	g.Go(func() error {
		quotes = o.quotes.FetchQuotes(ctx, symbols)
		return nil
	})
	g.Go(func() error {
		feedback = o.feedback.Aggregate(ctx, userID)
		return nil
	})
	_ = g.Wait()

	result := &models.InsightResult{Source: models.ProvenanceRemote}
	if o.remote != nil {
		result.Text, _ = o.remote.Generate(ctx, req.Persona, symbols, MarketSummary(quotes), feedback)
	}
	if strings.TrimSpace(result.Text) == "" {
		result.Text = o.template.Generate(req.Persona, symbols, quotes)
		result.Source = models.ProvenanceTemplate
	}
	if strings.TrimSpace(result.Text) == "" {
		panic("insight: template generator returned empty text")
	}

	took := time.Since(start)
	o.rec.RecordInsight(string(result.Source), took)
	log.Info().
		Str("user_id", userID).
		Str("persona", string(req.Persona)).
		Strs("assets", symbols).
		Int("quotes", len(quotes)).
		Str("source", string(result.Source)).
		Dur("took", took).
		Msg("Insight produced")

	return result, nil
}
