package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leeaandrob/coinpulse/internal/llm"
	"github.com/leeaandrob/coinpulse/internal/metrics"
	"github.com/leeaandrob/coinpulse/internal/models"
)

// Attempt names, also used as metric labels.
const (
	AttemptPrimary      = "primary"
	AttemptPrimaryRetry = "primary-retry"
	AttemptSecondary    = "secondary"
)

const jsonReminder = "\n\nIMPORTANT: Respond with the JSON object only, for example {\"insight\": \"...\"}. " +
	"Do not add any text before or after it."

// RemoteConfig tunes every remote attempt.
type RemoteConfig struct {
	Temperature float32
	MaxTokens   int
	// Timeout bounds each attempt separately.
	Timeout time.Duration
}

// RemoteClient asks remote models for an insight through a fixed chain:
// the primary provider, one stricter retry on it, then the secondary.
type RemoteClient struct {
	primary   llm.Provider
	secondary llm.Provider
	registry  *models.Registry
	cfg       RemoteConfig
	rec       *metrics.Recorder
}

// NewRemoteClient creates a client. Either provider may be nil, in which
// case its attempts are skipped.
func NewRemoteClient(primary, secondary llm.Provider, registry *models.Registry, cfg RemoteConfig, rec *metrics.Recorder) *RemoteClient {
	if registry == nil {
		registry = models.NewRegistry()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	return &RemoteClient{
		primary:   primary,
		secondary: secondary,
		registry:  registry,
		cfg:       cfg,
		rec:       rec,
	}
}

// Generate returns the insight text and true, or "" and false when every
// attempt failed. Failures are logged, never returned.
func (c *RemoteClient) Generate(ctx context.Context, persona models.Persona, symbols []string, summary, feedback string) (string, bool) {
	prompt := BuildPrompt(c.registry.PersonaOrDefault(persona), symbols, summary, feedback)

	out, ok := FirstSuccess(ctx, c.Plan(prompt), func(name string, o Outcome) {
		c.rec.RecordAttempt(name, o.OK())
		if !o.OK() {
			log.Warn().Err(o.Err).Str("attempt", name).Msg("Remote insight attempt failed")
		}
	})
	if !ok {
		return "", false
	}
	return out.Text, true
}

// Plan lists the attempts for prompt in the order they run.
func (c *RemoteClient) Plan(prompt string) []Attempt {
	var plan []Attempt
	if c.primary != nil {
		plan = append(plan,
			Attempt{Name: AttemptPrimary, Run: c.attempt(c.primary, prompt, false)},
			Attempt{Name: AttemptPrimaryRetry, Run: c.attempt(c.primary, prompt+jsonReminder, true)},
		)
	}
	if c.secondary != nil {
		plan = append(plan, Attempt{Name: AttemptSecondary, Run: c.attempt(c.secondary, prompt, false)})
	}
	return plan
}

func (c *RemoteClient) attempt(p llm.Provider, prompt string, jsonOnly bool) func(ctx context.Context) Outcome {
	return func(ctx context.Context) Outcome {
		ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		raw, err := p.Complete(ctx, llm.Request{
			Prompt:      prompt,
			Temperature: c.cfg.Temperature,
			MaxTokens:   c.cfg.MaxTokens,
			JSONOnly:    jsonOnly,
		})
		if err != nil {
			return Outcome{Err: fmt.Errorf("%s: %w", p.Name(), err)}
		}

		text, ok := ExtractInsight(raw)
		if !ok {
			return Outcome{Err: fmt.Errorf("%s: %w", p.Name(), ErrNoInsight)}
		}
		return Outcome{Text: text}
	}
}

// BuildPrompt renders the single user-role prompt sent to every provider.
func BuildPrompt(persona models.PersonaInfo, symbols []string, summary, feedback string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are writing a short daily insight for a crypto dashboard user who is %s (%s).\n\n", persona.Label, persona.Focus)
	fmt.Fprintf(&b, "Tracked assets: %s\n\n", strings.Join(symbols, ", "))
	b.WriteString("Current market context (for your reasoning only):\n")
	b.WriteString(summary)
	b.WriteString("\n\n")
	b.WriteString("How the user has rated dashboard sections so far:\n")
	b.WriteString(feedback)
	b.WriteString("\n\n")
	b.WriteString(`Rules:
- Write 4 to 6 sentences tailored to this investor style.
- Do not state specific prices, percentages or other figures; the dashboard already shows live numbers.
- No markdown, no lists, no headings, no commentary about these instructions.
- Respond with ONLY a JSON object with exactly one key, like {"insight": "your text"}.`)

	return b.String()
}
