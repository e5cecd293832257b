// Package feedback turns a user's vote history into a compact signal used
// to bias insight generation.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/leeaandrob/coinpulse/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	// HistoryLimit is how many of the newest votes are considered.
	HistoryLimit = 200

	// MaxSections caps the number of section summaries emitted.
	MaxSections = 6

	// NoFeedback is returned when there is nothing to summarize.
	NoFeedback = "No feedback yet."
)

// VoteReader reads a user's votes, newest first.
type VoteReader interface {
	RecentVotes(ctx context.Context, userID string, limit int) ([]models.Vote, error)
}

// Tally counts votes for one section.
type Tally struct {
	Section models.Section
	Up      int
	Down    int
}

// Signal is the ordered per-section tally, most recently voted section first.
type Signal []Tally

// String renders the signal as "section: +up/-down" entries.
func (s Signal) String() string {
	if len(s) == 0 {
		return NoFeedback
	}
	parts := make([]string, 0, len(s))
	for _, t := range s {
		parts = append(parts, fmt.Sprintf("%s: +%d/-%d", t.Section, t.Up, t.Down))
	}
	return strings.Join(parts, "; ")
}

// Summarize groups votes by section in first-seen order, keeping at most
// MaxSections sections. Votes other than +1/-1 are ignored.
func Summarize(votes []models.Vote) Signal {
	index := make(map[models.Section]int)
	var signal Signal

	for _, v := range votes {
		if v.Value != 1 && v.Value != -1 {
			continue
		}
		i, ok := index[v.Section]
		if !ok {
			if len(signal) >= MaxSections {
				continue
			}
			i = len(signal)
			index[v.Section] = i
			signal = append(signal, Tally{Section: v.Section})
		}
		if v.Value > 0 {
			signal[i].Up++
		} else {
			signal[i].Down++
		}
	}

	return signal
}

// Aggregator computes feedback signals from the vote store. Nothing is
// cached: each call reads the store afresh.
type Aggregator struct {
	votes VoteReader
}

// NewAggregator creates a new Aggregator.
func NewAggregator(votes VoteReader) *Aggregator {
	return &Aggregator{votes: votes}
}

// Aggregate returns the textual feedback signal for a user. Read failures
// and empty histories both produce NoFeedback.
func (a *Aggregator) Aggregate(ctx context.Context, userID string) string {
	if a == nil || a.votes == nil {
		return NoFeedback
	}

	votes, err := a.votes.RecentVotes(ctx, userID, HistoryLimit)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("Failed to read vote history")
		return NoFeedback
	}
	if len(votes) > HistoryLimit {
		votes = votes[:HistoryLimit]
	}

	return Summarize(votes).String()
}
