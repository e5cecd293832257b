package insight

import (
	"context"
	"errors"
	"strings"
)

// ErrNoInsight marks an attempt whose reply held no usable insight.
var ErrNoInsight = errors.New("no insight in reply")

// Outcome is the result of one generation attempt. Attempts report
// failure through Err instead of panicking or returning early.
type Outcome struct {
	Text string
	Err  error
}

// OK reports whether the outcome carries usable text.
func (o Outcome) OK() bool {
	return o.Err == nil && strings.TrimSpace(o.Text) != ""
}

// Attempt is one named step of a fallback chain.
type Attempt struct {
	Name string
	Run  func(ctx context.Context) Outcome
}

// FirstSuccess runs attempts in order and returns the first successful
// outcome. Later attempts are not started once one succeeds or ctx is
// done. observe, if non-nil, sees every outcome as it happens.
func FirstSuccess(ctx context.Context, attempts []Attempt, observe func(name string, o Outcome)) (Outcome, bool) {
	last := Outcome{Err: ErrNoInsight}
	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			return Outcome{Err: err}, false
		}

		o := a.Run(ctx)
		if o.Err == nil && !o.OK() {
			o.Err = ErrNoInsight
		}
		if observe != nil {
			observe(a.Name, o)
		}
		if o.OK() {
			return o, true
		}
		last = o
	}
	return last, false
}
