// Package retry implements the exponential-backoff-with-jitter policy the
// Scheduler uses when retrying a failed agent invocation; ContentRouter does
// not use it. The shape — base duration,
// multiplicative factor, a hard cap, and symmetric jitter — mirrors the
// orphan-detection and session-retry timers in the teacher's queue package.
package retry

import (
	"math/rand"
	"time"
)

// Policy configures exponential backoff with jitter.
type Policy struct {
	Base    time.Duration // delay before the first retry
	Factor  float64       // multiplier applied per attempt
	Cap     time.Duration // maximum delay, regardless of attempt count
	Jitter  float64       // fraction of the computed delay to randomize, e.g. 0.2 = ±20%
	MaxAttempts int       // number of retries (not counting the initial attempt)
}

// DefaultPolicy matches spec.md §4.5: base 500ms, factor 2, jitter ±20%, cap 30s.
func DefaultPolicy(maxAttempts int) Policy {
	return Policy{
		Base:        500 * time.Millisecond,
		Factor:      2,
		Cap:         30 * time.Second,
		Jitter:      0.2,
		MaxAttempts: maxAttempts,
	}
}

// Delay returns the backoff delay before retry attempt n (1-indexed: the
// delay that precedes the first retry is Delay(1)).
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := float64(p.Base)
	for i := 1; i < n; i++ {
		d *= p.Factor
		if d > float64(p.Cap) {
			d = float64(p.Cap)
			break
		}
	}
	if d > float64(p.Cap) {
		d = float64(p.Cap)
	}
	if p.Jitter > 0 {
		delta := d * p.Jitter
		d = d - delta + rand.Float64()*(2*delta)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
