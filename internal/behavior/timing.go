package behavior

import (
	"context"
	"time"
)

// Gamma parameters for the delay distribution. The right skew keeps most
// waits short with an occasional long tail, which reads far more human than
// uniform jitter.
const (
	delayShape = 2
	delayScale = 0.5
)

// Timing produces randomized, bounded wait durations. It is a pure function
// of its inputs and the injected random source.
type Timing struct {
	src Source
}

// NewTiming returns a Timing backed by the given random source.
func NewTiming(src Source) *Timing {
	return &Timing{src: src}
}

// Sample draws a delay from the skewed distribution shifted by minSeconds and
// clamped to maxSeconds. The result is always within [minSeconds, maxSeconds]
// for minSeconds <= maxSeconds.
func (t *Timing) Sample(minSeconds, maxSeconds float64) time.Duration {
	delay := t.src.Gamma(delayShape, delayScale) + minSeconds
	if delay > maxSeconds {
		delay = maxSeconds
	}
	return time.Duration(delay * float64(time.Second))
}

// sleepContext pauses for d, returning early with the context's error if it
// is cancelled. Every engine delay routes through this so an operator abort
// is observable at the next suspension point.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
