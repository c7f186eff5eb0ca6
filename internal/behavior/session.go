package behavior

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults for the loop knobs when the zero Config is used.
const (
	defaultReadingPauseProb = 0.2
	defaultProgressInterval = 10

	// closeTimeout bounds the best-effort teardown so a hung browser
	// cannot wedge process exit.
	closeTimeout = 15 * time.Second
)

// Config is the immutable session description the loop runs against. It is
// resolved once at startup and never mutated.
type Config struct {
	// TargetURL is the single address the session browses.
	TargetURL string
	// Duration is the wall-clock budget for the interaction loop. Zero
	// means navigate, then exit without running any rounds.
	Duration time.Duration
	// ReadingPauseProb is the per-round chance of a long reading pause.
	ReadingPauseProb float64
	// ProgressInterval is the round period of progress log lines.
	ProgressInterval int
	// Rng overrides the random source, used by tests for determinism.
	Rng Source
}

// Loop owns the session budget: it navigates once, then repeatedly invokes
// the scheduler until the budget is exhausted. The budget is checked only at
// round boundaries, so the session may overrun its end time by at most one
// in-flight round; it is never preempted mid-round.
type Loop struct {
	cfg       Config
	driver    Driver
	scheduler *Scheduler
	timing    *Timing
	src       Source
	logger    *zap.Logger

	// Injection points for tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time

	closeOnce sync.Once
}

// New wires up the full engine (timing, catalog, scheduler, loop) around a
// driver. Unset Config knobs get their defaults here.
func New(cfg Config, driver Driver, logger *zap.Logger) *Loop {
	src := cfg.Rng
	if src == nil {
		src = NewTimeSource()
	}
	if cfg.ReadingPauseProb == 0 {
		cfg.ReadingPauseProb = defaultReadingPauseProb
	}
	if cfg.ProgressInterval == 0 {
		cfg.ProgressInterval = defaultProgressInterval
	}

	catalog := NewCatalog(driver, src, logger)
	return &Loop{
		cfg:       cfg,
		driver:    driver,
		scheduler: NewScheduler(catalog, src, logger),
		timing:    NewTiming(src),
		src:       src,
		logger:    logger,
		sleep:     sleepContext,
		now:       time.Now,
	}
}

// Run executes the session and returns the number of completed rounds.
//
// The initial navigation is the only fatal step: if it fails, the run aborts
// with an error. Per-behavior failures inside a round degrade gracefully and
// never abort the loop. Teardown of driver-owned resources happens exactly
// once on every exit path, including cancellation and errors escaping the
// loop, and its failures are logged but never returned.
func (l *Loop) Run(ctx context.Context) (rounds int, err error) {
	defer l.teardown()

	l.logger.Info("starting browsing session",
		zap.String("url", l.cfg.TargetURL),
		zap.Duration("budget", l.cfg.Duration),
	)

	if err := l.driver.Navigate(ctx, l.cfg.TargetURL); err != nil {
		return 0, fmt.Errorf("initial navigation to %s failed: %w", l.cfg.TargetURL, err)
	}
	l.logger.Info("navigation complete", zap.String("url", l.cfg.TargetURL))

	// Warm-up: linger the way a person does while a fresh page renders.
	if err := l.pause(ctx, 2.0, 5.0); err != nil {
		return 0, err
	}

	start := l.now()
	end := start.Add(l.cfg.Duration)

	for l.now().Before(end) {
		if ctx.Err() != nil {
			return rounds, ctx.Err()
		}

		outcomes := l.scheduler.RunRound(ctx)
		rounds++
		l.logger.Debug("round complete",
			zap.Int("round", rounds),
			zap.Int("actions", len(outcomes)),
		)

		if rounds%l.cfg.ProgressInterval == 0 {
			l.reportProgress(start, end, rounds)
		}

		if l.src.Float64() < l.cfg.ReadingPauseProb {
			if err := l.pause(ctx, 5.0, 15.0); err != nil {
				return rounds, err
			}
		}
	}

	l.logger.Info("browsing session complete", zap.Int("rounds", rounds))
	return rounds, nil
}

func (l *Loop) pause(ctx context.Context, minSeconds, maxSeconds float64) error {
	return l.sleep(ctx, l.timing.Sample(minSeconds, maxSeconds))
}

func (l *Loop) reportProgress(start, end time.Time, rounds int) {
	now := l.now()
	remaining := end.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	l.logger.Info("session progress",
		zap.Float64("elapsed_min", now.Sub(start).Minutes()),
		zap.Float64("remaining_min", remaining.Minutes()),
		zap.Int("rounds", rounds),
	)
}

// teardown releases driver resources exactly once, regardless of how many
// times the loop exits or is asked to clean up. Failures are logged only.
func (l *Loop) teardown() {
	l.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()

		if err := l.driver.Close(ctx); err != nil {
			l.logger.Warn("browser teardown reported errors", zap.Error(err))
		} else {
			l.logger.Info("browser teardown complete")
		}
	})
}
