package behavior

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// pointerMargin keeps sampled pointer coordinates away from the viewport
// edges, where browser chrome and edge-triggered UI live.
const pointerMargin = 100

// clickProbability is the chance a pointer move is followed by a click.
const clickProbability = 0.3

// Behavior names as they appear in outcomes and logs.
const (
	BehaviorScroll  = "scroll"
	BehaviorPointer = "pointer"
	BehaviorIdle    = "idle"
)

// scrollPattern is one entry of the scroll magnitude table. Down appears
// twice to bias scrolling toward forward reading, 2:1 over up.
type scrollPattern struct {
	up       bool
	min, max int
}

var scrollPatterns = []scrollPattern{
	{up: false, min: 200, max: 800},
	{up: true, min: 100, max: 400},
	{up: false, min: 300, max: 600},
}

// entry is one primitive behavior: a named (sample-parameters, execute,
// post-delay) unit. Entries signal failures upward and never swallow them;
// the scheduler owns the failure boundary.
type entry struct {
	name string
	run  func(ctx context.Context) error
}

// Catalog holds the finite set of primitive behaviors and the dependencies
// they sample from.
type Catalog struct {
	driver Driver
	timing *Timing
	src    Source
	logger *zap.Logger

	// sleep is swapped for an instant implementation in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCatalog builds the catalog around a driver and a shared random source.
func NewCatalog(driver Driver, src Source, logger *zap.Logger) *Catalog {
	return &Catalog{
		driver: driver,
		timing: NewTiming(src),
		src:    src,
		logger: logger,
		sleep:  sleepContext,
	}
}

// entries returns the behaviors in catalog order. A fresh slice every call;
// selections sample their parameters at execution time.
func (c *Catalog) entries() []entry {
	return []entry{
		{name: BehaviorScroll, run: c.scroll},
		{name: BehaviorPointer, run: c.pointerInteract},
		{name: BehaviorIdle, run: c.idlePause},
	}
}

// pause sleeps for a sampled delay, respecting cancellation.
func (c *Catalog) pause(ctx context.Context, minSeconds, maxSeconds float64) error {
	return c.sleep(ctx, c.timing.Sample(minSeconds, maxSeconds))
}

// scroll picks a pattern from the magnitude table and scrolls the page.
func (c *Catalog) scroll(ctx context.Context) error {
	p := scrollPatterns[c.src.Intn(len(scrollPatterns))]
	amount := p.min + c.src.Intn(p.max-p.min+1)

	dy := float64(amount)
	if p.up {
		dy = -dy
	}

	c.logger.Debug("scrolling page", zap.Float64("dy", dy))
	if err := c.driver.ScrollBy(ctx, 0, dy); err != nil {
		return err
	}
	return c.pause(ctx, 0.8, 2.5)
}

// pointerInteract moves the pointer to a random safe coordinate and
// occasionally clicks there.
func (c *Catalog) pointerInteract(ctx context.Context) error {
	x, y := c.samplePointerTarget()

	c.logger.Debug("moving pointer", zap.Float64("x", x), zap.Float64("y", y))
	if err := c.driver.MoveMouse(ctx, x, y); err != nil {
		return err
	}

	if c.src.Float64() < clickProbability {
		c.logger.Debug("clicking", zap.Float64("x", x), zap.Float64("y", y))
		if err := c.driver.Click(ctx, x, y); err != nil {
			return err
		}
		return c.pause(ctx, 0.5, 1.5)
	}
	return c.pause(ctx, 0.3, 1.0)
}

// idlePause observes the page without touching it.
func (c *Catalog) idlePause(ctx context.Context) error {
	return c.pause(ctx, 1.0, 4.0)
}

// samplePointerTarget picks a coordinate strictly inside the viewport with
// pointerMargin on all sides, falling back to the center for viewports too
// small to honor the margin.
func (c *Catalog) samplePointerTarget() (x, y float64) {
	width, height := c.driver.Viewport()

	innerW := width - 2*pointerMargin
	innerH := height - 2*pointerMargin
	if innerW <= 0 || innerH <= 0 {
		return float64(width) / 2, float64(height) / 2
	}

	x = float64(pointerMargin + c.src.Intn(innerW))
	y = float64(pointerMargin + c.src.Intn(innerH))
	return x, y
}
