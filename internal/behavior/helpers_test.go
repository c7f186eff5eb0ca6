package behavior

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedSource returns queued values and falls back to safe defaults once a
// queue is drained, so tests only script the draws they care about.
type scriptedSource struct {
	floats []float64
	ints   []int
	perms  [][]int
	gammas []float64
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

func (s *scriptedSource) Perm(n int) []int {
	if len(s.perms) == 0 {
		identity := make([]int, n)
		for i := range identity {
			identity[i] = i
		}
		return identity
	}
	v := s.perms[0]
	s.perms = s.perms[1:]
	return v
}

func (s *scriptedSource) Gamma(int, float64) float64 {
	if len(s.gammas) == 0 {
		return 0
	}
	v := s.gammas[0]
	s.gammas = s.gammas[1:]
	return v
}

// fakeDriver records every capability call and fails on demand. The engine is
// a single logical actor, so no locking is needed.
type fakeDriver struct {
	width, height int

	navErr    error
	scrollErr error
	moveErr   error
	clickErr  error
	closeErr  error

	navigations []string
	scrolls     [][2]float64
	moves       [][2]float64
	clicks      [][2]float64
	closes      int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{width: 1920, height: 1080}
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.navigations = append(d.navigations, url)
	return d.navErr
}

func (d *fakeDriver) ScrollBy(_ context.Context, dx, dy float64) error {
	d.scrolls = append(d.scrolls, [2]float64{dx, dy})
	return d.scrollErr
}

func (d *fakeDriver) MoveMouse(_ context.Context, x, y float64) error {
	d.moves = append(d.moves, [2]float64{x, y})
	return d.moveErr
}

func (d *fakeDriver) Click(_ context.Context, x, y float64) error {
	d.clicks = append(d.clicks, [2]float64{x, y})
	return d.clickErr
}

func (d *fakeDriver) Viewport() (int, int) { return d.width, d.height }

func (d *fakeDriver) Close(context.Context) error {
	d.closes++
	return d.closeErr
}

func instantSleep(ctx context.Context, _ time.Duration) error { return nil }

func newTestCatalog(driver Driver, src Source) *Catalog {
	c := NewCatalog(driver, src, zap.NewNop())
	c.sleep = instantSleep
	return c
}

func newTestScheduler(driver Driver, src Source) *Scheduler {
	return NewScheduler(newTestCatalog(driver, src), src, zap.NewNop())
}

// newTestLoop builds a loop with instant sleeps so tests never block on the
// timing model.
func newTestLoop(cfg Config, driver Driver) *Loop {
	l := New(cfg, driver, zap.NewNop())
	l.sleep = instantSleep
	l.scheduler.catalog.sleep = instantSleep
	return l
}

// fakeClock advances by a fixed step on every reading, letting loop tests
// control the session budget without real waiting.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}
