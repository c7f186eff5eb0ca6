package behavior

import "context"

// Driver is the capability surface the engine needs from the browser
// automation layer. The engine never constructs or configures the driver;
// launch flags, stealth injection and proxy wiring live behind it. Keeping
// the contract this narrow is what lets the whole engine run against a fake
// in tests without a browser process.
type Driver interface {
	// Navigate loads the URL and returns once the page has settled.
	Navigate(ctx context.Context, url string) error

	// ScrollBy scrolls the page by the given deltas in CSS pixels.
	ScrollBy(ctx context.Context, dx, dy float64) error

	// MoveMouse relocates the pointer to viewport coordinates.
	MoveMouse(ctx context.Context, x, y float64) error

	// Click issues a left click at viewport coordinates.
	Click(ctx context.Context, x, y float64) error

	// Viewport reports the page viewport dimensions in CSS pixels.
	Viewport() (width, height int)

	// Close releases every driver-owned resource (page, then browser
	// context, then browser process), continuing past individual failures.
	// It must be safe to call more than once.
	Close(ctx context.Context) error
}

// Outcome records the result of executing one primitive behavior. Outcomes
// are produced and consumed within a single round and never retained.
type Outcome struct {
	Behavior string
	Err      error
}

// OK reports whether the behavior completed without error.
func (o Outcome) OK() bool { return o.Err == nil }
