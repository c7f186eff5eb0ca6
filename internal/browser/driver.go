package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/driftbyte/loiter-cli/internal/behavior"
	"github.com/driftbyte/loiter-cli/internal/browser/stealth"
	"github.com/driftbyte/loiter-cli/internal/config"
)

const closeGracePeriod = 15 * time.Second

var _ behavior.Driver = (*Driver)(nil)

// Driver owns a chromium process with a single session tab and exposes the
// primitive gestures the behavior engine drives. Every method honors the
// caller's context in addition to the browser's own lifetime.
type Driver struct {
	cfg    *config.Config
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	width  int
	height int

	closeOnce sync.Once
	closeErr  error
}

// NewDriver launches the browser, opens the session tab, and applies the
// stealth persona. The caller must Close the returned driver.
func NewDriver(ctx context.Context, cfg *config.Config, persona stealth.Persona, logger *zap.Logger) (*Driver, error) {
	d := &Driver{
		cfg:    cfg,
		logger: logger.Named("browser"),
		width:  cfg.Session.ViewportWidth,
		height: cfg.Session.ViewportHeight,
	}

	d.allocCtx, d.allocCancel = chromedp.NewExecAllocator(ctx, AllocatorOptions(cfg, persona.UserAgent)...)
	d.tabCtx, d.tabCancel = chromedp.NewContext(d.allocCtx)

	tasks := chromedp.Tasks{}
	if user, pass, ok := cfg.Session.Proxy.Credentials(); ok {
		// The listener must be registered before fetch interception starts.
		d.answerProxyChallenges(user, pass)
		tasks = append(tasks, fetch.Enable().WithHandleAuthRequests(true))
	}
	tasks = append(tasks, chromedp.EmulateViewport(int64(d.width), int64(d.height)))
	tasks = append(tasks, stealth.Apply(persona, d.logger)...)

	launchCtx, cancel := context.WithTimeout(d.tabCtx, cfg.Browser.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(launchCtx, tasks); err != nil {
		d.tabCancel()
		d.allocCancel()
		return nil, fmt.Errorf("failed to launch session browser: %w", err)
	}

	d.logger.Info("Browser session ready.",
		zap.Bool("headless", cfg.Browser.Headless),
		zap.Int("viewport_width", d.width),
		zap.Int("viewport_height", d.height),
		zap.Bool("proxied", cfg.Session.Proxy.Enabled()),
	)
	return d, nil
}

// answerProxyChallenges resolves proxy authentication via fetch interception.
// With HandleAuthRequests on, every request is paused and must be explicitly
// continued.
func (d *Driver) answerProxyChallenges(username, password string) {
	chromedp.ListenTarget(d.tabCtx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *fetch.EventRequestPaused:
			go func() {
				if err := chromedp.Run(d.tabCtx, fetch.ContinueRequest(ev.RequestID)); err != nil {
					d.logger.Debug("Could not continue intercepted request.", zap.Error(err))
				}
			}()
		case *fetch.EventAuthRequired:
			response := &fetch.AuthChallengeResponse{
				Response: fetch.AuthChallengeResponseResponseDefault,
			}
			if ev.AuthChallenge.Source == fetch.AuthChallengeSourceProxy {
				response = &fetch.AuthChallengeResponse{
					Response: fetch.AuthChallengeResponseResponseProvideCredentials,
					Username: username,
					Password: password,
				}
			}
			go func() {
				if err := chromedp.Run(d.tabCtx,
					fetch.ContinueWithAuth(ev.RequestID, response)); err != nil {
					d.logger.Warn("Proxy authentication response failed.", zap.Error(err))
				}
			}()
		}
	})
}

// run executes chromedp actions, ensuring they respect both the tab lifetime
// and the incoming request context.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(d.tabCtx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the given URL, waits for the document to become ready, and
// then lets the page settle briefly so late subresources can land.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, d.cfg.Browser.NavigationTimeout)
	defer cancel()

	err := d.run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(d.cfg.Browser.SettleWait),
	)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// ScrollBy scrolls the page by the given offsets in CSS pixels.
func (d *Driver) ScrollBy(ctx context.Context, dx, dy float64) error {
	script := fmt.Sprintf("window.scrollBy({left: %.0f, top: %.0f, behavior: 'smooth'})", dx, dy)
	return d.run(ctx, chromedp.Evaluate(script, nil))
}

// MoveMouse dispatches a mouse move to the given viewport coordinates.
func (d *Driver) MoveMouse(ctx context.Context, x, y float64) error {
	return d.run(ctx, chromedp.MouseEvent(input.MouseMoved, x, y))
}

// Click dispatches a left click at the given viewport coordinates.
func (d *Driver) Click(ctx context.Context, x, y float64) error {
	return d.run(ctx, chromedp.MouseClickXY(x, y))
}

// Viewport reports the emulated viewport dimensions.
func (d *Driver) Viewport() (width, height int) {
	return d.width, d.height
}

// Close tears the browser down: tab first, then the process. It is safe to
// call more than once; later calls return the first result.
func (d *Driver) Close(_ context.Context) error {
	d.closeOnce.Do(func() {
		// Detach keeps the CDP connection values without inheriting a
		// possibly-dead caller context.
		closeCtx, cancel := context.WithTimeout(Detach(d.tabCtx), closeGracePeriod)
		defer cancel()

		if err := chromedp.Run(closeCtx, page.Close()); err != nil {
			d.logger.Debug("Page close failed; continuing teardown.", zap.Error(err))
			d.closeErr = fmt.Errorf("failed to close session tab: %w", err)
		}

		d.tabCancel()
		d.allocCancel()
		<-d.allocCtx.Done()
		d.logger.Info("Browser session closed.")
	})
	return d.closeErr
}
