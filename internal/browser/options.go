package browser

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/driftbyte/loiter-cli/internal/config"
)

// AllocatorOptions assembles the exec allocator options for the session
// browser. It starts from chromedp's defaults and layers the session flags on
// top; a later flag with the same name wins, and boolean flags set to false
// are never emitted, which is how the defaults' enable-automation and
// headless switches get suppressed.
func AllocatorOptions(cfg *config.Config, userAgent string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range chromiumFlags(cfg, userAgent, runtime.GOOS) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// chromiumFlags computes the flag set a session needs beyond the allocator
// defaults.
func chromiumFlags(cfg *config.Config, userAgent, goos string) map[string]any {
	flags := map[string]any{
		// enable-automation advertises the browser as driven; Blink has its
		// own tell behind AutomationControlled.
		"enable-automation":      false,
		"headless":               cfg.Browser.Headless,
		"disable-blink-features": "AutomationControlled",
		"window-size": fmt.Sprintf("%d,%d",
			cfg.Session.ViewportWidth, cfg.Session.ViewportHeight),
	}

	if userAgent != "" {
		flags["user-agent"] = userAgent
	}

	if cfg.Session.Proxy.Enabled() {
		flags["proxy-server"] = cfg.Session.Proxy.Server()
	}

	if cfg.Browser.IgnoreTLSErrors {
		flags["ignore-certificate-errors"] = true
		flags["allow-insecure-localhost"] = true
	}

	if goos == "linux" {
		// Containers rarely have a usable sandbox or a large /dev/shm.
		flags["no-sandbox"] = true
		flags["disable-dev-shm-usage"] = true
	}

	for _, arg := range cfg.Browser.Args {
		name := strings.TrimLeft(arg, "-")
		if name == "" {
			continue
		}
		if parts := strings.SplitN(name, "=", 2); len(parts) == 2 {
			flags[parts[0]] = parts[1]
		} else {
			flags[name] = true
		}
	}

	return flags
}
