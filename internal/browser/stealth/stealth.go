package stealth

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

//go:embed evasions.js
var evasionsScript string

// Persona defines the browser characteristics to emulate.
type Persona struct {
	UserAgent string
	Platform  string
	Languages []string
	Timezone  string
	Locale    string
}

// DefaultPersona provides a realistic default browser profile.
var DefaultPersona = Persona{
	UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36",
	Platform:  "Win32",
	Languages: []string{"en-US", "en"},
	Timezone:  "America/New_York",
	Locale:    "en-US",
}

// NewPersona builds a persona from session settings. Empty fields fall back
// to the defaults so a partially configured session still presents a
// coherent profile.
func NewPersona(userAgent, platform, timezone, locale string) Persona {
	p := DefaultPersona
	if userAgent != "" {
		p.UserAgent = userAgent
	}
	if platform != "" {
		p.Platform = platform
	}
	if timezone != "" {
		p.Timezone = timezone
	}
	if locale != "" {
		p.Locale = locale
		if base, _, found := strings.Cut(locale, "-"); found {
			p.Languages = []string{locale, base}
		} else {
			p.Languages = []string{locale}
		}
	}
	return p
}

// AcceptLanguage renders the persona's languages as an Accept-Language
// header value with descending quality weights.
func (p Persona) AcceptLanguage() string {
	if len(p.Languages) == 0 {
		return p.Locale
	}
	parts := make([]string, 0, len(p.Languages))
	for i, lang := range p.Languages {
		if i == 0 {
			parts = append(parts, lang)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s;q=0.%d", lang, 9-(i-1)))
	}
	return strings.Join(parts, ",")
}

// Apply constructs a sequence of Chrome DevTools Protocol actions to make the
// session browser appear like a standard, user-operated one.
func Apply(p Persona, logger *zap.Logger) chromedp.Tasks {
	logger.Debug("Applying browser stealth persona",
		zap.String("userAgent", p.UserAgent),
		zap.String("platform", p.Platform),
		zap.String("timezone", p.Timezone),
	)

	return chromedp.Tasks{
		// 1. Override the user agent, platform, and Accept-Language together
		// so the HTTP and JS views of the browser agree.
		emulation.SetUserAgentOverride(p.UserAgent).
			WithPlatform(p.Platform).
			WithAcceptLanguage(p.AcceptLanguage()),

		// 2. Inject the evasions script before any page script runs. The
		// ActionFunc wrapper is needed because Do() returns two values.
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(evasionsScript).Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to inject evasions script: %w", err)
			}
			return nil
		}),

		// 3. Pin the timezone regardless of the host machine's.
		emulation.SetTimezoneOverride(p.Timezone),

		// 4. Set the locale via the builder; SetLocaleOverride() alone
		// resets to the browser default.
		emulation.SetLocaleOverride().WithLocale(p.Locale),

		// 5. Keep request headers consistent with the persona's languages.
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": p.AcceptLanguage(),
		}),
	}
}
