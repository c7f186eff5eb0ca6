package stealth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEvasionsScriptEmbedded(t *testing.T) {
	require.NotEmpty(t, evasionsScript)
	assert.Contains(t, evasionsScript, "webdriver")
	assert.Contains(t, evasionsScript, "plugins")
	assert.Contains(t, evasionsScript, "permissions")
}

func TestNewPersonaFallsBackToDefaults(t *testing.T) {
	p := NewPersona("", "", "", "")
	assert.Equal(t, DefaultPersona, p)
}

func TestNewPersonaOverridesFields(t *testing.T) {
	p := NewPersona("Mozilla/5.0 (test)", "MacIntel", "Europe/Berlin", "de-DE")

	assert.Equal(t, "Mozilla/5.0 (test)", p.UserAgent)
	assert.Equal(t, "MacIntel", p.Platform)
	assert.Equal(t, "Europe/Berlin", p.Timezone)
	assert.Equal(t, "de-DE", p.Locale)
	assert.Equal(t, []string{"de-DE", "de"}, p.Languages)
}

func TestNewPersonaBareLocale(t *testing.T) {
	p := NewPersona("", "", "", "fr")
	assert.Equal(t, []string{"fr"}, p.Languages)
}

func TestAcceptLanguage(t *testing.T) {
	cases := []struct {
		name      string
		languages []string
		want      string
	}{
		{"two languages", []string{"en-US", "en"}, "en-US,en;q=0.9"},
		{"single language", []string{"fr"}, "fr"},
		{"three languages", []string{"de-DE", "de", "en"}, "de-DE,de;q=0.9,en;q=0.8"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Persona{Languages: tc.languages}
			assert.Equal(t, tc.want, p.AcceptLanguage())
		})
	}
}

func TestAcceptLanguageEmptyFallsBackToLocale(t *testing.T) {
	p := Persona{Locale: "en-US"}
	assert.Equal(t, "en-US", p.AcceptLanguage())
}

func TestApplyBuildsTaskSequence(t *testing.T) {
	core, observedLogs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	tasks := Apply(DefaultPersona, logger)
	assert.Len(t, tasks, 5)

	logs := observedLogs.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "stealth persona")
}
