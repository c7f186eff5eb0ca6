package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. It is resolved once at
// startup and treated as immutable afterwards.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the browser process itself.
type BrowserConfig struct {
	// Headless defaults to false: a visible browser is part of looking
	// like a person.
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	SettleWait        time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`
	// Args are extra chromium flags, "--name" or "--name=value".
	Args []string `mapstructure:"args" yaml:"args"`
}

// SessionConfig describes the browsing session: where to go, for how long,
// and what the emulated visitor looks like.
type SessionConfig struct {
	TargetURL       string      `mapstructure:"target_url" yaml:"target_url"`
	DurationMinutes int         `mapstructure:"duration_minutes" yaml:"duration_minutes"`
	Timezone        string      `mapstructure:"timezone" yaml:"timezone"`
	Locale          string      `mapstructure:"locale" yaml:"locale"`
	UserAgent       string      `mapstructure:"user_agent" yaml:"user_agent"`
	ViewportWidth   int         `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight  int         `mapstructure:"viewport_height" yaml:"viewport_height"`
	Proxy           ProxyConfig `mapstructure:"proxy" yaml:"proxy"`
}

// Duration returns the session budget as a time.Duration.
func (s SessionConfig) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// ProxyConfig describes an optional outbound HTTP proxy. Host and port are
// both required to enable proxying; a partial pair silently disables it so a
// half-formed descriptor never reaches the browser.
type ProxyConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// Enabled reports whether a complete proxy endpoint was configured.
func (p ProxyConfig) Enabled() bool {
	return p.Host != "" && p.Port != ""
}

// Server returns the proxy server URL for the browser launch flags.
func (p ProxyConfig) Server() string {
	return "http://" + net.JoinHostPort(p.Host, p.Port)
}

// Credentials returns the proxy credentials. ok is false unless the proxy is
// enabled and both username and password are present.
func (p ProxyConfig) Credentials() (username, password string, ok bool) {
	if !p.Enabled() || p.Username == "" || p.Password == "" {
		return "", "", false
	}
	return p.Username, p.Password, true
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "loiter")
	v.SetDefault("logger.log_file", "logs/loiter.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.settle_wait", "2s")

	// -- Session --
	v.SetDefault("session.target_url", "https://example.com")
	v.SetDefault("session.duration_minutes", 5)
	v.SetDefault("session.timezone", "America/New_York")
	v.SetDefault("session.locale", "en-US")
	v.SetDefault("session.user_agent", "")
	v.SetDefault("session.viewport_width", 1920)
	v.SetDefault("session.viewport_height", 1080)
}

// BindSessionEnv binds the bare environment names used by existing
// deployments, alongside the prefixed LOITER_* forms that AutomaticEnv
// already covers.
func BindSessionEnv(v *viper.Viper) {
	bindings := map[string]string{
		"session.target_url":       "TARGET_URL",
		"session.duration_minutes": "DURATION_MINUTES",
		"session.timezone":         "TIMEZONE",
		"session.locale":           "LOCALE",
		"session.user_agent":       "USER_AGENT",
		"session.viewport_width":   "VIEWPORT_WIDTH",
		"session.viewport_height":  "VIEWPORT_HEIGHT",
		"session.proxy.host":       "PROXY_HOST",
		"session.proxy.port":       "PROXY_PORT",
		"session.proxy.username":   "PROXY_USERNAME",
		"session.proxy.password":   "PROXY_PASSWORD",
	}
	for key, env := range bindings {
		// BindEnv only errors on empty arguments.
		_ = v.BindEnv(key, env)
	}
}

// New resolves a Config from the given viper instance and validates it.
func New(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Session.TargetURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("session.target_url %q must be an absolute http(s) URL", c.Session.TargetURL)
	}
	if c.Session.DurationMinutes < 0 {
		return fmt.Errorf("session.duration_minutes must not be negative")
	}
	if c.Session.ViewportWidth <= 0 || c.Session.ViewportHeight <= 0 {
		return fmt.Errorf("session viewport dimensions must be positive")
	}
	if c.Session.Locale == "" {
		return fmt.Errorf("session.locale must not be empty")
	}
	if c.Session.Timezone == "" {
		return fmt.Errorf("session.timezone must not be empty")
	}
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be a positive duration")
	}
	return nil
}
