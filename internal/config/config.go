// Package config provides process-wide configuration loaded from
// environment variables, with CLI flags given precedence at the call
// site (see cmd/pwdrive).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Configuration upper/lower bounds enforced by Validate.
const (
	minTimeout      = 1 * time.Second
	maxTimeout      = 10 * time.Minute
	minSessionTTL   = 1 * time.Minute
	maxSessionTTL   = 24 * time.Hour
	minPollInterval = 10 * time.Millisecond
)

// Config holds every setting the broker and CLI front end need.
// Loaded from environment variables at startup; flags applied by the
// caller win over whatever Load returns.
type Config struct {
	// Driver process
	NodePath   string
	DriverPath string

	// Session broker acquisition mode
	BrowserKind string // chromium | firefox | webkit
	Headless    bool
	CDPEndpoint string
	LaunchServer bool
	AuthFile    string
	WaitUntil   string // load | domcontentloaded | networkidle

	// Reuse/refresh controls
	Profile string
	Refresh bool
	Scope   string // "global" | "project"

	// Timeouts
	DefaultTimeout time.Duration
	LaunchTimeout  time.Duration
	SessionTTL     time.Duration

	// Assertion defaults
	AssertTimeout  time.Duration
	AssertInterval time.Duration

	// Logging
	LogLevel string

	// Metrics
	MetricsEnabled bool
	MetricsAddr    string
}

// Load reads configuration from environment variables, falling back
// to sensible defaults for anything unset or unparsable.
func Load() *Config {
	return &Config{
		NodePath:   getEnvString("PWDRIVE_NODE_PATH", ""),
		DriverPath: getEnvString("PWDRIVE_DRIVER_PATH", ""),

		BrowserKind:  getEnvString("PWDRIVE_BROWSER", "chromium"),
		Headless:     getEnvBool("PWDRIVE_HEADLESS", true),
		CDPEndpoint:  getEnvString("PWDRIVE_CDP_ENDPOINT", ""),
		LaunchServer: getEnvBool("PWDRIVE_LAUNCH_SERVER", false),
		AuthFile:     getEnvString("PWDRIVE_AUTH_FILE", ""),
		WaitUntil:    getEnvString("PWDRIVE_WAIT_UNTIL", "load"),

		Profile: getEnvString("PWDRIVE_PROFILE", ""),
		Refresh: getEnvBool("PWDRIVE_REFRESH", false),
		Scope:   getEnvString("PWDRIVE_SCOPE", "global"),

		DefaultTimeout: getEnvDuration("PWDRIVE_DEFAULT_TIMEOUT", 30*time.Second),
		LaunchTimeout:  getEnvDuration("PWDRIVE_LAUNCH_TIMEOUT", 60*time.Second),
		SessionTTL:     getEnvDuration("PWDRIVE_SESSION_TTL", 30*time.Minute),

		AssertTimeout:  getEnvDuration("PWDRIVE_ASSERT_TIMEOUT", 5*time.Second),
		AssertInterval: getEnvDuration("PWDRIVE_ASSERT_INTERVAL", 100*time.Millisecond),

		LogLevel: getEnvString("PWDRIVE_LOG_LEVEL", "info"),

		MetricsEnabled: getEnvBool("PWDRIVE_METRICS_ENABLED", false),
		MetricsAddr:    getEnvString("PWDRIVE_METRICS_ADDR", "127.0.0.1:9191"),
	}
}

// Validate clamps out-of-range values and logs a warning instead of
// failing, the same "never crash on bad config" posture the broker's
// invalidation predicates depend on.
func (c *Config) Validate() {
	validKinds := map[string]bool{"chromium": true, "firefox": true, "webkit": true}
	if !validKinds[c.BrowserKind] {
		log.Warn().Str("browser_kind", c.BrowserKind).Msg("invalid browser kind, using chromium")
		c.BrowserKind = "chromium"
	}

	validWait := map[string]bool{"load": true, "domcontentloaded": true, "networkidle": true}
	if !validWait[c.WaitUntil] {
		log.Warn().Str("wait_until", c.WaitUntil).Msg("invalid wait_until, using load")
		c.WaitUntil = "load"
	}

	if c.Scope != "global" && c.Scope != "project" {
		log.Warn().Str("scope", c.Scope).Msg("invalid scope, using global")
		c.Scope = "global"
	}

	if c.CDPEndpoint != "" && c.BrowserKind != "chromium" {
		log.Warn().Str("browser_kind", c.BrowserKind).Msg("cdp_endpoint requires chromium, ignoring browser_kind override")
		c.BrowserKind = "chromium"
	}

	clampDuration(&c.DefaultTimeout, "PWDRIVE_DEFAULT_TIMEOUT", minTimeout, maxTimeout, 30*time.Second)
	clampDuration(&c.LaunchTimeout, "PWDRIVE_LAUNCH_TIMEOUT", minTimeout, maxTimeout, 60*time.Second)
	clampDuration(&c.SessionTTL, "PWDRIVE_SESSION_TTL", minSessionTTL, maxSessionTTL, 30*time.Minute)
	clampDuration(&c.AssertTimeout, "PWDRIVE_ASSERT_TIMEOUT", minTimeout, maxTimeout, 5*time.Second)
	clampDuration(&c.AssertInterval, "PWDRIVE_ASSERT_INTERVAL", minPollInterval, time.Second, 100*time.Millisecond)

	validLogLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		log.Warn().Str("level", c.LogLevel).Msg("invalid log level, using info")
		c.LogLevel = "info"
	}

	if c.AuthFile != "" {
		if _, err := os.Stat(c.AuthFile); os.IsNotExist(err) {
			log.Warn().Str("auth_file", c.AuthFile).Msg("auth_file does not exist")
		}
	}
}

func clampDuration(d *time.Duration, key string, min, max, fallback time.Duration) {
	switch {
	case *d < min:
		log.Warn().Str("key", key).Dur("value", *d).Dur("min", min).Msg("duration too short, using minimum")
		*d = min
	case *d > max:
		log.Warn().Str("key", key).Dur("value", *d).Dur("max", max).Msg("duration too long, using maximum")
		*d = max
	case *d <= 0:
		*d = fallback
	}
}

func getEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
		log.Warn().Str("key", key).Str("value", v).Err(err).Bool("default", defaultValue).Msg("invalid boolean in environment variable, using default")
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
		log.Warn().Str("key", key).Str("value", v).Dur("default", defaultValue).Msg("invalid duration in environment variable, using default")
	}
	return defaultValue
}
