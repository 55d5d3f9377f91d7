package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PWDRIVE_NODE_PATH", "PWDRIVE_DRIVER_PATH", "PWDRIVE_BROWSER",
		"PWDRIVE_HEADLESS", "PWDRIVE_CDP_ENDPOINT", "PWDRIVE_LAUNCH_SERVER",
		"PWDRIVE_AUTH_FILE", "PWDRIVE_WAIT_UNTIL", "PWDRIVE_PROFILE",
		"PWDRIVE_REFRESH", "PWDRIVE_SCOPE", "PWDRIVE_DEFAULT_TIMEOUT",
		"PWDRIVE_LAUNCH_TIMEOUT", "PWDRIVE_SESSION_TTL", "PWDRIVE_ASSERT_TIMEOUT",
		"PWDRIVE_ASSERT_INTERVAL", "PWDRIVE_LOG_LEVEL", "PWDRIVE_METRICS_ENABLED",
		"PWDRIVE_METRICS_ADDR",
	}
	for _, k := range keys {
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.BrowserKind != "chromium" {
		t.Errorf("BrowserKind = %q, want chromium", cfg.BrowserKind)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.WaitUntil != "load" {
		t.Errorf("WaitUntil = %q, want load", cfg.WaitUntil)
	}
	if cfg.Scope != "global" {
		t.Errorf("Scope = %q, want global", cfg.Scope)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.AssertTimeout != 5*time.Second {
		t.Errorf("AssertTimeout = %v, want 5s", cfg.AssertTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("PWDRIVE_BROWSER", "firefox")
	os.Setenv("PWDRIVE_HEADLESS", "false")
	os.Setenv("PWDRIVE_SCOPE", "project")
	os.Setenv("PWDRIVE_SESSION_TTL", "1h")
	defer clearEnv(t)

	cfg := Load()
	if cfg.BrowserKind != "firefox" {
		t.Errorf("BrowserKind = %q, want firefox", cfg.BrowserKind)
	}
	if cfg.Headless {
		t.Error("Headless should be false")
	}
	if cfg.Scope != "project" {
		t.Errorf("Scope = %q, want project", cfg.Scope)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want 1h", cfg.SessionTTL)
	}
}

func TestValidateRejectsUnknownBrowserKind(t *testing.T) {
	cfg := &Config{BrowserKind: "bogus", WaitUntil: "load", Scope: "global", LogLevel: "info",
		DefaultTimeout: time.Second, LaunchTimeout: time.Second, SessionTTL: time.Minute,
		AssertTimeout: time.Second, AssertInterval: 50 * time.Millisecond}
	cfg.Validate()
	if cfg.BrowserKind != "chromium" {
		t.Errorf("BrowserKind = %q, want fallback chromium", cfg.BrowserKind)
	}
}

func TestValidateClampsSessionTTL(t *testing.T) {
	cfg := &Config{BrowserKind: "chromium", WaitUntil: "load", Scope: "global", LogLevel: "info",
		DefaultTimeout: time.Second, LaunchTimeout: time.Second, SessionTTL: time.Second,
		AssertTimeout: time.Second, AssertInterval: 50 * time.Millisecond}
	cfg.Validate()
	if cfg.SessionTTL != minSessionTTL {
		t.Errorf("SessionTTL = %v, want clamped to %v", cfg.SessionTTL, minSessionTTL)
	}
}

func TestValidateCDPEndpointForcesChromium(t *testing.T) {
	cfg := &Config{BrowserKind: "firefox", CDPEndpoint: "ws://localhost:1234", WaitUntil: "load",
		Scope: "global", LogLevel: "info", DefaultTimeout: time.Second, LaunchTimeout: time.Second,
		SessionTTL: time.Minute, AssertTimeout: time.Second, AssertInterval: 50 * time.Millisecond}
	cfg.Validate()
	if cfg.BrowserKind != "chromium" {
		t.Errorf("BrowserKind = %q, want chromium when cdp_endpoint is set", cfg.BrowserKind)
	}
}
