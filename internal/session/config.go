package session

import (
	"context"
	"time"

	"github.com/hollowroad/pwdrive/internal/objects"
)

// BrokerConfig is the resolved set of inputs to Broker.Acquire's
// decision tree: CDP attach, launch-server reuse, or one-shot launch.
type BrokerConfig struct {
	BrowserKind  string // chromium | firefox | webkit
	Headless     bool
	CDPEndpoint  string
	LaunchServer bool
	AuthFile     string
	WaitUntil    string

	Scope      string // "global" | "project"
	ProjectDir string // only consulted when Scope == "project"
	Refresh    bool

	NodePath      string
	DriverPath    string
	LaunchTimeout time.Duration
}

// Ready bundles a usable Page with its owning BrowserContext and
// Browser, plus the mode-specific shutdown rule as a closure so
// callers don't need to know which of the three acquire modes
// produced it.
type Ready struct {
	Page    *objects.Page
	Context *objects.BrowserContext
	Browser *objects.Browser

	closeFn func(ctx context.Context) error
}

// Close runs this Ready's mode-specific teardown: closing the context
// only (CDP attach, launch-server reuse) or the whole browser
// (one-shot launch).
func (r *Ready) Close(ctx context.Context) error {
	return r.closeFn(ctx)
}
