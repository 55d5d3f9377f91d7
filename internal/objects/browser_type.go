package objects

import (
	"context"
	"fmt"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("BrowserType", newBrowserType)
}

// BrowserType is one of chromium/firefox/webkit, resolved off the
// Playwright root. Name is cached from its initializer.
type BrowserType struct {
	channel
	name string
}

func newBrowserType(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	return &BrowserType{
		channel: newChannel(guid, "BrowserType", conn),
		name:    init.Get("name").Str(),
	}
}

func (b *BrowserType) OnEvent(string, wire.Value) {}

// Name returns the engine's name for this browser kind ("chromium",
// "firefox", or "webkit").
func (b *BrowserType) Name() string { return b.name }

// LaunchOptions is the subset of engine launch options this client
// exposes.
type LaunchOptions struct {
	Headless bool
	Args     []string
	Proxy    string
}

func (o LaunchOptions) toParams() wire.Value {
	m := map[string]interface{}{"headless": o.Headless}
	if len(o.Args) > 0 {
		m["args"] = o.Args
	}
	if o.Proxy != "" {
		m["proxy"] = map[string]interface{}{"server": o.Proxy}
	}
	return params(m)
}

// Launch starts a one-shot browser and returns it. Closing the
// returned Browser closes the browser only; the engine process is
// stopped by whoever owns its driver.Supervisor.
func (b *BrowserType) Launch(ctx context.Context, opts LaunchOptions) (*Browser, error) {
	result, err := b.send(ctx, "launch", opts.toParams())
	if err != nil {
		return nil, &wire.BrowserLaunchError{Op: "launch", Cause: err}
	}
	return b.resolveBrowser(result)
}

// ServerHandle bundles a launch-server's WebSocket endpoint with its
// already-connected Browser.
type ServerHandle struct {
	WSEndpoint string
	Browser    *Browser
}

// LaunchServer starts a browser behind a WebSocket endpoint that can
// outlive this process, for the session broker's reusable-server mode.
func (b *BrowserType) LaunchServer(ctx context.Context, opts LaunchOptions) (*ServerHandle, error) {
	result, err := b.send(ctx, "launchServer", opts.toParams())
	if err != nil {
		return nil, &wire.BrowserLaunchError{Op: "launchServer", Cause: err}
	}
	browser, err := b.resolveBrowser(result)
	if err != nil {
		return nil, err
	}
	return &ServerHandle{
		WSEndpoint: result.Get("wsEndpoint").Str(),
		Browser:    browser,
	}, nil
}

// ConnectOverCDP attaches to an already-running browser over Chrome
// DevTools Protocol. Only chromium supports this mode on the engine
// side; callers are expected to have resolved BrowserType("chromium").
func (b *BrowserType) ConnectOverCDP(ctx context.Context, endpoint string) (*Browser, *BrowserContext, error) {
	result, err := b.send(ctx, "connectOverCDP", params(map[string]interface{}{"endpointURL": endpoint}))
	if err != nil {
		return nil, nil, &wire.BrowserLaunchError{Op: "connectOverCDP", Cause: err}
	}
	browser, err := b.resolveBrowser(result)
	if err != nil {
		return nil, nil, err
	}

	var defaultCtx *BrowserContext
	if guid := result.Get("defaultContext").Get("guid").Str(); guid != "" {
		if obj, ok := b.conn.Registry().Lookup(guid); ok {
			defaultCtx, _ = obj.(*BrowserContext)
		}
	}
	return browser, defaultCtx, nil
}

func (b *BrowserType) resolveBrowser(result wire.Value) (*Browser, error) {
	guid := result.Get("browser").Get("guid").Str()
	if guid == "" {
		return nil, fmt.Errorf("protocol: launch result missing browser guid")
	}
	obj, ok := b.conn.Registry().Lookup(guid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", wire.ErrUnknownGUID, guid)
	}
	browser, ok := obj.(*Browser)
	if !ok {
		return nil, fmt.Errorf("protocol: guid %s is not a Browser", guid)
	}
	return browser, nil
}
