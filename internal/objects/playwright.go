package objects

import (
	"context"
	"sync"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Root", newPlaywright)
	protocol.RegisterFactory("Playwright", newPlaywright)
}

// Playwright is the protocol root. Its initializer carries guid
// references to the chromium/firefox/webkit BrowserType children;
// those children may be created before or after Root itself arrives,
// so the accessors resolve lazily against the registry rather than
// caching a *BrowserType at construction time.
type Playwright struct {
	channel

	chromiumGUID string
	firefoxGUID  string
	webkitGUID   string

	shutdownOnce       sync.Once
	keepServerRunning  bool
}

func newPlaywright(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	return &Playwright{
		channel:      newChannel(guid, "Playwright", conn),
		chromiumGUID: init.Get("chromium").Get("guid").Str(),
		firefoxGUID:  init.Get("firefox").Get("guid").Str(),
		webkitGUID:   init.Get("webkit").Get("guid").Str(),
	}
}

func (p *Playwright) OnEvent(string, wire.Value) {}

func (p *Playwright) resolveBrowserType(guid string) *BrowserType {
	obj, ok := p.conn.Registry().Lookup(guid)
	if !ok {
		return nil
	}
	bt, _ := obj.(*BrowserType)
	return bt
}

// Chromium returns the chromium BrowserType, or nil if it hasn't been
// created by the engine yet.
func (p *Playwright) Chromium() *BrowserType { return p.resolveBrowserType(p.chromiumGUID) }

// Firefox returns the firefox BrowserType, or nil if it hasn't been
// created by the engine yet.
func (p *Playwright) Firefox() *BrowserType { return p.resolveBrowserType(p.firefoxGUID) }

// Webkit returns the webkit BrowserType, or nil if it hasn't been
// created by the engine yet.
func (p *Playwright) Webkit() *BrowserType { return p.resolveBrowserType(p.webkitGUID) }

// Shutdown closes the connection and its transport. It does not stop
// the engine process, whatever keepServerRunning says: the flag is
// stored on the Playwright and not otherwise consulted. Idempotent.
func (p *Playwright) Shutdown(ctx context.Context, keepServerRunning bool) error {
	var err error
	p.shutdownOnce.Do(func() {
		p.keepServerRunning = keepServerRunning
		err = p.conn.Shutdown()
	})
	return err
}
