package objects

import (
	"context"
	"sync/atomic"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Browser", newBrowser)
}

// Browser is a launched or attached browser process handle.
type Browser struct {
	channel

	name    string
	version string

	connected atomic.Bool
}

func newBrowser(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	b := &Browser{
		channel: newChannel(guid, "Browser", conn),
		name:    init.Get("name").Str(),
		version: init.Get("version").Str(),
	}
	b.connected.Store(true)
	return b
}

// OnEvent flips the connected flag false on the engine's "close" event.
func (b *Browser) OnEvent(method string, _ wire.Value) {
	if method == "close" {
		b.connected.Store(false)
	}
}

// Name returns the cached engine-reported browser name.
func (b *Browser) Name() string { return b.name }

// Version returns the cached engine-reported browser version.
func (b *Browser) Version() string { return b.version }

// IsConnected reports whether the browser is still attached.
func (b *Browser) IsConnected() bool { return b.connected.Load() }

// NewContextOptions is the subset of engine context options this
// client exposes.
type NewContextOptions struct {
	StorageState wire.Value
	Viewport     *Viewport
}

// Viewport is a simple width/height pair.
type Viewport struct {
	Width  int
	Height int
}

func (o NewContextOptions) toParams() wire.Value {
	m := map[string]interface{}{}
	if !o.StorageState.Nil() {
		m["storageState"] = o.StorageState.Raw()
	}
	if o.Viewport != nil {
		m["viewport"] = map[string]interface{}{"width": o.Viewport.Width, "height": o.Viewport.Height}
	}
	return params(m)
}

// NewContext creates a fresh isolated browsing context.
func (b *Browser) NewContext(ctx context.Context, opts NewContextOptions) (*BrowserContext, error) {
	result, err := b.send(ctx, "newContext", opts.toParams())
	if err != nil {
		return nil, err
	}
	return b.resolveContext(result)
}

// NewPage is a convenience for NewContext followed by
// BrowserContext.NewPage.
func (b *Browser) NewPage(ctx context.Context, opts NewContextOptions) (*Page, error) {
	bc, err := b.NewContext(ctx, opts)
	if err != nil {
		return nil, err
	}
	return bc.NewPage(ctx)
}

// Close shuts the browser down.
func (b *Browser) Close(ctx context.Context) error {
	_, err := b.send(ctx, "close", wire.Nil)
	if err == nil {
		b.connected.Store(false)
	}
	return err
}

func (b *Browser) resolveContext(result wire.Value) (*BrowserContext, error) {
	guid := result.Get("context").Get("guid").Str()
	obj, ok := b.conn.Registry().Lookup(guid)
	if !ok {
		return nil, wire.ErrUnknownGUID
	}
	bc, _ := obj.(*BrowserContext)
	return bc, nil
}
