package objects

import (
	"context"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("BrowserContext", newBrowserContext)
}

// BrowserContext is an isolated browsing session within a Browser.
type BrowserContext struct {
	channel
	handlers handlerList
}

func newBrowserContext(_ protocol.Object, guid string, _ wire.Value, conn *protocol.Connection) protocol.Object {
	return &BrowserContext{
		channel:  newChannel(guid, "BrowserContext", conn),
		handlers: newHandlerList(),
	}
}

// OnEvent fans the "page" and "close" events out to user handlers
// with their raw params; the "page" guid is not resolved into a *Page.
func (bc *BrowserContext) OnEvent(method string, p wire.Value) {
	switch method {
	case "page":
		bc.handlers.fire("page", p)
	case "close":
		bc.handlers.fire("close", p)
	}
}

// On registers a callback for "page" or "close" events.
func (bc *BrowserContext) On(event string, fn func(wire.Value)) {
	bc.handlers.add(event, fn)
}

// NewPage opens a page in this context.
func (bc *BrowserContext) NewPage(ctx context.Context) (*Page, error) {
	result, err := bc.send(ctx, "newPage", wire.Nil)
	if err != nil {
		return nil, err
	}
	guid := result.Get("page").Get("guid").Str()
	obj, ok := bc.conn.Registry().Lookup(guid)
	if !ok {
		return nil, wire.ErrUnknownGUID
	}
	page, _ := obj.(*Page)
	return page, nil
}

// Close tears the context down.
func (bc *BrowserContext) Close(ctx context.Context) error {
	_, err := bc.send(ctx, "close", wire.Nil)
	return err
}

// StorageState exports the context's cookies and per-origin storage.
func (bc *BrowserContext) StorageState(ctx context.Context) (wire.Value, error) {
	return bc.send(ctx, "storageState", wire.Nil)
}

// AddCookies adds the given cookies (engine-shaped JSON array) to the
// context.
func (bc *BrowserContext) AddCookies(ctx context.Context, cookies wire.Value) error {
	_, err := bc.send(ctx, "addCookies", params(map[string]interface{}{"cookies": cookies.Raw()}))
	return err
}
