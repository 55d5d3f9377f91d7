// Package objects implements the typed remote-object surface: the
// mid-level wrappers (Playwright, BrowserType, Browser,
// BrowserContext, Page, Frame, Locator, Route, …) that embed a
// channel over a GUID and expose domain methods and event
// subscriptions instead of raw RPC calls.
package objects

import (
	"context"
	"sync"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

// channel is the capability every typed wrapper embeds: a GUID bound
// to the Connection that can send requests on its behalf. It carries
// no cached state of its own — cached fields live on the embedding
// wrapper, each guarded by its own small mutex per spec's "interior
// mutability confined to cached fields and handler lists" rule.
type channel struct {
	guid string
	typ  string
	conn *protocol.Connection
}

func newChannel(guid, typ string, conn *protocol.Connection) channel {
	return channel{guid: guid, typ: typ, conn: conn}
}

// GUID implements protocol.Object.
func (c *channel) GUID() string { return c.guid }

// Type implements protocol.Object.
func (c *channel) Type() string { return c.typ }

// send issues an RPC against this object's guid.
func (c *channel) send(ctx context.Context, method string, params wire.Value) (wire.Value, error) {
	return c.conn.SendRequest(ctx, c.guid, method, params)
}

// handlerList is a small synchronized slice of event callbacks,
// shared by every wrapper that exposes an On(event, ...) surface.
type handlerList struct {
	mu       sync.RWMutex
	handlers map[string][]func(wire.Value)
}

func newHandlerList() handlerList {
	return handlerList{handlers: make(map[string][]func(wire.Value))}
}

func (h *handlerList) add(event string, fn func(wire.Value)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[event] = append(h.handlers[event], fn)
}

func (h *handlerList) fire(event string, params wire.Value) {
	h.mu.RLock()
	fns := append([]func(wire.Value){}, h.handlers[event]...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(params)
	}
}

// params builds a wire.Value from a plain map literal, the shape
// every RPC call in this package sends as its request body.
func params(m map[string]interface{}) wire.Value {
	if m == nil {
		return wire.Nil
	}
	return wire.NewValue(m)
}
