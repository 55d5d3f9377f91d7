package objects

import (
	"context"
	"sync"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Route", newRoute)
}

// Route represents one intercepted request awaiting exactly one
// terminal disposition: Continue, Fulfill, or Abort.
type Route struct {
	channel

	mu      sync.Mutex
	handled bool

	request *Request
}

func newRoute(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	r := &Route{channel: newChannel(guid, "Route", conn)}
	if reqGUID := init.Get("request").Get("guid").Str(); reqGUID != "" {
		if obj, ok := conn.Registry().Lookup(reqGUID); ok {
			r.request, _ = obj.(*Request)
		}
	}
	return r
}

func (r *Route) OnEvent(string, wire.Value) {}

// Request returns the intercepted request.
func (r *Route) Request() *Request { return r.request }

// markHandled enforces the exactly-once discipline locally, before
// any frame is sent: a second terminal call fails fast with
// ErrRouteAlreadyHandled instead of racing the engine.
func (r *Route) markHandled() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handled {
		return wire.ErrRouteAlreadyHandled
	}
	r.handled = true
	return nil
}

// ContinueOptions overrides the outgoing request before it proceeds.
type ContinueOptions struct {
	URL     string
	Method  string
	Headers map[string]string
	PostData []byte
}

// Continue lets the intercepted request proceed, optionally modified.
func (r *Route) Continue(ctx context.Context, opts ContinueOptions) error {
	if err := r.markHandled(); err != nil {
		return err
	}
	m := map[string]interface{}{}
	if opts.URL != "" {
		m["url"] = opts.URL
	}
	if opts.Method != "" {
		m["method"] = opts.Method
	}
	if len(opts.Headers) > 0 {
		m["headers"] = opts.Headers
	}
	if len(opts.PostData) > 0 {
		m["postData"] = opts.PostData
	}
	_, err := r.send(ctx, "continue", params(m))
	return err
}

// FulfillOptions supplies a synthetic response body for the request.
type FulfillOptions struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// Fulfill completes the intercepted request with a synthetic response.
func (r *Route) Fulfill(ctx context.Context, opts FulfillOptions) error {
	if err := r.markHandled(); err != nil {
		return err
	}
	m := map[string]interface{}{"status": opts.Status}
	if len(opts.Headers) > 0 {
		m["headers"] = opts.Headers
	}
	if opts.Body != nil {
		m["body"] = opts.Body
	}
	_, err := r.send(ctx, "fulfill", params(m))
	return err
}

// Abort fails the intercepted request with the given reason (an
// engine-recognized network-error name, e.g. "failed", "aborted").
func (r *Route) Abort(ctx context.Context, reason string) error {
	if err := r.markHandled(); err != nil {
		return err
	}
	m := map[string]interface{}{}
	if reason != "" {
		m["errorCode"] = reason
	}
	_, err := r.send(ctx, "abort", params(m))
	return err
}
