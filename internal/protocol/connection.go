package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hollowroad/pwdrive/internal/telemetry"
	"github.com/hollowroad/pwdrive/internal/transport"
	"github.com/hollowroad/pwdrive/internal/wire"
	"github.com/rs/zerolog/log"
)

// Connection owns one Transport, the single reader goroutine that
// classifies every inbound frame, and the Registry that frame
// handling mutates.
type Connection struct {
	tr transport.Transport

	nextID atomic.Uint32

	pendingMu sync.Mutex
	pending   map[uint32]chan *wire.Envelope

	registry *Registry

	runOnce sync.Once
	stopped chan struct{}
}

// NewConnection wraps tr. Call Run to start the reader loop before
// issuing any SendRequest.
func NewConnection(tr transport.Transport) *Connection {
	c := &Connection{
		pending: make(map[uint32]chan *wire.Envelope),
		stopped: make(chan struct{}),
	}
	c.registry = NewRegistry(c)
	c.tr = tr
	return c
}

// Registry returns the connection's object registry.
func (c *Connection) Registry() *Registry { return c.registry }

// Done is closed once the reader loop has exited (transport closed).
func (c *Connection) Done() <-chan struct{} { return c.stopped }

// Run starts the single reader goroutine. Safe to call once; later
// calls are no-ops.
func (c *Connection) Run() {
	c.runOnce.Do(func() {
		go c.run()
	})
}

// SendRequest issues {id, guid, method, params} and waits for the
// matching response, a context cancellation, or transport closure.
// On a context deadline the pending entry is still removed so a late
// response is discarded harmlessly; the engine-side effect (if any)
// is not rolled back.
func (c *Connection) SendRequest(ctx context.Context, guid, method string, params wire.Value) (wire.Value, error) {
	id := c.nextID.Add(1)
	respCh := make(chan *wire.Envelope, 1)
	start := time.Now()

	c.pendingMu.Lock()
	c.pending[id] = respCh
	c.pendingMu.Unlock()
	telemetry.PendingRequests.Inc()
	defer telemetry.PendingRequests.Dec()

	req := wire.Request{ID: id, GUID: guid, Method: method, Params: params}
	raw, err := json.Marshal(req)
	if err != nil {
		c.removePending(id)
		telemetry.RecordRequest(method, "marshal_error", time.Since(start).Seconds())
		return wire.Value{}, fmt.Errorf("protocol: marshal request: %w", err)
	}

	if err := c.tr.Send(raw); err != nil {
		c.removePending(id)
		telemetry.RecordRequest(method, "send_error", time.Since(start).Seconds())
		return wire.Value{}, err
	}

	select {
	case env := <-respCh:
		if env.Error != nil {
			telemetry.RecordRequest(method, "error", time.Since(start).Seconds())
			return wire.Value{}, &wire.ProtocolError{Name: env.Error.Name, Message: env.Error.Message, Stack: env.Error.Stack}
		}
		telemetry.RecordRequest(method, "ok", time.Since(start).Seconds())
		return env.Result, nil
	case <-ctx.Done():
		c.removePending(id)
		telemetry.RecordRequest(method, "timeout", time.Since(start).Seconds())
		return wire.Value{}, wire.ErrTimeout
	case <-c.stopped:
		c.removePending(id)
		telemetry.RecordRequest(method, "transport_closed", time.Since(start).Seconds())
		return wire.Value{}, wire.ErrTransportClosed
	}
}

func (c *Connection) removePending(id uint32) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// run is the single reader goroutine, grounded on the pack's chromedp
// Browser.run reader/dispatch split: one goroutine owns Recv() and
// classifies every frame before handing it off, and must never block
// on a slow consumer.
func (c *Connection) run() {
	defer c.drainPending()
	defer close(c.stopped)

	for raw := range c.tr.Recv() {
		env, err := wire.DecodeEnvelope(raw)
		if err != nil {
			log.Warn().Err(err).Msg("protocol: discarding malformed frame")
			continue
		}

		switch env.Classify() {
		case wire.KindResponse:
			c.resolve(env)
		case wire.KindCreate:
			c.handleCreate(env)
		case wire.KindDispose:
			c.handleDispose(env)
		case wire.KindAdopt:
			c.handleAdopt(env)
		case wire.KindEvent:
			dispatchEvent(c.registry, env.GUID, env.Method, env.Params)
		default:
			log.Warn().Str("method", env.Method).Msg("protocol: unclassifiable frame")
		}
	}
}

func (c *Connection) resolve(env wire.Envelope) {
	c.pendingMu.Lock()
	ch, ok := c.pending[env.ID]
	if ok {
		delete(c.pending, env.ID)
	}
	c.pendingMu.Unlock()

	if !ok {
		return
	}
	e := env
	ch <- &e
}

func (c *Connection) handleCreate(env wire.Envelope) {
	var p wire.CreateParams
	if err := env.Params.Decode(&p); err != nil {
		log.Warn().Err(err).Msg("protocol: malformed __create__ params")
		return
	}
	if _, err := c.registry.Create(p.Parent, p.Type, p.GUID, p.Initializer); err != nil {
		log.Warn().Err(err).Str("guid", p.GUID).Msg("protocol: create failed")
	}
}

func (c *Connection) handleDispose(env wire.Envelope) {
	var p wire.DisposeParams
	if err := env.Params.Decode(&p); err != nil {
		log.Warn().Err(err).Msg("protocol: malformed __dispose__ params")
		return
	}
	c.registry.Dispose(p.GUID)
}

func (c *Connection) handleAdopt(env wire.Envelope) {
	var p wire.AdoptParams
	if err := env.Params.Decode(&p); err != nil {
		log.Warn().Err(err).Msg("protocol: malformed __adopt__ params")
		return
	}
	c.registry.Adopt(p.GUID, p.Parent)
}

// drainPending clears any requests still waiting when the reader loop
// exits. c.stopped is closed before this runs (see the defer order in
// run), so every blocked SendRequest has already woken via its
// <-c.stopped case and returned ErrTransportClosed; this just frees
// the map entries, mirroring the corpus's drain-on-shutdown style used
// when a pool/session tears down while RPCs are in flight.
func (c *Connection) drainPending() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id := range c.pending {
		delete(c.pending, id)
	}
}

// Shutdown closes the underlying transport, waits for the reader
// goroutine to exit, and disposes every object (and event worker)
// still registered on this connection. Without the registry dispose,
// a later connection that reuses this one's GUIDs — e.g. a session
// broker reconnecting to the same launch-server — would find stale
// workers from this connection still present and routing events to
// objects that no longer exist.
func (c *Connection) Shutdown() error {
	err := c.tr.Close()
	<-c.stopped
	c.registry.DisposeAll()
	return err
}
