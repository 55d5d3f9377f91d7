// Package testengine is a fake in-process engine speaking the same
// framed protocol as the real node driver, used to exercise end-to-end
// scenarios against the driver client without spawning a browser.
package testengine

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/hollowroad/pwdrive/internal/transport"
	"github.com/hollowroad/pwdrive/internal/wire"
)

// Handler answers one RPC method, returning either a result or an
// error payload (never both).
type Handler func(req wire.Request) (wire.Value, *wire.ErrorPayload)

// Engine is the fake driver's server side: it reads requests off its
// end of the pipe, dispatches them to registered handlers, and lets
// the test push __create__/__dispose__/__adopt__/event frames
// whenever the scenario calls for it.
type Engine struct {
	client transport.Transport
	server transport.Transport

	mu       sync.RWMutex
	handlers map[string]Handler

	stopOnce sync.Once
	stopped  chan struct{}
}

// New wires a client/server transport pair over an in-memory pipe and
// starts the engine's dispatch loop. ClientTransport() is what a
// protocol.Connection should be constructed with.
func New() *Engine {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()

	client := transport.NewPipe(aw, br)
	server := transport.NewPipe(bw, ar)

	e := &Engine{
		client:   client,
		server:   server,
		handlers: make(map[string]Handler),
		stopped:  make(chan struct{}),
	}
	go e.run()
	return e
}

// ClientTransport is the transport a protocol.Connection under test
// should wrap.
func (e *Engine) ClientTransport() transport.Transport { return e.client }

// Handle registers fn to answer every inbound request for method.
func (e *Engine) Handle(method string, fn Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[method] = fn
}

func (e *Engine) run() {
	defer close(e.stopped)
	for raw := range e.server.Recv() {
		var req wire.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			continue
		}
		e.mu.RLock()
		fn, ok := e.handlers[req.Method]
		e.mu.RUnlock()

		var env wire.Envelope
		env.ID = req.ID
		if !ok {
			env.Error = &wire.ErrorPayload{Name: "NoHandler", Message: fmt.Sprintf("testengine: no handler for %q", req.Method)}
		} else {
			result, errPayload := fn(req)
			env.Result = result
			env.Error = errPayload
		}

		out, err := json.Marshal(env)
		if err != nil {
			continue
		}
		_ = e.server.Send(out)
	}
}

// PushCreate sends an inbound __create__ frame for a new object.
func (e *Engine) PushCreate(typ, guid, parent string, initializer map[string]interface{}) {
	m := map[string]interface{}{"type": typ, "guid": guid}
	if initializer != nil {
		m["initializer"] = initializer
	}
	if parent != "" {
		m["parent"] = parent
	}
	e.pushFrame(map[string]interface{}{"method": "__create__", "params": m})
}

// PushDispose sends an inbound __dispose__ frame.
func (e *Engine) PushDispose(guid string) {
	e.pushFrame(map[string]interface{}{
		"method": "__dispose__",
		"params": map[string]interface{}{"guid": guid},
	})
}

// PushAdopt sends an inbound __adopt__ frame.
func (e *Engine) PushAdopt(guid, newParent string) {
	e.pushFrame(map[string]interface{}{
		"method": "__adopt__",
		"params": map[string]interface{}{"guid": guid, "parent": newParent},
	})
}

// PushEvent sends an inbound event frame targeted at guid.
func (e *Engine) PushEvent(guid, method string, params map[string]interface{}) {
	m := map[string]interface{}{"guid": guid, "method": method}
	if params != nil {
		m["params"] = params
	}
	e.pushFrame(m)
}

func (e *Engine) pushFrame(v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = e.server.Send(raw)
}

// Close shuts both ends of the pipe down.
func (e *Engine) Close() error {
	e.stopOnce.Do(func() {
		_ = e.client.Close()
		_ = e.server.Close()
	})
	return nil
}
