package objects

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

// fakeTransport is a minimal in-memory transport.Transport, local to
// this package's tests (separate from internal/protocol's own copy)
// so objects tests can drive a real Connection end-to-end.
type fakeTransport struct {
	mu   sync.Mutex
	sent [][]byte

	recv chan []byte
	done chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{recv: make(chan []byte, 32), done: make(chan struct{})}
}

func (f *fakeTransport) Send(frame []byte) error {
	f.mu.Lock()
	f.sent = append(f.sent, frame)
	f.mu.Unlock()
	return nil
}
func (f *fakeTransport) Recv() <-chan []byte  { return f.recv }
func (f *fakeTransport) Done() <-chan struct{} { return f.done }
func (f *fakeTransport) Err() error            { return nil }
func (f *fakeTransport) Close() error {
	select {
	case <-f.done:
	default:
		close(f.recv)
		close(f.done)
	}
	return nil
}

func (f *fakeTransport) push(v interface{}) {
	raw, _ := json.Marshal(v)
	f.recv <- raw
}

func (f *fakeTransport) lastMethod(t *testing.T, method string) wire.Request {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		f.mu.Lock()
		for i := len(f.sent) - 1; i >= 0; i-- {
			var req wire.Request
			if err := json.Unmarshal(f.sent[i], &req); err == nil && req.Method == method {
				f.mu.Unlock()
				return req
			}
		}
		f.mu.Unlock()
		select {
		case <-deadline:
			t.Fatalf("method %q was never sent", method)
		case <-time.After(time.Millisecond):
		}
	}
}

func createFrame(typ, guid, parent string, initializer map[string]interface{}) map[string]interface{} {
	m := map[string]interface{}{
		"type": typ,
		"guid": guid,
	}
	if initializer != nil {
		m["initializer"] = initializer
	}
	if parent != "" {
		m["parent"] = parent
	}
	return map[string]interface{}{"method": "__create__", "params": m}
}

func waitForGUID(t *testing.T, conn *protocol.Connection, guid string) protocol.Object {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if obj, ok := conn.Registry().Lookup(guid); ok {
			return obj
		}
		select {
		case <-deadline:
			t.Fatalf("guid %q was never registered", guid)
		case <-time.After(time.Millisecond):
		}
	}
	return nil
}

func TestRouteExactlyOnceDiscipline(t *testing.T) {
	ft := newFakeTransport()
	conn := protocol.NewConnection(ft)
	conn.Run()
	defer conn.Shutdown()

	ft.push(createFrame("Request", "req-1", "", map[string]interface{}{"url": "https://example.com", "method": "GET"}))
	waitForGUID(t, conn, "req-1")
	ft.push(createFrame("Route", "route-1", "", map[string]interface{}{"request": map[string]interface{}{"guid": "req-1"}}))
	routeObj := waitForGUID(t, conn, "route-1")
	route := routeObj.(*Route)

	go func() {
		req := ft.lastMethod(t, "continue")
		ft.push(map[string]interface{}{"id": req.ID})
	}()

	// first Continue should send a frame and succeed once we answer it
	done := make(chan error, 1)
	go func() {
		done <- route.Continue(context.Background(), ContinueOptions{})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first Continue: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first Continue never returned")
	}

	// second terminal call must fail locally without sending a frame
	sentBefore := len(ft.sent)
	if err := route.Fulfill(context.Background(), FulfillOptions{Status: 200}); !errors.Is(err, wire.ErrRouteAlreadyHandled) {
		t.Fatalf("expected ErrRouteAlreadyHandled, got %v", err)
	}
	ft.mu.Lock()
	sentAfter := len(ft.sent)
	ft.mu.Unlock()
	if sentAfter != sentBefore {
		t.Fatal("second terminal call must not send a frame")
	}
}

func TestLocatorComposesSelectorsWithSeparator(t *testing.T) {
	ft := newFakeTransport()
	conn := protocol.NewConnection(ft)
	conn.Run()
	defer conn.Shutdown()

	ft.push(createFrame("Frame", "frame-1", "", nil))
	frameObj := waitForGUID(t, conn, "frame-1")
	frame := frameObj.(*Frame)

	outer := frame.Locator("div.card")
	inner := outer.Locator("button.submit")

	if got, want := inner.Selector(), "div.card >> button.submit"; got != want {
		t.Fatalf("composed selector = %q, want %q", got, want)
	}
}

func TestPageGotoSurfacesResponseMissingOnTimeout(t *testing.T) {
	ft := newFakeTransport()
	conn := protocol.NewConnection(ft)
	conn.Run()
	defer conn.Shutdown()

	ft.push(createFrame("Page", "page-1", "", nil))
	pageObj := waitForGUID(t, conn, "page-1")
	page := pageObj.(*Page)

	go func() {
		req := ft.lastMethod(t, "goto")
		// respond with a response guid that is never actually created
		ft.push(map[string]interface{}{
			"id":     req.ID,
			"result": map[string]interface{}{"response": map[string]interface{}{"guid": "resp-never-created"}},
		})
	}()

	_, err := page.Goto(context.Background(), "https://example.com", GotoOptions{})
	var navErr *wire.NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("expected *NavigationError, got %v", err)
	}
	if !errors.Is(navErr.Cause, wire.ErrResponseMissing) {
		t.Fatalf("expected ErrResponseMissing cause, got %v", navErr.Cause)
	}
}

func TestPageGotoResolvesResponse(t *testing.T) {
	ft := newFakeTransport()
	conn := protocol.NewConnection(ft)
	conn.Run()
	defer conn.Shutdown()

	ft.push(createFrame("Page", "page-1", "", nil))
	pageObj := waitForGUID(t, conn, "page-1")
	page := pageObj.(*Page)

	go func() {
		req := ft.lastMethod(t, "goto")
		ft.push(createFrame("Response", "resp-1", "", map[string]interface{}{"url": "https://example.com", "status": 200}))
		ft.push(map[string]interface{}{
			"id":     req.ID,
			"result": map[string]interface{}{"response": map[string]interface{}{"guid": "resp-1"}},
		})
	}()

	resp, err := page.Goto(context.Background(), "https://example.com", GotoOptions{})
	if err != nil {
		t.Fatalf("goto: %v", err)
	}
	if resp.Status() != 200 {
		t.Fatalf("status = %d", resp.Status())
	}
}

func TestPageRouteMatchesRecursiveGlobAgainstAbsoluteURL(t *testing.T) {
	ft := newFakeTransport()
	conn := protocol.NewConnection(ft)
	conn.Run()
	defer conn.Shutdown()

	ft.push(createFrame("Page", "page-1", "", nil))
	pageObj := waitForGUID(t, conn, "page-1")
	page := pageObj.(*Page)

	fired := make(chan *Route, 1)
	page.Route("**/greet", func(r *Route) { fired <- r })

	ft.push(createFrame("Request", "req-1", "", map[string]interface{}{"url": "https://h/greet", "method": "GET"}))
	waitForGUID(t, conn, "req-1")
	ft.push(createFrame("Route", "route-1", "", map[string]interface{}{"request": map[string]interface{}{"guid": "req-1"}}))
	waitForGUID(t, conn, "route-1")

	ft.push(map[string]interface{}{
		"guid":   "page-1",
		"method": "route",
		"params": map[string]interface{}{
			"route":   map[string]interface{}{"guid": "route-1"},
			"request": map[string]interface{}{"guid": "req-1", "url": "https://h/greet"},
		},
	})

	select {
	case r := <-fired:
		if r == nil {
			t.Fatal("handler fired with nil route")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("route handler for \"**/greet\" never fired for https://h/greet")
	}
}

func TestPageRouteDoesNotMatchUnrelatedURL(t *testing.T) {
	ft := newFakeTransport()
	conn := protocol.NewConnection(ft)
	conn.Run()
	defer conn.Shutdown()

	ft.push(createFrame("Page", "page-1", "", nil))
	pageObj := waitForGUID(t, conn, "page-1")
	page := pageObj.(*Page)

	fired := make(chan *Route, 1)
	page.Route("**/greet", func(r *Route) { fired <- r })

	ft.push(createFrame("Request", "req-1", "", map[string]interface{}{"url": "https://h/other", "method": "GET"}))
	waitForGUID(t, conn, "req-1")
	ft.push(createFrame("Route", "route-1", "", map[string]interface{}{"request": map[string]interface{}{"guid": "req-1"}}))
	routeObj := waitForGUID(t, conn, "route-1")
	route := routeObj.(*Route)

	ft.push(map[string]interface{}{
		"guid":   "page-1",
		"method": "route",
		"params": map[string]interface{}{
			"route":   map[string]interface{}{"guid": "route-1"},
			"request": map[string]interface{}{"guid": "req-1", "url": "https://h/other"},
		},
	})

	select {
	case <-fired:
		t.Fatal("handler for \"**/greet\" fired for an unrelated URL")
	case <-time.After(50 * time.Millisecond):
	}

	go func() {
		req := ft.lastMethod(t, "continue")
		ft.push(map[string]interface{}{"id": req.ID})
	}()
	if err := route.Continue(context.Background(), ContinueOptions{}); err != nil {
		t.Fatalf("continue: %v", err)
	}
}
