package objects

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Page", newPage)
}

// goto's bounded poll for the Response object racing its own
// __create__ frame: up to 50 tries at 2ms, 100ms total.
const (
	gotoResponsePollAttempts = 50
	gotoResponsePollInterval = 2 * time.Millisecond
)

type routeEntry struct {
	pattern string
	match   *regexp.Regexp
	handler func(*Route)
}

// Page owns a primary Frame and any popup frames it has opened, plus
// the route handlers registered against it.
type Page struct {
	channel

	mu        sync.RWMutex
	mainFrame *Frame
	popups    []*Frame
	routes    []routeEntry

	handlers handlerList
}

func newPage(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	p := &Page{
		channel:  newChannel(guid, "Page", conn),
		handlers: newHandlerList(),
	}
	if mainGUID := init.Get("mainFrame").Get("guid").Str(); mainGUID != "" {
		if obj, ok := conn.Registry().Lookup(mainGUID); ok {
			p.mainFrame, _ = obj.(*Frame)
		}
	}
	return p
}

// OnEvent fans out the documented page event surface: frame-navigated
// updates nothing here directly (the Frame object handles its own
// navigation event); load/domcontentloaded/console/dialog/download/
// close are handed to user handlers verbatim; route matches a
// registered pattern in registration order.
func (p *Page) OnEvent(method string, params wire.Value) {
	switch method {
	case "load", "domcontentloaded", "console", "dialog", "download", "close", "frame-navigated":
		p.handlers.fire(method, params)
	case "route":
		p.dispatchRoute(params)
	case "popup":
		if guid := params.Get("page").Get("guid").Str(); guid != "" {
			if obj, ok := p.conn.Registry().Lookup(guid); ok {
				if popup, ok := obj.(*Page); ok && popup.mainFrame != nil {
					p.mu.Lock()
					p.popups = append(p.popups, popup.mainFrame)
					p.mu.Unlock()
				}
			}
		}
		p.handlers.fire("popup", params)
	}
}

// On registers a callback for one of Page's event names.
func (p *Page) On(event string, fn func(wire.Value)) {
	p.handlers.add(event, fn)
}

// MainFrame returns the page's primary frame.
func (p *Page) MainFrame() *Frame {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mainFrame
}

// Popups returns the frames of any popup pages opened from this page.
func (p *Page) Popups() []*Frame {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Frame, len(p.popups))
	copy(out, p.popups)
	return out
}

// GotoOptions configures a navigation.
type GotoOptions struct {
	WaitUntil string // "load" | "domcontentloaded" | "networkidle"
	Timeout   time.Duration
}

// Goto navigates the main frame. The engine returns a guid reference
// to the resulting Response; because its own __create__ may race with
// the goto response, this polls the registry for a bounded number of
// steps before surfacing ErrResponseMissing.
func (p *Page) Goto(ctx context.Context, url string, opts GotoOptions) (*Response, error) {
	m := map[string]interface{}{"url": url}
	if opts.WaitUntil != "" {
		m["waitUntil"] = opts.WaitUntil
	}

	result, err := p.send(ctx, "goto", params(m))
	if err != nil {
		return nil, &wire.NavigationError{URL: url, Cause: err}
	}

	guid := result.Get("response").Get("guid").Str()
	if guid == "" {
		return nil, nil
	}

	for i := 0; i < gotoResponsePollAttempts; i++ {
		if obj, ok := p.conn.Registry().Lookup(guid); ok {
			if resp, ok := obj.(*Response); ok {
				return resp, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, &wire.NavigationError{URL: url, Cause: ctx.Err()}
		case <-time.After(gotoResponsePollInterval):
		}
	}
	return nil, &wire.NavigationError{URL: url, Cause: wire.ErrResponseMissing}
}

// Reload re-navigates the current URL.
func (p *Page) Reload(ctx context.Context) error {
	_, err := p.send(ctx, "reload", wire.Nil)
	return err
}

// Title returns the page's document title.
func (p *Page) Title(ctx context.Context) (string, error) {
	result, err := p.send(ctx, "title", wire.Nil)
	if err != nil {
		return "", err
	}
	return result.Str(), nil
}

// URL returns the main frame's last-known URL.
func (p *Page) URL() string {
	if f := p.MainFrame(); f != nil {
		return f.URL()
	}
	return ""
}

// Screenshot captures the page and returns the engine's base64-encoded
// "binary" payload decoded into the returned bytes.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	result, err := p.send(ctx, "screenshot", wire.Nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Binary []byte `json:"binary"`
	}
	if err := result.Decode(&out); err != nil {
		return nil, err
	}
	return out.Binary, nil
}

// Evaluate runs a JS expression in the page's main-world context.
func (p *Page) Evaluate(ctx context.Context, expression string) (wire.Value, error) {
	return p.send(ctx, "evaluateExpression", params(map[string]interface{}{"expression": expression}))
}

// WaitForSelector blocks until selector appears (or the timeout
// expires), delegated to the engine's own wait implementation.
func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	m := map[string]interface{}{"selector": selector}
	if timeout > 0 {
		m["timeout"] = timeout.Milliseconds()
	}
	_, err := p.send(ctx, "waitForSelector", params(m))
	return err
}

// Route registers handler for requests matching pattern, checked
// against incoming "route" events in registration order. The handler
// must call exactly one of Route.Continue/Fulfill/Abort. pattern is
// matched against the full request URL (scheme, host and path) using
// glob syntax: "*" matches within one path segment, "**" matches
// across segments (including the scheme/host), and "?" matches a
// single character.
func (p *Page) Route(pattern string, handler func(*Route)) {
	p.mu.Lock()
	p.routes = append(p.routes, routeEntry{pattern: pattern, match: compileRoutePattern(pattern), handler: handler})
	p.mu.Unlock()
}

func (p *Page) dispatchRoute(evParams wire.Value) {
	routeGUID := evParams.Get("route").Get("guid").Str()
	url := evParams.Get("request").Get("url").Str()
	if routeGUID == "" {
		return
	}

	obj, ok := p.conn.Registry().Lookup(routeGUID)
	if !ok {
		return
	}
	route, ok := obj.(*Route)
	if !ok {
		return
	}

	p.mu.RLock()
	routes := append([]routeEntry{}, p.routes...)
	p.mu.RUnlock()

	for _, r := range routes {
		if r.match != nil && r.match.MatchString(url) {
			r.handler(route)
			return
		}
	}
}

// compileRoutePattern translates a glob route pattern into an anchored
// regexp: "**" becomes ".*" (matches across path segments and the
// scheme/host), a lone "*" becomes "[^/]*" (stays within one segment),
// "?" becomes "." (one character), and every other rune is matched
// literally. path.Match was tried first but rejected: its "*" requires
// equal path-element counts and has no recursive-glob form, so a
// pattern like "**/greet" can never match an absolute URL such as
// "https://h/greet". A pattern that fails to compile (should not
// happen, since every literal rune is escaped) never matches.
func compileRoutePattern(pattern string) *regexp.Regexp {
	if pattern == "" {
		return regexp.MustCompile(".*")
	}
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch {
		case c == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i += 2
		case c == '*':
			b.WriteString("[^/]*")
			i++
		case c == '?':
			b.WriteString(".")
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil
	}
	return re
}

func (p *Page) String() string {
	return fmt.Sprintf("Page(%s)", p.guid)
}
