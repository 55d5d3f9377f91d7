package objects

import (
	"context"
	"sync"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Frame", newFrame)
}

// Frame hosts every selector-driven primitive. Its cached URL is
// updated only by frame-navigated events targeted at its own guid.
type Frame struct {
	channel

	mu  sync.RWMutex
	url string
}

func newFrame(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	return &Frame{
		channel: newChannel(guid, "Frame", conn),
		url:     init.Get("url").Str(),
	}
}

// OnEvent updates the cached URL on frame-navigated.
func (f *Frame) OnEvent(method string, p wire.Value) {
	if method == "navigated" || method == "frame-navigated" {
		f.mu.Lock()
		f.url = p.Get("url").Str()
		f.mu.Unlock()
	}
}

// URL returns the frame's last-known URL.
func (f *Frame) URL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.url
}

// Locator returns a pure-value selector handle scoped to this frame.
func (f *Frame) Locator(selector string) *Locator {
	return &Locator{frame: f, selector: selector}
}

func (f *Frame) count(ctx context.Context, selector string) (int, error) {
	result, err := f.send(ctx, "queryCount", params(map[string]interface{}{"selector": selector}))
	if err != nil {
		return 0, err
	}
	return result.Get("count").Int(), nil
}

func (f *Frame) textContent(ctx context.Context, selector string) (string, error) {
	result, err := f.send(ctx, "textContent", params(map[string]interface{}{"selector": selector}))
	if err != nil {
		return "", err
	}
	return result.Get("value").Str(), nil
}

func (f *Frame) innerText(ctx context.Context, selector string) (string, error) {
	result, err := f.send(ctx, "innerText", params(map[string]interface{}{"selector": selector}))
	if err != nil {
		return "", err
	}
	return result.Get("value").Str(), nil
}

func (f *Frame) innerHTML(ctx context.Context, selector string) (string, error) {
	result, err := f.send(ctx, "innerHTML", params(map[string]interface{}{"selector": selector}))
	if err != nil {
		return "", err
	}
	return result.Get("value").Str(), nil
}

func (f *Frame) getAttribute(ctx context.Context, selector, name string) (string, error) {
	result, err := f.send(ctx, "getAttribute", params(map[string]interface{}{"selector": selector, "name": name}))
	if err != nil {
		return "", err
	}
	return result.Get("value").Str(), nil
}

func (f *Frame) isVisible(ctx context.Context, selector string) (bool, error) {
	result, err := f.send(ctx, "isVisible", params(map[string]interface{}{"selector": selector}))
	if err != nil {
		return false, err
	}
	return result.Get("value").Bool(), nil
}

func (f *Frame) isEnabled(ctx context.Context, selector string) (bool, error) {
	result, err := f.send(ctx, "isEnabled", params(map[string]interface{}{"selector": selector}))
	if err != nil {
		return false, err
	}
	return result.Get("value").Bool(), nil
}

func (f *Frame) isChecked(ctx context.Context, selector string) (bool, error) {
	result, err := f.send(ctx, "isChecked", params(map[string]interface{}{"selector": selector}))
	if err != nil {
		return false, err
	}
	return result.Get("value").Bool(), nil
}

func (f *Frame) isEditable(ctx context.Context, selector string) (bool, error) {
	result, err := f.send(ctx, "isEditable", params(map[string]interface{}{"selector": selector}))
	if err != nil {
		return false, err
	}
	return result.Get("value").Bool(), nil
}

func (f *Frame) click(ctx context.Context, selector string) error {
	_, err := f.send(ctx, "click", params(map[string]interface{}{"selector": selector}))
	return err
}

func (f *Frame) fill(ctx context.Context, selector, value string) error {
	_, err := f.send(ctx, "fill", params(map[string]interface{}{"selector": selector, "value": value}))
	return err
}

func (f *Frame) press(ctx context.Context, selector, key string) error {
	_, err := f.send(ctx, "press", params(map[string]interface{}{"selector": selector, "key": key}))
	return err
}

func (f *Frame) check(ctx context.Context, selector string, checked bool) error {
	method := "check"
	if !checked {
		method = "uncheck"
	}
	_, err := f.send(ctx, method, params(map[string]interface{}{"selector": selector}))
	return err
}

func (f *Frame) hover(ctx context.Context, selector string) error {
	_, err := f.send(ctx, "hover", params(map[string]interface{}{"selector": selector}))
	return err
}

func (f *Frame) selectOption(ctx context.Context, selector string, values []string) error {
	_, err := f.send(ctx, "selectOption", params(map[string]interface{}{"selector": selector, "values": values}))
	return err
}

func (f *Frame) setInputFiles(ctx context.Context, selector string, paths []string) error {
	_, err := f.send(ctx, "setInputFiles", params(map[string]interface{}{"selector": selector, "files": paths}))
	return err
}

func (f *Frame) evaluateExpression(ctx context.Context, selector, expression string) (wire.Value, error) {
	return f.send(ctx, "evaluateExpression", params(map[string]interface{}{"selector": selector, "expression": expression}))
}

func (f *Frame) focused(ctx context.Context, selector string) (bool, error) {
	result, err := f.send(ctx, "isFocused", params(map[string]interface{}{"selector": selector}))
	if err != nil {
		return false, err
	}
	return result.Get("value").Bool(), nil
}
