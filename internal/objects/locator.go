package objects

import (
	"context"

	"github.com/hollowroad/pwdrive/internal/wire"
)

// locatorSeparator joins composed selectors, matching the engine's
// own chained-selector convention.
const locatorSeparator = " >> "

// Locator is a pure value pairing a Frame with a selector string. It
// issues no RPC of its own; every method delegates to the owning
// Frame with the selector attached.
type Locator struct {
	frame    *Frame
	selector string
}

// Locator narrows this locator by appending a nested selector,
// joined with the engine's chained-selector separator.
func (l *Locator) Locator(selector string) *Locator {
	return &Locator{frame: l.frame, selector: l.selector + locatorSeparator + selector}
}

// Selector returns the fully composed selector string.
func (l *Locator) Selector() string { return l.selector }

// Frame returns the locator's owning frame.
func (l *Locator) Frame() *Frame { return l.frame }

func (l *Locator) Count(ctx context.Context) (int, error) {
	return l.frame.count(ctx, l.selector)
}

func (l *Locator) TextContent(ctx context.Context) (string, error) {
	return l.frame.textContent(ctx, l.selector)
}

func (l *Locator) InnerText(ctx context.Context) (string, error) {
	return l.frame.innerText(ctx, l.selector)
}

func (l *Locator) InnerHTML(ctx context.Context) (string, error) {
	return l.frame.innerHTML(ctx, l.selector)
}

func (l *Locator) GetAttribute(ctx context.Context, name string) (string, error) {
	return l.frame.getAttribute(ctx, l.selector, name)
}

func (l *Locator) IsVisible(ctx context.Context) (bool, error) {
	return l.frame.isVisible(ctx, l.selector)
}

func (l *Locator) IsEnabled(ctx context.Context) (bool, error) {
	return l.frame.isEnabled(ctx, l.selector)
}

func (l *Locator) IsChecked(ctx context.Context) (bool, error) {
	return l.frame.isChecked(ctx, l.selector)
}

func (l *Locator) IsEditable(ctx context.Context) (bool, error) {
	return l.frame.isEditable(ctx, l.selector)
}

func (l *Locator) IsFocused(ctx context.Context) (bool, error) {
	return l.frame.focused(ctx, l.selector)
}

func (l *Locator) Click(ctx context.Context) error {
	return l.frame.click(ctx, l.selector)
}

func (l *Locator) Fill(ctx context.Context, value string) error {
	return l.frame.fill(ctx, l.selector, value)
}

func (l *Locator) Press(ctx context.Context, key string) error {
	return l.frame.press(ctx, l.selector, key)
}

func (l *Locator) Check(ctx context.Context) error {
	return l.frame.check(ctx, l.selector, true)
}

func (l *Locator) Uncheck(ctx context.Context) error {
	return l.frame.check(ctx, l.selector, false)
}

func (l *Locator) Hover(ctx context.Context) error {
	return l.frame.hover(ctx, l.selector)
}

func (l *Locator) SelectOption(ctx context.Context, values ...string) error {
	return l.frame.selectOption(ctx, l.selector, values)
}

func (l *Locator) SetInputFiles(ctx context.Context, paths ...string) error {
	return l.frame.setInputFiles(ctx, l.selector, paths)
}

func (l *Locator) EvaluateExpression(ctx context.Context, expression string) (wire.Value, error) {
	return l.frame.evaluateExpression(ctx, l.selector, expression)
}
