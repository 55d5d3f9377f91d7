// Package assert implements the "expect(locator).to_be_*" auto-retry
// assertion harness: a predicate is polled on a ticker until it holds
// or a deadline expires.
package assert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hollowroad/pwdrive/internal/objects"
	"github.com/hollowroad/pwdrive/internal/telemetry"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultInterval = 100 * time.Millisecond
)

// AssertionTimeoutError is returned when a predicate never holds
// before the deadline.
type AssertionTimeoutError struct {
	Selector  string
	Condition string
	Elapsed   time.Duration
}

func (e *AssertionTimeoutError) Error() string {
	return fmt.Sprintf("assertion %q on %q timed out after %s", e.Condition, e.Selector, e.Elapsed)
}

// Option configures an Assertion.
type Option func(*Assertion)

// WithTimeout overrides the default 5s deadline.
func WithTimeout(d time.Duration) Option {
	return func(a *Assertion) { a.timeout = d }
}

// WithInterval overrides the default 100ms poll interval.
func WithInterval(d time.Duration) Option {
	return func(a *Assertion) { a.interval = d }
}

// Not negates the following predicate.
func Not() Option {
	return func(a *Assertion) { a.negate = true }
}

// Assertion holds the configuration for one expect(...) call.
type Assertion struct {
	locator  *objects.Locator
	timeout  time.Duration
	interval time.Duration
	negate   bool
}

// Expect begins an assertion against locator, applying any options.
func Expect(locator *objects.Locator, opts ...Option) *Assertion {
	a := &Assertion{locator: locator, timeout: defaultTimeout, interval: defaultInterval}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// pollUntil races a time.Ticker at a.interval against a time.Timer at
// a.timeout, the same ticker-vs-timer shape used elsewhere in the
// corpus for bounded polling loops. pred returning (true, nil) ends
// the loop successfully; any non-nil error ends it immediately.
func (a *Assertion) pollUntil(ctx context.Context, condition string, pred func(context.Context) (bool, error)) error {
	start := time.Now()

	check := func() (bool, error) {
		ok, err := pred(ctx)
		if err != nil {
			return false, err
		}
		if a.negate {
			ok = !ok
		}
		return ok, nil
	}

	if ok, err := check(); err != nil {
		return err
	} else if ok {
		return nil
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return &AssertionTimeoutError{
				Selector:  a.locator.Selector(),
				Condition: condition,
				Elapsed:   time.Since(start),
			}
		case <-ticker.C:
			telemetry.RecordAssertionRetry(condition)
			ok, err := check()
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
		}
	}
}

func (a *Assertion) ToBeVisible(ctx context.Context) error {
	return a.pollUntil(ctx, "to_be_visible", func(ctx context.Context) (bool, error) {
		return a.locator.IsVisible(ctx)
	})
}

func (a *Assertion) ToBeHidden(ctx context.Context) error {
	return a.pollUntil(ctx, "to_be_hidden", func(ctx context.Context) (bool, error) {
		visible, err := a.locator.IsVisible(ctx)
		return !visible, err
	})
}

// TextMatchMode selects how ToHaveText compares the actual text.
type TextMatchMode int

const (
	TextExact TextMatchMode = iota
	TextContains
)

func (a *Assertion) ToHaveText(ctx context.Context, expected string, mode TextMatchMode) error {
	return a.pollUntil(ctx, "to_have_text", func(ctx context.Context) (bool, error) {
		actual, err := a.locator.TextContent(ctx)
		if err != nil {
			return false, err
		}
		if mode == TextContains {
			return strings.Contains(actual, expected), nil
		}
		return actual == expected, nil
	})
}

func (a *Assertion) ToHaveValue(ctx context.Context, expected string) error {
	return a.pollUntil(ctx, "to_have_value", func(ctx context.Context) (bool, error) {
		actual, err := a.locator.GetAttribute(ctx, "value")
		if err != nil {
			return false, err
		}
		return actual == expected, nil
	})
}

func (a *Assertion) ToBeEnabled(ctx context.Context) error {
	return a.pollUntil(ctx, "to_be_enabled", func(ctx context.Context) (bool, error) {
		return a.locator.IsEnabled(ctx)
	})
}

func (a *Assertion) ToBeDisabled(ctx context.Context) error {
	return a.pollUntil(ctx, "to_be_disabled", func(ctx context.Context) (bool, error) {
		enabled, err := a.locator.IsEnabled(ctx)
		return !enabled, err
	})
}

func (a *Assertion) ToBeChecked(ctx context.Context) error {
	return a.pollUntil(ctx, "to_be_checked", func(ctx context.Context) (bool, error) {
		return a.locator.IsChecked(ctx)
	})
}

func (a *Assertion) ToBeUnchecked(ctx context.Context) error {
	return a.pollUntil(ctx, "to_be_unchecked", func(ctx context.Context) (bool, error) {
		checked, err := a.locator.IsChecked(ctx)
		return !checked, err
	})
}

func (a *Assertion) ToBeEditable(ctx context.Context) error {
	return a.pollUntil(ctx, "to_be_editable", func(ctx context.Context) (bool, error) {
		return a.locator.IsEditable(ctx)
	})
}

func (a *Assertion) ToBeFocused(ctx context.Context) error {
	return a.pollUntil(ctx, "to_be_focused", func(ctx context.Context) (bool, error) {
		return a.locator.IsFocused(ctx)
	})
}
