package assert

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hollowroad/pwdrive/internal/objects"
	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
	"github.com/hollowroad/pwdrive/internal/wire/testengine"
)

func newTestFrame(t *testing.T, engine *testengine.Engine) *objects.Frame {
	t.Helper()
	conn := protocol.NewConnection(engine.ClientTransport())
	conn.Run()
	t.Cleanup(func() { conn.Shutdown() })

	engine.PushCreate("Frame", "frame-1", "", nil)

	deadline := time.After(2 * time.Second)
	for {
		if obj, ok := conn.Registry().Lookup("frame-1"); ok {
			return obj.(*objects.Frame)
		}
		select {
		case <-deadline:
			t.Fatal("frame-1 never registered")
		case <-time.After(time.Millisecond):
		}
	}
}

func boolVisibleHandler(appeared *atomic.Bool) testengine.Handler {
	return func(req wire.Request) (wire.Value, *wire.ErrorPayload) {
		return wire.NewValue(map[string]interface{}{"value": appeared.Load()}), nil
	}
}

// TestToBeVisibleEndToEndScenario: an element appended after 500ms is
// found with a 2s timeout. The short-timeout failure case is covered
// by TestToBeVisibleTimesOutBeforeElementAppears.
func TestToBeVisibleEndToEndScenario(t *testing.T) {
	engine := testengine.New()
	defer engine.Close()

	var appeared atomic.Bool
	time.AfterFunc(500*time.Millisecond, func() { appeared.Store(true) })
	engine.Handle("isVisible", boolVisibleHandler(&appeared))

	frame := newTestFrame(t, engine)
	locator := frame.Locator("#late")

	if err := Expect(locator, WithTimeout(2*time.Second)).ToBeVisible(context.Background()); err != nil {
		t.Fatalf("expected success within 2s, got %v", err)
	}
}

func TestToBeVisibleTimesOutBeforeElementAppears(t *testing.T) {
	engine := testengine.New()
	defer engine.Close()

	var appeared atomic.Bool
	time.AfterFunc(500*time.Millisecond, func() { appeared.Store(true) })
	engine.Handle("isVisible", boolVisibleHandler(&appeared))

	frame := newTestFrame(t, engine)
	locator := frame.Locator("#late")

	err := Expect(locator, WithTimeout(100*time.Millisecond)).ToBeVisible(context.Background())
	var timeoutErr *AssertionTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *AssertionTimeoutError, got %v", err)
	}
	if timeoutErr.Condition != "to_be_visible" {
		t.Fatalf("condition = %q", timeoutErr.Condition)
	}
	if timeoutErr.Selector != "#late" {
		t.Fatalf("selector = %q", timeoutErr.Selector)
	}
}

func TestNotNegatesPredicate(t *testing.T) {
	engine := testengine.New()
	defer engine.Close()

	var appeared atomic.Bool // never set true
	engine.Handle("isVisible", boolVisibleHandler(&appeared))

	frame := newTestFrame(t, engine)
	locator := frame.Locator("#gone")

	err := Expect(locator, Not(), WithTimeout(1*time.Second)).ToBeVisible(context.Background())
	if err != nil {
		t.Fatalf("expected negated assertion to succeed, got %v", err)
	}
}

func TestToHaveTextPollsUntilMatch(t *testing.T) {
	engine := testengine.New()
	defer engine.Close()

	var ready atomic.Bool
	time.AfterFunc(150*time.Millisecond, func() { ready.Store(true) })
	engine.Handle("textContent", func(req wire.Request) (wire.Value, *wire.ErrorPayload) {
		text := "loading"
		if ready.Load() {
			text = "done"
		}
		return wire.NewValue(map[string]interface{}{"value": text}), nil
	})

	frame := newTestFrame(t, engine)
	locator := frame.Locator("#status")

	if err := Expect(locator, WithTimeout(1*time.Second), WithInterval(10*time.Millisecond)).ToHaveText(context.Background(), "done", TextExact); err != nil {
		t.Fatalf("expected text to eventually match, got %v", err)
	}
}

func TestToHaveTextContainsMode(t *testing.T) {
	engine := testengine.New()
	defer engine.Close()

	engine.Handle("textContent", func(req wire.Request) (wire.Value, *wire.ErrorPayload) {
		return wire.NewValue(map[string]interface{}{"value": "order #42 confirmed"}), nil
	})

	frame := newTestFrame(t, engine)
	locator := frame.Locator("#banner")

	if err := Expect(locator, WithTimeout(1*time.Second)).ToHaveText(context.Background(), "confirmed", TextContains); err != nil {
		t.Fatalf("expected contains match to succeed, got %v", err)
	}
}
