package objects

import (
	"context"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("ElementHandle", newElementHandle)
}

// ElementHandle is a handle to a specific in-page DOM node, as opposed
// to a Locator's re-resolved-on-every-call selector reference.
type ElementHandle struct {
	channel
}

func newElementHandle(_ protocol.Object, guid string, _ wire.Value, conn *protocol.Connection) protocol.Object {
	return &ElementHandle{channel: newChannel(guid, "ElementHandle", conn)}
}

func (e *ElementHandle) OnEvent(string, wire.Value) {}

// BoundingBox is the element's position and size.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoundingBox returns the element's current bounding box, or nil if
// it isn't rendered.
func (e *ElementHandle) BoundingBox(ctx context.Context) (*BoundingBox, error) {
	result, err := e.send(ctx, "boundingBox", wire.Nil)
	if err != nil {
		return nil, err
	}
	if result.Nil() {
		return nil, nil
	}
	var box BoundingBox
	if err := result.Decode(&box); err != nil {
		return nil, err
	}
	return &box, nil
}

// Click clicks the element directly.
func (e *ElementHandle) Click(ctx context.Context) error {
	_, err := e.send(ctx, "click", wire.Nil)
	return err
}

// TextContent returns the element's text content.
func (e *ElementHandle) TextContent(ctx context.Context) (string, error) {
	result, err := e.send(ctx, "textContent", wire.Nil)
	if err != nil {
		return "", err
	}
	return result.Get("value").Str(), nil
}

// Dispose releases the engine-side reference to this element.
func (e *ElementHandle) Dispose(ctx context.Context) error {
	_, err := e.send(ctx, "dispose", wire.Nil)
	return err
}
