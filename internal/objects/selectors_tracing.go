package objects

import (
	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Selectors", newSelectors)
	protocol.RegisterFactory("Tracing", newTracing)
}

// Selectors and Tracing have no operations named by this client's
// scope; they are registered so the registry's create/dispose
// invariants hold for engines that create them as part of the normal
// object graph (every BrowserContext gets a Tracing child, for
// instance).

// Selectors is a thin placeholder wrapper.
type Selectors struct{ channel }

func newSelectors(_ protocol.Object, guid string, _ wire.Value, conn *protocol.Connection) protocol.Object {
	return &Selectors{channel: newChannel(guid, "Selectors", conn)}
}

func (s *Selectors) OnEvent(string, wire.Value) {}

// Tracing is a thin placeholder wrapper.
type Tracing struct{ channel }

func newTracing(_ protocol.Object, guid string, _ wire.Value, conn *protocol.Connection) protocol.Object {
	return &Tracing{channel: newChannel(guid, "Tracing", conn)}
}

func (t *Tracing) OnEvent(string, wire.Value) {}
