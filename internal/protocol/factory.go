package protocol

import "github.com/hollowroad/pwdrive/internal/wire"

// Factory constructs a typed Object for one wire type. Implementations
// live in internal/objects and register themselves via RegisterFactory
// during package init, keeping internal/protocol free of a dependency
// on the typed object surface.
type Factory func(parent Object, guid string, init wire.Value, conn *Connection) Object

var factories = map[string]Factory{}

// RegisterFactory associates a wire type name with its constructor.
// Some engine builds emit a "*Dispatcher"-suffixed alias for the same
// wrapper (e.g. "PageDispatcher"); register both names to the same
// constructor rather than special-casing the suffix at dispatch time.
func RegisterFactory(typ string, fn Factory) {
	factories[typ] = fn
}

func lookupFactory(typ string) (Factory, bool) {
	fn, ok := factories[typ]
	return fn, ok
}
