// Package transport provides the byte-level duplex channel to the
// browser-automation engine. Two variants are implemented: a
// length-prefixed pipe transport for a local child process, and a
// text-frame WebSocket transport for attaching to a running engine.
package transport

// Transport is the duplex contract shared by both variants. Frames are
// opaque JSON documents; the transport itself never inspects them.
type Transport interface {
	// Send writes one frame. Safe for concurrent callers; writes from
	// distinct Send calls never interleave.
	Send(frame []byte) error

	// Recv returns the channel of inbound frames. It is closed exactly
	// once, when the transport reaches the closed state.
	Recv() <-chan []byte

	// Done is closed when the transport has permanently closed.
	Done() <-chan struct{}

	// Err returns the terminal error once Done is closed (nil for a clean close).
	Err() error

	// Close closes the transport, releasing any underlying resources.
	Close() error
}
