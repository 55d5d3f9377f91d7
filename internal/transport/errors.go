package transport

import (
	"fmt"

	"github.com/hollowroad/pwdrive/internal/wire"
)

// ErrClosed wraps the transport's terminal error (if any) as a
// transport-closed condition, for errors.Is(err, wire.ErrTransportClosed).
func ErrClosed(cause error) error {
	if cause == nil {
		return wire.ErrTransportClosed
	}
	return fmt.Errorf("%w: %v", wire.ErrTransportClosed, cause)
}

// ErrFramingWrap wraps an I/O error as a framing error, for
// errors.Is(err, wire.ErrFraming).
func ErrFramingWrap(cause error) error {
	return fmt.Errorf("%w: %v", wire.ErrFraming, cause)
}
