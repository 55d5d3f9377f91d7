package wire

import "errors"

// Sentinel errors for conditions checked with errors.Is across the
// transport, connection, and object layers.
var (
	ErrTransportClosed    = errors.New("wire: transport closed")
	ErrFraming            = errors.New("wire: framing error")
	ErrTimeout            = errors.New("wire: request timed out")
	ErrRouteAlreadyHandled = errors.New("wire: route already handled")
	ErrResponseMissing    = errors.New("wire: response object missing from registry")
	ErrUnknownGUID        = errors.New("wire: unknown guid")
	ErrDuplicateGUID      = errors.New("wire: guid already registered")
)

// ProtocolError carries an engine-reported {error} response verbatim.
type ProtocolError struct {
	Name    string
	Message string
	Stack   string
}

func (e *ProtocolError) Error() string {
	if e.Name != "" {
		return e.Name + ": " + e.Message
	}
	return e.Message
}

// NavigationError wraps a failed Page.Goto.
type NavigationError struct {
	URL   string
	Cause error
}

func (e *NavigationError) Error() string {
	return "navigation to " + e.URL + " failed: " + e.Cause.Error()
}

func (e *NavigationError) Unwrap() error { return e.Cause }

// BrowserLaunchError wraps a failed BrowserType.Launch/LaunchServer/ConnectOverCDP.
type BrowserLaunchError struct {
	Op    string
	Cause error
}

func (e *BrowserLaunchError) Error() string {
	return "browser " + e.Op + " failed: " + e.Cause.Error()
}

func (e *BrowserLaunchError) Unwrap() error { return e.Cause }
