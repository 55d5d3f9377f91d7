// Package protocol implements the request/response connection to the
// engine, its reader-goroutine dispatch loop, and the registry of
// live remote objects that frame handling mutates.
package protocol

import "github.com/hollowroad/pwdrive/internal/wire"

// Object is the minimal contract every remote-object wrapper in
// internal/objects satisfies so the registry and reader loop can
// manage it generically.
type Object interface {
	// GUID returns this object's engine-assigned identifier.
	GUID() string

	// Type returns the engine's wire type name (e.g. "Page", "Frame").
	Type() string

	// OnEvent is invoked by the object's event worker (never directly
	// by the reader goroutine) for every event frame addressed to
	// this GUID.
	OnEvent(method string, params wire.Value)
}

// UnknownObject is registered for any wire type the factory has no
// constructor for. It is still tracked as a parent for descendants
// and still disposable — registry invariants hold for wire types this
// client doesn't otherwise model.
type UnknownObject struct {
	guid string
	typ  string
}

// NewUnknownObject constructs a placeholder wrapper for an
// unrecognized wire type.
func NewUnknownObject(guid, typ string) *UnknownObject {
	return &UnknownObject{guid: guid, typ: typ}
}

func (u *UnknownObject) GUID() string { return u.guid }
func (u *UnknownObject) Type() string { return u.typ }
func (u *UnknownObject) OnEvent(string, wire.Value) {}
