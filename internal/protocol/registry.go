package protocol

import (
	"fmt"
	"sync"

	"github.com/hollowroad/pwdrive/internal/telemetry"
	"github.com/hollowroad/pwdrive/internal/wire"
	"github.com/rs/zerolog/log"
)

// Entry is the registry's bookkeeping record for one GUID: the typed
// Object it wraps, plus the parent/children edges needed to walk a
// subtree on dispose or adopt. Distinct from the Object itself so the
// registry can manage tree shape without the typed wrapper knowing
// about it.
type Entry struct {
	Object     Object
	ParentGUID string
	Children   map[string]struct{}
}

// Registry tracks every live remote object by GUID, mirroring the
// engine's own object tree. GUIDs are only unique for the lifetime of
// the engine connection that issued them, so everything keyed by GUID
// — including event-worker state — lives on the Registry instance, not
// in package-global state; a GUID handed out by a different connection
// (or a later reconnect to the same server) must never collide with
// this one's bookkeeping.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]*Entry
	conn    *Connection

	workersMu sync.Mutex
	workers   map[string]*eventWorker
}

// NewRegistry constructs an empty registry bound to conn, passed to
// every factory so objects can issue their own RPCs.
func NewRegistry(conn *Connection) *Registry {
	return &Registry{
		objects: make(map[string]*Entry),
		conn:    conn,
		workers: make(map[string]*eventWorker),
	}
}

// Lookup returns the live object for guid, if any.
func (r *Registry) Lookup(guid string) (Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.objects[guid]
	if !ok {
		return nil, false
	}
	return e.Object, true
}

// Create constructs and registers a new object for an inbound
// __create__ frame. An unrecognized wire type still gets a tracked
// UnknownObject so descendant create/dispose/adopt frames resolve
// correctly against it.
func (r *Registry) Create(parentGUID, typ, guid string, initializer wire.Value) (Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.objects[guid]; exists {
		return nil, fmt.Errorf("%w: %s", wire.ErrDuplicateGUID, guid)
	}

	var parent Object
	if parentGUID != "" {
		if pe, ok := r.objects[parentGUID]; ok {
			parent = pe.Object
		}
	}

	var obj Object
	if fn, ok := lookupFactory(typ); ok {
		obj = fn(parent, guid, initializer, r.conn)
	} else {
		log.Warn().Str("type", typ).Str("guid", guid).Msg("registry: no factory for wire type, using placeholder")
		obj = NewUnknownObject(guid, typ)
	}

	r.objects[guid] = &Entry{
		Object:     obj,
		ParentGUID: parentGUID,
		Children:   make(map[string]struct{}),
	}
	if parentGUID != "" {
		if pe, ok := r.objects[parentGUID]; ok {
			pe.Children[guid] = struct{}{}
		}
	}

	telemetry.RegistrySize.Set(float64(len(r.objects)))
	return obj, nil
}

// Dispose removes guid and every descendant, depth-first, for an
// inbound __dispose__ frame.
func (r *Registry) Dispose(guid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposeLocked(guid)
}

func (r *Registry) disposeLocked(guid string) {
	e, ok := r.objects[guid]
	if !ok {
		return
	}

	children := make([]string, 0, len(e.Children))
	for child := range e.Children {
		children = append(children, child)
	}
	for _, child := range children {
		r.disposeLocked(child)
	}

	if e.ParentGUID != "" {
		if pe, ok := r.objects[e.ParentGUID]; ok {
			delete(pe.Children, guid)
		}
	}

	r.stopEventWorker(guid)
	delete(r.objects, guid)
	telemetry.RegistrySize.Set(float64(len(r.objects)))
}

// DisposeAll stops every event worker and clears every registered
// object. Called when a Connection shuts down so a later connection
// (e.g. a session-broker reconnect handed the same engine-assigned
// GUIDs) never finds this registry's stale workers still routing
// events for them.
func (r *Registry) DisposeAll() {
	r.mu.Lock()
	guids := make([]string, 0, len(r.objects))
	for guid := range r.objects {
		guids = append(guids, guid)
	}
	r.objects = make(map[string]*Entry)
	r.mu.Unlock()

	for _, guid := range guids {
		r.stopEventWorker(guid)
	}
}

// Adopt reparents guid under newParentGUID for an inbound __adopt__
// frame. Re-parenting across unrelated root subtrees is accepted
// without validation: the engine is the sole source of adopt frames.
func (r *Registry) Adopt(guid, newParentGUID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.objects[guid]
	if !ok {
		log.Warn().Str("guid", guid).Msg("registry: adopt for unknown guid")
		return
	}

	if e.ParentGUID != "" {
		if oldParent, ok := r.objects[e.ParentGUID]; ok {
			delete(oldParent.Children, guid)
		}
	}

	e.ParentGUID = newParentGUID
	if newParent, ok := r.objects[newParentGUID]; ok {
		newParent.Children[guid] = struct{}{}
	}
}

// FindByType returns the first registered object whose Type() matches
// typ. Used during connection bootstrap, where the root object's GUID
// is engine-assigned and not known in advance.
func (r *Registry) FindByType(typ string) (Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.objects {
		if e.Object.Type() == typ {
			return e.Object, true
		}
	}
	return nil, false
}

// Len reports how many objects are currently registered, exposed for
// telemetry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}
