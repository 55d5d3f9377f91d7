package protocol

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/hollowroad/pwdrive/internal/wire"
	"github.com/rs/zerolog/log"
)

// eventQueueDepth bounds each object's pending-event channel. A full
// queue drops the oldest event rather than blocking the reader
// goroutine that feeds it.
const eventQueueDepth = 32

type event struct {
	method string
	params wire.Value
}

// eventWorker drains one object's event queue on its own goroutine,
// started lazily on first event and stopped on Dispose.
type eventWorker struct {
	obj   Object
	queue chan event
	done  chan struct{}
}

// dispatchEvent is called by the reader goroutine for every inbound
// event frame. It never blocks: a missing object is a no-op, and a
// saturated queue drops the oldest pending event and logs a warning.
// Worker state lives on reg, not in a package-global map: GUIDs are
// only unique for one connection's lifetime, so a worker keyed
// globally by bare GUID would keep routing events to a stale object
// from an earlier, already-shutdown connection once a later
// connection (e.g. a session-broker reconnect) registers a new object
// under the same engine-assigned GUID.
func dispatchEvent(reg *Registry, guid, method string, params wire.Value) {
	obj, ok := reg.Lookup(guid)
	if !ok {
		return
	}

	reg.workersMu.Lock()
	w, ok := reg.workers[guid]
	if !ok {
		w = &eventWorker{
			obj:   obj,
			queue: make(chan event, eventQueueDepth),
			done:  make(chan struct{}),
		}
		reg.workers[guid] = w
		go w.run()
	}
	reg.workersMu.Unlock()

	select {
	case w.queue <- event{method: method, params: params}:
	default:
		select {
		case <-w.queue:
		default:
		}
		select {
		case w.queue <- event{method: method, params: params}:
		default:
		}
		log.Warn().Str("guid", guid).Str("method", method).Msg("protocol: event queue saturated, dropped oldest event")
	}
}

func (w *eventWorker) run() {
	for {
		select {
		case ev := <-w.queue:
			select {
			case <-w.done:
				return
			default:
			}
			w.deliver(ev)
		case <-w.done:
			return
		}
	}
}

// deliver recovers panics from user-supplied event callbacks so a
// misbehaving handler cannot kill the worker (or, transitively, the
// reader goroutine that feeds it) — adapted from the recover/sanitize
// pattern used for HTTP handler panics in the corpus, repurposed here
// for event-callback panics.
func (w *eventWorker) deliver(ev event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("guid", w.obj.GUID()).
				Str("method", ev.method).
				Str("panic", fmt.Sprint(r)).
				Str("stack", sanitizeStackTrace(debug.Stack())).
				Msg("protocol: event handler panicked, recovered")
		}
	}()
	w.obj.OnEvent(ev.method, ev.params)
}

// sanitizeStackTrace keeps the first few frames of a panic stack so
// logs stay readable without dumping the whole goroutine dump.
func sanitizeStackTrace(stack []byte) string {
	lines := strings.Split(string(stack), "\n")
	const maxLines = 8
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, " | ")
}

func (r *Registry) stopEventWorker(guid string) {
	r.workersMu.Lock()
	defer r.workersMu.Unlock()
	if w, ok := r.workers[guid]; ok {
		close(w.done)
		delete(r.workers, guid)
	}
}
