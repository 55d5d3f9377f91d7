package session

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// watcherDebounceDelay coalesces rapid successive writes to a
// descriptor file (e.g. another process relaunching the server) into
// a single invalidation callback.
const watcherDebounceDelay = 100 * time.Millisecond

// descriptorWatcher watches a launch-server descriptor file and calls
// onChange, debounced, whenever it is written, replaced, or removed
// out from under this broker.
type descriptorWatcher struct {
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// watchDescriptor starts watching path, invoking onChange on its own
// goroutine for every debounced batch of filesystem events. Returns
// nil with a logged warning if the watcher can't be started: descriptor
// reuse still works via health checks on each Acquire, just without
// the fast path of an immediate external-change notification.
func watchDescriptor(path string, onChange func()) *descriptorWatcher {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("session: failed to create descriptor watcher")
		return nil
	}
	if err := fsw.Add(path); err != nil {
		// The file may not exist yet; no watcher is installed, and a
		// later create is not observed.
		fsw.Close()
		log.Debug().Err(err).Str("path", path).Msg("session: descriptor not present yet, skipping watch")
		return nil
	}

	dw := &descriptorWatcher{
		watcher: fsw,
		stopCh:  make(chan struct{}),
	}
	dw.wg.Add(1)
	go dw.run(onChange)
	return dw
}

func (dw *descriptorWatcher) run(onChange func()) {
	defer dw.wg.Done()

	var debounceTimer *time.Timer
	var debouncing bool

	for {
		select {
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debouncing {
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
				debounceTimer.Reset(watcherDebounceDelay)
			} else {
				debouncing = true
				debounceTimer = time.AfterFunc(watcherDebounceDelay, func() {
					onChange()
					debouncing = false
				})
			}

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("session: descriptor watcher error")

		case <-dw.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

// Close stops the watcher goroutine and releases the underlying
// fsnotify handle. Safe to call on a nil *descriptorWatcher.
func (dw *descriptorWatcher) Close() {
	if dw == nil {
		return
	}
	close(dw.stopCh)
	dw.wg.Wait()
	dw.watcher.Close()
}
