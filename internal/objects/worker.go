package objects

import (
	"context"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Worker", newWorker)
}

// Worker is a page-owned dedicated or service worker.
type Worker struct {
	channel
	url string
}

func newWorker(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	return &Worker{
		channel: newChannel(guid, "Worker", conn),
		url:     init.Get("url").Str(),
	}
}

func (w *Worker) OnEvent(string, wire.Value) {}

// URL returns the worker's script URL.
func (w *Worker) URL() string { return w.url }

// Evaluate runs a JS expression in the worker's context.
func (w *Worker) Evaluate(ctx context.Context, expression string) (wire.Value, error) {
	return w.send(ctx, "evaluateExpression", params(map[string]interface{}{"expression": expression}))
}
