package objects

import (
	"context"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Dialog", newDialog)
}

// Dialog is a native browser dialog (alert/confirm/prompt/beforeunload)
// awaiting exactly one Accept or Dismiss.
type Dialog struct {
	channel

	kind    string
	message string
}

func newDialog(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	return &Dialog{
		channel: newChannel(guid, "Dialog", conn),
		kind:    init.Get("type").Str(),
		message: init.Get("message").Str(),
	}
}

func (d *Dialog) OnEvent(string, wire.Value) {}

// Kind returns the dialog kind ("alert", "confirm", "prompt", "beforeunload").
func (d *Dialog) Kind() string { return d.kind }

// Message returns the dialog's message text.
func (d *Dialog) Message() string { return d.message }

// Accept dismisses the dialog with OK, optionally supplying promptText.
func (d *Dialog) Accept(ctx context.Context, promptText string) error {
	m := map[string]interface{}{}
	if promptText != "" {
		m["promptText"] = promptText
	}
	_, err := d.send(ctx, "accept", params(m))
	return err
}

// Dismiss dismisses the dialog with Cancel.
func (d *Dialog) Dismiss(ctx context.Context) error {
	_, err := d.send(ctx, "dismiss", wire.Nil)
	return err
}
