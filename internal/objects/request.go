package objects

import (
	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Request", newRequest)
}

// Request is a cached snapshot of an outbound network request; fields
// are populated once from its initializer and never mutate afterward.
type Request struct {
	channel

	url    string
	method string
}

func newRequest(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	return &Request{
		channel: newChannel(guid, "Request", conn),
		url:     init.Get("url").Str(),
		method:  init.Get("method").Str(),
	}
}

func (r *Request) OnEvent(string, wire.Value) {}

// URL returns the requested URL.
func (r *Request) URL() string { return r.url }

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }
