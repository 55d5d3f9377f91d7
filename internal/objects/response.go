package objects

import (
	"context"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Response", newResponse)
}

// Response is the result of a navigation or an intercepted request.
type Response struct {
	channel

	url    string
	status int
}

func newResponse(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	return &Response{
		channel: newChannel(guid, "Response", conn),
		url:     init.Get("url").Str(),
		status:  init.Get("status").Int(),
	}
}

func (r *Response) OnEvent(string, wire.Value) {}

// URL returns the response's URL.
func (r *Response) URL() string { return r.url }

// Status returns the cached HTTP status code.
func (r *Response) Status() int { return r.status }

// Body fetches the response's (possibly buffered) body from the engine.
func (r *Response) Body(ctx context.Context) ([]byte, error) {
	result, err := r.send(ctx, "body", wire.Nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Binary []byte `json:"binary"`
	}
	if err := result.Decode(&out); err != nil {
		return nil, err
	}
	return out.Binary, nil
}
