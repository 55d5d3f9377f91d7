package transport

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket is the text-frame variant used to attach to a running
// engine (launch-server reuse and its health check). One frame per text
// message; binary frames are rejected as a framing error.
type WebSocket struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	recv chan []byte
	done chan struct{}

	closeOnce sync.Once
	err       error
	errMu     sync.Mutex
}

// DialWebSocket connects to the given ws:// or wss:// endpoint.
func DialWebSocket(ctx context.Context, endpoint string) (*WebSocket, error) {
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return NewWebSocket(conn), nil
}

// NewWebSocket wraps an already-dialed connection and starts the reader loop.
func NewWebSocket(conn *websocket.Conn) *WebSocket {
	ws := &WebSocket{
		conn: conn,
		recv: make(chan []byte, 64),
		done: make(chan struct{}),
	}
	go ws.readLoop()
	return ws
}

func (ws *WebSocket) Send(frame []byte) error {
	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()

	select {
	case <-ws.done:
		return ErrClosed(ws.Err())
	default:
	}

	if err := ws.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		ws.fail(err)
		return err
	}
	return nil
}

func (ws *WebSocket) Recv() <-chan []byte   { return ws.recv }
func (ws *WebSocket) Done() <-chan struct{} { return ws.done }

func (ws *WebSocket) Err() error {
	ws.errMu.Lock()
	defer ws.errMu.Unlock()
	return ws.err
}

func (ws *WebSocket) Close() error {
	ws.fail(nil)
	return ws.conn.Close()
}

func (ws *WebSocket) readLoop() {
	defer close(ws.recv)

	for {
		kind, data, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.fail(nil)
			} else {
				log.Debug().Err(err).Msg("websocket transport: abnormal close")
				ws.fail(err)
			}
			return
		}

		if kind != websocket.TextMessage {
			log.Debug().Int("kind", kind).Msg("websocket transport: rejecting non-text frame")
			ws.fail(ErrFramingWrap(errBinaryFrame))
			return
		}

		select {
		case ws.recv <- data:
		case <-ws.done:
			return
		}
	}
}

func (ws *WebSocket) fail(err error) {
	ws.closeOnce.Do(func() {
		ws.errMu.Lock()
		ws.err = err
		ws.errMu.Unlock()
		close(ws.done)
	})
}

var errBinaryFrame = errBinaryFrameType{}

type errBinaryFrameType struct{}

func (errBinaryFrameType) Error() string { return "binary frame not permitted on this transport" }
