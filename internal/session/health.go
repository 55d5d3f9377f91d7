package session

import (
	"context"
	"time"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/transport"
	"github.com/hollowroad/pwdrive/internal/wire"
)

// healthCheckTimeout bounds the whole dial-plus-RPC health probe.
const healthCheckTimeout = 2 * time.Second

// healthy dials wsEndpoint, waits for the engine to announce a Browser
// object, and issues a cheap "version" RPC against it. Any dial,
// timeout, or RPC error is treated as unhealthy: the caller deletes
// the descriptor and falls through to a fresh launch rather than
// trying to distinguish failure modes.
func healthy(ctx context.Context, wsEndpoint string) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	tr, err := transport.DialWebSocket(ctx, wsEndpoint)
	if err != nil {
		return false
	}
	defer tr.Close()

	conn := protocol.NewConnection(tr)
	conn.Run()
	defer conn.Shutdown()

	browser, err := waitForBrowser(ctx, conn)
	if err != nil {
		return false
	}

	_, err = conn.SendRequest(ctx, browser.GUID(), "version", wire.Nil)
	return err == nil
}
