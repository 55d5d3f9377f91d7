// Package session implements the reusable local browser-session
// broker: connect-over-CDP attach, launch-server reuse backed by an
// on-disk descriptor, and one-shot launch, each with its own shutdown
// rule.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hollowroad/pwdrive/internal/authstate"
	"github.com/hollowroad/pwdrive/internal/driver"
	"github.com/hollowroad/pwdrive/internal/objects"
	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/security"
	"github.com/hollowroad/pwdrive/internal/telemetry"
	"github.com/hollowroad/pwdrive/internal/transport"
	"github.com/hollowroad/pwdrive/pkg/version"
)

// bootstrapPollInterval is how often Broker polls a fresh connection's
// registry while waiting for the engine to replay its initial object
// tree.
const bootstrapPollInterval = 5 * time.Millisecond

// resource is one connection this broker opened, tracked so Close can
// tear every one of them down.
type resource struct {
	conn      *protocol.Connection
	sup       *driver.Supervisor
	keepAlive bool // true for launch-server mode: the engine process outlives this broker
}

// Broker hands out ready-to-use pages per BrokerConfig's decision
// tree and owns every connection/process it opens until Close.
type Broker struct {
	mu        sync.Mutex
	resources []*resource
	watcher   *descriptorWatcher
}

// NewBroker returns an idle Broker.
func NewBroker() *Broker {
	return &Broker{}
}

// Acquire implements the three-way decision tree: CDP attach takes
// priority over launch-server reuse, which takes priority over a
// plain one-shot launch.
func (b *Broker) Acquire(ctx context.Context, cfg BrokerConfig) (*Ready, error) {
	var mode string
	var acquire func(context.Context, BrokerConfig) (*Ready, error)
	switch {
	case cfg.CDPEndpoint != "":
		mode, acquire = "cdp", b.acquireCDP
	case cfg.LaunchServer:
		mode, acquire = "launch_server", b.acquireLaunchServer
	default:
		mode, acquire = "one_shot", b.acquireOneShot
	}

	ready, err := acquire(ctx, cfg)
	if err != nil {
		telemetry.RecordBrokerAcquisition(mode, "error")
		return nil, err
	}
	telemetry.RecordBrokerAcquisition(mode, "ok")
	return ready, nil
}

func (b *Broker) track(r *resource) {
	b.mu.Lock()
	b.resources = append(b.resources, r)
	b.mu.Unlock()
}

// Close tears every tracked resource down in parallel, bounded the
// same way the corpus bounds pool/session shutdown fan-out.
func (b *Broker) Close(ctx context.Context) error {
	if b.watcher != nil {
		b.watcher.Close()
	}

	b.mu.Lock()
	resources := b.resources
	b.resources = nil
	b.mu.Unlock()

	if len(resources) == 0 {
		return nil
	}

	eg := new(errgroup.Group)
	eg.SetLimit(4)
	for _, r := range resources {
		r := r
		eg.Go(func() error {
			if err := r.conn.Shutdown(); err != nil {
				log.Warn().Err(err).Msg("session: error closing connection during broker shutdown")
			}
			if r.sup != nil {
				if err := r.sup.Close(r.keepAlive); err != nil {
					log.Warn().Err(err).Msg("session: error closing driver process during broker shutdown")
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

// --- mode 1: connect-over-CDP ---

func (b *Broker) acquireCDP(ctx context.Context, cfg BrokerConfig) (*Ready, error) {
	if err := security.ValidateCDPEndpoint(cfg.CDPEndpoint); err != nil {
		return nil, fmt.Errorf("session: cdp endpoint rejected: %w", err)
	}

	sup, conn, pw, err := bootstrapLocalDriver(ctx, cfg.NodePath, cfg.DriverPath)
	if err != nil {
		return nil, err
	}
	b.track(&resource{conn: conn, sup: sup})

	bt, err := resolveBrowserType(pw, "chromium")
	if err != nil {
		return nil, err
	}

	browser, defaultCtx, err := bt.ConnectOverCDP(ctx, cfg.CDPEndpoint)
	if err != nil {
		return nil, err
	}

	bctx := defaultCtx
	if bctx == nil {
		state, loadErr := authstate.Load(cfg.AuthFile)
		if loadErr != nil {
			return nil, loadErr
		}
		bctx, err = browser.NewContext(ctx, objects.NewContextOptions{StorageState: state})
		if err != nil {
			return nil, fmt.Errorf("session: create context on CDP-attached browser: %w", err)
		}
	}

	page, err := bctx.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: open page on CDP-attached browser: %w", err)
	}

	return &Ready{
		Page:    page,
		Context: bctx,
		Browser: browser,
		closeFn: func(ctx context.Context) error {
			// A CDP-attached browser was never launched by this
			// process: close only the context we created.
			return bctx.Close(ctx)
		},
	}, nil
}

// --- mode 2: launch-server reuse ---

func (b *Broker) acquireLaunchServer(ctx context.Context, cfg BrokerConfig) (*Ready, error) {
	descPath, err := descriptorPath(cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.Refresh {
		if desc, ok := LoadDescriptor(descPath); ok {
			authFP, _ := authstate.Fingerprint(cfg.AuthFile)
			if invalidated(desc, cfg, authFP, version.DriverVersion) {
				log.Info().Msg("session: descriptor invalidated, relaunching")
				DeleteDescriptor(descPath)
			} else if !healthy(ctx, desc.WSEndpoint) {
				log.Info().Str("ws_endpoint", desc.WSEndpoint).Msg("session: descriptor unhealthy, relaunching")
				DeleteDescriptor(descPath)
			} else if ready, err := b.reconnect(ctx, desc, cfg); err == nil {
				telemetry.BrokerReuses.Inc()
				return ready, nil
			} else {
				log.Warn().Err(err).Msg("session: reconnect to descriptor failed, relaunching")
			}
		}
	}

	return b.launchFresh(ctx, cfg, descPath)
}

func (b *Broker) reconnect(ctx context.Context, desc Descriptor, cfg BrokerConfig) (*Ready, error) {
	tr, err := transport.DialWebSocket(ctx, desc.WSEndpoint)
	if err != nil {
		return nil, fmt.Errorf("session: dial launch-server endpoint: %w", err)
	}

	conn := protocol.NewConnection(tr)
	conn.Run()
	b.track(&resource{conn: conn, keepAlive: true})

	browser, err := waitForBrowser(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("session: wait for browser on reconnect: %w", err)
	}

	state, err := authstate.Load(cfg.AuthFile)
	if err != nil {
		return nil, err
	}
	bctx, err := browser.NewContext(ctx, objects.NewContextOptions{StorageState: state})
	if err != nil {
		return nil, fmt.Errorf("session: create context on reused server: %w", err)
	}
	page, err := bctx.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: open page on reused server: %w", err)
	}

	return &Ready{
		Page:    page,
		Context: bctx,
		Browser: browser,
		closeFn: func(ctx context.Context) error {
			// Close the context but keep the server running.
			return bctx.Close(ctx)
		},
	}, nil
}

func (b *Broker) launchFresh(ctx context.Context, cfg BrokerConfig, descPath string) (*Ready, error) {
	sup, conn, pw, err := bootstrapLocalDriver(ctx, cfg.NodePath, cfg.DriverPath)
	if err != nil {
		return nil, err
	}
	b.track(&resource{conn: conn, sup: sup, keepAlive: true})

	bt, err := resolveBrowserType(pw, cfg.BrowserKind)
	if err != nil {
		return nil, err
	}

	handle, err := bt.LaunchServer(ctx, objects.LaunchOptions{Headless: cfg.Headless})
	if err != nil {
		return nil, err
	}

	authFP, _ := authstate.Fingerprint(cfg.AuthFile)
	desc := Descriptor{
		WSEndpoint:      handle.WSEndpoint,
		PID:             sup.PID(),
		BrowserKind:     cfg.BrowserKind,
		Headless:        cfg.Headless,
		DriverVersion:   version.DriverVersion,
		StartedAt:       time.Now(),
		AuthFingerprint: authFP,
	}
	if err := SaveDescriptor(descPath, desc); err != nil {
		log.Warn().Err(err).Msg("session: failed to persist launch-server descriptor")
	} else {
		b.mu.Lock()
		if b.watcher != nil {
			b.watcher.Close()
		}
		b.watcher = watchDescriptor(descPath, func() {
			log.Debug().Str("path", descPath).Msg("session: descriptor changed on disk, next Acquire will re-validate")
		})
		b.mu.Unlock()
	}

	state, err := authstate.Load(cfg.AuthFile)
	if err != nil {
		return nil, err
	}
	bctx, err := handle.Browser.NewContext(ctx, objects.NewContextOptions{StorageState: state})
	if err != nil {
		return nil, fmt.Errorf("session: create context on launched server: %w", err)
	}
	page, err := bctx.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: open page on launched server: %w", err)
	}

	return &Ready{
		Page:    page,
		Context: bctx,
		Browser: handle.Browser,
		closeFn: func(ctx context.Context) error {
			return bctx.Close(ctx)
		},
	}, nil
}

// ShutdownServer closes a launch-server browser outright and deletes
// its descriptor, the "explicit shutdown" path distinct from a
// regular Ready.Close that just closes the context.
func ShutdownServer(ctx context.Context, browser *objects.Browser, cfg BrokerConfig) error {
	descPath, err := descriptorPath(cfg)
	if err != nil {
		return err
	}
	closeErr := browser.Close(ctx)
	if err := DeleteDescriptor(descPath); err != nil {
		log.Warn().Err(err).Msg("session: failed to delete descriptor during explicit shutdown")
	}
	return closeErr
}

// --- mode 3: one-shot launch ---

func (b *Broker) acquireOneShot(ctx context.Context, cfg BrokerConfig) (*Ready, error) {
	sup, conn, pw, err := bootstrapLocalDriver(ctx, cfg.NodePath, cfg.DriverPath)
	if err != nil {
		return nil, err
	}
	b.track(&resource{conn: conn, sup: sup})

	bt, err := resolveBrowserType(pw, cfg.BrowserKind)
	if err != nil {
		return nil, err
	}

	browser, err := bt.Launch(ctx, objects.LaunchOptions{Headless: cfg.Headless})
	if err != nil {
		return nil, err
	}

	state, err := authstate.Load(cfg.AuthFile)
	if err != nil {
		return nil, err
	}
	bctx, err := browser.NewContext(ctx, objects.NewContextOptions{StorageState: state})
	if err != nil {
		return nil, fmt.Errorf("session: create context on one-shot browser: %w", err)
	}
	page, err := bctx.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: open page on one-shot browser: %w", err)
	}

	return &Ready{
		Page:    page,
		Context: bctx,
		Browser: browser,
		closeFn: func(ctx context.Context) error {
			return browser.Close(ctx)
		},
	}, nil
}

// --- bootstrap helpers shared by the launch-backed modes ---

func bootstrapLocalDriver(ctx context.Context, nodePath, driverPath string) (*driver.Supervisor, *protocol.Connection, *objects.Playwright, error) {
	resolvedNode, resolvedDriver, err := driver.Locate(driver.Override{NodePath: nodePath, DriverPath: driverPath})
	if err != nil {
		return nil, nil, nil, err
	}

	sup, err := driver.Spawn(ctx, resolvedNode, resolvedDriver)
	if err != nil {
		return nil, nil, nil, err
	}

	stdin, stdout := sup.Stdio()
	tr := transport.NewPipe(stdin, stdout)
	conn := protocol.NewConnection(tr)
	conn.Run()

	pw, err := waitForPlaywright(ctx, conn)
	if err != nil {
		conn.Shutdown()
		sup.Close(false)
		return nil, nil, nil, err
	}
	return sup, conn, pw, nil
}

func waitForPlaywright(ctx context.Context, conn *protocol.Connection) (*objects.Playwright, error) {
	ticker := time.NewTicker(bootstrapPollInterval)
	defer ticker.Stop()
	for {
		if obj, ok := conn.Registry().FindByType("Playwright"); ok {
			if pw, ok := obj.(*objects.Playwright); ok {
				return pw, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("session: engine never reported its Playwright root: %w", ctx.Err())
		case <-conn.Done():
			return nil, fmt.Errorf("session: connection closed before Playwright root appeared")
		case <-ticker.C:
		}
	}
}

func waitForBrowser(ctx context.Context, conn *protocol.Connection) (*objects.Browser, error) {
	ticker := time.NewTicker(bootstrapPollInterval)
	defer ticker.Stop()
	for {
		if obj, ok := conn.Registry().FindByType("Browser"); ok {
			if browser, ok := obj.(*objects.Browser); ok {
				return browser, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("session: server never replayed a Browser object: %w", ctx.Err())
		case <-conn.Done():
			return nil, fmt.Errorf("session: connection closed before Browser object appeared")
		case <-ticker.C:
		}
	}
}

func resolveBrowserType(pw *objects.Playwright, kind string) (*objects.BrowserType, error) {
	var bt *objects.BrowserType
	switch kind {
	case "chromium":
		bt = pw.Chromium()
	case "firefox":
		bt = pw.Firefox()
	case "webkit":
		bt = pw.Webkit()
	default:
		return nil, fmt.Errorf("session: unknown browser kind %q", kind)
	}
	if bt == nil {
		return nil, fmt.Errorf("session: browser type %q not available from engine", kind)
	}
	return bt, nil
}
