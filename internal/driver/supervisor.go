package driver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// killGrace is how long Close(false) waits for the engine process to
// exit on its own, after closing stdin, before sending Kill.
const killGrace = 3 * time.Second

// Supervisor owns one spawned engine process and its stdio pipes.
type Supervisor struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser

	closeOnce sync.Once
}

// Spawn starts `<node> <driverPath> run-driver`, wiring stdin/stdout
// as pipes for the transport and forwarding stderr line-by-line into
// the logger at Debug level.
func Spawn(ctx context.Context, nodePath, driverPath string) (*Supervisor, error) {
	cmd := exec.CommandContext(ctx, nodePath, driverPath, "run-driver")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("driver: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("driver: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("driver: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("driver: start: %w", err)
	}

	go forwardStderr(stderr)

	log.Info().
		Str("node", nodePath).
		Str("driver", driverPath).
		Int("pid", cmd.Process.Pid).
		Msg("engine driver process started")

	return &Supervisor{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}

func forwardStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		log.Debug().Str("source", "engine-stderr").Msg(scanner.Text())
	}
}

// Stdio returns the pipes a transport.Pipe should wrap.
func (s *Supervisor) Stdio() (stdin io.WriteCloser, stdout io.ReadCloser) {
	return s.stdin, s.stdout
}

// PID returns the engine process's PID, for recording in a launch
// descriptor.
func (s *Supervisor) PID() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Close shuts the engine process down. If keepAlive is true (the
// launch-server case where another process or a later invocation of
// this one will reattach), only local handles are released and the
// process is left running. Otherwise stdin is closed first — on
// Windows, closing stdin is the only reliable signal short of
// TerminateProcess, and most engines treat EOF on stdin as a request
// to exit cleanly — and the process is killed if it hasn't exited
// within killGrace.
func (s *Supervisor) Close(keepAlive bool) error {
	var err error
	s.closeOnce.Do(func() {
		if keepAlive {
			_ = s.stdout.Close()
			return
		}

		_ = s.stdin.Close()

		done := make(chan error, 1)
		go func() { done <- s.cmd.Wait() }()

		select {
		case waitErr := <-done:
			if waitErr != nil {
				log.Debug().Err(waitErr).Msg("engine driver process exited")
			}
		case <-time.After(killGrace):
			log.Warn().Int("pid", s.PID()).Msg("engine driver process did not exit; killing")
			if s.cmd.Process != nil {
				_ = s.cmd.Process.Kill()
			}
			<-done
		}

		_ = s.stdout.Close()
	})
	return err
}
