package transport

import (
	"bytes"
	"io"
	"testing"
	"time"
)

// newPipePair wires a Pipe's writer into another Pipe's reader, in both
// directions, so the two ends can talk to each other in-process.
func newPipePair(t *testing.T) (*Pipe, *Pipe) {
	t.Helper()
	ar, aw := io.Pipe()
	br, bw := io.Pipe()
	// a writes to aw, which b reads from ar; b writes to bw, which a reads from br.
	a := NewPipe(aw, br)
	b := NewPipe(bw, ar)
	return a, b
}

func recvWithTimeout(t *testing.T, ch <-chan []byte, d time.Duration) []byte {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(d):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func TestPipeRoundTrip(t *testing.T) {
	a, b := newPipePair(t)
	defer a.Close()
	defer b.Close()

	frames := [][]byte{
		[]byte(`{"id":1,"method":"ping"}`),
		[]byte(`{}`),
		[]byte(`{"guid":"x","method":"evt","params":{"a":1}}`),
	}

	for _, f := range frames {
		if err := a.Send(f); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	for i, want := range frames {
		got := recvWithTimeout(t, b.Recv(), 2*time.Second)
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d: got %q want %q", i, got, want)
		}
	}
}

func TestPipeCloseDrainsReader(t *testing.T) {
	a, b := newPipePair(t)
	defer b.Close()

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case <-b.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("peer never observed close")
	}

	if _, ok := <-b.Recv(); ok {
		t.Fatal("recv channel should be closed after peer closed")
	}
}

func TestPipeSendAfterCloseFails(t *testing.T) {
	a, b := newPipePair(t)
	defer b.Close()

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := a.Send([]byte(`{}`)); err == nil {
		t.Fatal("expected send after close to fail")
	}
}
