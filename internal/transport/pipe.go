package transport

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// Pipe is the length-prefixed variant used over a child process's
// stdin/stdout. Each frame is a 4-byte little-endian length followed by
// exactly that many bytes of JSON.
type Pipe struct {
	w io.WriteCloser
	r io.ReadCloser

	writeMu sync.Mutex

	recv chan []byte
	done chan struct{}

	closeOnce sync.Once
	err       error
	errMu     sync.Mutex
}

// NewPipe wraps an already-open writer/reader pair (typically a child
// process's Stdin/Stdout) and starts the background reader loop.
func NewPipe(w io.WriteCloser, r io.ReadCloser) *Pipe {
	p := &Pipe{
		w:    w,
		r:    r,
		recv: make(chan []byte, 64),
		done: make(chan struct{}),
	}
	go p.readLoop()
	return p
}

func (p *Pipe) Send(frame []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	select {
	case <-p.done:
		return ErrClosed(p.Err())
	default:
	}

	header := make([]byte, 4)
	binary.LittleEndian.PutUint32(header, uint32(len(frame)))
	// Header and body must land in the transport as one contiguous
	// write; concatenate rather than issuing two Write calls so a
	// concurrent Send can never interleave its header between them.
	buf := append(header, frame...)
	if _, err := p.w.Write(buf); err != nil {
		p.fail(err)
		return err
	}
	return nil
}

func (p *Pipe) Recv() <-chan []byte  { return p.recv }
func (p *Pipe) Done() <-chan struct{} { return p.done }

func (p *Pipe) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

func (p *Pipe) Close() error {
	p.fail(nil)
	_ = p.w.Close()
	return p.r.Close()
}

func (p *Pipe) readLoop() {
	defer close(p.recv)

	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(p.r, header); err != nil {
			if err == io.EOF {
				p.fail(nil)
			} else {
				log.Debug().Err(err).Msg("pipe transport: framing error reading length header")
				p.fail(ErrFramingWrap(err))
			}
			return
		}

		n := binary.LittleEndian.Uint32(header)
		body := make([]byte, n)
		if _, err := io.ReadFull(p.r, body); err != nil {
			log.Debug().Err(err).Msg("pipe transport: framing error reading frame body")
			p.fail(ErrFramingWrap(err))
			return
		}

		select {
		case p.recv <- body:
		case <-p.done:
			return
		}
	}
}

func (p *Pipe) fail(err error) {
	p.closeOnce.Do(func() {
		p.errMu.Lock()
		p.err = err
		p.errMu.Unlock()
		close(p.done)
	})
}
