package streamconn

import "io"

// pipeEnd is one side of an in-memory duplex stream built from two
// synchronous io.Pipes.
type pipeEnd struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeEnd) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeEnd) Write(b []byte) (int, error) { return p.w.Write(b) }

// CloseWrite gives the peer's reader io.EOF.
func (p *pipeEnd) CloseWrite() error { return p.w.Close() }

// CloseRead makes the peer's writes fail with io.ErrClosedPipe.
func (p *pipeEnd) CloseRead() error { return p.r.Close() }

func (p *pipeEnd) Close() error {
	werr := p.w.Close()
	rerr := p.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// Pipe returns two connected in-memory Conns with both directions open.
// Bytes written to one are read from the other. Writes block until the peer
// reads them, so the two ends must be driven from different goroutines.
func Pipe() (a, b *Conn) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	a = New(&pipeEnd{r: ar, w: aw}, Both)
	b = New(&pipeEnd{r: br, w: bw}, Both)
	return a, b
}
