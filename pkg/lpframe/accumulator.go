package lpframe

import "io"

// maxConsecutiveEmptyReads bounds how many (0, nil) reads ReadExact accepts
// in a row before giving up, matching bufio.
const maxConsecutiveEmptyReads = 100

// Accumulator collects bytes from a stream until a requested count is
// available. The zero value allocates a fresh buffer for every read.
type Accumulator struct {
	// Reuse keeps one buffer across calls, growing it only when a read needs
	// more room. Returned slices are then valid until the next call.
	Reuse bool

	buf []byte
}

// ReadExact reads exactly n bytes from r. See Accumulator.ReadExact.
func ReadExact(r io.Reader, n int) ([]byte, error) {
	var a Accumulator
	return a.ReadExact(r, n)
}

// ReadExact issues reads on r until exactly n bytes have been collected and
// returns them in arrival order. It never reads more than n bytes.
//
// A request for zero bytes returns an empty slice without touching r. If
// the stream ends or fails first, the error is a *TruncatedStreamError
// carrying how many bytes did arrive.
func (a *Accumulator) ReadExact(r io.Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if n == 0 {
		return []byte{}, nil
	}
	dst := a.grab(n)
	if err := fill(r, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// grab returns a slice of length n to read into.
func (a *Accumulator) grab(n int) []byte {
	if !a.Reuse {
		return make([]byte, n)
	}
	if cap(a.buf) < n {
		a.buf = make([]byte, n)
	}
	return a.buf[:n:n]
}

// fill reads into all of dst, advancing a cursor over partial reads.
func fill(r io.Reader, dst []byte) error {
	cursor := 0
	empty := 0
	for cursor < len(dst) {
		n, err := r.Read(dst[cursor:])
		cursor += n
		if cursor == len(dst) {
			// A reader may return the final bytes together with io.EOF.
			return nil
		}
		if err != nil {
			return &TruncatedStreamError{Received: cursor, Expected: len(dst), Err: err}
		}
		if n > 0 {
			empty = 0
			continue
		}
		if empty++; empty >= maxConsecutiveEmptyReads {
			return &TruncatedStreamError{Received: cursor, Expected: len(dst), Err: io.ErrNoProgress}
		}
	}
	return nil
}
