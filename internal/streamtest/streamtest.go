// Package streamtest provides transports with controlled behaviour for
// exercising framing code: readers that fragment their data, writers that
// record or fail their writes, and canned message sets.
package streamtest

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"sync"
)

// ErrInjected is the default error returned by FailingWriter.
var ErrInjected = errors.New("streamtest: injected write failure")

// Zen holds the messages of the worked example used across the tests.
var Zen = []string{
	"Beautiful is better than ugly.",
	"Explicit is better than implicit.",
	"Simple is better than complex.",
}

// ChunkReader returns at most Size bytes from R on each Read, whatever the
// size of the caller's buffer.
type ChunkReader struct {
	R    io.Reader
	Size int
}

func (c *ChunkReader) Read(p []byte) (int, error) {
	if c.Size > 0 && len(p) > c.Size {
		p = p[:c.Size]
	}
	return c.R.Read(p)
}

// Chunked wraps data in a ChunkReader delivering size bytes at a time.
// A size of zero or less delivers everything the caller asks for.
func Chunked(data []byte, size int) io.Reader {
	return &ChunkReader{R: bytes.NewReader(data), Size: size}
}

// RecordingWriter keeps a copy of every Write call. It is safe for
// concurrent use.
type RecordingWriter struct {
	mu     sync.Mutex
	writes [][]byte
}

func (w *RecordingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, bytes.Clone(p))
	return len(p), nil
}

// Calls returns the number of Write calls seen.
func (w *RecordingWriter) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.writes)
}

// Writes returns a copy of each recorded write.
func (w *RecordingWriter) Writes() [][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]byte, len(w.writes))
	copy(out, w.writes)
	return out
}

// Bytes returns all recorded writes concatenated.
func (w *RecordingWriter) Bytes() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return bytes.Join(w.writes, nil)
}

// FailingWriter accepts Limit bytes into Buf, then fails every write with
// Err (ErrInjected if nil). A write that crosses the limit is cut short.
type FailingWriter struct {
	Limit int
	Err   error
	Buf   bytes.Buffer
}

func (w *FailingWriter) Write(p []byte) (int, error) {
	room := w.Limit - w.Buf.Len()
	if room >= len(p) {
		return w.Buf.Write(p)
	}
	if room > 0 {
		w.Buf.Write(p[:room])
	} else {
		room = 0
	}
	if w.Err != nil {
		return room, w.Err
	}
	return room, ErrInjected
}

// RandomMessages returns n non-empty messages of up to maxLen random bytes.
func RandomMessages(rng *rand.Rand, n, maxLen int) [][]byte {
	msgs := make([][]byte, n)
	for i := range msgs {
		msg := make([]byte, 1+rng.Intn(maxLen))
		rng.Read(msg)
		msgs[i] = msg
	}
	return msgs
}

// Strings converts messages to strings for readable comparisons.
func Strings(msgs [][]byte) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m)
	}
	return out
}

// Bytes converts strings to messages.
func Bytes(msgs []string) [][]byte {
	out := make([][]byte, len(msgs))
	for i, m := range msgs {
		out[i] = []byte(m)
	}
	return out
}
