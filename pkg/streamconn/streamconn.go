// Package streamconn wraps a byte-stream connection with explicit read and
// write capabilities.
//
// Sockets are bidirectional by default, and a half-close only shows up as
// an error or EOF some time later. A Conn makes the open directions part of
// its state: each side can be shut independently, and reading or writing a
// shut direction fails immediately with ErrReadDisabled or ErrWriteDisabled.
package streamconn

import (
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"
)

var (
	// ErrReadDisabled is returned by Read once the read side is closed.
	ErrReadDisabled = errors.New("streamconn: read side closed")

	// ErrWriteDisabled is returned by Write once the write side is closed.
	ErrWriteDisabled = errors.New("streamconn: write side closed")

	// ErrNoDeadline is returned when the stream does not support deadlines.
	ErrNoDeadline = errors.New("streamconn: deadlines not supported")
)

// Direction is a set of stream directions.
type Direction uint8

const (
	Read Direction = 1 << iota
	Write

	Both = Read | Write
)

type closeWriter interface {
	CloseWrite() error
}

type closeReader interface {
	CloseRead() error
}

type deadliner interface {
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

// Conn is a connection handle with per-direction capability flags. Read and
// Write may be used from one goroutine each; the flags themselves are safe
// for concurrent use.
type Conn struct {
	s        io.ReadWriteCloser
	canRead  atomic.Bool
	canWrite atomic.Bool
}

// New wraps s, enabling the directions in dir.
func New(s io.ReadWriteCloser, dir Direction) *Conn {
	c := &Conn{s: s}
	c.canRead.Store(dir&Read != 0)
	c.canWrite.Store(dir&Write != 0)
	return c
}

// CanRead reports whether the read side is open.
func (c *Conn) CanRead() bool { return c.canRead.Load() }

// CanWrite reports whether the write side is open.
func (c *Conn) CanWrite() bool { return c.canWrite.Load() }

// Read implements io.Reader.
func (c *Conn) Read(p []byte) (int, error) {
	if !c.canRead.Load() {
		return 0, ErrReadDisabled
	}
	return c.s.Read(p)
}

// Write implements io.Writer.
func (c *Conn) Write(p []byte) (int, error) {
	if !c.canWrite.Load() {
		return 0, ErrWriteDisabled
	}
	return c.s.Write(p)
}

// CloseWrite shuts the write side. When the stream supports half-close (TCP
// and Unix sockets, Pipe) the peer sees end of stream; otherwise only the
// local flag changes. Closing an already closed side is a no-op.
func (c *Conn) CloseWrite() error {
	if !c.canWrite.CompareAndSwap(true, false) {
		return nil
	}
	if cw, ok := c.s.(closeWriter); ok {
		return cw.CloseWrite()
	}
	return nil
}

// CloseRead shuts the read side, with the same rules as CloseWrite.
func (c *Conn) CloseRead() error {
	if !c.canRead.CompareAndSwap(true, false) {
		return nil
	}
	if cr, ok := c.s.(closeReader); ok {
		return cr.CloseRead()
	}
	return nil
}

// Close shuts both directions and releases the stream.
func (c *Conn) Close() error {
	c.canRead.Store(false)
	c.canWrite.Store(false)
	return c.s.Close()
}

// SetReadDeadline sets the deadline for future Read calls.
func (c *Conn) SetReadDeadline(t time.Time) error {
	if d, ok := c.s.(deadliner); ok {
		return d.SetReadDeadline(t)
	}
	return ErrNoDeadline
}

// SetWriteDeadline sets the deadline for future Write calls.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	if d, ok := c.s.(deadliner); ok {
		return d.SetWriteDeadline(t)
	}
	return ErrNoDeadline
}

// RemoteAddr returns the peer address for network streams, or "" otherwise.
func (c *Conn) RemoteAddr() string {
	if nc, ok := c.s.(net.Conn); ok && nc.RemoteAddr() != nil {
		return nc.RemoteAddr().String()
	}
	return ""
}
