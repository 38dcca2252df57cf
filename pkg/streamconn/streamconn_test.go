package streamconn_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/epithet-ssh/lpframe/pkg/streamconn"
	"github.com/stretchr/testify/require"
	"gotest.tools/assert"
)

func TestPipe_HalfCloseGivesEOF(t *testing.T) {
	a, b := streamconn.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		_, _ = a.Write([]byte("hello"))
		_ = a.CloseWrite()
	}()

	data, err := io.ReadAll(b)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// The other direction is still open.
	assert.Assert(t, b.CanWrite())
	assert.Assert(t, a.CanRead())
}

func TestConn_WriteAfterCloseWrite(t *testing.T) {
	a, b := streamconn.Pipe()
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.CloseWrite())
	assert.Assert(t, !a.CanWrite())

	_, err := a.Write([]byte("late"))
	require.ErrorIs(t, err, streamconn.ErrWriteDisabled)

	// Closing twice is harmless.
	require.NoError(t, a.CloseWrite())
}

func TestConn_ReadOnly(t *testing.T) {
	a, b := streamconn.Pipe()
	defer a.Close()
	defer b.Close()

	ro := streamconn.New(readWriteCloser{a}, streamconn.Read)
	assert.Assert(t, ro.CanRead())
	assert.Assert(t, !ro.CanWrite())

	_, err := ro.Write([]byte("nope"))
	require.ErrorIs(t, err, streamconn.ErrWriteDisabled)
}

func TestConn_CloseReadFailsPeerWrites(t *testing.T) {
	a, b := streamconn.Pipe()
	defer a.Close()
	defer b.Close()

	require.NoError(t, b.CloseRead())

	_, err := b.Read(make([]byte, 1))
	require.ErrorIs(t, err, streamconn.ErrReadDisabled)

	_, err = a.Write([]byte("x"))
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestConn_PipeHasNoDeadlines(t *testing.T) {
	a, b := streamconn.Pipe()
	defer a.Close()
	defer b.Close()

	require.ErrorIs(t, a.SetReadDeadline(time.Now()), streamconn.ErrNoDeadline)
	assert.Equal(t, "", a.RemoteAddr())
}

func TestConn_TCPHalfClose(t *testing.T) {
	ctx := context.Background()
	ln, err := streamconn.Listen(ctx, "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan error, 1)
	go func() {
		srv, err := streamconn.Accept(ln)
		if err != nil {
			done <- err
			return
		}
		defer srv.Close()
		data, err := io.ReadAll(srv)
		if err != nil {
			done <- err
			return
		}
		_, err = srv.Write(append([]byte("got "), data...))
		if err == nil {
			err = srv.CloseWrite()
		}
		done <- err
	}()

	cli, err := streamconn.Dial(ctx, "tcp", ln.Addr().String())
	require.NoError(t, err)
	defer cli.Close()
	assert.Assert(t, cli.RemoteAddr() != "")
	require.NoError(t, cli.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, err = cli.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, cli.CloseWrite())

	reply, err := io.ReadAll(cli)
	require.NoError(t, err)
	assert.Equal(t, "got ping", string(reply))
	require.NoError(t, <-done)
}

// readWriteCloser hides the optional interfaces of the wrapped Conn.
type readWriteCloser struct{ io.ReadWriteCloser }
