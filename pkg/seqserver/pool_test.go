package seqserver_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/epithet-ssh/lpframe/internal/streamtest"
	"github.com/epithet-ssh/lpframe/pkg/lpframe"
	"github.com/epithet-ssh/lpframe/pkg/seqserver"
	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"
)

// deadAddr returns a loopback address nothing is listening on.
func deadAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func poolExchange(t *testing.T, p *seqserver.Pool, msgs ...string) ([]string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	replies, err := p.Exchange(ctx, streamtest.Bytes(msgs))
	return streamtest.Strings(replies), err
}

func TestPool_FailsOverToLowerPriority(t *testing.T) {
	defer leaktest.Check(t)()

	t.Run("exchange", func(t *testing.T) {
		live := startServer(t, seqserver.New(seqserver.Upper))
		pool := seqserver.NewPool([]seqserver.Endpoint{
			{Addr: live, Priority: 50},
			{Addr: deadAddr(t), Priority: 200},
		})
		require.Equal(t, 2, pool.Len())

		got, err := poolExchange(t, pool, "hello")
		require.NoError(t, err)
		require.Equal(t, []string{"HELLO"}, got)
		require.Equal(t, 1, pool.Available())

		// The dead endpoint's breaker is open, so it is skipped outright.
		got, err = poolExchange(t, pool, "again")
		require.NoError(t, err)
		require.Equal(t, []string{"AGAIN"}, got)
	})
}

func TestPool_PriorityOrder(t *testing.T) {
	defer leaktest.Check(t)()

	t.Run("exchange", func(t *testing.T) {
		high := startServer(t, seqserver.New(seqserver.Upper))
		low := startServer(t, seqserver.New(seqserver.Reverse))
		pool := seqserver.NewPool([]seqserver.Endpoint{
			{Addr: low, Priority: 10},
			{Addr: high, Priority: 20},
		})

		for range 3 {
			got, err := poolExchange(t, pool, "abc")
			require.NoError(t, err)
			require.Equal(t, []string{"ABC"}, got)
		}
	})
}

func TestPool_RoundRobinWithinPriority(t *testing.T) {
	defer leaktest.Check(t)()

	t.Run("exchange", func(t *testing.T) {
		a := startServer(t, seqserver.New(seqserver.Upper))
		b := startServer(t, seqserver.New(seqserver.Reverse))
		pool := seqserver.NewPool([]seqserver.Endpoint{{Addr: a}, {Addr: b}})

		seen := map[string]bool{}
		for range 2 {
			got, err := poolExchange(t, pool, "abc")
			require.NoError(t, err)
			require.Len(t, got, 1)
			seen[got[0]] = true
		}
		require.Equal(t, map[string]bool{"ABC": true, "cba": true}, seen)
	})
}

func TestPool_AllUnavailable(t *testing.T) {
	defer leaktest.Check(t)()

	pool := seqserver.NewPool([]seqserver.Endpoint{
		{Addr: deadAddr(t)},
		{Addr: deadAddr(t)},
	}, seqserver.WithCooldown(time.Hour))

	_, err := poolExchange(t, pool, "anyone?")
	var unavailable *seqserver.UnavailableError
	require.True(t, errors.As(err, &unavailable), "got %v", err)
	require.Equal(t, 2, unavailable.Tried)
	require.Error(t, unavailable.LastErr)
	require.Equal(t, 0, pool.Available())

	// With every breaker open nothing is dialled at all.
	_, err = poolExchange(t, pool, "still there?")
	require.True(t, errors.As(err, &unavailable))
	require.Equal(t, 0, unavailable.Tried)
}

func TestPool_CallerErrorDoesNotFailOver(t *testing.T) {
	defer leaktest.Check(t)()

	t.Run("exchange", func(t *testing.T) {
		addr := startServer(t, seqserver.New(seqserver.Echo))
		pool := seqserver.NewPool([]seqserver.Endpoint{{Addr: addr}, {Addr: deadAddr(t)}})

		_, err := poolExchange(t, pool, "fine", "")
		require.ErrorIs(t, err, lpframe.ErrEmptyMessage)
		require.Equal(t, 2, pool.Available())
	})
}

func TestPool_Empty(t *testing.T) {
	pool := seqserver.NewPool(nil)
	_, err := poolExchange(t, pool, "x")
	var unavailable *seqserver.UnavailableError
	require.ErrorAs(t, err, &unavailable)
}
