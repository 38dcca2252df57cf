package seqserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/epithet-ssh/lpframe/pkg/lpframe"
	gobreaker "github.com/sony/gobreaker/v2"
)

// DefaultPriority is used for endpoints without an explicit priority.
const DefaultPriority = 100

// Endpoint is one server a Pool can send to.
type Endpoint struct {
	Network  string
	Addr     string
	Priority int // Higher is tried first; zero means DefaultPriority
}

func (e Endpoint) String() string {
	return e.Network + "://" + e.Addr
}

// UnavailableError is returned when no endpoint completed the exchange.
type UnavailableError struct {
	Tried   int
	LastErr error
}

func (e *UnavailableError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("seqserver: no endpoint available (%d tried): %v", e.Tried, e.LastErr)
	}
	return fmt.Sprintf("seqserver: no endpoint available (%d tried)", e.Tried)
}

func (e *UnavailableError) Unwrap() error {
	return e.LastErr
}

// Pool sends each exchange to one of several servers. Endpoints are tried
// by priority, round-robin within a priority. An endpoint that cannot be
// reached or drops a sequence part way has its breaker opened for the
// cooldown, and the whole sequence is sent again to the next endpoint, so
// handlers behind a Pool should tolerate a repeated sequence.
type Pool struct {
	mu        sync.Mutex
	logger    *slog.Logger
	endpoints []Endpoint
	clients   []*Client
	breakers  []*gobreaker.CircuitBreaker[[][]byte]
	tiers     [][]int     // endpoint indices grouped by priority, highest first
	tierIndex map[int]int // round-robin position per priority
}

// NewPool returns a Pool over endpoints. Client options (logger, length
// limit) apply to every endpoint.
func NewPool(endpoints []Endpoint, opts ...Option) *Pool {
	o := newOptions(opts)

	sorted := make([]Endpoint, len(endpoints))
	copy(sorted, endpoints)
	for i := range sorted {
		if sorted[i].Priority == 0 {
			sorted[i].Priority = DefaultPriority
		}
		if sorted[i].Network == "" {
			sorted[i].Network = "tcp"
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	p := &Pool{
		logger:    o.logger,
		endpoints: sorted,
		clients:   make([]*Client, len(sorted)),
		breakers:  make([]*gobreaker.CircuitBreaker[[][]byte], len(sorted)),
		tierIndex: make(map[int]int),
	}
	for i, ep := range sorted {
		p.clients[i] = NewClient(ep.Network, ep.Addr, opts...)
		p.breakers[i] = gobreaker.NewCircuitBreaker[[][]byte](gobreaker.Settings{
			Name:    ep.String(),
			Timeout: o.cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= o.tripAfter
			},
			IsSuccessful: isEndpointHealthy,
			OnStateChange: func(name string, from, to gobreaker.State) {
				o.logger.Info("endpoint breaker changed state", "endpoint", name, "from", from.String(), "to", to.String())
			},
		})
		if len(p.tiers) == 0 || sorted[p.tiers[len(p.tiers)-1][0]].Priority != ep.Priority {
			p.tiers = append(p.tiers, nil)
		}
		p.tiers[len(p.tiers)-1] = append(p.tiers[len(p.tiers)-1], i)
	}
	return p
}

// isEndpointHealthy reports whether err says nothing bad about the server.
// Caller mistakes and cancellation do not count against it.
func isEndpointHealthy(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, lpframe.ErrEmptyMessage),
		errors.Is(err, context.Canceled):
		return true
	}
	var tooLarge *lpframe.MessageTooLargeError
	return errors.As(err, &tooLarge)
}

// Exchange sends msgs to the first available endpoint and returns its
// replies, failing over to the next endpoint when one is unhealthy. Each
// endpoint is tried at most once per call.
func (p *Pool) Exchange(ctx context.Context, msgs [][]byte) ([][]byte, error) {
	tried := make(map[int]bool, len(p.endpoints))
	var lastErr error

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(err, lastErr)
		}

		idx := p.next(tried)
		if idx < 0 {
			return nil, &UnavailableError{Tried: len(tried), LastErr: lastErr}
		}
		tried[idx] = true
		ep := p.endpoints[idx]

		replies, err := p.breakers[idx].Execute(func() ([][]byte, error) {
			return p.clients[idx].Exchange(ctx, msgs)
		})
		if err == nil {
			return replies, nil
		}
		if isEndpointHealthy(err) {
			return replies, err
		}
		p.logger.Warn("endpoint failed, trying next", "endpoint", ep.String(), "error", err)
		lastErr = fmt.Errorf("%s: %w", ep, err)
	}
}

// next picks the next untried endpoint whose breaker is not open, or -1.
func (p *Pool) next(tried map[int]bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, tier := range p.tiers {
		priority := p.endpoints[tier[0]].Priority
		start := p.tierIndex[priority]
		for i := range tier {
			pos := (start + i) % len(tier)
			idx := tier[pos]
			if tried[idx] || p.breakers[idx].State() == gobreaker.StateOpen {
				continue
			}
			p.tierIndex[priority] = (pos + 1) % len(tier)
			return idx
		}
	}
	return -1
}

// Available reports how many endpoints currently have a closed or
// half-open breaker.
func (p *Pool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, b := range p.breakers {
		if b.State() != gobreaker.StateOpen {
			n++
		}
	}
	return n
}

// Len returns the number of endpoints.
func (p *Pool) Len() int {
	return len(p.endpoints)
}

// WithCooldown sets how long a failed endpoint is skipped before it is
// tried again.
func WithCooldown(d time.Duration) Option {
	return func(o *options) {
		o.cooldown = d
	}
}

// WithTripAfter sets how many consecutive failures open an endpoint's
// breaker.
func WithTripAfter(n uint32) Option {
	return func(o *options) {
		o.tripAfter = n
	}
}
