// Connection pool for workloads needing concurrent outstanding calls.
// One Client carries one call at a time, so N concurrent calls require N
// connections; the pool hands out exclusive connections borrow/return
// style, using a buffered channel as a goroutine-safe FIFO queue.
package client

import (
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Get once the pool has been closed.
var ErrPoolClosed = errors.New("rpc: connection pool is closed")

// Pool manages reusable connected clients for a single address.
type Pool struct {
	mu       sync.Mutex
	clients  chan *Client // Idle clients; a nil entry means "slot freed", wake and retry
	maxConns int
	curConns int                     // Connections created so far (may be < maxConns)
	closed   bool                    // Guards against Put/Get racing Close
	factory  func() (*Client, error) // Produces a connected client
}

// NewPool creates a pool with the given size bound. Connections are
// created lazily — the pool starts empty and grows on demand.
func NewPool(maxConns int, factory func() (*Client, error)) *Pool {
	return &Pool{
		clients:  make(chan *Client, maxConns),
		maxConns: maxConns,
		factory:  factory,
	}
}

// Get borrows a client. Strategy: take an idle one if available; create a
// new one while under the limit; otherwise block until a borrow returns
// or a slot frees up. Every client coming out of the queue is checked for
// liveness — a connection that died while idle is replaced, never handed
// out.
func (p *Pool) Get() (*Client, error) {
	for {
		select {
		case c, ok := <-p.clients:
			if !ok {
				return nil, ErrPoolClosed
			}
			if c == nil {
				continue // freed slot, retry under the limit check
			}
			if c.State() != StateConnected {
				p.discard(c)
				continue
			}
			return c, nil
		default:
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		under := p.curConns < p.maxConns
		p.mu.Unlock()
		if under {
			return p.createNew()
		}

		// At capacity: block until a borrow returns or a slot frees.
		c, ok := <-p.clients
		if !ok {
			return nil, ErrPoolClosed
		}
		if c == nil {
			continue
		}
		if c.State() != StateConnected {
			p.discard(c)
			continue
		}
		return c, nil
	}
}

// Put returns a borrowed client. A client that is no longer connected
// (a failed call leaves it disconnected) is discarded instead. Putting
// into a closed pool disconnects the client; it never panics.
func (p *Pool) Put(c *Client) {
	if c.State() != StateConnected {
		p.discard(c)
		return
	}
	p.mu.Lock()
	if p.closed {
		p.curConns--
		p.mu.Unlock()
		c.Disconnect()
		return
	}
	// The channel has capacity for every created connection, so this
	// send never blocks while the lock is held.
	p.clients <- c
	p.mu.Unlock()
}

// Close disconnects every idle client and stops the pool. Blocked Get
// calls observe the closed queue and fail with ErrPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.clients)
	for c := range p.clients {
		if c == nil {
			continue
		}
		c.Disconnect()
		p.curConns--
	}
	return nil
}

// discard drops a dead client and frees its slot. A nil placeholder in
// the queue wakes one blocked waiter so it can create a replacement
// instead of waiting for a return that may never come.
func (p *Pool) discard(c *Client) {
	c.Disconnect()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.curConns--
	if !p.closed {
		// Non-blocking; under the lock so it cannot race Close closing
		// the channel.
		select {
		case p.clients <- nil:
		default:
		}
	}
}

func (p *Pool) createNew() (*Client, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.curConns >= p.maxConns {
		p.mu.Unlock()
		return nil, errors.New("rpc: connection pool exhausted")
	}
	p.curConns++
	p.mu.Unlock()

	c, err := p.factory()
	if err != nil {
		p.mu.Lock()
		p.curConns--
		p.mu.Unlock()
		return nil, err
	}
	return c, nil
}
