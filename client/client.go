// Package client implements the client side of one RPC connection: an
// explicit connect/disconnect lifecycle and a strictly serialized call
// sequence — one request in flight per connection, ever.
//
// There is no multiplexing and no correlation ID: the response read after
// a write is, by construction, the response to that write. A caller
// wanting N concurrent calls uses N connections (see Pool). A caller
// wanting timeouts wraps Call with an external cancellation that forces
// Disconnect — the in-flight read then observes closure as an error
// instead of blocking forever.
package client

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"bitrpc/codec"
	"bitrpc/message"
	"bitrpc/protocol"
)

var (
	ErrNotConnected     = errors.New("rpc: client is not connected")
	ErrConnectionClosed = errors.New("rpc: connection closed")
	ErrCallInProgress   = errors.New("rpc: a call is already in flight on this connection")
)

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateCalling
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateCalling:
		return "Calling"
	case StateClosing:
		return "Closing"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Client owns exactly one connection to one server.
type Client struct {
	network  string
	addr     string
	registry *codec.Registry

	mu          sync.Mutex // Guards state and conn; never held across blocking I/O
	state       State
	conn        net.Conn
	maxEnvelope uint32
}

// NewClient creates a disconnected client. The registry must stay
// read-only for the client's lifetime.
func NewClient(network, addr string, registry *codec.Registry) *Client {
	return &Client{
		network:     network,
		addr:        addr,
		registry:    registry,
		state:       StateDisconnected,
		maxEnvelope: protocol.DefaultMaxEnvelopeSize,
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the connection. Connecting an already-connected client is
// a no-op. The dial itself runs without the lock held, so State and
// Disconnect stay responsive while it blocks; Disconnect during the dial
// aborts the attempt.
func (c *Client) Connect() error {
	c.mu.Lock()
	switch c.state {
	case StateConnected, StateCalling:
		c.mu.Unlock()
		return nil
	case StateDisconnected:
	default:
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("rpc: cannot connect while %s", state)
	}
	c.state = StateConnecting
	c.mu.Unlock()

	conn, err := net.Dial(c.network, c.addr)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.state == StateConnecting {
			c.state = StateDisconnected
		}
		return fmt.Errorf("rpc: connect %s: %w", c.addr, err)
	}
	if c.state != StateConnecting {
		// A concurrent Disconnect moved the client on while the dial was
		// in flight; the fresh conn must not leak.
		conn.Close()
		return ErrConnectionClosed
	}
	c.conn = conn
	c.state = StateConnected
	return nil
}

// Disconnect closes the connection from any state. It is safe to invoke
// concurrently with an in-flight Call: closing the conn makes the blocked
// read fail, so the call observes ErrConnectionClosed instead of hanging.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		c.state = StateDisconnected
		return nil
	}
	c.state = StateClosing
	err := c.conn.Close()
	c.conn = nil
	c.state = StateDisconnected
	return err
}

// Call performs one RPC: encode the request via the type registry, frame
// it, write it, block for exactly one response envelope, decode it. A
// fault response is returned as the error with the server's message text
// intact; any transport-level failure leaves the client disconnected.
func (c *Client) Call(method string, request any) (any, error) {
	c.mu.Lock()
	switch c.state {
	case StateConnected:
	case StateCalling:
		c.mu.Unlock()
		return nil, ErrCallInProgress
	default:
		c.mu.Unlock()
		return nil, ErrNotConnected
	}

	// Encode before touching the wire: an unregistered request type must
	// fail without any channel I/O.
	body := codec.NewWriter()
	if err := c.registry.WriteObject(body, request); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.state = StateCalling
	conn := c.conn
	c.mu.Unlock()

	frame := codec.NewWriter()
	call := message.Call{Method: method, Payload: body.Bytes()}
	call.Encode(frame)

	if err := protocol.WriteEnvelope(conn, frame.Bytes()); err != nil {
		return nil, c.fail(err)
	}

	payload, err := protocol.ReadEnvelope(conn, c.maxEnvelope)
	if err != nil {
		return nil, c.fail(err)
	}

	// The envelope arrived intact, so the connection stays usable even
	// if this particular payload does not decode.
	c.endCall()

	result, err := c.registry.ReadObject(codec.NewReader(payload))
	if err != nil {
		return nil, err
	}
	if fault, ok := result.(*codec.Fault); ok {
		return nil, fault
	}
	return result, nil
}

// endCall transitions Calling back to Connected, unless a concurrent
// Disconnect already moved the client on.
func (c *Client) endCall() {
	c.mu.Lock()
	if c.state == StateCalling {
		c.state = StateConnected
	}
	c.mu.Unlock()
}

// fail tears down the connection after a transport-level error and maps
// the error for the caller. Framing violations keep their identity;
// everything else — EOF, a closed socket, a short read — is a closed
// connection from the caller's point of view.
func (c *Client) fail(err error) error {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	if errors.Is(err, protocol.ErrEnvelopeTooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
}
