// Package server implements the RPC dispatcher: an accept loop, a
// per-connection serve loop, the service registry, and the middleware
// chain around method dispatch.
//
// Request processing pipeline, per connection:
//
//	ReadEnvelope → DecodeCall → split "Service.Method"
//	  → Middleware Chain → dispatch (service lookup → payload decode
//	  → method lookup → invoke) → encode result or fault → WriteEnvelope
//
// A connection handles one request at a time — requests are not
// pipelined, so the loop reads, dispatches, and responds strictly in
// sequence. Request-level failures (unknown service or method, bad
// payload, handler error) round-trip as fault responses and the
// connection stays open; only transport-level failures end the loop.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"bitrpc/codec"
	"bitrpc/message"
	"bitrpc/middleware"
	"bitrpc/protocol"
)

// Server dispatches RPC calls to registered services.
type Server struct {
	registry    *codec.Registry     // Type registry, read-only while serving
	services    map[string]*Service // Service name → service, populated before Serve
	listener    net.Listener
	wg          sync.WaitGroup // Tracks in-flight requests for graceful shutdown
	shutdown    atomic.Bool    // Distinguishes intentional listener close from real Accept errors
	middlewares []middleware.Middleware
	handler     middleware.HandlerFunc // Chain built once in Serve
	maxEnvelope uint32
}

// NewServer creates a server dispatching with the given type registry.
// The registry must be fully populated before Serve is called.
func NewServer(registry *codec.Registry) *Server {
	return &Server{
		registry:    registry,
		services:    make(map[string]*Service),
		maxEnvelope: protocol.DefaultMaxEnvelopeSize,
	}
}

// Register adds a service to the service registry. All registration must
// happen before Serve — the map is read without locking while serving.
func (svr *Server) Register(svc *Service) error {
	if _, ok := svr.services[svc.Name()]; ok {
		return fmt.Errorf("rpc: service %q already registered", svc.Name())
	}
	svr.services[svc.Name()] = svc
	return nil
}

// Use appends a middleware. Middlewares apply in the order added.
func (svr *Server) Use(mw middleware.Middleware) {
	svr.middlewares = append(svr.middlewares, mw)
}

// SetMaxEnvelopeSize overrides the per-envelope payload bound.
func (svr *Server) SetMaxEnvelopeSize(n uint32) {
	svr.maxEnvelope = n
}

// Serve listens on the given address and accepts connections until
// Shutdown closes the listener. Each connection gets its own goroutine;
// connections share only the read-only service and type registries.
func (svr *Server) Serve(network, address string) error {
	listener, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	svr.listener = listener

	// Build the middleware chain once at startup, not per request.
	svr.handler = middleware.Chain(svr.middlewares...)(svr.dispatch)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if svr.shutdown.Load() {
				return nil
			}
			return err
		}
		go svr.handleConn(conn)
	}
}

// Addr returns the listener address, useful when serving on port 0.
func (svr *Server) Addr() net.Addr {
	if svr.listener == nil {
		return nil
	}
	return svr.listener.Addr()
}

// handleConn runs the serve loop for one connection. The loop is strictly
// sequential: read one envelope, produce one response, repeat. EOF or any
// framing error ends the loop and closes the connection.
func (svr *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	for {
		payload, err := protocol.ReadEnvelope(conn, svr.maxEnvelope)
		if err != nil {
			return
		}
		if err := svr.handleRequest(conn, payload); err != nil {
			log.Printf("rpc: write response to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

// handleRequest processes one request envelope and writes exactly one
// response envelope. The returned error is transport-level only;
// request-level failures are encoded as fault responses.
func (svr *Server) handleRequest(conn net.Conn, payload []byte) error {
	svr.wg.Add(1)
	defer svr.wg.Done()

	call, err := message.DecodeCall(codec.NewReader(payload))
	if err != nil {
		return svr.writeFault(conn, fmt.Sprintf("Request deserialization failed: %v", err))
	}

	// Split on the first dot only; service names never contain dots.
	serviceName, methodName, ok := strings.Cut(call.Method, ".")
	if !ok {
		return svr.writeFault(conn, fmt.Sprintf("Invalid method format: %s", call.Method))
	}

	result, err := svr.handler(context.Background(), &middleware.Request{
		Service: serviceName,
		Method:  methodName,
		Payload: call.Payload,
	})
	if err != nil {
		return svr.writeFault(conn, err.Error())
	}
	return svr.writeResult(conn, result)
}

// dispatch is the innermost handler wrapped by the middleware chain:
// service lookup, payload decode, method lookup, invoke. Each failure
// mode returns an error whose text becomes the fault message the caller
// sees verbatim.
func (svr *Server) dispatch(ctx context.Context, req *middleware.Request) (any, error) {
	svc, ok := svr.services[req.Service]
	if !ok {
		return nil, fmt.Errorf("Service '%s' not found", req.Service)
	}

	request, err := svr.registry.ReadObject(codec.NewReader(req.Payload))
	if err != nil {
		return nil, fmt.Errorf("Request deserialization failed: %v", err)
	}

	fn, ok := svc.Method(req.Method)
	if !ok {
		return nil, fmt.Errorf("Method '%s' not found on service '%s'", req.Method, req.Service)
	}

	result, err := fn(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("Method execution failed: %v", err)
	}
	return result, nil
}

func (svr *Server) writeFault(conn net.Conn, text string) error {
	return svr.writeResult(conn, &codec.Fault{Message: text})
}

// writeResult encodes the response value (or fault) via the type registry
// and writes it as one envelope.
func (svr *Server) writeResult(conn net.Conn, result any) error {
	w := codec.NewWriter()
	if err := svr.registry.WriteObject(w, result); err != nil {
		// The handler returned a value the registry cannot encode.
		// Surface it to the caller as a fault rather than dropping the
		// response and desynchronizing the client.
		log.Printf("rpc: encode response: %v", err)
		w = codec.NewWriter()
		if err := svr.registry.WriteObject(w, &codec.Fault{
			Message: fmt.Sprintf("Method execution failed: %v", err),
		}); err != nil {
			return err
		}
	}
	return protocol.WriteEnvelope(conn, w.Bytes())
}

// Shutdown stops accepting connections and waits up to timeout for
// in-flight requests to finish.
func (svr *Server) Shutdown(timeout time.Duration) error {
	// Set the flag before closing the listener so Serve recognizes the
	// Accept error as intentional.
	svr.shutdown.Store(true)
	if svr.listener != nil {
		svr.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		svr.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for ongoing requests to finish")
	}
}
