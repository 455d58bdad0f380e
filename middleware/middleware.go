// Package middleware provides the server-side handler chain. A
// Middleware wraps the dispatch handler in onion order:
//
//	Chain(A, B, C)(handler) → A(B(C(handler)))
//
// so A runs first on the way in and last on the way out.
package middleware

import "context"

// Request is one decoded-enough RPC request passing through the chain:
// the split method name plus the still-encoded request payload. Payload
// decoding happens inside dispatch, after service lookup, so middleware
// sees every request including ones whose payload later fails to decode.
type Request struct {
	Service string
	Method  string
	Payload []byte
}

// HandlerFunc produces the response value for a request, or an error that
// the server turns into a fault response.
type HandlerFunc func(ctx context.Context, req *Request) (any, error)

type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one. Middlewares apply in the order
// given.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
