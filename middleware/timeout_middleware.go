package middleware

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when a handler does not finish within the
// Timeout middleware's deadline.
var ErrTimeout = errors.New("request timed out")

// Timeout bounds handler execution. The handler goroutine keeps running
// after expiry (there is no way to preempt it), but the caller gets the
// timeout fault immediately and the connection moves on.
func Timeout(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type outcome struct {
				result any
				err    error
			}
			done := make(chan outcome, 1)
			go func() {
				result, err := next(ctx, req)
				done <- outcome{result, err}
			}()

			select {
			case out := <-done:
				return out.result, out.err
			case <-ctx.Done():
				return nil, ErrTimeout
			}
		}
	}
}
