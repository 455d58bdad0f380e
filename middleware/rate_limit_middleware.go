package middleware

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned for requests rejected by RateLimit. The
// server forwards it as a fault response, so the connection stays usable.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimit rejects requests above r per second with bursts up to burst,
// using a token bucket shared across all connections.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (any, error) {
			if !limiter.Allow() {
				return nil, ErrRateLimited
			}
			return next(ctx, req)
		}
	}
}
