package middleware

import (
	"context"
	"errors"
	"log"
	"time"
)

// Retry re-runs a handler up to maxRetries times with exponential backoff
// when it fails with a transient error (timeout or rate limit). Anything
// else returns immediately — retrying a deterministic failure only delays
// the fault response.
func Retry(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (any, error) {
			result, err := next(ctx, req)
			for i := 0; i < maxRetries; i++ {
				if err == nil {
					return result, nil
				}
				if !errors.Is(err, ErrTimeout) && !errors.Is(err, ErrRateLimited) {
					return result, err
				}
				log.Printf("retry %d for %s.%s after: %v", i+1, req.Service, req.Method, err)
				time.Sleep(baseDelay * time.Duration(1<<i))
				result, err = next(ctx, req)
			}
			return result, err
		}
	}
}
