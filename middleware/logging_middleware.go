package middleware

import (
	"context"
	"log"
	"time"
)

// Logging logs each request's method, duration, and error outcome.
func Logging() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (any, error) {
			start := time.Now()
			result, err := next(ctx, req)
			log.Printf("%s.%s took %s", req.Service, req.Method, time.Since(start))
			if err != nil {
				log.Printf("%s.%s failed: %v", req.Service, req.Method, err)
			}
			return result, err
		}
	}
}
