// Package ratelimit paces requests to shared external services.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks until the caller may issue its next request.
// Implementations must be safe for concurrent use so that several workers
// can share one instance and keep the same aggregate rate.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewFixedInterval returns a limiter that releases one token every interval.
// The initial token is drained, so the first Wait also blocks for a full
// interval. A non-positive interval disables limiting.
func NewFixedInterval(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	limiter.Allow()

	return limiter
}

// Seconds converts a delay expressed in (possibly fractional) seconds to a duration.
func Seconds(delay float64) time.Duration {
	return time.Duration(delay * float64(time.Second))
}
