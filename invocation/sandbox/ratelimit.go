package sandbox

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter enforces per-session limits on the plugin's in-band requests
// (frames read off fd4) using a token-bucket algorithm, adapted one-for-one
// from the host's own plugin rate limiter.
type RateLimiter struct {
	requestLimiter   *rate.Limiter
	bandwidthLimiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter with the given constraints. A
// requestsPerMin of 0 means unlimited requests; a bandwidthBytesPerMin of 0
// means unlimited bandwidth.
func NewRateLimiter(requestsPerMin int, bandwidthBytesPerMin int64) *RateLimiter {
	rl := &RateLimiter{}

	if requestsPerMin > 0 {
		r := rate.Limit(float64(requestsPerMin) / 60.0)
		rl.requestLimiter = rate.NewLimiter(r, requestsPerMin)
	}
	if bandwidthBytesPerMin > 0 {
		r := rate.Limit(float64(bandwidthBytesPerMin) / 60.0)
		rl.bandwidthLimiter = rate.NewLimiter(r, int(bandwidthBytesPerMin))
	}
	return rl
}

// allow blocks until one frame of size n bytes is permitted, or ctx is done.
func (rl *RateLimiter) allow(ctx context.Context, n int) error {
	if rl == nil {
		return nil
	}
	if rl.requestLimiter != nil {
		if err := rl.requestLimiter.Wait(ctx); err != nil {
			return err
		}
	}
	if rl.bandwidthLimiter != nil {
		if err := rl.bandwidthLimiter.WaitN(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
