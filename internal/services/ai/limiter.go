package ai

import (
	"time"

	"golang.org/x/time/rate"
)

// newLimiter allows perMinute requests per minute with a burst of one tenth of that.
// perMinute <= 0 disables limiting.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}
