package browser

import (
	"time"

	"golang.org/x/time/rate"
)

// newPacer spaces driver actions at least slowMo apart. A zero or negative
// slowMo disables pacing.
func newPacer(slowMo time.Duration) *rate.Limiter {
	if slowMo <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(slowMo), 1)
}
