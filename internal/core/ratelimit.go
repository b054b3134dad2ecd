package core

import "time"

// RateLimitState captures per-user request accounting. It is
// recorded for diagnostics and the rate-limit admin commands; it does
// not gate admission.
type RateLimitState struct {
	RequestCount int
	Count429     int
	WindowStart  time.Time
	Last429At    *time.Time
}
