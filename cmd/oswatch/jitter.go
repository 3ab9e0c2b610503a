package main

import (
	"math/rand/v2"
	"time"
)

// dither spreads an interval across 0.9x-1.1x of its median so
// repeated passes drift apart over time.
func dither(median time.Duration) time.Duration {
	lo := int64(float64(median) * 0.9)
	hi := int64(float64(median) * 1.1)
	if hi <= lo {
		return median
	}
	return time.Duration(lo + rand.Int64N(hi-lo+1))
}
