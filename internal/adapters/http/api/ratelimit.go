package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// judgeLimiter keeps one token bucket per judge so a single judge's retry
// storm cannot starve the rest of the panel.
type judgeLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newJudgeLimiter(rps float64, burst int) *judgeLimiter {
	return &judgeLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether the judge may submit now.
func (j *judgeLimiter) Allow(judgeID string) bool {
	j.mu.Lock()
	l, ok := j.limiters[judgeID]
	if !ok {
		l = rate.NewLimiter(j.rps, j.burst)
		j.limiters[judgeID] = l
	}
	j.mu.Unlock()
	return l.Allow()
}
