package fallback

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdle is how long a sender's bucket survives without use once the
// table grows past limiterSweepAt entries.
const (
	limiterIdle    = 30 * time.Minute
	limiterSweepAt = 1024
)

// limiter keeps one token bucket per sender.
type limiter struct {
	rate  rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLimiter(r rate.Limit, burst int) *limiter {
	return &limiter{rate: r, burst: burst, buckets: make(map[string]*bucket)}
}

func (l *limiter) allow(sender string) bool {
	now := time.Now()

	l.mu.Lock()
	b, ok := l.buckets[sender]
	if !ok {
		if len(l.buckets) >= limiterSweepAt {
			l.sweepLocked(now)
		}
		b = &bucket{lim: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[sender] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.lim.AllowN(now, 1)
}

func (l *limiter) sweepLocked(now time.Time) {
	for s, b := range l.buckets {
		if now.Sub(b.lastSeen) > limiterIdle {
			delete(l.buckets, s)
		}
	}
}
