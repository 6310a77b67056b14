package grpc

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type emailLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LoginLimiter throttles login attempts per email. Limiters idle for longer
// than limiterIdleTTL are dropped on a later call.
type LoginLimiter struct {
	rate  rate.Limit
	burst int

	mu        sync.Mutex
	limiters  map[string]*emailLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewLoginLimiter allows perMinute attempts per email with the given burst.
// A non-positive perMinute disables limiting.
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	l := rate.Inf
	if perMinute > 0 {
		l = rate.Limit(float64(perMinute) / 60.0)
	}
	return &LoginLimiter{
		rate:     l,
		burst:    max(burst, 1),
		limiters: make(map[string]*emailLimiter),
		now:      time.Now,
	}
}

func (l *LoginLimiter) Allow(email string) bool {
	key := strings.ToLower(strings.TrimSpace(email))
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for k, el := range l.limiters {
			if now.Sub(el.lastAccess) > limiterIdleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	el, ok := l.limiters[key]
	if !ok {
		el = &emailLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = el
	}
	el.lastAccess = now
	return el.limiter.AllowN(now, 1)
}

// Len reports how many emails are tracked.
func (l *LoginLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
