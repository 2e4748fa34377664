package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long a key may go unused before its limiter is dropped
const idleTTL = 10 * time.Minute

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter holds one token bucket per key. A bucket refills at
// perMinute tokens a minute and holds at most perMinute tokens. State is
// per process.
type KeyedLimiter struct {
	perMinute int
	now       func() time.Time

	mu          sync.Mutex
	limiters    map[string]*keyedLimiter
	lastCleanup time.Time
}

// NewKeyedLimiter creates a limiter; a non-positive perMinute admits
// everything
func NewKeyedLimiter(perMinute int) *KeyedLimiter {
	return &KeyedLimiter{
		perMinute: perMinute,
		now:       time.Now,
		limiters:  make(map[string]*keyedLimiter),
	}
}

// Allow takes a token from key's bucket if one is available
func (l *KeyedLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.perMinute <= 0 {
		return true, nil
	}
	now := l.now()
	return l.get(key, now).AllowN(now, 1), nil
}

// Reset forgets key
func (l *KeyedLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.limiters, key)
	l.mu.Unlock()
	return nil
}

// Len is the number of tracked keys
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *KeyedLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) > idleTTL {
		for k, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > idleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastCleanup = now
	}

	entry, ok := l.limiters[key]
	if !ok {
		every := rate.Every(time.Minute / time.Duration(l.perMinute))
		entry = &keyedLimiter{limiter: rate.NewLimiter(every, l.perMinute)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// IPRateLimiter limits unauthenticated traffic per client address
type IPRateLimiter struct {
	keys *KeyedLimiter
}

func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	return &IPRateLimiter{keys: NewKeyedLimiter(perMinute)}
}

func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	return l.keys.Allow(ctx, "ip:"+ip)
}

// UserRateLimiter limits authenticated traffic per user id
type UserRateLimiter struct {
	keys *KeyedLimiter
}

func NewUserRateLimiter(perMinute int) *UserRateLimiter {
	return &UserRateLimiter{keys: NewKeyedLimiter(perMinute)}
}

func (l *UserRateLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	return l.keys.Allow(ctx, "user:"+userID)
}
