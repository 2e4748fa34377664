package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// CachingVerifier remembers verified tokens for a short TTL so remote
// verification is not repeated on every request
type CachingVerifier struct {
	next     TokenVerifier
	ttl      time.Duration
	maxItems int
	now      func() time.Time

	mu    sync.Mutex
	items map[string]cachedUser
}

type cachedUser struct {
	user      UserContext
	expiresAt time.Time
}

// NewCachingVerifier wraps next with a TTL cache
func NewCachingVerifier(next TokenVerifier, ttl time.Duration) *CachingVerifier {
	return &CachingVerifier{
		next:     next,
		ttl:      ttl,
		maxItems: 10000,
		now:      time.Now,
		items:    make(map[string]cachedUser),
	}
}

// Verify implements TokenVerifier. Failures are never cached.
func (v *CachingVerifier) Verify(ctx context.Context, token string) (*UserContext, error) {
	key := cacheKey(token)
	now := v.now()

	v.mu.Lock()
	item, ok := v.items[key]
	v.mu.Unlock()
	if ok && now.Before(item.expiresAt) {
		user := item.user
		return &user, nil
	}

	user, err := v.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.items) >= v.maxItems {
		v.sweepLocked(now)
	}
	v.items[key] = cachedUser{user: *user, expiresAt: now.Add(v.ttl)}
	return user, nil
}

// sweepLocked drops expired entries, and everything if that is not enough
func (v *CachingVerifier) sweepLocked(now time.Time) {
	for key, item := range v.items {
		if !now.Before(item.expiresAt) {
			delete(v.items, key)
		}
	}
	if len(v.items) >= v.maxItems {
		v.items = make(map[string]cachedUser)
	}
}

// Tokens are hashed so the cache never holds bearer credentials
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))))
	return hex.EncodeToString(sum[:])
}
