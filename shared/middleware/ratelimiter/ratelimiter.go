// Package ratelimiter keeps one token bucket per identity (ip, email, user id).
package ratelimiter

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type UserRateLimiter struct {
	limiters *cache.Cache
	rate     rate.Limit
	burst    int
	mu       sync.Mutex
}

// New allows rps requests per second per identity with the given burst. An identity
// idle for expiry is forgotten and starts over with a full bucket.
func New(rps float64, burst int, expiry time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters: cache.New(expiry, expiry),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (u *UserRateLimiter) limiter(identity string) *rate.Limiter {
	u.mu.Lock()
	defer u.mu.Unlock()
	var l *rate.Limiter
	if cached, ok := u.limiters.Get(identity); ok {
		l = cached.(*rate.Limiter)
	} else {
		l = rate.NewLimiter(u.rate, u.burst)
	}
	// re-set on every hit so expiry slides with activity
	u.limiters.SetDefault(identity, l)
	return l
}

func (u *UserRateLimiter) Allow(identity string) bool {
	return u.limiter(identity).Allow()
}

// RetryAfter estimates how long until one more token is available.
func (u *UserRateLimiter) RetryAfter() time.Duration {
	if u.rate <= 0 {
		return time.Minute
	}
	return time.Duration(float64(time.Second) / float64(u.rate))
}

func (u *UserRateLimiter) Len() int {
	return u.limiters.ItemCount()
}

// Stop forgets every tracked identity.
func (u *UserRateLimiter) Stop() {
	u.limiters.Flush()
}

func OnceInSecond() *UserRateLimiter { return New(1, 1, time.Hour) }
func OnceInMinute() *UserRateLimiter { return New(1.0/60, 1, time.Hour) }
func Rps10() *UserRateLimiter        { return New(10, 10, time.Hour) }
func Rps100() *UserRateLimiter       { return New(100, 100, time.Hour) }
