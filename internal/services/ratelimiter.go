package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"alfredoptarigan/kryptohire/internal/apperrors"
)

// RateLimiter throttles AI requests per user.
type RateLimiter interface {
	Allow(userID uuid.UUID) error
}

type tokenBucketLimiter struct {
	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerMinute, burst int) RateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &tokenBucketLimiter{
		limiters: make(map[uuid.UUID]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
	}
}

// Allow consumes one token, or returns a RateLimitError carrying the wait time.
func (l *tokenBucketLimiter) Allow(userID uuid.UUID) error {
	lim := l.limiterFor(userID)

	r := lim.Reserve()
	if !r.OK() {
		return apperrors.RateLimit(time.Minute)
	}
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return apperrors.RateLimit(delay)
	}
	return nil
}

func (l *tokenBucketLimiter) limiterFor(userID uuid.UUID) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	return lim
}
