// Package ratelimit throttles repeated failed logins per principal using
// fixed-window Redis counters.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTooManyAttempts is returned when a principal has exhausted its
// failed-login budget for the current window.
var ErrTooManyAttempts = errors.New("too many login attempts")

// LoginLimiter counts failed logins keyed by role and external id.
// A nil Redis client disables throttling entirely, so deployments
// without Redis keep working.
type LoginLimiter struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{redis: client, maxAttempts: maxAttempts, window: window}
}

func loginKey(role, externalID string) string {
	return fmt.Sprintf("login_attempts:%s:%s", role, externalID)
}

// Allow reports whether another login attempt may proceed. Redis being
// unreachable fails open: availability of login beats throttling.
func (l *LoginLimiter) Allow(ctx context.Context, role, externalID string) error {
	if l == nil || l.redis == nil {
		return nil
	}
	count, err := l.redis.Get(ctx, loginKey(role, externalID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return nil
	}
	if count >= int64(l.maxAttempts) {
		return ErrTooManyAttempts
	}
	return nil
}

// RecordFailure counts one failed attempt. The window TTL is set on the
// first failure only, giving fixed-window semantics.
func (l *LoginLimiter) RecordFailure(ctx context.Context, role, externalID string) {
	if l == nil || l.redis == nil {
		return
	}
	key := loginKey(role, externalID)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	if count == 1 {
		l.redis.Expire(ctx, key, l.window)
	}
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, role, externalID string) {
	if l == nil || l.redis == nil {
		return
	}
	l.redis.Del(ctx, loginKey(role, externalID))
}
