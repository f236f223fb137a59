package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, maxAttempts int, window time.Duration) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLoginLimiter(client, maxAttempts, window), mr
}

func TestLimiterBlocksAfterBudget(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := l.Allow(ctx, "student", "S1"); err != nil {
			t.Fatalf("attempt %d unexpectedly blocked: %v", i, err)
		}
		l.RecordFailure(ctx, "student", "S1")
	}

	if err := l.Allow(ctx, "student", "S1"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	// Other principals are unaffected.
	if err := l.Allow(ctx, "student", "S2"); err != nil {
		t.Fatalf("unrelated principal blocked: %v", err)
	}
	if err := l.Allow(ctx, "teacher", "S1"); err != nil {
		t.Fatalf("same id under another role blocked: %v", err)
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t, 1, time.Minute)

	l.RecordFailure(ctx, "admin", "A1")
	if err := l.Allow(ctx, "admin", "A1"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if err := l.Allow(ctx, "admin", "A1"); err != nil {
		t.Fatalf("expected window to reset, got %v", err)
	}
}

func TestLimiterResetClearsCounter(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, 1, time.Minute)

	l.RecordFailure(ctx, "teacher", "T1")
	if err := l.Allow(ctx, "teacher", "T1"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	l.Reset(ctx, "teacher", "T1")
	if err := l.Allow(ctx, "teacher", "T1"); err != nil {
		t.Fatalf("expected counter cleared, got %v", err)
	}
}

func TestLimiterWithoutRedisIsNoop(t *testing.T) {
	ctx := context.Background()
	l := NewLoginLimiter(nil, 1, time.Minute)

	l.RecordFailure(ctx, "admin", "A1")
	l.RecordFailure(ctx, "admin", "A1")
	if err := l.Allow(ctx, "admin", "A1"); err != nil {
		t.Fatalf("nil-redis limiter must never block, got %v", err)
	}
	l.Reset(ctx, "admin", "A1")
}
