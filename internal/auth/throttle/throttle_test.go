package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"casedesk_backend/platform/logger"
)

func newTestThrottle(t *testing.T, limit int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client, limit, window, logger.New("test")), mr
}

func TestAllowUntilLimitReached(t *testing.T) {
	th, _ := newTestThrottle(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !th.Allow(ctx, "julia@example.com") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
		th.RecordFailure(ctx, "julia@example.com")
	}
	if th.Allow(ctx, "julia@example.com") {
		t.Error("fourth attempt must be blocked")
	}
}

func TestCounterIsPerAddress(t *testing.T) {
	th, _ := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	th.RecordFailure(ctx, "julia@example.com")
	if th.Allow(ctx, "julia@example.com") {
		t.Error("blocked address must stay blocked")
	}
	if !th.Allow(ctx, "thomas@example.com") {
		t.Error("other addresses are unaffected")
	}
}

func TestAddressIsCanonicalized(t *testing.T) {
	th, _ := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	th.RecordFailure(ctx, "  Julia@Example.com ")
	if th.Allow(ctx, "julia@example.com") {
		t.Error("case and whitespace variants share one counter")
	}
}

func TestWindowExpiry(t *testing.T) {
	th, mr := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	th.RecordFailure(ctx, "julia@example.com")
	if th.Allow(ctx, "julia@example.com") {
		t.Fatal("must be blocked inside the window")
	}

	mr.FastForward(time.Minute + time.Second)
	if !th.Allow(ctx, "julia@example.com") {
		t.Error("counter must expire with the window")
	}
}

func TestResetClearsCounter(t *testing.T) {
	th, _ := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	th.RecordFailure(ctx, "julia@example.com")
	th.Reset(ctx, "julia@example.com")
	if !th.Allow(ctx, "julia@example.com") {
		t.Error("successful login resets the counter")
	}
}

func TestNilThrottleAllowsEverything(t *testing.T) {
	var th *LoginThrottle
	ctx := context.Background()

	th.RecordFailure(ctx, "julia@example.com")
	if !th.Allow(ctx, "julia@example.com") {
		t.Error("a nil throttle never blocks")
	}
}
