// Package throttle limits login attempts per account with a fixed window
// counter in Redis. The throttle is its own component so the login flow
// stays testable without a real broker and so deployments without Redis
// can run with throttling disabled.
package throttle

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"casedesk_backend/platform/config"
	"casedesk_backend/platform/logger"
)

// LoginThrottle counts failed login attempts per email address.
type LoginThrottle struct {
	client *redis.Client
	limit  int
	window time.Duration
	log    *logger.Logger
}

// New creates the throttle. Returns nil when no Redis URL is configured;
// a nil throttle allows every attempt.
func New(cfg config.ThrottleConfig, log *logger.Logger) (*LoginThrottle, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if opt.TLSConfig != nil {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	limit := cfg.GetLoginAttemptLimit()
	if limit <= 0 {
		limit = 5
	}
	window := cfg.GetLoginAttemptWindow()
	if window <= 0 {
		window = 15 * time.Minute
	}

	return &LoginThrottle{
		client: redis.NewClient(opt),
		limit:  limit,
		window: window,
		log:    log,
	}, nil
}

// NewWithClient wires an existing Redis client, used by tests.
func NewWithClient(client *redis.Client, limit int, window time.Duration, log *logger.Logger) *LoginThrottle {
	return &LoginThrottle{client: client, limit: limit, window: window, log: log}
}

func key(email string) string {
	return "login_attempts:" + strings.ToLower(strings.TrimSpace(email))
}

// Allow reports whether another login attempt for the address is permitted
// in the current window. A Redis failure permits the attempt; locking
// everyone out on a broker outage is worse than briefly losing the
// throttle.
func (t *LoginThrottle) Allow(ctx context.Context, email string) bool {
	if t == nil {
		return true
	}
	count, err := t.client.Get(ctx, key(email)).Int()
	if err != nil && err != redis.Nil {
		t.log.Error("login throttle read failed", "error", err)
		return true
	}
	return count < t.limit
}

// RecordFailure counts one failed attempt. The window starts at the first
// failure and is not extended by later ones.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) {
	if t == nil {
		return
	}
	k := key(email)
	count, err := t.client.Incr(ctx, k).Result()
	if err != nil {
		t.log.Error("login throttle increment failed", "error", err)
		return
	}
	if count == 1 {
		if err := t.client.Expire(ctx, k, t.window).Err(); err != nil {
			t.log.Error("login throttle expire failed", "error", err)
		}
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if t == nil {
		return
	}
	if err := t.client.Del(ctx, key(email)).Err(); err != nil {
		t.log.Error("login throttle reset failed", "error", err)
	}
}

// Close releases the Redis connection.
func (t *LoginThrottle) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Close()
}
