// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginThrottle limits login attempts per identifier (email or handle),
// independent of the client IP. Each identifier gets a token bucket refilling
// attempts per window with a burst of attempts.
type LoginThrottle struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

// limiterEntry wraps a rate limiter with last access time
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginThrottle allows attempts logins per identifier per window.
// attempts < 1 disables throttling.
func NewLoginThrottle(attempts int, window time.Duration) *LoginThrottle {
	if window <= 0 {
		window = time.Minute
	}
	t := &LoginThrottle{
		limiters: make(map[string]*limiterEntry),
		burst:    attempts,
		idleTTL:  time.Hour,
		now:      time.Now,
	}
	if attempts > 0 {
		t.rate = rate.Every(window / time.Duration(attempts))
	}
	return t
}

// Allow consumes one attempt for identifier and reports whether it is allowed.
func (t *LoginThrottle) Allow(identifier string) bool {
	if t == nil || t.burst < 1 {
		return true
	}
	key := strings.ToLower(strings.TrimSpace(identifier))
	now := t.now()

	t.mu.Lock()
	entry, exists := t.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.limiters[key] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	t.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Reset forgets identifier, restoring its full burst after a successful login.
func (t *LoginThrottle) Reset(identifier string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	delete(t.limiters, strings.ToLower(strings.TrimSpace(identifier)))
	t.mu.Unlock()
}

// cleanup removes limiters idle for longer than idleTTL.
func (t *LoginThrottle) cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	threshold := t.now().Add(-t.idleTTL)
	removed := 0
	for key, entry := range t.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(t.limiters, key)
			removed++
		}
	}
	return removed
}

// Serve periodically removes stale limiters until ctx is canceled.
// It implements suture.Service.
func (t *LoginThrottle) Serve(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.cleanup()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (t *LoginThrottle) String() string {
	return "login-throttle"
}
