package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// loginThrottle counts failed logins per client inside a sliding window.
type loginThrottle struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	failures map[string][]time.Time
}

func newLoginThrottle(limit int, window time.Duration) *loginThrottle {
	return &loginThrottle{
		limit:    limit,
		window:   window,
		failures: make(map[string][]time.Time),
	}
}

// retryAfter reports how long the client must wait before its next attempt.
// Zero means the client may try now.
func (throttle *loginThrottle) retryAfter(client string, now time.Time) time.Duration {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	recent := throttle.recentLocked(client, now)
	if len(recent) < throttle.limit {
		return 0
	}
	wait := recent[len(recent)-throttle.limit].Add(throttle.window).Sub(now)
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

func (throttle *loginThrottle) recordFailure(client string, now time.Time) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	throttle.failures[client] = append(throttle.recentLocked(client, now), now)
}

func (throttle *loginThrottle) forget(client string) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	delete(throttle.failures, client)
}

// recentLocked drops failures older than the window. Timestamps stay in
// insertion order.
func (throttle *loginThrottle) recentLocked(client string, now time.Time) []time.Time {
	stamps := throttle.failures[client]
	cutoff := now.Add(-throttle.window)
	kept := stamps[:0]
	for _, stamp := range stamps {
		if stamp.After(cutoff) {
			kept = append(kept, stamp)
		}
	}
	if len(kept) == 0 {
		delete(throttle.failures, client)
		return nil
	}
	throttle.failures[client] = kept
	return kept
}

func clientKey(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.IP()); ip != "" {
		return ip
	}
	return "unknown"
}
