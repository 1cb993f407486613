package api

import (
	"context"
	"sync"
	"time"
)

// rateLimiter implements a fixed-window per-client request counter.
// Windows reset every minute; stale clients are swept periodically so
// the map does not grow without bound.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
}

type window struct {
	count   int
	started time.Time
}

// defaultRequestsPerMinute applies when the configured limit is zero.
const defaultRequestsPerMinute = 120

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	return &rateLimiter{
		clients: make(map[string]*window),
		limit:   requestsPerMinute,
	}
}

// allow reports whether the client may make another request in the
// current window.
func (rl *rateLimiter) allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.clients[clientID]
	if !ok || now.Sub(w.started) >= time.Minute {
		rl.clients[clientID] = &window{count: 1, started: now}
		return true
	}

	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// cleanupLoop sweeps expired windows until the context is cancelled.
func (rl *rateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for id, w := range rl.clients {
				if now.Sub(w.started) >= 2*time.Minute {
					delete(rl.clients, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}
