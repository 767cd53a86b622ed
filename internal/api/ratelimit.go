package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter caps command submissions per client with a fixed window per
// remote address. Stale clients are swept opportunistically on access, so no
// background goroutine is needed.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientWindow
	limit     int
	window    time.Duration
	lastSweep time.Time
}

type clientWindow struct {
	count   int
	started time.Time
}

// NewRateLimiter allows limit requests per client per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*clientWindow),
		limit:     limit,
		window:    window,
		lastSweep: time.Now(),
	}
}

// Allow records a request from the client and reports whether it fits the
// window. When denied, retryAfter is the seconds until the window resets.
func (rl *RateLimiter) Allow(client string) (allowed bool, retryAfter int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.window*10 {
		rl.sweepLocked(now)
	}

	cw := rl.clients[client]
	if cw == nil || now.Sub(cw.started) >= rl.window {
		rl.clients[client] = &clientWindow{count: 1, started: now}
		return true, 0
	}
	if cw.count < rl.limit {
		cw.count++
		return true, 0
	}
	wait := rl.window - now.Sub(cw.started)
	return false, int(wait.Seconds()) + 1
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	for client, cw := range rl.clients {
		if now.Sub(cw.started) > 2*rl.window {
			delete(rl.clients, client)
		}
	}
	rl.lastSweep = now
}

// clientAddr extracts the client identity for limiting: the first
// X-Forwarded-For hop when present, otherwise the remote host without port.
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimitMiddleware rejects requests over the limit with 429 and a
// Retry-After header.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := rl.Allow(clientAddr(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
