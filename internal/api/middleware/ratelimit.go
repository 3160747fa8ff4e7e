package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"SpaceTraveling/internal/api/handlers"
)

// RateLimiter implements a simple in-memory fixed window rate limiter keyed by client IP
type RateLimiter struct {
	now      func() time.Time
	clients  map[string]*clientLimit
	done     chan struct{}
	requests int
	window   time.Duration
	mu       sync.Mutex
	stopOnce sync.Once
}

type clientLimit struct {
	resetTime time.Time
	count     int
}

// NewRateLimiter creates a new rate limiter
// requests: maximum number of requests allowed per window
// window: time window duration (e.g., 1 minute)
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		now:      func() time.Time { return time.Now().UTC() },
		clients:  make(map[string]*clientLimit),
		done:     make(chan struct{}),
		requests: requests,
		window:   window,
	}

	// Cleanup old entries every window duration
	go rl.cleanup()

	return rl
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// Middleware returns a rate limiting middleware
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := getClientIP(r)

		if !rl.allow(clientID) {
			w.Header().Set("Retry-After", retryAfter(rl.window))
			handlers.WriteError(w, http.StatusTooManyRequests, "RateLimitExceeded", "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow checks if a client is allowed to make a request
func (rl *RateLimiter) allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	client, exists := rl.clients[clientID]
	if !exists {
		rl.clients[clientID] = &clientLimit{
			count:     1,
			resetTime: now.Add(rl.window),
		}
		return true
	}

	// Check if window has expired
	if now.After(client.resetTime) {
		client.count = 1
		client.resetTime = now.Add(rl.window)
		return true
	}

	if client.count < rl.requests {
		client.count++
		return true
	}

	return false
}

// cleanup removes expired client entries periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for clientID, client := range rl.clients {
				if now.After(client.resetTime) {
					delete(rl.clients, clientID)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// getClientIP extracts the client IP from the request.
// Only the first X-Forwarded-For hop is used; the rest is proxy-appended.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfter(window time.Duration) string {
	seconds := int(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
