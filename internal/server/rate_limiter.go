package server

import (
	"sync"
	"time"

	"github.com/raaihank/clip-sentinel/internal/config"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client
type RateLimiter struct {
	config  config.RateLimitConfig
	clients map[string]*clientLimiter
	mu      sync.RWMutex
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config:  cfg,
		clients: make(map[string]*clientLimiter),
	}
}

// Allow checks if a request from the given client is allowed
func (r *RateLimiter) Allow(clientIP string) bool {
	if !r.config.Enabled {
		return true
	}

	cl := r.getLimiter(clientIP)
	cl.mu.Lock()
	cl.lastSeen = time.Now()
	cl.mu.Unlock()

	return cl.limiter.Allow()
}

// getLimiter gets or creates the limiter for a client
func (r *RateLimiter) getLimiter(clientIP string) *clientLimiter {
	r.mu.RLock()
	cl, exists := r.clients[clientIP]
	r.mu.RUnlock()

	if exists {
		return cl
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if cl, exists := r.clients[clientIP]; exists {
		return cl
	}

	perSecond := rate.Limit(float64(r.config.RequestsPerMin) / 60.0)
	cl = &clientLimiter{
		limiter:  rate.NewLimiter(perSecond, r.config.Burst),
		lastSeen: time.Now(),
	}
	r.clients[clientIP] = cl
	return cl
}

// Cleanup removes limiters not used since cutoff
func (r *RateLimiter) Cleanup(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for ip, cl := range r.clients {
		cl.mu.Lock()
		stale := cl.lastSeen.Before(cutoff)
		cl.mu.Unlock()
		if stale {
			delete(r.clients, ip)
			removed++
		}
	}
	return removed
}

// StartCleanup removes idle limiters every interval until stop is closed
func (r *RateLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.Cleanup(time.Now().Add(-time.Hour))
			case <-stop:
				return
			}
		}
	}()
}
