// Package ratelimit provides token bucket rate limiting for the REST API.
// Endpoints that trigger outbound email get much tighter limits than reads.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// Rule is a per-endpoint limit. Method and Prefix select requests; Limit is
// requests per Window with Burst as the bucket capacity.
type Rule struct {
	Method string
	Prefix string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	Rules         []Rule
}

// DefaultConfig limits send-triggering endpoints hard and leaves reads loose.
// A runaway client retrying approvals must not translate into vendor spam.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  600,
		DefaultWindow: time.Minute,
		Rules: []Rule{
			{Method: "POST", Prefix: "/outreach/approve", Limit: 30, Window: time.Minute, Burst: 10},
			{Method: "POST", Prefix: "/vendors/", Limit: 30, Window: time.Minute, Burst: 10},
			{Method: "POST", Prefix: "/threads/", Limit: 60, Window: time.Minute, Burst: 20},
			{Method: "GET", Prefix: "/health", Limit: 0}, // unlimited
		},
	}
}

type bucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func (b *bucket) take(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	b.lastRefill = now
	b.lastAccess = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// retryAfter reports how long until one token is available
func (b *bucket) retryAfter() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
}

// Limiter applies per-client, per-rule token buckets
type Limiter struct {
	cfg     *Config
	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a limiter; nil config uses defaults
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if cfg.Enabled {
		go l.cleanupLoop()
	}
	return l
}

// Allow reports whether a request from clientID to method+path may proceed,
// and if not, how long the client should wait.
func (l *Limiter) Allow(clientID, method, path string) (bool, time.Duration) {
	if !l.cfg.Enabled {
		return true, 0
	}

	rule := l.match(method, path)
	if rule.Limit <= 0 && rule.Prefix != "" {
		return true, 0 // explicitly unlimited
	}

	limit, window, burst := rule.Limit, rule.Window, rule.Burst
	if limit == 0 {
		limit, window, burst = l.cfg.DefaultLimit, l.cfg.DefaultWindow, l.cfg.DefaultLimit
	}
	if burst <= 0 {
		burst = limit
	}

	key := clientID + ":" + method + ":" + rule.Prefix
	b := l.getBucket(key, burst, float64(limit)/window.Seconds())
	if b.take(time.Now()) {
		return true, 0
	}
	return false, b.retryAfter()
}

// match returns the first rule whose method and prefix cover the request,
// or a zero Rule meaning the default limit applies
func (l *Limiter) match(method, path string) Rule {
	for _, r := range l.cfg.Rules {
		if r.Method == method && strings.HasPrefix(path, r.Prefix) {
			return r
		}
	}
	return Rule{}
}

func (l *Limiter) getBucket(key string, capacity int, refillRate float64) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			capacity:   float64(capacity),
			refillRate: refillRate,
			tokens:     float64(capacity),
			lastRefill: time.Now(),
		}
		l.buckets[key] = b
	}
	return b
}

// cleanupLoop drops buckets idle for over an hour
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-time.Hour)
			l.mu.Lock()
			for key, b := range l.buckets {
				b.mu.Lock()
				idle := b.lastAccess.Before(cutoff)
				b.mu.Unlock()
				if idle {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// Stop terminates the cleanup goroutine
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
