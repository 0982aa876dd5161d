package ratelimit

import (
	"net/http"
	"sync"
	"time"
)

// Config holds rate limiter configuration.
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
	}
}

// Limiter enforces a fixed one-minute window per client IP.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	limit           int
	cleanupInterval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start time.Time
	count int
}

// NewLimiter creates a limiter and starts its background cleanup.
func NewLimiter(config Config) *Limiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	l := &Limiter{
		windows:         make(map[string]*window),
		limit:           config.RequestsPerMinute,
		cleanupInterval: config.CleanupInterval,
		stop:            make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request from clientIP fits in the current window.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	win, ok := l.windows[clientIP]
	if !ok || now.Sub(win.start) >= time.Minute {
		l.windows[clientIP] = &window{start: now, count: 1}
		return true
	}

	win.count++
	return win.count <= l.limit
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.dropStale()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) dropStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, win := range l.windows {
		if win.start.Before(cutoff) {
			delete(l.windows, ip)
		}
	}
}

// Middleware rejects requests over the limit. onLimit, when set, writes
// the rejection response.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(extractIP(r)) {
				if onLimit != nil {
					onLimit(w, r)
				} else {
					w.Header().Set("Retry-After", "60")
					http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
