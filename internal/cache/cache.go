package cache

import (
	"log/slog"
	"time"
)

// Cache is the read/write surface consumers depend on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expiry sweeps over registered caches.
type Manager struct {
	caches []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the sweep set. Not safe after StartCleanup.
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup begins sweeping every interval until Stop is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.sweep(interval)
}

func (m *Manager) sweep(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := 0
			for _, cache := range m.caches {
				removed += cache.CleanExpired()
			}
			if removed > 0 {
				slog.Debug("Cache sweep", "removed", removed)
			}
		case <-m.stop:
			return
		}
	}
}

// Stop halts the sweep goroutine and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}
