// Package cache holds the in-process caches used by the worker.
package cache

import (
	"log/slog"
	"time"
)

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically drops expired entries from the registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register must be called before StartCleanup.
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanNow(); n > 0 {
				slog.Debug("Cache cleanup", "removed", n)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// CleanNow runs one cleanup pass and returns the number of removed entries.
func (m *Manager) CleanNow() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop waits for the cleanup goroutine to exit. It must only be called after StartCleanup.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}

// Dedup remembers keys for a while. The worker uses it to skip redelivered events.
type Dedup struct {
	seen *LRUCache[struct{}]
}

func NewDedup(maxSize int, ttl time.Duration) *Dedup {
	return &Dedup{seen: NewLRUCache[struct{}](maxSize, ttl)}
}

// Seen reports whether key was marked and has not expired yet.
func (d *Dedup) Seen(key string) bool {
	_, ok := d.seen.Get(key)
	return ok
}

func (d *Dedup) Mark(key string) { d.seen.Set(key, struct{}{}) }

func (d *Dedup) CleanExpired() int { return d.seen.CleanExpired() }

// Len is the number of remembered keys, expired ones included until the next cleanup.
func (d *Dedup) Len() int { return d.seen.Size() }
