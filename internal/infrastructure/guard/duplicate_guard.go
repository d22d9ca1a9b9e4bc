// Package guard suppresses rapid duplicate create submissions. The guard is
// in-process only; a second service instance has its own window.
package guard

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DuplicateGuard rejects a fingerprint seen inside the window.
type DuplicateGuard struct {
	entries *gocache.Cache
	window  time.Duration
}

// New creates a guard with the given suppression window.
func New(window time.Duration) *DuplicateGuard {
	return &DuplicateGuard{
		entries: gocache.New(window, window),
		window:  window,
	}
}

// Acquire claims the fingerprint for the window. Returns false when it is
// already claimed. Add is atomic, so concurrent callers race safely.
func (g *DuplicateGuard) Acquire(fingerprint string) bool {
	return g.entries.Add(fingerprint, struct{}{}, g.window) == nil
}

// Release drops the claim early, so a failed create can be retried at once.
func (g *DuplicateGuard) Release(fingerprint string) {
	g.entries.Delete(fingerprint)
}
