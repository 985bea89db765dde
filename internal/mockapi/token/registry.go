package token

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Registry tracks the ids of tokens still in circulation. Entries expire
// on the same clock as the tokens themselves, and removing an entry makes
// the matching token dead immediately, without waiting for its exp claim.
type Registry struct {
	cache *cache.Cache
}

// NewRegistry returns a registry whose entries live for ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{cache: cache.New(ttl, 2*ttl)}
}

// Add records a freshly issued token id.
func (r *Registry) Add(id string, userID int64) {
	r.cache.Set(id, userID, cache.DefaultExpiration)
}

// Alive reports whether the token id is still in circulation.
func (r *Registry) Alive(id string) bool {
	_, ok := r.cache.Get(id)
	return ok
}

// Remove takes a single token id out of circulation.
func (r *Registry) Remove(id string) {
	r.cache.Delete(id)
}

// Flush takes every issued token out of circulation.
func (r *Registry) Flush() {
	r.cache.Flush()
}
