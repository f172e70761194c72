package cache

import (
	"sync"

	"github.com/breeze-mail/breeze/pkg/types"
)

// Delta rewrites a cached page. It receives a private copy and returns
// the new contents; removing, reordering, and editing entries are all
// legal.
type Delta func([]types.EmailMessage) []types.EmailMessage

// Token identifies one in-flight optimistic mutation. Exactly one of
// Commit or Rollback must follow each Apply. Only one in-flight
// mutation per key is supported; a second Apply on the same key
// overwrites the first snapshot and last response wins.
type Token struct {
	key      ListKey
	snapshot []types.EmailMessage
	applied  bool
}

// Optimistic layers command-style mutations over a ListCache: Apply
// updates the cached page synchronously so the UI reflects the change
// immediately, then the caller settles with Commit on server success or
// Rollback on failure.
type Optimistic struct {
	mu    sync.Mutex
	cache *ListCache
}

func NewOptimistic(cache *ListCache) *Optimistic {
	return &Optimistic{cache: cache}
}

// Apply runs the delta against the cached page and returns a token for
// settling. When the page is not cached there is nothing to patch; the
// token is still valid and settling only does invalidation.
func (o *Optimistic) Apply(key ListKey, delta Delta) *Token {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot, ok := o.cache.update(key, delta)
	return &Token{key: key, snapshot: snapshot, applied: ok}
}

// Commit settles a successful mutation. The optimistic state stays, and
// lists and counters are invalidated so the next read reconciles with
// the server.
func (o *Optimistic) Commit(token *Token) {
	o.settle(token, false)
}

// Rollback settles a failed mutation by restoring the exact snapshot
// taken at Apply time, content and order included. The restored page is
// marked stale so it is served immediately but refetched on next read.
func (o *Optimistic) Rollback(token *Token) {
	o.settle(token, true)
}

// Settling always invalidates list and counter caches, success or
// failure; the next read reconciles with the server either way.
func (o *Optimistic) settle(token *Token, restore bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cache.InvalidateLists()
	o.cache.InvalidateCounts()

	if restore && token.applied {
		o.cache.restore(token.key, token.snapshot)
	}
}
