package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/breeze-mail/breeze/pkg/types"
)

const (
	// Stale entries are still served while a refresh runs; these windows
	// decide when a caller should trigger that refresh.
	listFreshness  = 30 * time.Second
	countFreshness = 60 * time.Second

	// Entries are evicted outright after this long.
	retention = 5 * time.Minute

	maxEntries = 256
)

// ListKey identifies one cached page of a mailbox listing.
type ListKey struct {
	Mailbox string
	Query   string
	Page    int
}

func (k ListKey) String() string {
	return fmt.Sprintf("%s|%s|%d", k.Mailbox, k.Query, k.Page)
}

type listEntry struct {
	messages  []types.EmailMessage
	fetchedAt time.Time
}

type countEntry struct {
	counts    map[string]int
	fetchedAt time.Time
}

// ListCache holds mailbox listings and label counters on the client
// side. Reads return staleness so callers can serve-then-refresh.
type ListCache struct {
	mu     sync.Mutex
	lists  *expirable.LRU[string, *listEntry]
	counts *expirable.LRU[string, *countEntry]
	now    func() time.Time
}

func NewListCache() *ListCache {
	return &ListCache{
		lists:  expirable.NewLRU[string, *listEntry](maxEntries, nil, retention),
		counts: expirable.NewLRU[string, *countEntry](maxEntries, nil, retention),
		now:    time.Now,
	}
}

// GetMessages returns the cached page. fresh is false when the entry is
// older than the list freshness window and should be refetched.
func (c *ListCache) GetMessages(key ListKey) (messages []types.EmailMessage, fresh, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lists.Get(key.String())
	if !ok {
		return nil, false, false
	}
	return entry.messages, c.now().Sub(entry.fetchedAt) < listFreshness, true
}

// SetMessages stores a page. The slice is copied; callers keep ownership
// of theirs.
func (c *ListCache) SetMessages(key ListKey, messages []types.EmailMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := make([]types.EmailMessage, len(messages))
	copy(copied, messages)
	c.lists.Add(key.String(), &listEntry{messages: copied, fetchedAt: c.now()})
}

// GetCounts returns cached label counters for an account key.
func (c *ListCache) GetCounts(accountKey string) (counts map[string]int, fresh, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.counts.Get(accountKey)
	if !ok {
		return nil, false, false
	}
	return entry.counts, c.now().Sub(entry.fetchedAt) < countFreshness, true
}

func (c *ListCache) SetCounts(accountKey string, counts map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := make(map[string]int, len(counts))
	for k, v := range counts {
		copied[k] = v
	}
	c.counts.Add(accountKey, &countEntry{counts: copied, fetchedAt: c.now()})
}

// InvalidateLists drops every cached page. Mutations call this on
// settle; the next read refetches.
func (c *ListCache) InvalidateLists() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists.Purge()
}

// InvalidateCounts drops cached label counters.
func (c *ListCache) InvalidateCounts() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts.Purge()
}

// update applies fn to a cached page in place, returning the previous
// contents for rollback. ok is false when the page is not cached.
func (c *ListCache) update(key ListKey, fn func([]types.EmailMessage) []types.EmailMessage) (previous []types.EmailMessage, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lists.Get(key.String())
	if !ok {
		return nil, false
	}

	previous = entry.messages
	working := make([]types.EmailMessage, len(previous))
	copy(working, previous)

	c.lists.Add(key.String(), &listEntry{
		messages:  fn(working),
		fetchedAt: entry.fetchedAt,
	})
	return previous, true
}

// restore puts a snapshot back exactly as it was, aged past the
// freshness window so the next read still refetches.
func (c *ListCache) restore(key ListKey, snapshot []types.EmailMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lists.Add(key.String(), &listEntry{
		messages:  snapshot,
		fetchedAt: c.now().Add(-listFreshness),
	})
}
