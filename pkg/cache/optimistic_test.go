package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/breeze-mail/breeze/pkg/types"
)

func seedPage(c *ListCache, key ListKey, ids ...string) {
	messages := make([]types.EmailMessage, len(ids))
	for i, id := range ids {
		messages[i] = types.EmailMessage{GmailMessageId: id}
	}
	c.SetMessages(key, messages)
}

func pageIds(c *ListCache, key ListKey) []string {
	messages, _, ok := c.GetMessages(key)
	if !ok {
		return nil
	}
	ids := make([]string, len(messages))
	for i, m := range messages {
		ids[i] = m.GmailMessageId
	}
	return ids
}

func removeId(id string) Delta {
	return func(messages []types.EmailMessage) []types.EmailMessage {
		out := messages[:0]
		for _, m := range messages {
			if m.GmailMessageId != id {
				out = append(out, m)
			}
		}
		return out
	}
}

func TestOptimistic_ApplyIsSynchronous(t *testing.T) {
	c, _ := newTestCache(time.Now())
	o := NewOptimistic(c)
	key := ListKey{Mailbox: "inbox", Page: 0}
	seedPage(c, key, "m1", "m2", "m3")

	o.Apply(key, removeId("m2"))

	// The cached page reflects the mutation before any settle
	assert.Equal(t, []string{"m1", "m3"}, pageIds(c, key))
}

func TestOptimistic_RollbackRestoresSnapshot(t *testing.T) {
	c, _ := newTestCache(time.Now())
	o := NewOptimistic(c)
	key := ListKey{Mailbox: "inbox", Page: 0}
	seedPage(c, key, "m1", "m2", "m3")

	token := o.Apply(key, removeId("m2"))
	o.Rollback(token)

	// Content and order come back exactly, served as stale so the next
	// read refetches
	assert.Equal(t, []string{"m1", "m2", "m3"}, pageIds(c, key))
	_, fresh, ok := c.GetMessages(key)
	assert.True(t, ok)
	assert.False(t, fresh)
}

func TestOptimistic_CommitInvalidatesLists(t *testing.T) {
	c, _ := newTestCache(time.Now())
	o := NewOptimistic(c)
	key := ListKey{Mailbox: "inbox", Page: 0}
	seedPage(c, key, "m1", "m2")
	c.SetCounts("acct-1", map[string]int{"INBOX": 2})

	token := o.Apply(key, removeId("m1"))
	o.Commit(token)

	// Lists are dropped so the next read reconciles with the server
	_, _, ok := c.GetMessages(key)
	assert.False(t, ok)

	// Counters are always invalidated on settle
	_, _, ok = c.GetCounts("acct-1")
	assert.False(t, ok)
}

func TestOptimistic_RollbackDropsOtherPages(t *testing.T) {
	c, _ := newTestCache(time.Now())
	o := NewOptimistic(c)
	key := ListKey{Mailbox: "inbox", Page: 0}
	other := ListKey{Mailbox: "inbox", Page: 1}
	seedPage(c, key, "m1", "m2")
	seedPage(c, other, "m3")
	c.SetCounts("acct-1", map[string]int{"INBOX": 2})

	token := o.Apply(key, removeId("m1"))
	o.Rollback(token)

	// Only the restored page survives; everything else is invalidated
	assert.Equal(t, []string{"m1", "m2"}, pageIds(c, key))
	_, _, ok := c.GetMessages(other)
	assert.False(t, ok)
	_, _, ok = c.GetCounts("acct-1")
	assert.False(t, ok)
}

func TestOptimistic_ApplyOnUncachedPage(t *testing.T) {
	c, _ := newTestCache(time.Now())
	o := NewOptimistic(c)
	key := ListKey{Mailbox: "inbox", Page: 7}

	token := o.Apply(key, removeId("m1"))
	assert.NotNil(t, token, "token is valid even when there was nothing to patch")

	// Settling only invalidates; no page appears out of thin air
	o.Rollback(token)
	_, _, ok := c.GetMessages(key)
	assert.False(t, ok)
}
