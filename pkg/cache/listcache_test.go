package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/breeze-mail/breeze/pkg/types"
)

func newTestCache(start time.Time) (*ListCache, *time.Time) {
	now := start
	c := NewListCache()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestListCache_MissThenHit(t *testing.T) {
	c, _ := newTestCache(time.Now())
	key := ListKey{Mailbox: "inbox", Page: 0}

	_, _, ok := c.GetMessages(key)
	assert.False(t, ok)

	c.SetMessages(key, []types.EmailMessage{{GmailMessageId: "m1"}})

	messages, fresh, ok := c.GetMessages(key)
	assert.True(t, ok)
	assert.True(t, fresh)
	assert.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].GmailMessageId)
}

func TestListCache_StaleAfterFreshnessWindow(t *testing.T) {
	c, now := newTestCache(time.Now())
	key := ListKey{Mailbox: "inbox", Page: 0}

	c.SetMessages(key, []types.EmailMessage{{GmailMessageId: "m1"}})

	*now = now.Add(31 * time.Second)

	messages, fresh, ok := c.GetMessages(key)
	assert.True(t, ok, "stale entries are still served")
	assert.False(t, fresh, "entry older than 30s should be reported stale")
	assert.Len(t, messages, 1)
}

func TestListCache_CountFreshnessIsLonger(t *testing.T) {
	c, now := newTestCache(time.Now())

	c.SetCounts("acct-1", map[string]int{"INBOX": 12})

	*now = now.Add(45 * time.Second)

	counts, fresh, ok := c.GetCounts("acct-1")
	assert.True(t, ok)
	assert.True(t, fresh, "counters stay fresh for 60s")
	assert.Equal(t, 12, counts["INBOX"])

	*now = now.Add(20 * time.Second)

	_, fresh, ok = c.GetCounts("acct-1")
	assert.True(t, ok)
	assert.False(t, fresh)
}

func TestListCache_SetCopiesInput(t *testing.T) {
	c, _ := newTestCache(time.Now())
	key := ListKey{Mailbox: "inbox", Page: 0}

	input := []types.EmailMessage{{GmailMessageId: "m1"}}
	c.SetMessages(key, input)
	input[0].GmailMessageId = "mutated"

	messages, _, _ := c.GetMessages(key)
	assert.Equal(t, "m1", messages[0].GmailMessageId)
}

func TestListCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(time.Now())
	key := ListKey{Mailbox: "inbox", Query: "is:unread", Page: 2}

	c.SetMessages(key, []types.EmailMessage{{GmailMessageId: "m1"}})
	c.SetCounts("acct-1", map[string]int{"INBOX": 3})

	c.InvalidateLists()
	_, _, ok := c.GetMessages(key)
	assert.False(t, ok)

	// Counters survive a list invalidation
	_, _, ok = c.GetCounts("acct-1")
	assert.True(t, ok)

	c.InvalidateCounts()
	_, _, ok = c.GetCounts("acct-1")
	assert.False(t, ok)
}

func TestListKey_String(t *testing.T) {
	key := ListKey{Mailbox: "inbox", Query: "is:unread", Page: 2}
	assert.Equal(t, "inbox|is:unread|2", key.String())
}
