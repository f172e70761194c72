package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoller_TicksWhileVisible(t *testing.T) {
	var refreshes atomic.Int32
	p := NewPoller(func(ctx context.Context) { refreshes.Add(1) })
	p.SetInterval(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.Greater(t, refreshes.Load(), int32(0))
}

func TestPoller_SkipsWhileTyping(t *testing.T) {
	var refreshes atomic.Int32
	p := NewPoller(func(ctx context.Context) { refreshes.Add(1) })
	p.SetInterval(10 * time.Millisecond)
	p.SetTyping(true)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.Equal(t, int32(0), refreshes.Load())
}

func TestPoller_RefreshOnVisibilityReturn(t *testing.T) {
	// The interval is far beyond the test window; the single refresh can
	// only come from the hidden-to-visible transition.
	var refreshes atomic.Int32
	p := NewPoller(func(ctx context.Context) { refreshes.Add(1) })
	p.SetInterval(time.Hour)
	p.SetVisible(false)
	p.SetVisible(true)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.Equal(t, int32(1), refreshes.Load())
}

func TestPoller_SkipsWhileHidden(t *testing.T) {
	var refreshes atomic.Int32
	p := NewPoller(func(ctx context.Context) { refreshes.Add(1) })
	p.SetInterval(10 * time.Millisecond)
	p.SetVisible(false)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.Equal(t, int32(0), refreshes.Load())
}
