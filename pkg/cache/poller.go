package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultPollInterval = 2 * time.Minute

// Poller periodically triggers a background refresh while the client is
// actually looking at the mailbox. Ticks are skipped when the view is
// hidden or the user is composing, so polling never stomps on a draft
// in progress.
type Poller struct {
	mu       sync.Mutex
	visible  bool
	typing   bool
	interval time.Duration
	refresh  func(ctx context.Context)
	kick     chan struct{}
}

func NewPoller(refresh func(ctx context.Context)) *Poller {
	return &Poller{
		visible:  true,
		interval: defaultPollInterval,
		refresh:  refresh,
		kick:     make(chan struct{}, 1),
	}
}

// SetInterval overrides the tick interval, used by tests.
func (p *Poller) SetInterval(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interval = d
}

// SetVisible reports whether the mailbox view is on screen. Coming back
// from a hidden state triggers an immediate refresh instead of waiting
// out the current tick.
func (p *Poller) SetVisible(visible bool) {
	p.mu.Lock()
	wasVisible := p.visible
	p.visible = visible
	p.mu.Unlock()

	if visible && !wasVisible {
		select {
		case p.kick <- struct{}{}:
		default:
		}
	}
}

// SetTyping reports whether the user is mid-compose.
func (p *Poller) SetTyping(typing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typing = typing
}

func (p *Poller) shouldPoll() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible && !p.typing
}

// Run ticks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.mu.Lock()
	interval := p.interval
	p.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.kick:
			if p.shouldPoll() {
				p.refresh(ctx)
			}
		case <-ticker.C:
			if !p.shouldPoll() {
				log.Debug().Msg("poll tick skipped")
				continue
			}
			p.refresh(ctx)
		}
	}
}
