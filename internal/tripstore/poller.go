package tripstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Poller calls a reload function right away and then at a fixed interval
// while it is armed.
type Poller struct {
	reload   func(context.Context) error
	interval time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPoller constructs a disarmed Poller.
func NewPoller(reload func(context.Context) error, interval time.Duration, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{reload: reload, interval: interval, log: log}
}

// Arm starts a fresh polling loop, replacing any loop that was running.
// The first reload happens immediately.
func (p *Poller) Arm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.loop(ctx)
}

// Disarm stops the loop. A reload already running is not interrupted; its
// result is the store's to keep or drop.
func (p *Poller) Disarm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Armed reports whether a loop is running.
func (p *Poller) Armed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context) {
	p.tick()
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ctx.Err() != nil {
				return
			}
			p.tick()
		}
	}
}

// tick runs one reload bounded by the interval, so a hung fetch cannot pile
// up behind the next tick forever.
func (p *Poller) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()
	if err := p.reload(ctx); err != nil && !errors.Is(err, ErrStopped) {
		p.log.Debug("scheduled reload failed", "error", err)
	}
}
