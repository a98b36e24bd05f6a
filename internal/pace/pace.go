// Package pace keeps a fixed idle gap between successive requests to the
// same outlet.
package pace

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces steps by measuring from the end of one step to the start of
// the next, so a slow or retried step still leaves the full delay behind it.
// Call Wait before a step and Rest when it is done.
type Pacer struct {
	delay time.Duration

	mu  sync.Mutex
	lim *rate.Limiter
}

// New returns a pacer whose first Wait does not block. A zero delay never
// blocks.
func New(delay time.Duration) *Pacer {
	return &Pacer{
		delay: delay,
		lim:   rate.NewLimiter(rate.Inf, 1),
	}
}

// Wait blocks until delay has passed since the last Rest, or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	lim := p.lim
	p.mu.Unlock()
	return lim.Wait(ctx)
}

// Rest marks the end of a step. The next Wait returns no earlier than delay
// from now.
func (p *Pacer) Rest() {
	if p.delay <= 0 {
		return
	}
	lim := rate.NewLimiter(rate.Every(p.delay), 1)
	lim.AllowN(time.Now(), 1)

	p.mu.Lock()
	p.lim = lim
	p.mu.Unlock()
}
