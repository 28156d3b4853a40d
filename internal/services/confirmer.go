package services

import (
	"context"
	"sync"
	"time"
)

// Confirmer runs delayed one-shot confirmation callbacks. Unlike a bare
// timer, pending callbacks are tied to the confirmer's context: Stop cancels
// anything not yet fired and waits for in-flight callbacks to finish.
type Confirmer struct {
	delay  time.Duration
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

func NewConfirmer(delay time.Duration) *Confirmer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Confirmer{
		delay:  delay,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Confirmer) Delay() time.Duration {
	return c.delay
}

// Schedule queues fn to run after the configured delay. Returns false if the
// confirmer has already been stopped.
func (c *Confirmer) Schedule(fn func(ctx context.Context)) bool {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return false
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-c.ctx.Done():
			return
		case <-timer.C:
			fn(c.ctx)
		}
	}()
	return true
}

// Stop cancels pending callbacks and waits for running ones.
func (c *Confirmer) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}
