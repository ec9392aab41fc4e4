package engine

import (
	"context"
	"time"
)

// DefaultTickInterval is the real-time length of one game second
const DefaultTickInterval = time.Second

// Countdown runs tick on a fixed interval until tick returns false,
// the parent context is done, or the countdown is cancelled.
type Countdown struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartCountdown schedules tick every interval on its own goroutine
func StartCountdown(ctx context.Context, interval time.Duration, tick func() bool) *Countdown {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	c := &Countdown{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				if !tick() {
					return
				}
			}
		}
	}()

	return c
}

// Cancel requests the countdown to stop without waiting for it.
// Safe to call while holding locks the tick function needs.
func (c *Countdown) Cancel() {
	c.cancel()
}

// Stop cancels the countdown and waits until the goroutine has exited.
// No tick runs after Stop returns.
func (c *Countdown) Stop() {
	c.cancel()
	<-c.done
}

// Done is closed once the countdown goroutine has exited
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
