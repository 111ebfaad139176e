package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gopkg.in/robfig/cron.v2"

	"febos_exporter/internal/entity"
)

// Run refreshes immediately and then every interval until ctx is done.
// Setup is retried on each tick until it succeeds. A tick that fires while
// the previous one is still running is skipped.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	sched := cron.New()
	id, err := sched.AddFunc(fmt.Sprintf("@every %s", interval), func() { c.tick(ctx) })
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	c.logger.Info("Starting refresh loop", "interval", interval)
	go c.tick(ctx)
	sched.Start()

	<-ctx.Done()
	sched.Remove(id)
	sched.Stop()
	c.logger.Info("Refresh loop stopped")
	return nil
}

func (c *Coordinator) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if store, ok := c.poll(ctx); ok {
		c.notify(ctx, store)
	}
}

// poll runs setup and one refresh under mu.
func (c *Coordinator) poll(ctx context.Context) (*entity.Store, bool) {
	if !c.mu.TryLock() {
		c.logger.Warn("Previous refresh still running, skipping tick")
		return nil, false
	}
	defer c.mu.Unlock()

	if err := c.setup(ctx); err != nil {
		return nil, false
	}
	store, err := c.refresh(ctx)
	return store, err == nil
}
