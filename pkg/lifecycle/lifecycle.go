// Package lifecycle runs named startup and shutdown hooks for the service's
// subsystems and tracks whether the service is ready for traffic.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Coordinator runs startup hooks concurrently and holds readiness until all of
// them succeed. Shutdown hooks start immediately and should block on
// <-Context().Done() before cleaning up.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup

	mu       sync.RWMutex
	ready    bool
	failures []error
	pending  map[string]int
}

func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]int),
	}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn in its own goroutine. A returned error is recorded under
// name and keeps the coordinator from becoming ready.
func (c *Coordinator) OnStartup(name string, fn func() error) {
	c.startupWg.Go(func() {
		if err := fn(); err != nil {
			c.mu.Lock()
			c.failures = append(c.failures, fmt.Errorf("%s: %w", name, err))
			c.mu.Unlock()
		}
	})
}

// OnShutdown runs fn in its own goroutine and waits for it during Shutdown.
func (c *Coordinator) OnShutdown(name string, fn func()) {
	c.mu.Lock()
	c.pending[name]++
	c.mu.Unlock()

	c.shutdownWg.Go(func() {
		defer func() {
			c.mu.Lock()
			if c.pending[name]--; c.pending[name] == 0 {
				delete(c.pending, name)
			}
			c.mu.Unlock()
		}()
		fn()
	})
}

// Ready reports whether every startup hook completed without error.
func (c *Coordinator) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Err joins the startup hook failures, or nil when all succeeded.
func (c *Coordinator) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return errors.Join(c.failures...)
}

// WaitForStartup blocks until all startup hooks return. A coordinator that
// has begun shutting down never becomes ready.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.mu.Lock()
	c.ready = len(c.failures) == 0 && c.ctx.Err() == nil
	c.mu.Unlock()
}

// Shutdown cancels Context and waits up to timeout for the shutdown hooks.
// On timeout the error names the hooks still running.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.mu.Lock()
	c.ready = false
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v: waiting on %v", timeout, c.stillRunning())
	}
}

func (c *Coordinator) stillRunning() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.pending))
	for name := range c.pending {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
