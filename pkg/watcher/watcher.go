// Package watcher observes the source roots and re-runs exactly the affected
// converter when files change. Reloads are serialized per asset kind:
// notifications arriving while a reload is in flight coalesce into at most
// one follow-up run instead of queuing unbounded concurrent reloads.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/portagekit/portage/pkg/discovery"
	"github.com/portagekit/portage/pkg/logger"
)

// ReloadFunc re-runs one kind's converter end to end. It must apply its
// result all-or-nothing: on error the previously valid state stays in place.
type ReloadFunc func(ctx context.Context) error

// DefaultDebounce spaces out rapid successive events for the same kind.
const DefaultDebounce = 300 * time.Millisecond

// Coordinator owns the filesystem subscription and the per-kind reload
// scheduling.
type Coordinator struct {
	disc     *discovery.Discovery
	reloads  map[discovery.Kind]ReloadFunc
	debounce time.Duration

	mu     sync.Mutex
	timers map[discovery.Kind]*time.Timer
	kicks  map[discovery.Kind]chan struct{}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDebounce overrides the event debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) {
		c.debounce = d
	}
}

// NewCoordinator creates a Coordinator that invokes the given reload
// functions when their kind's subtree changes.
func NewCoordinator(disc *discovery.Discovery, reloads map[discovery.Kind]ReloadFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		disc:     disc,
		reloads:  reloads,
		debounce: DefaultDebounce,
		timers:   make(map[discovery.Kind]*time.Timer),
		kicks:    make(map[discovery.Kind]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run subscribes to both roots and dispatches reloads until the context is
// cancelled. In-flight reloads always run to completion.
func (c *Coordinator) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create filesystem watcher")
	}
	defer fsWatcher.Close()

	for _, root := range c.disc.Roots() {
		c.addTree(ctx, fsWatcher, root)
	}

	var wg sync.WaitGroup
	for kind, reload := range c.reloads {
		kick := make(chan struct{}, 1)
		c.mu.Lock()
		c.kicks[kind] = kick
		c.mu.Unlock()

		wg.Add(1)
		go func(kind discovery.Kind, reload ReloadFunc, kick chan struct{}) {
			defer wg.Done()
			c.reloadLoop(ctx, kind, reload, kick)
		}(kind, reload, kick)
	}

	logger.G(ctx).WithField("roots", c.disc.Roots()).Info("watching source roots")

	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				wg.Wait()
				return nil
			}
			c.handleEvent(ctx, fsWatcher, event)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				wg.Wait()
				return nil
			}
			logger.G(ctx).WithError(err).Error("filesystem watcher error")
		case <-ctx.Done():
			c.stopTimers()
			wg.Wait()
			return ctx.Err()
		}
	}
}

// addTree registers every existing directory under root with the watcher.
// Missing roots are fine; they contribute nothing to watch.
func (c *Coordinator) addTree(ctx context.Context, fsWatcher *fsnotify.Watcher, root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if err := fsWatcher.Add(path); err != nil {
			logger.G(ctx).WithError(err).WithField("dir", path).Debug("failed to watch directory")
		}
		return nil
	})
}

func (c *Coordinator) handleEvent(ctx context.Context, fsWatcher *fsnotify.Watcher, event fsnotify.Event) {
	// New directories (e.g. a freshly installed skill) must join the
	// subscription before their contents can be observed.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			c.addTree(ctx, fsWatcher, event.Name)
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	kind, ok := c.disc.Classify(event.Name)
	if !ok {
		return
	}
	if _, registered := c.reloads[kind]; !registered {
		return
	}

	logger.G(ctx).
		WithField("path", event.Name).
		WithField("op", event.Op.String()).
		WithField("kind", string(kind)).
		Debug("source change detected")

	c.scheduleKick(kind)
}

// scheduleKick debounces events per kind, then delivers at most one pending
// kick to the kind's reload loop.
func (c *Coordinator) scheduleKick(kind discovery.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, exists := c.timers[kind]; exists {
		timer.Stop()
	}
	c.timers[kind] = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		kick := c.kicks[kind]
		c.mu.Unlock()
		if kick == nil {
			return
		}
		select {
		case kick <- struct{}{}:
		default:
			// A kick is already pending; the in-flight reload absorbs it.
		}
	})
}

// reloadLoop serializes reloads for one kind. A failed reload is logged and
// leaves the previous state in place.
func (c *Coordinator) reloadLoop(ctx context.Context, kind discovery.Kind, reload ReloadFunc, kick chan struct{}) {
	for {
		select {
		case <-kick:
			log := logger.G(ctx).WithField("kind", string(kind))
			log.Info("reloading")
			if err := reload(ctx); err != nil {
				log.WithError(err).Error("reload failed, keeping previous state")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Coordinator) stopTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, timer := range c.timers {
		timer.Stop()
	}
}
