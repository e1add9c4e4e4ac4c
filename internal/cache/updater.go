package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/weft-lang/weft/internal/dialect"
	"github.com/weft-lang/weft/internal/host"
)

// taskQueueSize bounds the pending-notification queue. Change bursts
// beyond it are dropped with a warning; a later save retriggers them.
const taskQueueSize = 64

// updater is the invalidation pipeline: a single background worker that
// reacts to change notifications, reloads affected dialect files, and
// swaps their items into the cache indexes. One worker processing tasks
// in arrival order keeps the swap single-writer.
type updater struct {
	cache  *Cache
	logger *zap.Logger

	tasks chan host.ChangeEvent
	stop  chan struct{}
	done  chan struct{}

	closeOnce sync.Once
}

func newUpdater(c *Cache, logger *zap.Logger) *updater {
	return &updater{
		cache:  c,
		logger: logger,
		tasks:  make(chan host.ChangeEvent, taskQueueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// start launches the worker goroutine.
func (u *updater) start() {
	go u.run()
}

// notify enqueues a change event for the worker. It never blocks the
// notification thread: when the queue is full or the updater is stopping
// the event is dropped.
func (u *updater) notify(event host.ChangeEvent) {
	select {
	case <-u.stop:
		return
	default:
	}

	select {
	case u.tasks <- event:
	default:
		u.logger.Warn("dialect reload queue saturated, dropping change event",
			zap.Int("paths", len(event.Paths)))
	}
}

// close stops the worker, waiting up to grace for in-flight work. Queued
// reloads still pending after that are abandoned; they only mean a stale
// dialect until the next change, never corruption.
func (u *updater) close(grace time.Duration) {
	u.closeOnce.Do(func() {
		close(u.stop)
	})

	select {
	case <-u.done:
	case <-time.After(grace):
		u.logger.Warn("timed out waiting for dialect reload worker, abandoning queued reloads")
	}
}

// run is the worker loop: one task at a time, strict arrival order.
func (u *updater) run() {
	defer close(u.done)

	for {
		select {
		case <-u.stop:
			return
		case event := <-u.tasks:
			u.handle(event)
		}
	}
}

// handle processes a single change event: filter to completed changes,
// match against the watched file set, reload each affected file, and
// swap the updated dialects into the indexes.
func (u *updater) handle(event host.ChangeEvent) {
	if event.Kind != host.PostChange {
		return
	}

	for _, path := range u.cache.watchedPaths() {
		if !event.Affects(path) {
			continue
		}
		u.reload(path)
	}
}

// reload loads the dialect file at path and replaces its indexed items.
// A load failure skips this file only; other affected files still
// reload, and the worker keeps running.
func (u *updater) reload(path string) {
	u.logger.Info("dialect file changed, reloading dialect",
		zap.String("path", path))

	updated := u.cache.loader.LoadAll(dialect.NewSingleFileLocator(path))
	if len(updated) == 0 {
		return
	}

	project, ok := u.cache.workspace.ProjectFor(path)
	if !ok {
		u.logger.Warn("changed dialect file belongs to no open project",
			zap.String("path", path))
		return
	}

	for _, d := range updated {
		u.cache.replaceDialectItems(d.Identity(), d, project)
	}
}
