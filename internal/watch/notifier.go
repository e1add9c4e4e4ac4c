// Package watch delivers file change notifications to subscribers. It
// backs the host.Notifier contract with fsnotify, debouncing editor save
// bursts into single post-change events.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/weft-lang/weft/internal/host"
)

// defaultDebounce batches rapid successive writes to the same files.
const defaultDebounce = 100 * time.Millisecond

// Notifier watches directories for changes and broadcasts debounced
// post-change events to subscribed listeners.
type Notifier struct {
	watcher  *fsnotify.Watcher
	debounce *debouncer
	logger   *zap.Logger

	mu        sync.Mutex
	listeners map[int]host.ChangeListener
	nextID    int

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewNotifier creates a notifier. Debounce <= 0 uses the default.
func NewNotifier(debounce time.Duration, logger *zap.Logger) (*Notifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Notifier{
		watcher:   watcher,
		debounce:  newDebouncer(debounce),
		logger:    logger,
		listeners: make(map[int]host.ChangeListener),
		stopChan:  make(chan struct{}),
	}
	n.debounce.callback = n.broadcast
	return n, nil
}

// Watch adds a directory (and nothing below it) to the watch set. Watch
// the parent directories of dialect files rather than the files, so
// editors that replace-on-save are still observed.
func (n *Notifier) Watch(dir string) error {
	if err := n.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	n.logger.Debug("watching directory", zap.String("dir", dir))
	return nil
}

// WatchFileDirs adds the parent directory of every given file path.
func (n *Notifier) WatchFileDirs(paths []string) error {
	seen := make(map[string]struct{})
	for _, p := range paths {
		dir := filepath.Dir(p)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		if err := n.Watch(dir); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe implements host.Notifier.
func (n *Notifier) Subscribe(l host.ChangeListener) (cancel func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = l
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

// Start begins delivering events.
func (n *Notifier) Start() {
	n.wg.Add(1)
	go n.loop()
}

// Stop shuts the notifier down. Safe to call more than once.
func (n *Notifier) Stop() error {
	select {
	case <-n.stopChan:
		return nil
	default:
		close(n.stopChan)
	}
	n.wg.Wait()
	n.debounce.stop()
	return n.watcher.Close()
}

// loop is the fsnotify event loop.
func (n *Notifier) loop() {
	defer n.wg.Done()

	for {
		select {
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			n.debounce.add(event.Name)

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			n.logger.Warn("file watcher error", zap.Error(err))

		case <-n.stopChan:
			return
		}
	}
}

// broadcast fans a debounced batch out to every listener as one
// post-change event.
func (n *Notifier) broadcast(paths []string) {
	event := host.ChangeEvent{
		Kind:  host.PostChange,
		Paths: paths,
	}

	n.mu.Lock()
	listeners := make([]host.ChangeListener, 0, len(n.listeners))
	for _, l := range n.listeners {
		listeners = append(listeners, l)
	}
	n.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

// debouncer collects paths and fires the callback once no new path has
// arrived for the configured duration.
type debouncer struct {
	duration time.Duration
	callback func([]string)

	mu    sync.Mutex
	timer *time.Timer
	paths map[string]struct{}
}

func newDebouncer(duration time.Duration) *debouncer {
	return &debouncer{
		duration: duration,
		paths:    make(map[string]struct{}),
	}
}

func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.paths[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	if len(d.paths) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.paths))
	for p := range d.paths {
		paths = append(paths, p)
	}
	d.paths = make(map[string]struct{})
	callback := d.callback
	d.mu.Unlock()

	if callback != nil {
		callback(paths)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
