package cache

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/weft-lang/weft/internal/dialect"
	"github.com/weft-lang/weft/internal/host"
)

// shutdownGrace bounds how long Close waits for the reload worker to
// finish in-flight work.
const shutdownGrace = 5 * time.Second

// Cache is the in-memory store of all known Weft dialects and their
// processors and expression object methods. Queries are scoped to a
// project and the namespaces visible at the query location; the first
// query for a project triggers a one-time scan of its dependency path.
//
// A Cache must be created with New and started with Initialize before
// use, and stopped with Close on shutdown.
type Cache struct {
	loader    *dialect.Loader
	workspace host.Workspace
	notifier  host.Notifier
	logger    *zap.Logger

	// mu guards the two indexes, the bundled list, and the membership
	// map. Queries snapshot under read lock; scans and reload swaps
	// mutate under write lock.
	mu         sync.RWMutex
	processors *orderedSet[*dialect.Processor]
	methods    *orderedSet[*dialect.ExpressionObjectMethod]
	bundled    []*dialect.Dialect
	membership map[string][]*dialect.Dialect

	// scans memoizes the per-project scan so concurrent first queries
	// for the same project perform the discovery work only once.
	scanMu sync.Mutex
	scans  map[string]*sync.Once

	// watched is the set of dialect file paths consulted on every
	// change notification. Grows during scans, iterated by the updater.
	watched sync.Map

	updater     *updater
	unsubscribe func()
	scanHook    func(paths []string)

	lifecycleMu sync.Mutex
	initialized bool
	closed      bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the cache logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithNotifier subscribes the cache to a change notification source so
// edited dialect files are reloaded incrementally.
func WithNotifier(n host.Notifier) Option {
	return func(c *Cache) {
		c.notifier = n
	}
}

// WithScanHook registers fn to receive the dialect file paths discovered
// by each project scan, after they have been added to the watched set.
// Used to point the file watcher at the right directories.
func WithScanHook(fn func(paths []string)) Option {
	return func(c *Cache) {
		c.scanHook = fn
	}
}

// New creates a dialect cache over the given workspace.
func New(workspace host.Workspace, opts ...Option) *Cache {
	c := &Cache{
		workspace:  workspace,
		logger:     zap.NewNop(),
		processors: newOrderedSet(compareProcessors),
		methods:    newOrderedSet(compareMethods),
		membership: make(map[string][]*dialect.Dialect),
		scans:      make(map[string]*sync.Once),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.loader = dialect.NewLoader(c.logger)
	return c
}

// Initialize loads the bundled dialects, starts the reload worker, and
// subscribes to change notifications. It is idempotent.
func (c *Cache) Initialize() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.closed {
		return fmt.Errorf("cache is closed")
	}
	if c.initialized {
		return nil
	}

	c.logger.Info("loading bundled dialect files")
	bundled := c.loader.LoadAll(dialect.NewBundledLocator())

	c.mu.Lock()
	for _, d := range bundled {
		c.bundled = append(c.bundled, d)
		c.indexDialectLocked(d, nil)
	}
	c.mu.Unlock()

	c.updater = newUpdater(c, c.logger)
	c.updater.start()

	if c.notifier != nil {
		c.unsubscribe = c.notifier.Subscribe(c.updater.notify)
	}

	c.initialized = true
	return nil
}

// Close stops the reload worker, waiting up to a bounded grace period for
// in-flight work, and unregisters from change notifications. Queued
// reloads still pending after the grace period are abandoned.
func (c *Cache) Close() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.updater != nil {
		c.updater.close(shutdownGrace)
	}
	return nil
}

// Processor returns the processor of the given kind whose prefixed name
// equals name, provided its dialect is a member of the project and
// visible under the given namespaces. Returns nil when nothing matches.
func (c *Cache) Processor(project host.Project, namespaces []dialect.Namespace, kind dialect.ProcessorKind, name string) *dialect.Processor {
	c.ensureProjectScanned(project)

	for _, p := range c.snapshotProcessors() {
		if p.Kind == kind &&
			c.dialectInProject(p.Dialect, project) &&
			p.Dialect.InNamespaces(namespaces) &&
			p.MatchesName(name) {
			return p
		}
	}
	return nil
}

// Processors returns every processor of the given kind whose prefixed
// name starts with pattern, filtered by project membership and namespace
// visibility, in index order. An empty pattern matches nothing.
func (c *Cache) Processors(project host.Project, namespaces []dialect.Namespace, kind dialect.ProcessorKind, pattern string) []*dialect.Processor {
	c.ensureProjectScanned(project)

	var matched []*dialect.Processor
	for _, p := range c.snapshotProcessors() {
		if p.Kind == kind &&
			c.dialectInProject(p.Dialect, project) &&
			p.Dialect.InNamespaces(namespaces) &&
			p.MatchesPattern(pattern) {
			matched = append(matched, p)
		}
	}
	return matched
}

// AttributeProcessors returns the attribute processors matching pattern.
func (c *Cache) AttributeProcessors(project host.Project, namespaces []dialect.Namespace, pattern string) []*dialect.Processor {
	return c.Processors(project, namespaces, dialect.AttributeProcessor, pattern)
}

// ElementProcessors returns the element processors matching pattern.
func (c *Cache) ElementProcessors(project host.Project, namespaces []dialect.Namespace, pattern string) []*dialect.Processor {
	return c.Processors(project, namespaces, dialect.ElementProcessor, pattern)
}

// ExpressionObjectMethod returns the expression object method whose full
// object.member name equals name, or nil.
func (c *Cache) ExpressionObjectMethod(project host.Project, namespaces []dialect.Namespace, name string) *dialect.ExpressionObjectMethod {
	c.ensureProjectScanned(project)

	for _, m := range c.snapshotMethods() {
		if c.dialectInProject(m.Dialect, project) &&
			m.Dialect.InNamespaces(namespaces) &&
			m.MatchesName(name) {
			return m
		}
	}
	return nil
}

// ExpressionObjectMethods returns every expression object method whose
// full name starts with pattern, in index order. An empty pattern matches
// nothing.
func (c *Cache) ExpressionObjectMethods(project host.Project, namespaces []dialect.Namespace, pattern string) []*dialect.ExpressionObjectMethod {
	c.ensureProjectScanned(project)

	var matched []*dialect.ExpressionObjectMethod
	for _, m := range c.snapshotMethods() {
		if c.dialectInProject(m.Dialect, project) &&
			m.Dialect.InNamespaces(namespaces) &&
			m.MatchesPattern(pattern) {
			matched = append(matched, m)
		}
	}
	return matched
}

// ProjectDialects scans the project if needed and returns the dialects
// currently considered members of it, in discovery order.
func (c *Cache) ProjectDialects(project host.Project) []*dialect.Dialect {
	c.ensureProjectScanned(project)

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*dialect.Dialect, len(c.membership[project.Name()]))
	copy(out, c.membership[project.Name()])
	return out
}

// ensureProjectScanned performs the one-time dialect discovery for a
// project. The per-project once closes the check-then-act race between
// two first queries arriving together; scans of different projects
// proceed independently.
func (c *Cache) ensureProjectScanned(project host.Project) {
	c.scanMu.Lock()
	once, ok := c.scans[project.Name()]
	if !ok {
		once = &sync.Once{}
		c.scans[project.Name()] = once
	}
	c.scanMu.Unlock()

	once.Do(func() {
		c.scanProject(project)
	})
}

// scanProject discovers every dialect on the project's dependency path,
// indexes its items, records membership, and adds each bundled dialect
// whose implementation type resolves inside the project.
func (c *Cache) scanProject(project host.Project) {
	c.logger.Info("scanning project for dialects",
		zap.String("project", project.Name()))

	roots := append(append([]string{}, project.SourceRoots()...), project.DependencyRoots()...)
	locator := dialect.NewProjectLocator(roots)
	dialects := c.loader.LoadAll(locator)

	c.mu.Lock()
	for _, d := range dialects {
		c.indexDialectLocked(d, project)
	}
	members := append([]*dialect.Dialect{}, dialects...)

	for _, d := range c.bundled {
		if !c.typeResolves(project, d.Class) {
			continue
		}
		members = append(members, d)
		// Bundled items were indexed without a project at startup;
		// now that one can resolve their types, fill in generated
		// expression object methods and missing documentation. The
		// keyed indexes drop anything already present.
		c.indexDialectLocked(d, project)
	}
	c.membership[project.Name()] = members
	c.mu.Unlock()

	paths := locator.DialectFilePaths()
	for _, path := range paths {
		c.watched.Store(path, struct{}{})
	}
	if c.scanHook != nil && len(paths) > 0 {
		c.scanHook(paths)
	}
}

// replaceDialectItems removes every indexed item owned by the dialect
// identity and indexes the freshly loaded dialect in its place. Only the
// reload worker calls this, so it never races with itself.
func (c *Cache) replaceDialectItems(oldIdentity string, updated *dialect.Dialect, project host.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.processors.removeIf(func(p *dialect.Processor) bool {
		return p.Dialect.Identity() == oldIdentity
	})
	c.methods.removeIf(func(m *dialect.ExpressionObjectMethod) bool {
		return m.Dialect.Identity() == oldIdentity
	})

	c.indexDialectLocked(updated, project)

	// Keep the membership entry pointing at the live instance.
	members := c.membership[project.Name()]
	replaced := false
	for i, d := range members {
		if d.Identity() == oldIdentity {
			members[i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		c.membership[project.Name()] = append(members, updated)
	}
}

// indexDialectLocked puts a dialect's items into their collections. The
// caller holds the write lock. A nil project skips documentation
// enrichment and expression object method generation, since both need
// the project's type resolver.
func (c *Cache) indexDialectLocked(d *dialect.Dialect, project host.Project) {
	for _, item := range d.Items {
		switch item.Kind {
		case dialect.ItemProcessor:
			p := item.Processor
			if p.Documentation == nil && p.Class != "" && project != nil {
				if doc := c.generateDocumentation(p, project); doc != nil {
					// Enrich a copy rather than the shared instance:
					// readers hold snapshots outside the lock, and the
					// dialect's items are visible to other projects.
					enriched := *p
					enriched.Documentation = doc
					c.processors.removeIf(func(q *dialect.Processor) bool {
						return compareProcessors(q, &enriched) == 0
					})
					c.processors.insert(&enriched)
					continue
				}
			}
			c.processors.insert(p)
		case dialect.ItemExpressionObjectMethod:
			c.methods.insert(item.Method)
		case dialect.ItemExpressionObject:
			if project == nil {
				continue
			}
			for _, m := range c.generateExpressionObjectMethods(d, item.ExpressionObject, project) {
				c.methods.insert(m)
			}
		}
	}
}

// dialectInProject reports whether the dialect is in the project's
// recorded membership, compared by dialect identity so a reloaded
// instance still counts.
func (c *Cache) dialectInProject(d *dialect.Dialect, project host.Project) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, member := range c.membership[project.Name()] {
		if member.Identity() == d.Identity() {
			return true
		}
	}
	return false
}

// typeResolves reports whether the named type resolves in the project.
// Resolution failures count as "not found", never as errors.
func (c *Cache) typeResolves(project host.Project, name string) bool {
	if name == "" {
		return false
	}
	info, err := project.ResolveType(name)
	if err != nil {
		c.logger.Warn("unable to access project type information",
			zap.String("project", project.Name()),
			zap.String("type", name),
			zap.Error(err))
		return false
	}
	return info != nil
}

// watchedPaths returns a snapshot of the watched dialect file set.
func (c *Cache) watchedPaths() []string {
	var paths []string
	c.watched.Range(func(key, _ any) bool {
		paths = append(paths, key.(string))
		return true
	})
	return paths
}

func (c *Cache) snapshotProcessors() []*dialect.Processor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processors.snapshot()
}

func (c *Cache) snapshotMethods() []*dialect.ExpressionObjectMethod {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.methods.snapshot()
}
