package host

import "path/filepath"

// ChangeKind distinguishes notifications sent before a change is applied
// from those sent after it completed. Only completed changes are acted on.
type ChangeKind int

const (
	// PreChange announces a change that is about to happen.
	PreChange ChangeKind = iota
	// PostChange announces a completed change.
	PostChange
)

// ChangeEvent is a coarse-grained "something changed" notification. It
// carries enough to test whether a watched path was affected; recovering
// the owning project goes through the Workspace.
type ChangeEvent struct {
	Kind ChangeKind
	// Paths are the changed resource paths.
	Paths []string
}

// Affects reports whether the event touched the given path.
func (e ChangeEvent) Affects(path string) bool {
	for _, p := range e.Paths {
		if p == path {
			return true
		}
		// Tolerate one side being unclean, e.g. a watcher reporting
		// "./dir/x" against a recorded "dir/x".
		if filepath.Clean(p) == filepath.Clean(path) {
			return true
		}
	}
	return false
}

// ChangeListener receives change events. Implementations must not block:
// the notifier delivers events from its own loop.
type ChangeListener func(ChangeEvent)

// Notifier delivers change events to subscribed listeners. Subscribe
// returns a cancel function that unregisters the listener.
type Notifier interface {
	Subscribe(l ChangeListener) (cancel func())
}

// StaticWorkspace is a Workspace over a fixed set of projects, resolving
// path ownership by source-root prefix.
type StaticWorkspace struct {
	projects []Project
}

// NewStaticWorkspace creates a workspace over the given projects.
func NewStaticWorkspace(projects ...Project) *StaticWorkspace {
	return &StaticWorkspace{projects: projects}
}

// Projects implements Workspace.
func (w *StaticWorkspace) Projects() []Project {
	return w.projects
}

// ProjectFor implements Workspace. A path belongs to the first project
// with a source or dependency root that is a prefix of it.
func (w *StaticWorkspace) ProjectFor(path string) (Project, bool) {
	clean := filepath.Clean(path)
	for _, p := range w.projects {
		for _, root := range append(p.SourceRoots(), p.DependencyRoots()...) {
			root = filepath.Clean(root)
			if clean == root || len(clean) > len(root) && clean[:len(root)] == root && clean[len(root)] == filepath.Separator {
				return p, true
			}
		}
	}
	return nil, false
}
