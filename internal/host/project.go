// Package host models the boundary to the editor host: projects and their
// dependency paths, type resolution for documentation lookup, and the
// change notifications that drive incremental reloads. The dialect cache
// consumes these contracts; it never reaches into the host directly.
package host

// Project is a single project open in the host workspace.
type Project interface {
	// Name identifies the project. Stable for the host session.
	Name() string

	// SourceRoots returns the project's own source and resource roots.
	SourceRoots() []string

	// DependencyRoots returns roots contributed by the project's
	// dependencies, in dependency-path order.
	DependencyRoots() []string

	// ResolveType resolves a fully qualified type name on the project's
	// build path. It returns (nil, nil) when the type does not resolve;
	// an error only for access failures.
	ResolveType(name string) (*TypeInfo, error)
}

// Workspace is the collection of open projects, able to answer which
// project owns a given resource path.
type Workspace interface {
	// Projects returns all open projects.
	Projects() []Project

	// ProjectFor returns the project owning the given path, if any.
	ProjectFor(path string) (Project, bool)
}

// TypeInfo describes a resolved host type: its documentation comment and
// exported method set.
type TypeInfo struct {
	// Name is the fully qualified type name as resolved.
	Name string
	// Doc is the type's documentation comment, rendered as plain text.
	Doc string
	// Methods lists the type's exported methods.
	Methods []MethodInfo
}

// MethodInfo is a single exported method on a resolved type.
type MethodInfo struct {
	Name string
	Doc  string
}
