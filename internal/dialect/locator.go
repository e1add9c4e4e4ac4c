package dialect

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed bundled/*.xml
var bundledFS embed.FS

// Locator yields the raw dialect metadata documents for some scope: the
// bundled defaults, a project plus its dependencies, or a single file.
type Locator interface {
	Locate() ([]Source, error)
}

// BundledLocator yields the dialect documents shipped with Weft itself.
type BundledLocator struct{}

// NewBundledLocator creates a locator over the embedded dialect documents.
func NewBundledLocator() *BundledLocator {
	return &BundledLocator{}
}

// Locate returns the embedded dialect documents in name order.
func (l *BundledLocator) Locate() ([]Source, error) {
	entries, err := fs.Glob(bundledFS, "bundled/*.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to list bundled dialects: %w", err)
	}
	sort.Strings(entries)

	sources := make([]Source, 0, len(entries))
	for _, name := range entries {
		name := name
		sources = append(sources, Source{
			Path: name,
			Open: func() (io.ReadCloser, error) {
				return bundledFS.Open(name)
			},
		})
	}
	return sources, nil
}

// ProjectLocator scans a project's source and dependency roots for dialect
// metadata documents. It remembers every dialect file path it found so
// callers can watch those files for changes.
type ProjectLocator struct {
	roots []string
	paths []string
}

// NewProjectLocator creates a locator over the given filesystem roots,
// normally a project's source roots followed by its dependency roots.
func NewProjectLocator(roots []string) *ProjectLocator {
	return &ProjectLocator{roots: roots}
}

// Locate walks the roots and returns a source for every dialect document,
// in walk order. Unreadable roots are skipped rather than failing the
// whole scan.
func (l *ProjectLocator) Locate() ([]Source, error) {
	var sources []Source
	l.paths = nil

	for _, root := range l.roots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() || !isDialectFile(path) {
				return nil
			}
			l.paths = append(l.paths, path)
			sources = append(sources, Source{
				Path: path,
				Open: func() (io.ReadCloser, error) {
					return os.Open(path)
				},
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s for dialects: %w", root, err)
		}
	}
	return sources, nil
}

// DialectFilePaths returns the dialect document paths found by the last
// Locate call.
func (l *ProjectLocator) DialectFilePaths() []string {
	return l.paths
}

// SingleFileLocator yields exactly one dialect document, used when
// reloading a changed file.
type SingleFileLocator struct {
	path string
}

// NewSingleFileLocator creates a locator for one dialect file path.
func NewSingleFileLocator(path string) *SingleFileLocator {
	return &SingleFileLocator{path: path}
}

// Locate returns the single file as a source.
func (l *SingleFileLocator) Locate() ([]Source, error) {
	path := l.path
	return []Source{{
		Path: path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}}, nil
}

// isDialectFile reports whether a path looks like a dialect metadata
// document. Dialect files end in "dialect.xml", e.g. standard-dialect.xml.
func isDialectFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "dialect.xml")
}
