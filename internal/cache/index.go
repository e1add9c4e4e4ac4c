// Package cache implements the in-memory dialect cache at the heart of
// Weft content assist: ordered indexes over every known processor and
// expression object method, lazy per-project dialect discovery, and an
// incremental reload pipeline driven by file change notifications.
package cache

import (
	"sort"
	"strings"

	"github.com/weft-lang/weft/internal/dialect"
)

// orderedSet is a keyed ordered collection: elements are kept sorted by
// the comparator and an insert that compares equal to an existing element
// is rejected. Not safe for concurrent use; the cache serializes access.
type orderedSet[T any] struct {
	cmp   func(a, b T) int
	items []T
}

func newOrderedSet[T any](cmp func(a, b T) int) *orderedSet[T] {
	return &orderedSet[T]{cmp: cmp}
}

// insert adds v in sorted position, returning false if an equal element
// is already present.
func (s *orderedSet[T]) insert(v T) bool {
	i := sort.Search(len(s.items), func(i int) bool {
		return s.cmp(s.items[i], v) >= 0
	})
	if i < len(s.items) && s.cmp(s.items[i], v) == 0 {
		return false
	}
	s.items = append(s.items, v)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = v
	return true
}

// removeIf deletes every element matching pred, preserving order, and
// returns how many were removed.
func (s *orderedSet[T]) removeIf(pred func(T) bool) int {
	kept := s.items[:0]
	removed := 0
	for _, v := range s.items {
		if pred(v) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	// Zero the tail so removed elements do not pin memory.
	var zero T
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = zero
	}
	s.items = kept
	return removed
}

// snapshot returns a copy of the elements in order, safe to iterate
// without holding the cache lock.
func (s *orderedSet[T]) snapshot() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *orderedSet[T]) len() int {
	return len(s.items)
}

// compareProcessors orders processors so that a dialect's entries stay
// contiguous and alphabetical within the dialect, while entries of
// different dialects order by their full prefix:name for display.
func compareProcessors(a, b *dialect.Processor) int {
	if a.Dialect.Identity() == b.Dialect.Identity() {
		return strings.Compare(a.Name, b.Name)
	}
	return strings.Compare(a.FullName(), b.FullName())
}

// compareMethods orders expression object methods by full object.member
// name.
func compareMethods(a, b *dialect.ExpressionObjectMethod) int {
	return strings.Compare(a.Name, b.Name)
}
