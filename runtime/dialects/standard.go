// Package dialects implements the processors of the standard Weft
// dialect, the wf: attributes and elements available in every template.
package dialects

import (
	"fmt"
	"html"
)

// Standard is the standard Weft dialect. Its presence on a project's
// build path is what marks the project as a Weft user.
type Standard struct{}

// Name returns the dialect display name.
func (Standard) Name() string { return "Weft Standard" }

// Prefix returns the markup prefix the dialect's processors live under.
func (Standard) Prefix() string { return "wf" }

// Node is the mutable view of a template element that processors
// transform during rendering.
type Node struct {
	Tag   string
	Attrs map[string]string

	// Body is the rendered element body. Raw marks it as pre-escaped
	// markup that must not be escaped again.
	Body string
	Raw  bool

	// Omit drops the element and its body entirely; Unwrap drops only
	// the tag and keeps the body.
	Omit   bool
	Unwrap bool

	// Repeat holds the entries the element renders once per, set by
	// iteration processors.
	Repeat []any

	// Locals are variables scoped to this element and its children.
	Locals map[string]any
}

func (n *Node) setAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

func (n *Node) setLocal(name string, value any) {
	if n.Locals == nil {
		n.Locals = make(map[string]any)
	}
	n.Locals[name] = value
}

// TextAttribute implements wf:text. It replaces the element body with
// the escaped string form of the expression result.
type TextAttribute struct{}

func (TextAttribute) Apply(n *Node, value any) {
	n.Body = html.EscapeString(stringify(value))
	n.Raw = false
}

// RawTextAttribute implements wf:utext. It replaces the element body
// with the unescaped string form of the expression result.
type RawTextAttribute struct{}

func (RawTextAttribute) Apply(n *Node, value any) {
	n.Body = stringify(value)
	n.Raw = true
}

// IfAttribute implements wf:if. The element renders only when the
// expression result is truthy.
type IfAttribute struct{}

func (IfAttribute) Apply(n *Node, value any) {
	if !truthy(value) {
		n.Omit = true
	}
}

// UnlessAttribute implements wf:unless. The element renders only when
// the expression result is falsy.
type UnlessAttribute struct{}

func (UnlessAttribute) Apply(n *Node, value any) {
	if truthy(value) {
		n.Omit = true
	}
}

// EachAttribute implements wf:each. The element renders once for every
// entry of the iterable expression result.
type EachAttribute struct{}

func (EachAttribute) Apply(n *Node, entries []any) {
	n.Repeat = entries
}

// AttrAttribute implements wf:attr. It sets element attributes from the
// expression result map.
type AttrAttribute struct{}

func (AttrAttribute) Apply(n *Node, attrs map[string]any) {
	for name, value := range attrs {
		n.setAttr(name, stringify(value))
	}
}

// WithAttribute implements wf:with. It declares local variables scoped
// to the element.
type WithAttribute struct{}

func (WithAttribute) Apply(n *Node, locals map[string]any) {
	for name, value := range locals {
		n.setLocal(name, value)
	}
}

// BlockElement implements <wf:block>, a synthetic container whose tag
// is removed from the output while its body is kept.
type BlockElement struct{}

func (BlockElement) Apply(n *Node) {
	n.Unwrap = true
}

// FragmentElement implements <wf:fragment>, defining a reusable named
// template fragment. The definition itself produces no output.
type FragmentElement struct{}

func (FragmentElement) Apply(n *Node) {
	n.Omit = true
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// truthy follows template conditional semantics: nil, false, zero
// numbers, and empty strings are falsy; everything else is truthy.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}
