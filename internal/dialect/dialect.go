// Package dialect defines the Weft dialect metadata model: a dialect is a
// named package of markup extensions (custom attributes, custom elements,
// and expression helper objects) scoped by an XML namespace prefix. It also
// provides the loader and locators that turn dialect metadata documents
// into validated in-memory dialects.
package dialect

import "strings"

// ProcessorKind distinguishes the two kinds of markup extension a dialect
// can contribute.
type ProcessorKind int

const (
	// AttributeProcessor is a custom attribute, e.g. wf:text.
	AttributeProcessor ProcessorKind = iota
	// ElementProcessor is a custom element, e.g. <wf:block>.
	ElementProcessor
)

// String returns the kind name used in dialect documents and logs.
func (k ProcessorKind) String() string {
	if k == ElementProcessor {
		return "element"
	}
	return "attribute"
}

// ItemKind discriminates the DialectItem variants.
type ItemKind int

const (
	// ItemProcessor is an attribute or element processor.
	ItemProcessor ItemKind = iota
	// ItemExpressionObject is an expression helper object reference whose
	// methods become suggestible once the implementation type is resolved.
	ItemExpressionObject
	// ItemExpressionObjectMethod is a single suggestible helper method.
	ItemExpressionObjectMethod
)

// Namespace is a (prefix, URI) pair as declared at some point in a
// template document, e.g. xmlns:wf="http://weft-lang.org/weft".
type Namespace struct {
	Prefix string
	URI    string
}

// Documentation is rendered help text attached to a dialect item, shown by
// editors as hover/completion detail.
type Documentation struct {
	Value string
	// Reference points at an external spec section, if the dialect
	// document provided one.
	Reference string
}

// Dialect is a named extension package contributed by a library on a
// project's dependency path, or bundled with Weft itself.
type Dialect struct {
	// Name is the display name of the dialect.
	Name string
	// Prefix is the markup namespace prefix its processors live under.
	Prefix string
	// NamespaceURI is the XML namespace the dialect is declared under.
	NamespaceURI string
	// NamespaceStrict requires both prefix and URI to match for the
	// dialect to be visible; when false the prefix alone suffices.
	NamespaceStrict bool
	// Class names the host type implementing the dialect. Used to test
	// whether a bundled dialect is on a project's dependency path.
	Class string
	// SourcePath is the metadata document this dialect was loaded from.
	// Reloads of the same document produce new Dialect values with the
	// same SourcePath, so identity is value-based, never pointer-based.
	SourcePath string

	// Items holds the dialect's processors and expression objects in
	// document order.
	Items []*Item
}

// Identity returns the stable identity of the dialect across reloads: the
// source document plus the prefix, since a single document may define more
// than one dialect.
func (d *Dialect) Identity() string {
	return d.SourcePath + "#" + d.Prefix
}

// Item is a tagged variant over the three dialect item shapes. Exactly one
// of Processor, ExpressionObject, or Method is set, per Kind.
type Item struct {
	Kind             ItemKind
	Processor        *Processor
	ExpressionObject *ExpressionObject
	Method           *ExpressionObjectMethod
}

// Processor is a single markup extension point: a custom attribute or
// element contributed by a dialect.
type Processor struct {
	Kind ProcessorKind
	// Name is the local name, without the dialect prefix.
	Name string
	// Dialect is the owning dialect. Every indexed processor references
	// exactly one.
	Dialect *Dialect
	// Class optionally names the host type implementing the processor,
	// used to synthesize documentation when none is declared.
	Class string
	// Documentation is the declared or synthesized help text, if any.
	Documentation *Documentation
}

// FullName returns the prefixed name, e.g. "wf:text".
func (p *Processor) FullName() string {
	return p.Dialect.Prefix + ":" + p.Name
}

// MatchesName reports whether the given prefix:name string names this
// processor exactly. Empty names never match.
func (p *Processor) MatchesName(name string) bool {
	if name == "" {
		return false
	}
	sep := strings.IndexByte(name, ':')
	if sep == -1 {
		return false
	}
	return p.Dialect.Prefix == name[:sep] && p.Name == name[sep+1:]
}

// MatchesPattern reports whether the processor's full name starts with the
// given pattern. Empty patterns never match.
func (p *Processor) MatchesPattern(pattern string) bool {
	return pattern != "" && strings.HasPrefix(p.FullName(), pattern)
}

// ExpressionObject is a reference to a helper object usable inside template
// expressions, e.g. #dates. Its suggestible methods are derived from the
// implementation type's method set at index time.
type ExpressionObject struct {
	// Name is the expression-accessible root identifier, without the #.
	Name string
	// Class names the host type whose methods become suggestible.
	Class string
	// Dialect is the owning dialect.
	Dialect *Dialect
}

// ExpressionObjectMethod is a single suggestible member of an expression
// object, e.g. #dates.format.
type ExpressionObjectMethod struct {
	// Name is the full object.member name, e.g. "dates.format". The
	// member part is bean-property-cased when derived from an accessor.
	Name string
	// Dialect is the owning dialect.
	Dialect *Dialect
	// BeanProperty is true when the name was derived from a
	// getter/setter-style accessor on the implementation type.
	BeanProperty bool
	// Documentation is the declared or synthesized help text, if any.
	Documentation *Documentation
}

// FullName returns the object.member name. Present for symmetry with
// Processor, since both are matched on their full names.
func (m *ExpressionObjectMethod) FullName() string {
	return m.Name
}

// MatchesName reports whether the given object.member string names this
// method exactly. Empty names never match.
func (m *ExpressionObjectMethod) MatchesName(name string) bool {
	return name != "" && m.Name == name
}

// MatchesPattern reports whether the method's full name starts with the
// given pattern. Empty patterns never match.
func (m *ExpressionObjectMethod) MatchesPattern(pattern string) bool {
	return pattern != "" && strings.HasPrefix(m.Name, pattern)
}

// InNamespaces reports whether the dialect is visible given the namespaces
// declared at the query's document location: some pair's prefix must equal
// the dialect's prefix, and for namespace-strict dialects the URI must
// match as well.
func (d *Dialect) InNamespaces(namespaces []Namespace) bool {
	for _, ns := range namespaces {
		if d.Prefix != ns.Prefix {
			continue
		}
		if !d.NamespaceStrict {
			return true
		}
		if d.NamespaceURI == ns.URI {
			return true
		}
	}
	return false
}
