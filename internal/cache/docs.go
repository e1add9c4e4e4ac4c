package cache

import (
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/weft-lang/weft/internal/dialect"
	"github.com/weft-lang/weft/internal/host"
)

// generateDocumentation synthesizes documentation for a processor from
// the doc comment of its implementation type. Any resolution or read
// failure yields nil so content assist degrades to suggestions without
// hover text.
func (c *Cache) generateDocumentation(p *dialect.Processor, project host.Project) *dialect.Documentation {
	info, err := project.ResolveType(p.Class)
	if err != nil {
		c.logger.Warn("unable to access processor type in the project",
			zap.String("type", p.Class),
			zap.Error(err))
		return nil
	}
	if info == nil || info.Doc == "" {
		return nil
	}
	return &dialect.Documentation{Value: info.Doc}
}

// generateExpressionObjectMethods derives suggestible methods from an
// expression object reference by resolving its implementation type and
// walking the type's method set. Accessor-style methods are converted to
// bean properties, e.g. GetFormat and IsEmpty both suggest as
// "<object>.format" / "<object>.empty".
func (c *Cache) generateExpressionObjectMethods(d *dialect.Dialect, obj *dialect.ExpressionObject, project host.Project) []*dialect.ExpressionObjectMethod {
	info, err := project.ResolveType(obj.Class)
	if err != nil {
		c.logger.Warn("unable to locate expression object reference",
			zap.String("type", obj.Class),
			zap.Error(err))
		return nil
	}
	if info == nil {
		return nil
	}

	methods := make([]*dialect.ExpressionObjectMethod, 0, len(info.Methods))
	for _, m := range info.Methods {
		generated := &dialect.ExpressionObjectMethod{
			Dialect: d,
		}
		if property, ok := beanProperty(m.Name); ok {
			generated.Name = obj.Name + "." + property
			generated.BeanProperty = true
		} else {
			generated.Name = obj.Name + "." + m.Name
		}
		if m.Doc != "" {
			generated.Documentation = &dialect.Documentation{Value: m.Doc}
		}
		methods = append(methods, generated)
	}
	return methods
}

// beanProperty converts an accessor method name to its property form:
// GetTitle and SetTitle become "title", IsEmpty becomes "empty". Names
// without an accessor prefix are not properties. Lowercase get/set/is
// prefixes are honored too, for dialects implemented outside Go.
func beanProperty(name string) (string, bool) {
	cut := 0
	switch {
	case hasAccessorPrefix(name, "Get"), hasAccessorPrefix(name, "Set"),
		hasAccessorPrefix(name, "get"), hasAccessorPrefix(name, "set"):
		cut = 3
	case hasAccessorPrefix(name, "Is"), hasAccessorPrefix(name, "is"):
		cut = 2
	default:
		return "", false
	}

	rest := name[cut:]
	r, size := utf8.DecodeRuneInString(rest)
	return string(unicode.ToLower(r)) + rest[size:], true
}

// hasAccessorPrefix reports whether name starts with the prefix and the
// character after it is uppercase, so "Settle" is not a setter.
func hasAccessorPrefix(name, prefix string) bool {
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[len(prefix):])
	return unicode.IsUpper(r)
}
