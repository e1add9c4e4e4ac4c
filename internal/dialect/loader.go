package dialect

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Source is a raw dialect metadata document handle produced by a Locator.
type Source struct {
	// Path identifies the document; it becomes the SourcePath of every
	// dialect loaded from it.
	Path string
	// Open returns the document content. Each call returns a fresh
	// reader.
	Open func() (io.ReadCloser, error)
}

// Loader parses dialect metadata documents into validated Dialect graphs.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a dialect loader. A nil logger disables logging.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadAll locates and loads every dialect reachable through the locator.
// A document that fails to locate, read, or validate is logged and
// skipped; it never fails the load of the remaining documents.
func (l *Loader) LoadAll(locator Locator) []*Dialect {
	sources, err := locator.Locate()
	if err != nil {
		l.logger.Warn("dialect location failed", zap.Error(err))
		return nil
	}

	var dialects []*Dialect
	for _, src := range sources {
		loaded, err := l.Load(src)
		if err != nil {
			l.logger.Warn("skipping unreadable dialect document",
				zap.String("path", src.Path),
				zap.Error(err))
			continue
		}
		dialects = append(dialects, loaded...)
	}
	return dialects
}

// Load parses a single dialect document. A document normally defines one
// dialect, but a <dialects> root may carry several.
func (l *Loader) Load(src Source) ([]*Dialect, error) {
	r, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open dialect document: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialect document: %w", err)
	}

	root, err := rootElement(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dialect document: %w", err)
	}

	var raw []xmlDialect
	switch root {
	case "dialect":
		var d xmlDialect
		if err := xml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to parse dialect document: %w", err)
		}
		raw = []xmlDialect{d}
	case "dialects":
		var set xmlDialectSet
		if err := xml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("failed to parse dialect document: %w", err)
		}
		raw = set.Dialects
	default:
		return nil, fmt.Errorf("unexpected root element <%s>", root)
	}

	dialects := make([]*Dialect, 0, len(raw))
	for _, d := range raw {
		built, err := l.build(d, src.Path)
		if err != nil {
			return nil, err
		}
		dialects = append(dialects, built)
	}
	return dialects, nil
}

// build validates a raw dialect and links its items back to it.
func (l *Loader) build(raw xmlDialect, path string) (*Dialect, error) {
	if raw.Prefix == "" {
		return nil, fmt.Errorf("dialect in %s has no prefix", path)
	}

	d := &Dialect{
		Name:            raw.Name,
		Prefix:          raw.Prefix,
		NamespaceURI:    raw.NamespaceURI,
		NamespaceStrict: raw.NamespaceStrict,
		Class:           raw.Class,
		SourcePath:      path,
	}

	for _, item := range raw.Items {
		switch item.XMLName.Local {
		case "attribute-processor", "element-processor":
			if item.Name == "" {
				return nil, fmt.Errorf("processor in dialect %s has no name", d.Prefix)
			}
			kind := AttributeProcessor
			if item.XMLName.Local == "element-processor" {
				kind = ElementProcessor
			}
			d.Items = append(d.Items, &Item{
				Kind: ItemProcessor,
				Processor: &Processor{
					Kind:          kind,
					Name:          item.Name,
					Dialect:       d,
					Class:         item.Class,
					Documentation: item.documentation(),
				},
			})
		case "expression-object":
			if item.Name == "" || item.Class == "" {
				return nil, fmt.Errorf("expression object in dialect %s needs a name and class", d.Prefix)
			}
			d.Items = append(d.Items, &Item{
				Kind: ItemExpressionObject,
				ExpressionObject: &ExpressionObject{
					Name:    item.Name,
					Class:   item.Class,
					Dialect: d,
				},
			})
		case "expression-object-method":
			if item.Name == "" {
				return nil, fmt.Errorf("expression object method in dialect %s has no name", d.Prefix)
			}
			d.Items = append(d.Items, &Item{
				Kind: ItemExpressionObjectMethod,
				Method: &ExpressionObjectMethod{
					Name:          item.Name,
					Dialect:       d,
					Documentation: item.documentation(),
				},
			})
		default:
			l.logger.Debug("ignoring unknown dialect item",
				zap.String("element", item.XMLName.Local),
				zap.String("path", path))
		}
	}

	return d, nil
}

// rootElement returns the local name of the document's root element.
func rootElement(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// xmlDialectSet is the <dialects> root wrapping multiple dialects in one
// document.
type xmlDialectSet struct {
	XMLName  xml.Name     `xml:"dialects"`
	Dialects []xmlDialect `xml:"dialect"`
}

type xmlDialect struct {
	XMLName         xml.Name  `xml:"dialect"`
	Name            string    `xml:"name,attr"`
	Prefix          string    `xml:"prefix,attr"`
	NamespaceURI    string    `xml:"namespace-uri,attr"`
	NamespaceStrict bool      `xml:"namespace-strict,attr"`
	Class           string    `xml:"class,attr"`
	Items           []xmlItem `xml:",any"`
}

// xmlItem captures any dialect child element; field order in the slice
// preserves document order across the different item element names.
type xmlItem struct {
	XMLName       xml.Name
	Name          string            `xml:"name,attr"`
	Class         string            `xml:"class,attr"`
	Documentation *xmlDocumentation `xml:"documentation"`
}

type xmlDocumentation struct {
	Reference string `xml:"reference,attr"`
	Value     string `xml:",chardata"`
}

func (i xmlItem) documentation() *Documentation {
	if i.Documentation == nil {
		return nil
	}
	return &Documentation{
		Value:     i.Documentation.Value,
		Reference: i.Documentation.Reference,
	}
}
