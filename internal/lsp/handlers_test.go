package lsp

import (
	"testing"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/weft-lang/weft/internal/dialect"
)

func TestExtractNamespaces(t *testing.T) {
	content := `<!DOCTYPE html>
<html xmlns:wf="http://weft-lang.org/weft"
      xmlns:app='http://example.com/app'>
</html>`

	got := extractNamespaces(content)
	want := []dialect.Namespace{
		{Prefix: "wf", URI: "http://weft-lang.org/weft"},
		{Prefix: "app", URI: "http://example.com/app"},
	}
	if len(got) != len(want) {
		t.Fatalf("extracted %d namespaces, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("namespace %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if got := extractNamespaces("<html></html>"); len(got) != 0 {
		t.Errorf("extracted %d namespaces from plain markup, want 0", len(got))
	}
}

func TestTokenAt(t *testing.T) {
	content := "<div wf:te x=\"#strings.jo\">\nsecond line"

	tests := []struct {
		name      string
		line      int
		character int
		want      string
	}{
		{"mid attribute", 0, 10, "wf:te"},
		{"expression token", 0, 25, "#strings.jo"},
		{"start of line", 0, 0, ""},
		{"after space", 0, 5, ""},
		{"past line end", 0, 100, ""},
		{"line out of range", 5, 0, ""},
		{"negative line", -1, 0, ""},
	}

	for _, tt := range tests {
		if got := tokenAt(content, tt.line, tt.character); got != tt.want {
			t.Errorf("%s: tokenAt = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestByteColumn(t *testing.T) {
	tests := []struct {
		text      string
		character int
		want      int
	}{
		{"abc", 0, 0},
		{"abc", 2, 2},
		{"abc", 99, 3},
		{"abc", -1, 0},
		// é is one UTF-16 unit but two bytes.
		{"éa", 1, 2},
		{"éa", 2, 3},
		// 🙂 is a surrogate pair: two UTF-16 units, four bytes.
		{"🙂a", 2, 4},
		{"🙂a", 3, 5},
	}

	for _, tt := range tests {
		if got := byteColumn(tt.text, tt.character); got != tt.want {
			t.Errorf("byteColumn(%q, %d) = %d, want %d", tt.text, tt.character, got, tt.want)
		}
	}
}

func TestTokenAt_NonASCII(t *testing.T) {
	// "<p>🙂 wf:te": the emoji occupies two UTF-16 units before the
	// token, so the cursor column no longer equals the byte offset.
	content := "<p>\U0001F642 wf:te"
	if got := tokenAt(content, 0, 11); got != "wf:te" {
		t.Errorf("tokenAt = %q, want wf:te", got)
	}
}

func TestWordAt_NonASCII(t *testing.T) {
	content := "héllo wf:text"
	if got := wordAt(content, 0, 8); got != "wf:text" {
		t.Errorf("wordAt = %q, want wf:text", got)
	}
}

func TestWordAt(t *testing.T) {
	content := `<div wf:text="hello">`

	// Cursor in the middle of wf:text extends to the full token.
	if got := wordAt(content, 0, 7); got != "wf:text" {
		t.Errorf("wordAt = %q, want wf:text", got)
	}
	if got := wordAt(content, 0, 0); got != "" {
		t.Errorf("wordAt at line start = %q, want empty", got)
	}
}

func TestIsTokenChar(t *testing.T) {
	for _, c := range []byte("azAZ09:.#-_") {
		if !isTokenChar(c) {
			t.Errorf("isTokenChar(%q) = false", c)
		}
	}
	for _, c := range []byte(` <>"'=/`) {
		if isTokenChar(c) {
			t.Errorf("isTokenChar(%q) = true", c)
		}
	}
}

func TestProcessorCompletionItem(t *testing.T) {
	d := &dialect.Dialect{Name: "Weft Standard", Prefix: "wf", SourcePath: "bundled/standard-dialect.xml"}
	p := &dialect.Processor{
		Kind:          dialect.AttributeProcessor,
		Name:          "text",
		Dialect:       d,
		Documentation: &dialect.Documentation{Value: "Replaces the element body."},
	}

	item := processorCompletionItem(p, protocol.CompletionItemKindProperty)
	if item.Label != "wf:text" {
		t.Errorf("Label = %q", item.Label)
	}
	if item.InsertText != "wf:text" {
		t.Errorf("InsertText = %q", item.InsertText)
	}
	if item.Detail != "Weft Standard" {
		t.Errorf("Detail = %q", item.Detail)
	}
	doc, ok := item.Documentation.(protocol.MarkupContent)
	if !ok || doc.Value != "Replaces the element body." {
		t.Errorf("Documentation = %+v", item.Documentation)
	}
}

func TestMethodCompletionItem(t *testing.T) {
	d := &dialect.Dialect{Name: "Weft Standard", Prefix: "wf"}

	method := methodCompletionItem(&dialect.ExpressionObjectMethod{
		Name:    "strings.join",
		Dialect: d,
	})
	if method.Label != "#strings.join" {
		t.Errorf("Label = %q", method.Label)
	}
	if method.Kind != protocol.CompletionItemKindMethod {
		t.Errorf("Kind = %v, want method", method.Kind)
	}

	property := methodCompletionItem(&dialect.ExpressionObjectMethod{
		Name:         "strings.empty",
		Dialect:      d,
		BeanProperty: true,
	})
	if property.Kind != protocol.CompletionItemKindProperty {
		t.Errorf("Kind = %v, want property for a bean property", property.Kind)
	}
}

func TestSetDocumentTracksNamespaces(t *testing.T) {
	s := &Server{documents: make(map[string]*document), logger: zap.NewNop()}

	uri := "file:///ws/app/templates/index.html"
	s.setDocument(uri, `<html xmlns:wf="http://weft-lang.org/weft"></html>`)

	s.docMu.RLock()
	doc := s.documents[uri]
	s.docMu.RUnlock()
	if doc == nil {
		t.Fatal("document not tracked")
	}
	if len(doc.namespaces) != 1 || doc.namespaces[0].Prefix != "wf" {
		t.Errorf("namespaces = %+v", doc.namespaces)
	}

	// A full-sync update replaces content and namespaces together.
	s.setDocument(uri, `<html xmlns:app="http://example.com/app"></html>`)
	s.docMu.RLock()
	doc = s.documents[uri]
	s.docMu.RUnlock()
	if len(doc.namespaces) != 1 || doc.namespaces[0].Prefix != "app" {
		t.Errorf("namespaces after update = %+v", doc.namespaces)
	}
}
