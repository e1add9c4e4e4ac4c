package dialect

import "testing"

func testDialect(prefix, uri string, strict bool) *Dialect {
	return &Dialect{
		Name:            "Test",
		Prefix:          prefix,
		NamespaceURI:    uri,
		NamespaceStrict: strict,
		SourcePath:      "test-dialect.xml",
	}
}

func TestDialect_Identity(t *testing.T) {
	d1 := testDialect("wf", "http://example.org/wf", false)
	d2 := testDialect("wf", "http://example.org/wf", false)

	if d1.Identity() != d2.Identity() {
		t.Errorf("same source and prefix should share identity: %q vs %q", d1.Identity(), d2.Identity())
	}

	d2.Prefix = "other"
	if d1.Identity() == d2.Identity() {
		t.Error("different prefixes should have different identities")
	}
}

func TestDialect_InNamespaces(t *testing.T) {
	tests := []struct {
		name       string
		strict     bool
		namespaces []Namespace
		want       bool
	}{
		{
			name:       "prefix match non-strict",
			namespaces: []Namespace{{Prefix: "wf", URI: "anything"}},
			want:       true,
		},
		{
			name:       "prefix mismatch",
			namespaces: []Namespace{{Prefix: "other", URI: "http://example.org/wf"}},
			want:       false,
		},
		{
			name:       "strict with matching uri",
			strict:     true,
			namespaces: []Namespace{{Prefix: "wf", URI: "http://example.org/wf"}},
			want:       true,
		},
		{
			name:       "strict with wrong uri",
			strict:     true,
			namespaces: []Namespace{{Prefix: "wf", URI: "http://example.org/other"}},
			want:       false,
		},
		{
			name:       "no namespaces",
			namespaces: nil,
			want:       false,
		},
		{
			name: "second pair matches",
			namespaces: []Namespace{
				{Prefix: "x", URI: "http://example.org/x"},
				{Prefix: "wf", URI: "http://example.org/wf"},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDialect("wf", "http://example.org/wf", tt.strict)
			if got := d.InNamespaces(tt.namespaces); got != tt.want {
				t.Errorf("InNamespaces() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcessor_FullName(t *testing.T) {
	p := &Processor{
		Kind:    AttributeProcessor,
		Name:    "text",
		Dialect: testDialect("wf", "", false),
	}
	if p.FullName() != "wf:text" {
		t.Errorf("FullName() = %q, want %q", p.FullName(), "wf:text")
	}
}

func TestProcessor_MatchesName(t *testing.T) {
	p := &Processor{
		Kind:    AttributeProcessor,
		Name:    "text",
		Dialect: testDialect("wf", "", false),
	}

	tests := []struct {
		name string
		want bool
	}{
		{"wf:text", true},
		{"wf:tex", false},
		{"other:text", false},
		{"text", false},
		{"", false},
		{"wf:", false},
	}
	for _, tt := range tests {
		if got := p.MatchesName(tt.name); got != tt.want {
			t.Errorf("MatchesName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestProcessor_MatchesPattern(t *testing.T) {
	p := &Processor{
		Kind:    AttributeProcessor,
		Name:    "text",
		Dialect: testDialect("wf", "", false),
	}

	tests := []struct {
		pattern string
		want    bool
	}{
		{"wf:te", true},
		{"wf:text", true},
		{"wf", true},
		{"wf:v", false},
		// Empty patterns are rejected, never treated as match-all.
		{"", false},
	}
	for _, tt := range tests {
		if got := p.MatchesPattern(tt.pattern); got != tt.want {
			t.Errorf("MatchesPattern(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestExpressionObjectMethod_Matching(t *testing.T) {
	m := &ExpressionObjectMethod{
		Name:    "dates.format",
		Dialect: testDialect("wf", "", false),
	}

	if !m.MatchesName("dates.format") {
		t.Error("exact name should match")
	}
	if m.MatchesName("") {
		t.Error("empty name should never match")
	}
	if !m.MatchesPattern("dates.fo") {
		t.Error("prefix pattern should match")
	}
	if m.MatchesPattern("") {
		t.Error("empty pattern should never match")
	}
	if m.MatchesPattern("dates.x") {
		t.Error("non-prefix pattern should not match")
	}
}

func TestProcessorKind_String(t *testing.T) {
	if AttributeProcessor.String() != "attribute" {
		t.Errorf("AttributeProcessor.String() = %q", AttributeProcessor.String())
	}
	if ElementProcessor.String() != "element" {
		t.Errorf("ElementProcessor.String() = %q", ElementProcessor.String())
	}
}
