package dialect

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestBundledLocator(t *testing.T) {
	sources, err := NewBundledLocator().Locate()
	if err != nil {
		t.Fatalf("Locate() failed: %v", err)
	}
	if len(sources) == 0 {
		t.Fatal("no bundled dialect documents found")
	}

	loader := NewLoader(nil)
	dialects := loader.LoadAll(NewBundledLocator())
	if len(dialects) == 0 {
		t.Fatal("bundled dialects failed to load")
	}

	var standard *Dialect
	for _, d := range dialects {
		if d.Prefix == "wf" {
			standard = d
		}
	}
	if standard == nil {
		t.Fatal("bundled standard dialect with prefix wf not found")
	}
	if standard.NamespaceStrict {
		t.Error("standard dialect should not be namespace strict")
	}
	if len(standard.Items) == 0 {
		t.Error("standard dialect has no items")
	}
}

func TestProjectLocator(t *testing.T) {
	root := t.TempDir()
	depRoot := t.TempDir()

	writeFile(t, filepath.Join(root, "templates", "app-dialect.xml"),
		`<dialect prefix="app"><attribute-processor name="x"/></dialect>`)
	writeFile(t, filepath.Join(root, "templates", "page.html"), `<html/>`)
	writeFile(t, filepath.Join(depRoot, "lib-dialect.xml"),
		`<dialect prefix="lib"><attribute-processor name="y"/></dialect>`)

	locator := NewProjectLocator([]string{root, depRoot})
	sources, err := locator.Locate()
	if err != nil {
		t.Fatalf("Locate() failed: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}

	paths := locator.DialectFilePaths()
	if len(paths) != 2 {
		t.Fatalf("got %d dialect file paths, want 2", len(paths))
	}
	for _, p := range paths {
		if filepath.Ext(p) != ".xml" {
			t.Errorf("unexpected dialect file path %q", p)
		}
	}

	// Each source must open the document at its own path, not the one
	// visited last during the walk.
	loader := NewLoader(nil)
	for _, src := range sources {
		dialects, err := loader.Load(src)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", src.Path, err)
		}
		if len(dialects) != 1 {
			t.Fatalf("Load(%s) returned %d dialects", src.Path, len(dialects))
		}
		want := "app"
		if filepath.Base(src.Path) == "lib-dialect.xml" {
			want = "lib"
		}
		if dialects[0].Prefix != want {
			t.Errorf("source %s loaded prefix %q, want %q", src.Path, dialects[0].Prefix, want)
		}
	}
}

func TestProjectLocator_MissingRoot(t *testing.T) {
	locator := NewProjectLocator([]string{filepath.Join(t.TempDir(), "does-not-exist")})
	sources, err := locator.Locate()
	if err != nil {
		t.Fatalf("Locate() should tolerate a missing root, got: %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("got %d sources from a missing root", len(sources))
	}
}

func TestSingleFileLocator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solo-dialect.xml")
	writeFile(t, path, `<dialect prefix="solo"><attribute-processor name="z"/></dialect>`)

	sources, err := NewSingleFileLocator(path).Locate()
	if err != nil {
		t.Fatalf("Locate() failed: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(sources))
	}
	if sources[0].Path != path {
		t.Errorf("source path = %q, want %q", sources[0].Path, path)
	}

	dialects, err := NewLoader(nil).Load(sources[0])
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(dialects) != 1 || dialects[0].Prefix != "solo" {
		t.Errorf("unexpected dialects loaded: %v", dialects)
	}
}

func TestIsDialectFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"app-dialect.xml", true},
		{"dialect.xml", true},
		{filepath.Join("x", "y", "standard-dialect.xml"), true},
		{"dialect.xsd", false},
		{"app.xml", false},
		{"dialect.xml.bak", false},
	}
	for _, tt := range tests {
		if got := isDialectFile(tt.path); got != tt.want {
			t.Errorf("isDialectFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
