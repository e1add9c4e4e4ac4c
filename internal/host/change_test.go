package host

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeEvent_Affects(t *testing.T) {
	event := ChangeEvent{
		Kind:  PostChange,
		Paths: []string{"/ws/app/weft/app-dialect.xml", "./rel/lib-dialect.xml"},
	}

	assert.True(t, event.Affects("/ws/app/weft/app-dialect.xml"))
	assert.True(t, event.Affects("rel/lib-dialect.xml"), "unclean paths should still compare equal")
	assert.False(t, event.Affects("/ws/app/weft/other-dialect.xml"))
	assert.False(t, event.Affects(""))
	assert.False(t, ChangeEvent{}.Affects("/ws/app/weft/app-dialect.xml"))
}

func TestStaticWorkspace_ProjectFor(t *testing.T) {
	appRoot := filepath.Join(t.TempDir(), "app")
	depRoot := filepath.Join(t.TempDir(), "dep")
	app := NewGoProject("app",
		ModuleMapping{Module: "example.com/app", Root: appRoot},
		ModuleMapping{Module: "example.com/dep", Root: depRoot},
	)
	ws := NewStaticWorkspace(app)

	got, ok := ws.ProjectFor(filepath.Join(appRoot, "weft", "app-dialect.xml"))
	require.True(t, ok)
	assert.Equal(t, "app", got.Name())

	// Dependency roots count as project territory too.
	got, ok = ws.ProjectFor(filepath.Join(depRoot, "lib-dialect.xml"))
	require.True(t, ok)
	assert.Equal(t, "app", got.Name())

	// A sibling directory sharing the root as a name prefix is outside.
	_, ok = ws.ProjectFor(appRoot + "extra/x-dialect.xml")
	assert.False(t, ok)

	_, ok = ws.ProjectFor("/somewhere/else/dialect.xml")
	assert.False(t, ok)

	projects := ws.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, "app", projects[0].Name())
}
