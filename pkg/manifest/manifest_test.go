package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"linkforge/pkg/attr"
	"linkforge/pkg/target"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeManifest(t, "foo.yaml", `
object: build/foo.o
output: build/foo
library: true
os: macos
link:
  - name: name
    value: foo
  - name: vers
    value: "0.1"
  - name: uuid
    value: 0f8a
  - name: opt
    value: 3
    type: int
attrs:
  - name: no_std
deps:
  - name: std
    vers: "0.6"
  - path: /opt/lib/libextra-aaaaaaaaaaaaaaaa-0.6.rlib
libs: [ssl]
search_dirs: [vendor]
link_args: ["-lz"]
`)

	m, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "build/foo.o"), m.Object)
	assert.Equal(t, filepath.Join(dir, "build/foo"), m.Output)
	assert.True(t, m.Library)
	assert.Equal(t, target.MacOS, m.TargetOS(target.Linux))
	assert.Equal(t, []string{filepath.Join(dir, "vendor")}, m.SearchDirs)
	assert.Equal(t, "/opt/lib/libextra-aaaaaaaaaaaaaaaa-0.6.rlib", m.Deps[1].Path, "绝对路径保持不变")
	assert.Equal(t, []string{"-lz"}, m.LinkArgs)

	attrs, err := m.CrateAttributes()
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, attr.Word("no_std"), attrs[0])

	metas, err := attr.Collect(attrs)
	require.NoError(t, err)
	assert.Equal(t, []attr.Attribute{
		attr.NameValue("name", attr.Str("foo")),
		attr.NameValue("vers", attr.Str("0.1")),
		attr.NameValue("uuid", attr.Str("0f8a")),
		attr.NameValue("opt", attr.Int(3)),
	}, metas)
}

func TestLoad_JSON(t *testing.T) {
	path := writeManifest(t, "app.json", `{"object": "/tmp/app.o", "output": "/tmp/app"}`)
	m, err := Load(path)
	require.NoError(t, err)
	assert.False(t, m.Library)
	assert.Equal(t, target.FreeBSD, m.TargetOS(target.FreeBSD))

	attrs, err := m.CrateAttributes()
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no object", "output: a\n"},
		{"no output", "object: a.o\n"},
		{"bad dep", "object: a.o\noutput: a\ndeps:\n  - vers: '1'\n"},
		{"bad os", "object: a.o\noutput: a\nos: plan9\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, "m.yaml", tt.content))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAttrSpec_Attribute(t *testing.T) {
	v := "x"
	a, err := AttrSpec{Name: "cfg", Items: []AttrSpec{{Name: "feature", Value: &v}, {Name: "debug"}}}.Attribute()
	require.NoError(t, err)
	assert.Equal(t, attr.List("cfg", attr.NameValue("feature", attr.Str("x")), attr.Word("debug")), a)

	bad := "maybe"
	_, err = AttrSpec{Name: "flag", Value: &bad, Type: "bool"}.Attribute()
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = AttrSpec{Name: "x", Value: &bad, Type: "complex"}.Attribute()
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = AttrSpec{}.Attribute()
	assert.ErrorIs(t, err, ErrInvalid)
}
