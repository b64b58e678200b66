package driver

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	writeFile(t, path, `
name: circle-area
version: 0.1.0
authors: [Ada]
prelude:
  - lib/geometry.scm
targets:
  main:
    main: src/main.scm
  tool: src/tool.scm
dependencies:
  math:
    path: ../math
  shapes:
    git: https://example.com/shapes.git
    tag: v1.2.0
  local: ./vendored
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "circle_area", m.Name)
	assert.Equal(t, "0.1.0", m.Version)
	assert.Equal(t, []string{"Ada"}, m.Authors)
	assert.Equal(t, []string{filepath.FromSlash("lib/geometry.scm")}, m.Prelude)
	assert.Equal(t, []string{"main", "tool"}, m.TargetOrder)
	assert.Equal(t, filepath.FromSlash("src/tool.scm"), m.Targets["tool"].Main)
	assert.Equal(t, "../math", m.Dependencies["math"].Path)
	assert.Equal(t, "v1.2.0", m.Dependencies["shapes"].Tag)
	assert.Equal(t, "./vendored", m.Dependencies["local"].Path)
	assert.Equal(t, dir, m.Dir())

	target, err := m.DefaultTarget()
	require.NoError(t, err)
	assert.Equal(t, "main", target.Name)
	found, ok := m.FindTarget("TOOL")
	require.True(t, ok)
	assert.Equal(t, "tool", found.Name)
}

func TestLoadManifestValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	writeFile(t, path, `
version: 1.0.0
targets:
  a-b:
    main: one.scm
  a_b:
    main: two.scm
  empty: {}
dependencies:
  both:
    path: ./x
    git: https://example.com/x.git
    rev: abc
  neither: {}
  unpinned:
    git: https://example.com/y.git
`)
	_, err := LoadManifest(path)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	joined := strings.Join(verr.Issues, "\n")
	for _, want := range []string{
		"name must be provided",
		`targets "a-b" and "a_b" collide after sanitization`,
		`target "empty" requires a main entrypoint`,
		"dependencies.both: path dependencies cannot also specify git",
		"dependencies.both: rev, tag and branch apply only to git dependencies",
		"dependencies.neither: must specify path or git",
		"dependencies.unpinned: git dependencies require exactly one of rev, tag, or branch",
	} {
		assert.Contains(t, joined, want)
	}
}

func TestLoadManifestUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	writeFile(t, path, "name: x\nbogus: 1\n")
	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest: parse")
}

func TestLoadManifestEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	writeFile(t, path, "")
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
}

func TestDefaultTargetAmbiguous(t *testing.T) {
	m := &Manifest{
		Targets:     map[string]*TargetSpec{"a": {Name: "a", Main: "a.scm"}, "b": {Name: "b", Main: "b.scm"}},
		TargetOrder: []string{"a", "b"},
	}
	_, err := m.DefaultTarget()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choose one of a, b")

	_, err = (&Manifest{}).DefaultTarget()
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestFindManifestWalksUp(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestFile), "name: root")
	nested := filepath.Join(dir, "src", "deep", "file.scm")
	writeFile(t, nested, "(+ 1 2)")

	got, err := FindManifest(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ManifestFile), got)
}
