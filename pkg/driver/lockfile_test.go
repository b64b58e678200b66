package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockFile)
	lock := NewLockfile("my-app")
	lock.Packages = append(lock.Packages,
		&LockedPackage{Name: "zeta", Source: "path+/tmp/zeta", Checksum: "abc"},
		&LockedPackage{Name: "alpha-pkg", Version: "v1@123", Source: "git+https://example.com/a.git@123", Checksum: "def"},
	)
	require.NoError(t, WriteLockfile(lock, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "root: my_app")

	loaded, err := LoadLockfile(path)
	require.NoError(t, err)
	require.Len(t, loaded.Packages, 2)
	assert.Equal(t, "alpha_pkg", loaded.Packages[0].Name)
	assert.Equal(t, "zeta", loaded.Packages[1].Name)
	pkg, ok := loaded.Find("alpha-pkg")
	require.True(t, ok)
	assert.Equal(t, "v1@123", pkg.Version)
}

func TestWriteLockfileRequiresPath(t *testing.T) {
	err := WriteLockfile(NewLockfile("x"), "")
	require.Error(t, err)
	assert.Equal(t, "lockfile: missing path", err.Error())
}
