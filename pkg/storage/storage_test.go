package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCopyToStorage(t *testing.T) {
	srcDir := t.TempDir()
	m := New(t.TempDir())

	src := writeSource(t, srcDir, "gimp-3.0.4.AppImage", "payload")
	target, err := m.CopyToStorage(src, "GIMP")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(m.Dir(), "GIMP.AppImage"), target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	fi, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), fi.Mode().Perm())
}

func TestCopyToStorageSanitizesName(t *testing.T) {
	srcDir := t.TempDir()
	m := New(t.TempDir())

	src := writeSource(t, srcDir, "app.AppImage", "x")
	target, err := m.CopyToStorage(src, "My App! (beta)")
	require.NoError(t, err)
	assert.Equal(t, "My_App_beta.AppImage", filepath.Base(target))
}

func TestCopyToStorageResolvesCollisions(t *testing.T) {
	srcDir := t.TempDir()
	m := New(t.TempDir())

	srcA := writeSource(t, srcDir, "a.AppImage", "first")
	srcB := writeSource(t, srcDir, "b.AppImage", "second")

	targetA, err := m.CopyToStorage(srcA, "Name")
	require.NoError(t, err)
	targetB, err := m.CopyToStorage(srcB, "Name")
	require.NoError(t, err)

	assert.Equal(t, "Name.AppImage", filepath.Base(targetA))
	assert.Equal(t, "Name_1.AppImage", filepath.Base(targetB))

	data, err := os.ReadFile(targetB)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestCopyToStorageDefaultExtension(t *testing.T) {
	srcDir := t.TempDir()
	m := New(t.TempDir())

	src := writeSource(t, srcDir, "rawbinary", "x")
	target, err := m.CopyToStorage(src, "Tool")
	require.NoError(t, err)
	assert.Equal(t, "Tool.AppImage", filepath.Base(target))
}

func TestCopyToStorageMissingSource(t *testing.T) {
	m := New(t.TempDir())
	_, err := m.CopyToStorage(filepath.Join(t.TempDir(), "gone.AppImage"), "Gone")
	assert.Error(t, err)
}

func TestRemoveOnlyInsideManagedDir(t *testing.T) {
	srcDir := t.TempDir()
	m := New(t.TempDir())

	outside := writeSource(t, srcDir, "precious.AppImage", "keep me")
	err := m.Remove(outside)
	assert.Error(t, err)
	assert.FileExists(t, outside)

	src := writeSource(t, srcDir, "app.AppImage", "x")
	target, err := m.CopyToStorage(src, "App")
	require.NoError(t, err)
	require.NoError(t, m.Remove(target))
	assert.NoFileExists(t, target)

	// Removing an already-deleted copy is fine.
	assert.NoError(t, m.Remove(target))
	assert.NoError(t, m.Remove(""))
}

func TestContains(t *testing.T) {
	m := New(t.TempDir())
	assert.True(t, m.Contains(filepath.Join(m.Dir(), "x.AppImage")))
	assert.False(t, m.Contains("/etc/passwd"))
	assert.False(t, m.Contains(""))
}
