// pkg/storage/storage.go - the managed directory that installed package copies live in.

package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/linuxadmins/appman/pkg/logging"
	"github.com/linuxadmins/appman/pkg/utils"
)

// DefaultExtension is appended when a package file carries no extension.
const DefaultExtension = ".AppImage"

// Manager copies package files into a single managed directory and
// deletes them from it again. Nothing outside that directory is ever
// removed.
type Manager struct {
	dir string
}

// New returns a Manager rooted at the given managed-storage directory.
func New(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the managed-storage directory.
func (m *Manager) Dir() string {
	return m.dir
}

// CopyToStorage copies a package file into managed storage under a name
// derived from its display name, resolving filename collisions with
// numeric suffixes, and marks the copy executable. It returns the
// absolute path of the copy.
func (m *Manager) CopyToStorage(sourcePath, displayName string) (string, error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", m.dir, err)
	}

	ext := filepath.Ext(sourcePath)
	if ext == "" {
		ext = DefaultExtension
	}
	base := utils.SanitizeFileName(displayName)
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(sourcePath), ext)
	}

	target := m.freeTarget(base, ext)

	if err := copyFile(sourcePath, target); err != nil {
		return "", fmt.Errorf("copying %s to storage: %w", sourcePath, err)
	}
	if err := os.Chmod(target, 0755); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("marking %s executable: %w", target, err)
	}

	logging.Info("Copied package to storage", "source", sourcePath, "target", target)
	return target, nil
}

// freeTarget finds the first non-colliding target path: Name.ext,
// Name_1.ext, Name_2.ext, ...
func (m *Manager) freeTarget(base, ext string) string {
	target := filepath.Join(m.dir, base+ext)
	for i := 1; utils.FileExists(target); i++ {
		target = filepath.Join(m.dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
	return target
}

// Remove deletes a managed copy, but only when its parent directory is
// the managed-storage directory. The check keeps corrupted registry
// entries from ever pointing a delete at an arbitrary path.
func (m *Manager) Remove(path string) error {
	if path == "" {
		return nil
	}
	if filepath.Dir(path) != filepath.Clean(m.dir) {
		return fmt.Errorf("refusing to delete %s: not inside managed storage %s", path, m.dir)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting managed copy %s: %w", path, err)
	}
	logging.Info("Removed managed copy", "path", path)
	return nil
}

// Contains reports whether a path points directly inside managed storage.
func (m *Manager) Contains(path string) bool {
	return path != "" && filepath.Dir(path) == filepath.Clean(m.dir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
