package desktop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxadmins/appman/pkg/config"
	"github.com/linuxadmins/appman/pkg/registry"
)

func testConfig(t *testing.T) *config.Configuration {
	t.Helper()
	cfg := config.GetDefaultConfig()
	base := t.TempDir()
	cfg.ApplicationsPath = filepath.Join(base, "applications")
	cfg.DesktopPath = filepath.Join(base, "Desktop")
	return cfg
}

func sampleRecord() *registry.Record {
	return &registry.Record{
		Name:            "GIMP",
		Version:         "3.0.4",
		Description:     "Image editor",
		IconReference:   "gimp",
		SourcePath:      "/downloads/GIMP-3.0.4.AppImage",
		ManagedExecPath: "/home/user/Applications/GIMP.AppImage",
		Categories:      []string{"Graphics"},
		MimeTypes:       []string{"image/png"},
	}
}

func TestContent(t *testing.T) {
	content := Content(sampleRecord())

	assert.Contains(t, content, "[Desktop Entry]\n")
	assert.Contains(t, content, "Name=GIMP\n")
	assert.Contains(t, content, "Comment=Image editor\n")
	assert.Contains(t, content, "Exec=/home/user/Applications/GIMP.AppImage\n")
	assert.Contains(t, content, "Icon=gimp\n")
	assert.Contains(t, content, "Categories=Graphics;\n")
	assert.Contains(t, content, "MimeType=image/png;\n")
	assert.Contains(t, content, "X-AppImage-Version=3.0.4\n")
	assert.Contains(t, content, "X-AppImage-Path=/downloads/GIMP-3.0.4.AppImage\n")
}

func TestContentDefaults(t *testing.T) {
	rec := sampleRecord()
	rec.IconReference = ""
	rec.Categories = nil
	rec.MimeTypes = nil
	rec.Version = "Unknown"

	content := Content(rec)
	assert.Contains(t, content, "Icon=application-x-executable\n")
	assert.Contains(t, content, "Categories=Application;\n")
	assert.NotContains(t, content, "MimeType=")
	assert.NotContains(t, content, "X-AppImage-Version=")
}

func TestCreateAndRemoveDesktopFile(t *testing.T) {
	cfg := testConfig(t)
	d := New(cfg)

	path, err := d.CreateDesktopFile(sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.ApplicationsPath, "GIMP.desktop"), path)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), fi.Mode().Perm())

	require.NoError(t, d.RemoveDesktopFile(path))
	assert.NoFileExists(t, path)

	// Removing again, or removing nothing, is fine.
	assert.NoError(t, d.RemoveDesktopFile(path))
	assert.NoError(t, d.RemoveDesktopFile(""))
}

func TestShortcutSkippedWithoutDesktopDir(t *testing.T) {
	cfg := testConfig(t)
	d := New(cfg)

	// DesktopPath does not exist: both directions are silent no-ops.
	assert.NoError(t, d.CreateShortcut(sampleRecord()))
	assert.NoError(t, d.RemoveShortcut(sampleRecord()))
}

func TestShortcutRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DesktopPath, 0755))
	d := New(cfg)

	rec := sampleRecord()
	require.NoError(t, d.CreateShortcut(rec))
	assert.FileExists(t, filepath.Join(cfg.DesktopPath, "GIMP.desktop"))

	require.NoError(t, d.RemoveShortcut(rec))
	assert.NoFileExists(t, filepath.Join(cfg.DesktopPath, "GIMP.desktop"))
}
