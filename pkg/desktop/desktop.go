// pkg/desktop/desktop.go - desktop-entry creation and application launching.
//
// Generated .desktop files follow the XDG desktop-entry format and are
// written into the user's applications directory. Database refreshes
// shell out to update-desktop-database and are never fatal.

package desktop

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/linuxadmins/appman/pkg/config"
	"github.com/linuxadmins/appman/pkg/logging"
	"github.com/linuxadmins/appman/pkg/registry"
	"github.com/linuxadmins/appman/pkg/utils"
)

// refreshTimeout bounds the update-desktop-database subprocess.
const refreshTimeout = 10 * time.Second

// Integration creates and removes desktop entries and shortcuts and
// launches installed packages.
type Integration struct {
	cfg *config.Configuration
}

// New returns an Integration using the given configuration.
func New(cfg *config.Configuration) *Integration {
	return &Integration{cfg: cfg}
}

// CreateDesktopFile writes a .desktop entry for the record into the
// applications directory and returns its path.
func (d *Integration) CreateDesktopFile(rec *registry.Record) (string, error) {
	if err := os.MkdirAll(d.cfg.ApplicationsPath, 0755); err != nil {
		return "", fmt.Errorf("creating applications directory: %w", err)
	}

	path := filepath.Join(d.cfg.ApplicationsPath, entryFileName(rec.Name))
	if err := os.WriteFile(path, []byte(Content(rec)), 0755); err != nil {
		return "", fmt.Errorf("writing desktop entry %s: %w", path, err)
	}
	if err := os.Chmod(path, 0755); err != nil {
		return "", fmt.Errorf("marking desktop entry executable: %w", err)
	}

	d.RefreshDatabase()
	logging.Info("Created desktop entry", "path", path)
	return path, nil
}

// RemoveDesktopFile deletes a .desktop entry. A missing file is fine.
func (d *Integration) RemoveDesktopFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing desktop entry %s: %w", path, err)
	}
	d.RefreshDatabase()
	logging.Info("Removed desktop entry", "path", path)
	return nil
}

// CreateShortcut writes a copy of the desktop entry onto the user's
// desktop. Skipped silently when there is no desktop directory.
func (d *Integration) CreateShortcut(rec *registry.Record) error {
	if !utils.FileExists(d.cfg.DesktopPath) {
		return nil
	}
	path := filepath.Join(d.cfg.DesktopPath, entryFileName(rec.Name))
	if err := os.WriteFile(path, []byte(Content(rec)), 0755); err != nil {
		return fmt.Errorf("writing desktop shortcut %s: %w", path, err)
	}
	return nil
}

// RemoveShortcut deletes the desktop shortcut for a record, if any.
func (d *Integration) RemoveShortcut(rec *registry.Record) error {
	if !utils.FileExists(d.cfg.DesktopPath) {
		return nil
	}
	path := filepath.Join(d.cfg.DesktopPath, entryFileName(rec.Name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing desktop shortcut %s: %w", path, err)
	}
	return nil
}

// RefreshDatabase asks the desktop environment to re-read the
// applications directory. Best effort: a missing tool or a timeout is
// only logged.
func (d *Integration) RefreshDatabase() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "update-desktop-database", d.cfg.ApplicationsPath)
	if err := cmd.Run(); err != nil {
		logging.Debug("update-desktop-database failed", "error", err)
	}
}

// Launch starts an installed package detached from this process. The
// executable bit is ensured before spawning; there is no wait on the
// child.
func (d *Integration) Launch(execPath string) error {
	if err := unix.Access(execPath, unix.X_OK); err != nil {
		if err := os.Chmod(execPath, 0755); err != nil {
			return fmt.Errorf("making %s executable: %w", execPath, err)
		}
	}

	cmd := exec.Command(execPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching %s: %w", execPath, err)
	}
	if err := cmd.Process.Release(); err != nil {
		logging.Debug("Releasing launched process failed", "error", err)
	}

	logging.Info("Launched application", "path", execPath)
	return nil
}

// entryFileName derives the .desktop filename for a display name.
func entryFileName(name string) string {
	return utils.SanitizeFileName(name) + ".desktop"
}

// Content renders the desktop-entry template for a record.
func Content(rec *registry.Record) string {
	categories := strings.Join(rec.Categories, ";")
	if categories == "" {
		categories = "Application"
	}
	if !strings.HasSuffix(categories, ";") {
		categories += ";"
	}

	icon := rec.IconReference
	if icon == "" {
		icon = "application-x-executable"
	}

	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Version=1.0\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", rec.Name)
	fmt.Fprintf(&b, "Comment=%s\n", rec.Description)
	fmt.Fprintf(&b, "Exec=%s\n", rec.ManagedExecPath)
	fmt.Fprintf(&b, "Icon=%s\n", icon)
	fmt.Fprintf(&b, "Categories=%s\n", categories)
	b.WriteString("Terminal=false\n")
	b.WriteString("StartupNotify=true\n")
	fmt.Fprintf(&b, "StartupWMClass=%s\n", rec.Name)

	if len(rec.MimeTypes) > 0 {
		mimeTypes := strings.Join(rec.MimeTypes, ";")
		if !strings.HasSuffix(mimeTypes, ";") {
			mimeTypes += ";"
		}
		fmt.Fprintf(&b, "MimeType=%s\n", mimeTypes)
	}
	if rec.Version != "" && rec.Version != "Unknown" {
		fmt.Fprintf(&b, "X-AppImage-Version=%s\n", rec.Version)
	}
	fmt.Fprintf(&b, "X-AppImage-Path=%s\n", rec.SourcePath)
	b.WriteString("X-AppImage-Installer=true\n")

	return b.String()
}
