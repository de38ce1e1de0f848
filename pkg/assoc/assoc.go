// pkg/assoc/assoc.go - registration of the .AppImage file association.
//
// Registering writes the MIME type definition and a hidden handler
// desktop entry into the user's XDG data tree, refreshes the MIME and
// desktop databases, and marks the handler as the default application
// for AppImage files. Everything runs per-user; no root required.

package assoc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/linuxadmins/appman/pkg/config"
	"github.com/linuxadmins/appman/pkg/logging"
	"github.com/linuxadmins/appman/pkg/utils"
)

const (
	mimeType        = "application/x-appimage"
	mimeFileName    = "appman.xml"
	handlerFileName = "appman-handler.desktop"

	refreshTimeout = 10 * time.Second
)

const mimeXML = `<?xml version="1.0" encoding="UTF-8"?>
<mime-info xmlns="http://www.freedesktop.org/standards/shared-mime-info">
    <mime-type type="application/x-appimage">
        <comment>AppImage application bundle</comment>
        <icon name="application-x-executable"/>
        <glob pattern="*.AppImage" weight="95"/>
        <glob pattern="*.appimage" weight="95"/>
        <magic priority="90">
            <match type="string" offset="0:102400" value="AppImage"/>
        </magic>
    </mime-type>
</mime-info>
`

// Association manages the per-user .AppImage file association.
type Association struct {
	cfg      *config.Configuration
	mimeDir  string
	execPath string
}

// New returns an Association. execPath is the installer binary the
// handler entry points at; empty means the current executable.
func New(cfg *config.Configuration, execPath string) *Association {
	if execPath == "" {
		if self, err := os.Executable(); err == nil {
			execPath = self
		}
	}
	dataDir := filepath.Dir(cfg.ApplicationsPath)
	return &Association{
		cfg:      cfg,
		mimeDir:  filepath.Join(dataDir, "mime"),
		execPath: execPath,
	}
}

func (a *Association) mimeFile() string {
	return filepath.Join(a.mimeDir, "packages", mimeFileName)
}

func (a *Association) handlerFile() string {
	return filepath.Join(a.cfg.ApplicationsPath, handlerFileName)
}

// Register installs the MIME type and handler entry and sets the
// handler as the default application for AppImage files.
func (a *Association) Register() error {
	if err := os.MkdirAll(filepath.Dir(a.mimeFile()), 0755); err != nil {
		return fmt.Errorf("creating mime packages directory: %w", err)
	}
	if err := os.WriteFile(a.mimeFile(), []byte(mimeXML), 0644); err != nil {
		return fmt.Errorf("writing MIME definition: %w", err)
	}

	if err := os.MkdirAll(a.cfg.ApplicationsPath, 0755); err != nil {
		return fmt.Errorf("creating applications directory: %w", err)
	}
	if err := os.WriteFile(a.handlerFile(), []byte(a.handlerContent()), 0755); err != nil {
		return fmt.Errorf("writing handler entry: %w", err)
	}

	a.refreshDatabases()

	// Default-application selection is desktop-environment dependent;
	// a failure here leaves the association usable via "open with".
	run("xdg-mime", "default", handlerFileName, mimeType)

	logging.Info("Registered AppImage file association", "handler", a.handlerFile())
	return nil
}

// Unregister removes the MIME type and handler entry.
func (a *Association) Unregister() error {
	for _, path := range []string{a.mimeFile(), a.handlerFile()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	a.refreshDatabases()
	logging.Info("Unregistered AppImage file association")
	return nil
}

// IsRegistered reports whether both the MIME definition and the handler
// entry are in place.
func (a *Association) IsRegistered() bool {
	return utils.FileExists(a.mimeFile()) && utils.FileExists(a.handlerFile())
}

func (a *Association) handlerContent() string {
	return fmt.Sprintf(`[Desktop Entry]
Version=1.0
Type=Application
Name=AppImage Installer (File Handler)
Comment=Handle AppImage file associations
Exec=%s %%f
Icon=application-x-executable
StartupNotify=false
NoDisplay=true
MimeType=%s;
Categories=System;Utility;
`, a.execPath, mimeType)
}

// refreshDatabases rebuilds the MIME and desktop caches. Best effort.
func (a *Association) refreshDatabases() {
	run("update-mime-database", a.mimeDir)
	run("update-desktop-database", a.cfg.ApplicationsPath)
}

func run(name string, args ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := exec.CommandContext(ctx, name, args...).Run(); err != nil {
		logging.Debug("Database refresh command failed", "command", name, "error", err)
	}
}
