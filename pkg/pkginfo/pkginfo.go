// pkg/pkginfo/pkginfo.go - best-effort metadata extraction from AppImage packages.
//
// Extraction always succeeds for a valid package: a baseline record is
// derived from the filename alone, and a deep-extraction pass over the
// embedded filesystem may enrich it. Deep extraction running the image
// with --appimage-extract can fail for any number of reasons (no FUSE,
// stripped runtime, hostile file) and every such failure is swallowed,
// leaving the baseline in place.

package pkginfo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/linuxadmins/appman/pkg/compare"
	"github.com/linuxadmins/appman/pkg/config"
	"github.com/linuxadmins/appman/pkg/logging"
	"github.com/linuxadmins/appman/pkg/registry"
)

// Extractor produces metadata records for package files.
type Extractor struct {
	cfg *config.Configuration
}

// New returns an Extractor using the given configuration.
func New(cfg *config.Configuration) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract produces a metadata record for a package file, or nil when
// the file is not a recognizable AppImage. The returned record is not
// yet registered: InstalledAt is empty and ManagedExecPath is unset.
func (e *Extractor) Extract(path string) *registry.Record {
	if !IsAppImage(path) {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	rec := baselineRecord(abs)

	if entry, iconFile := e.deepExtract(abs); entry != nil {
		applyDesktopEntry(rec, entry)
		if iconFile != "" {
			if name, err := InstallIcon(iconFile, rec.Name, e.cfg.IconsPath); err == nil {
				rec.IconReference = name
			} else {
				logging.Debug("Icon installation failed", "icon", iconFile, "error", err)
			}
		}
	}

	rec.IconReference = ResolveIcon(rec.IconReference, rec.Name, rec.Categories)
	return rec
}

// baselineRecord derives a record purely from the filename, so a
// package that defeats deep extraction still installs with sensible
// metadata.
func baselineRecord(absPath string) *registry.Record {
	stem := strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath))
	name := titleCase(strings.NewReplacer("_", " ", "-", " ").Replace(stem))

	return &registry.Record{
		Name:        name,
		Version:     compare.UnknownVersion,
		Description: fmt.Sprintf("AppImage application: %s", stem),
		SourcePath:  absPath,
		Categories:  []string{"Application"},
	}
}

// applyDesktopEntry overrides baseline fields with deep-extracted
// values. Deep extraction is pure enrichment: empty values never
// clobber the baseline, and a version string only lands when it parses
// as a plausible version.
func applyDesktopEntry(rec *registry.Record, entry *desktopEntry) {
	if entry.Name != "" {
		rec.Name = entry.Name
	}
	if entry.Comment != "" {
		rec.Description = entry.Comment
	}
	if len(entry.Categories) > 0 {
		rec.Categories = entry.Categories
	}
	if len(entry.MimeTypes) > 0 {
		rec.MimeTypes = entry.MimeTypes
	}
	if entry.Version != "" {
		if _, err := goversion.NewVersion(entry.Version); err == nil {
			rec.Version = entry.Version
		} else {
			logging.Debug("Ignoring unparseable embedded version", "version", entry.Version, "error", err)
		}
	}
}

// deepExtract unpacks the image under a bounded timeout and reads its
// embedded desktop entry. Returns the parsed entry and the path of an
// extracted icon file, either of which may be empty.
func (e *Extractor) deepExtract(absPath string) (*desktopEntry, string) {
	workDir, err := os.MkdirTemp("", "appman-extract-")
	if err != nil {
		logging.Debug("Deep extraction skipped", "error", err)
		return nil, ""
	}
	defer os.RemoveAll(workDir)

	timeout := time.Duration(e.cfg.ExtractTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, absPath, "--appimage-extract")
	cmd.Dir = workDir
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		logging.Debug("Deep extraction failed", "package", absPath, "error", err)
		return nil, ""
	}

	root := filepath.Join(workDir, "squashfs-root")

	entry := readDesktopEntry(root)
	icon := findExtractedIcon(root, entry)
	return entry, icon
}

// readDesktopEntry parses the first .desktop file at the extracted root.
func readDesktopEntry(root string) *desktopEntry {
	matches, err := filepath.Glob(filepath.Join(root, "*.desktop"))
	if err != nil || len(matches) == 0 {
		return nil
	}
	entry, err := parseDesktopFile(matches[0])
	if err != nil {
		logging.Debug("Embedded desktop entry unreadable", "path", matches[0], "error", err)
		return nil
	}
	return entry
}

// findExtractedIcon locates an icon file in the extracted tree: the
// .DirIcon convention first, then a file matching the desktop entry's
// Icon key at the root.
func findExtractedIcon(root string, entry *desktopEntry) string {
	dirIcon := filepath.Join(root, ".DirIcon")
	if resolved := resolveIconPath(dirIcon); resolved != "" {
		return resolved
	}

	if entry == nil || entry.Icon == "" {
		return ""
	}
	for _, ext := range []string{".png", ".svg", ".jpg"} {
		candidate := filepath.Join(root, entry.Icon+ext)
		if resolved := resolveIconPath(candidate); resolved != "" {
			return resolved
		}
	}
	return resolveIconPath(filepath.Join(root, entry.Icon))
}

// resolveIconPath follows symlinks (the .DirIcon usually is one) and
// returns the target when it is a regular file.
func resolveIconPath(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	fi, err := os.Stat(resolved)
	if err != nil || fi.IsDir() {
		return ""
	}
	return resolved
}

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
