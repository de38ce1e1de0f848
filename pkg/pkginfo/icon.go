// pkg/pkginfo/icon.go - icon discovery and installation into the hicolor theme.

package pkginfo

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/linuxadmins/appman/pkg/appname"
	"github.com/linuxadmins/appman/pkg/logging"
	"github.com/linuxadmins/appman/pkg/utils"
)

// GenericIcon is the last-resort symbolic icon name for an installed
// executable with no icon of its own.
const GenericIcon = "application-x-executable"

// iconSizes is the hicolor size ladder extracted icons are rescaled to.
var iconSizes = []int{16, 24, 32, 48, 64, 128, 256}

// themeSearchDirs are system locations probed when looking an icon up by
// name.
var themeSearchDirs = []string{
	"/usr/share/icons/hicolor",
	"/usr/local/share/icons/hicolor",
	"/usr/share/pixmaps",
}

// categoryIcons maps desktop-entry categories onto generic theme icons,
// used when a package ships no icon and none is found in the system
// theme.
var categoryIcons = map[string]string{
	"AudioVideo":  "applications-multimedia",
	"Audio":       "applications-multimedia",
	"Video":       "applications-multimedia",
	"Development": "applications-development",
	"Education":   "applications-science",
	"Game":        "applications-games",
	"Graphics":    "applications-graphics",
	"Network":     "applications-internet",
	"Office":      "applications-office",
	"Science":     "applications-science",
	"Settings":    "preferences-system",
	"System":      "applications-system",
	"Utility":     "applications-utilities",
}

// ResolveIcon applies the icon priority chain: an icon produced by deep
// extraction wins, then a system-theme lookup by normalized name, then a
// category-based generic icon, then the executable fallback. A later
// strategy never overrides an earlier success.
func ResolveIcon(extractedIcon, name string, categories []string) string {
	if extractedIcon != "" {
		return extractedIcon
	}
	if themed := lookupThemeIcon(name); themed != "" {
		return themed
	}
	for _, cat := range categories {
		if icon, ok := categoryIcons[cat]; ok {
			return icon
		}
	}
	return GenericIcon
}

// lookupThemeIcon searches the system icon dirs for a file matching the
// normalized application name and returns the theme name on a hit.
func lookupThemeIcon(name string) string {
	key := strings.ReplaceAll(appname.Normalize(name), " ", "-")
	if key == "" {
		return ""
	}
	for _, root := range themeSearchDirs {
		matches, err := filepath.Glob(filepath.Join(root, "*", "apps", key+".*"))
		if err == nil && len(matches) > 0 {
			return key
		}
		// Flat dirs such as pixmaps hold icons directly.
		matches, err = filepath.Glob(filepath.Join(root, key+".*"))
		if err == nil && len(matches) > 0 {
			return key
		}
	}
	return ""
}

// InstallIcon places an extracted icon file into the user's hicolor
// theme under the given application name and returns the resulting
// theme icon name. Raster icons are rescaled across the size ladder;
// scalable icons are copied as-is.
func InstallIcon(srcPath, name, iconsRoot string) (string, error) {
	iconName := utils.SanitizeFileName(strings.ToLower(name))
	if iconName == "" {
		return "", fmt.Errorf("cannot derive icon name from %q", name)
	}

	if strings.EqualFold(filepath.Ext(srcPath), ".svg") {
		dst := filepath.Join(iconsRoot, "scalable", "apps", iconName+".svg")
		if err := copyIconFile(srcPath, dst); err != nil {
			return "", err
		}
		return iconName, nil
	}

	img, err := decodeImage(srcPath)
	if err != nil {
		return "", fmt.Errorf("decoding icon %s: %w", srcPath, err)
	}

	installed := 0
	for _, size := range iconSizes {
		dst := filepath.Join(iconsRoot, fmt.Sprintf("%dx%d", size, size), "apps", iconName+".png")
		if err := writeScaledPNG(img, size, dst); err != nil {
			logging.Debug("Skipping icon size", "size", size, "error", err)
			continue
		}
		installed++
	}
	if installed == 0 {
		return "", fmt.Errorf("no icon sizes could be written for %s", srcPath)
	}
	return iconName, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// writeScaledPNG rescales img to size x size and writes it as PNG.
func writeScaledPNG(img image.Image, size int, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := png.Encode(f, scaled); err != nil {
		f.Close()
		os.Remove(dst)
		return err
	}
	return f.Close()
}

func copyIconFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
