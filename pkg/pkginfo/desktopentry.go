// pkg/pkginfo/desktopentry.go - parsing of .desktop entries embedded in packages.

package pkginfo

import (
	"bufio"
	"os"
	"strings"
)

// desktopEntry is the subset of an embedded .desktop file that deep
// extraction can use to enrich a metadata record.
type desktopEntry struct {
	Name       string
	Comment    string
	Icon       string
	Version    string
	Categories []string
	MimeTypes  []string
}

// parseDesktopFile reads the [Desktop Entry] group of a .desktop file.
// Only the keys the extractor cares about are kept; everything else is
// ignored.
func parseDesktopFile(path string) (*desktopEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entry desktopEntry
	inEntry := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Name":
			entry.Name = value
		case "Comment":
			entry.Comment = value
		case "Icon":
			entry.Icon = value
		case "X-AppImage-Version":
			entry.Version = value
		case "Categories":
			entry.Categories = splitList(value)
		case "MimeType":
			entry.MimeTypes = splitList(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &entry, nil
}

// splitList splits a semicolon-delimited desktop-entry list.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
