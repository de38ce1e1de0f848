// pkg/utils/files.go - utility functions for working with files and names.

package utils

import (
	"os"
	"strings"
)

// FileExists checks if a file exists on the filesystem.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SanitizeFileName reduces a display name to a safe filename: only
// `[A-Za-z0-9._-]` survive, everything else becomes an underscore,
// repeated underscores are collapsed and leading/trailing ones trimmed.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	sanitized := b.String()
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	return strings.Trim(sanitized, "_")
}
