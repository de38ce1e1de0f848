// pkg/appname/appname.go - display-name normalization for matching installed applications.

package appname

import (
	"regexp"
	"strings"
)

// Patterns stripped from display names before comparison. Package
// filenames routinely embed version numbers, CPU architectures and
// packaging suffixes that say nothing about the application identity.
var (
	versionToken   = regexp.MustCompile(`[-_ ]?v?\d+\.\d+(\.\d+)?[-_ ]?`)
	archToken      = regexp.MustCompile(`(^|[-_ .])(x86_64|amd64|i386|arm64|aarch64)([-_ .]|$)`)
	packagingToken = regexp.MustCompile(`(^|[-_ .])(appimage|portable|linux)([-_ .]|$)`)
	separatorRun   = regexp.MustCompile(`[-_ ]+`)
)

// Normalize canonicalizes an application display name into a comparison
// key. Arch and packaging tokens are stripped only whole: anchored to
// separators or string boundaries, so names like "Linuxbrew" survive
// intact. The result is for equality and substring checks only, never
// for display.
func Normalize(name string) string {
	s := strings.ToLower(name)
	s = versionToken.ReplaceAllString(s, " ")
	s = stripToken(s, archToken)
	s = stripToken(s, packagingToken)
	s = separatorRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripToken removes whole occurrences of an anchored token pattern.
// The trailing boundary character is kept so an adjacent token sharing
// it still sees its separator; stripping repeats until stable.
func stripToken(s string, re *regexp.Regexp) string {
	for {
		next := re.ReplaceAllString(s, " $3")
		if next == s {
			return next
		}
		s = next
	}
}

// Same reports whether two display names refer to the same logical
// application. Both names are normalized first; an empty normalized
// name never matches anything.
func Same(a, b string) bool {
	na := Normalize(a)
	nb := Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
