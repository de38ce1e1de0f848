// pkg/compare/compare.go - version string comparison for installed applications.

package compare

import "strings"

// UnknownVersion is the sentinel recorded when no version could be
// determined for a package. It sorts below every real version.
const UnknownVersion = "Unknown"

// Versions compares two free-form version strings and returns -1, 0 or 1.
//
// The comparison extracts every maximal digit run from each string, in
// order, and compares the resulting integer sequences element by element
// ("v1.2.3-beta" is seen as [1 2 3]). A missing trailing element counts
// as zero, so "1.0" and "1.0.0" are equal. When neither string contains
// a digit the comparison falls back to plain string ordering. Malformed
// input never causes an error.
func Versions(a, b string) int {
	if a == UnknownVersion && b == UnknownVersion {
		return 0
	}
	if a == UnknownVersion {
		return -1
	}
	if b == UnknownVersion {
		return 1
	}

	segsA := digitRuns(a)
	segsB := digitRuns(b)

	if len(segsA) == 0 && len(segsB) == 0 {
		return strings.Compare(a, b)
	}

	n := len(segsA)
	if len(segsB) > n {
		n = len(segsB)
	}
	for i := 0; i < n; i++ {
		var va, vb uint64
		if i < len(segsA) {
			va = segsA[i]
		}
		if i < len(segsB) {
			vb = segsB[i]
		}
		if va < vb {
			return -1
		}
		if va > vb {
			return 1
		}
	}
	return 0
}

// IsNewer reports whether newVersion is strictly newer than oldVersion.
func IsNewer(newVersion, oldVersion string) bool {
	return Versions(newVersion, oldVersion) > 0
}

// digitRuns extracts every maximal run of ASCII digits as an integer.
// Overlong runs saturate instead of overflowing.
func digitRuns(s string) []uint64 {
	var runs []uint64
	var cur uint64
	inRun := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			d := uint64(c - '0')
			if cur > (^uint64(0)-d)/10 {
				cur = ^uint64(0)
			} else {
				cur = cur*10 + d
			}
			inRun = true
			continue
		}
		if inRun {
			runs = append(runs, cur)
			cur = 0
			inRun = false
		}
	}
	if inRun {
		runs = append(runs, cur)
	}
	return runs
}
