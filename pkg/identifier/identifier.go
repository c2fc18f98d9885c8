// Package identifier extracts bare package names from tool-specific composite
// identifiers such as package URLs (pkg:pypi/requests@2.31.0).
package identifier

import "strings"

// Normalize returns the package name embedded in a composite identifier:
// the text after the first '/' up to the next '@'. Missing delimiters widen
// the range to the start or end of the string. Normalize never fails; a
// malformed identifier yields a best-effort substring.
func Normalize(id string) string {
	// Index returns -1 when there is no slash, so start falls back to 0.
	start := strings.Index(id, "/") + 1

	end := strings.Index(id[start:], "@")
	if end < 0 {
		return id[start:]
	}
	return id[start : start+end]
}
