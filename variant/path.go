package variant

import "strings"

// RewritePath inserts "-suffix" before the extension of base:
// "photo.jpg" becomes "photo-medium@2x.jpg". The extension starts at the last
// dot anywhere in the string; a name with no dot gets the suffix appended
// ("photo" becomes "photo-small") rather than prefixed to the whole name.
//
// The transform is not idempotent across suffixes: rewriting an already
// rewritten name stacks both suffixes.
func RewritePath(base, suffix string) string {
	stem, ext := base, ""
	if i := strings.LastIndex(base, "."); i >= 0 {
		stem, ext = base[:i], base[i:]
	}
	return stem + "-" + suffix + ext
}
