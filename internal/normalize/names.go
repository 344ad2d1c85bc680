package normalize

import (
	"regexp"
	"strings"
)

var (
	multiSpace = regexp.MustCompile(`\s+`)
	pathChars  = regexp.MustCompile(`[/\\:]+`)
)

// DirName turns a property label into a safe directory name: whitespace is
// trimmed and collapsed, path separators become "_". Case is preserved.
// Returns "" if nothing usable remains.
func DirName(label string) string {
	s := strings.TrimSpace(label)
	s = multiSpace.ReplaceAllString(s, " ")
	s = pathChars.ReplaceAllString(s, "_")
	if s == "." || s == ".." {
		return ""
	}
	return s
}
