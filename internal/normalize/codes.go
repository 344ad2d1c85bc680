package normalize

import (
	"regexp"
	"strings"
)

var (
	nonDigit   = regexp.MustCompile(`[^0-9]`)
	viewIDForm = regexp.MustCompile(`^(?i:ga:)?[0-9]+$`)
)

// IsViewID reports whether s is written as a view id, "ga:<digits>" or
// bare digits. Labels such as "Site 1" are not view ids.
func IsViewID(s string) bool {
	return viewIDForm.MatchString(strings.TrimSpace(s))
}

// ViewID normalizes a view identifier to the "ga:<digits>" form the
// reporting API expects. "172857801", "ga:172857801" and " GA:172857801 "
// all map to "ga:172857801". Returns "" if no digits remain.
func ViewID(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "ga:")
	s = nonDigit.ReplaceAllString(s, "")
	if s == "" {
		return ""
	}
	return "ga:" + s
}
