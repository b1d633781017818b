package utils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonIdentChars = regexp.MustCompile(`[^a-z0-9_]`)
)

// Slugify turns a display name into an identifier: lower case, whitespace
// runs become "_", anything outside [a-z0-9_] is dropped.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = whitespaceRun.ReplaceAllString(s, "_")
	return nonIdentChars.ReplaceAllString(s, "")
}
