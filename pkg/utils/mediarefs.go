package utils

import (
	"regexp"
	"strings"
)

var refSeparators = regexp.MustCompile(`[\s,;]+`)

// SplitMediaRefs parses a raw delimiter-separated media-reference string
// into a clean ordered list. Commas, semicolons and any whitespace all act
// as separators; empty tokens are dropped.
func SplitMediaRefs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var refs []string
	for _, token := range refSeparators.Split(raw, -1) {
		if token = strings.TrimSpace(token); token != "" {
			refs = append(refs, token)
		}
	}
	return refs
}

// IsRemoteURL reports whether a media reference points at an http(s)
// location rather than a local file.
func IsRemoteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
