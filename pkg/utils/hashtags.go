package utils

import "strings"

// FormatHashtags normalizes a comma/whitespace-separated hashtag string into
// a single space-joined block, prefixing each tag with '#' when missing.
// Returns "" when no usable tags remain.
func FormatHashtags(raw string) string {
	tags := SplitMediaRefs(raw)
	if len(tags) == 0 {
		return ""
	}

	formatted := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		if tag != "#" {
			formatted = append(formatted, tag)
		}
	}
	return strings.Join(formatted, " ")
}

// ParseBool interprets the spreadsheet's loose boolean cells. Only explicit
// affirmative values count as true.
func ParseBool(raw string) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRUE", "YES", "1", "X":
		return true
	}
	return false
}
