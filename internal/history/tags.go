package history

import (
	"strings"
	"unicode/utf8"
)

// TagSeparator delimits tags inside the tag column.
const TagSeparator = ";"

// NormalizeTags splits a delimited tag list into clean, unique tokens in
// first-seen order. Blank tokens and tokens that would not fit the tag
// column are dropped.
func NormalizeTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, TagSeparator)
	seen := make(map[string]struct{}, len(parts))
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" || utf8.RuneCountInString(t) >= MaxTagLen {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
