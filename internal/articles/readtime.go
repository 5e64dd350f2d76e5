package articles

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	wordsPerMinute  = 200
	excerptMaxRunes = 200
	excerptEllipsis = "..."
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes HTML tags left by the rich-text editor.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// ReadTime estimates "N min read" at 200 words per minute, at least 1.
func ReadTime(content string) string {
	words := len(strings.Fields(StripTags(content)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// Excerpt is the first 200 characters of the tag-stripped content plus "...".
func Excerpt(content string) string {
	r := []rune(StripTags(content))
	if len(r) > excerptMaxRunes {
		r = r[:excerptMaxRunes]
	}
	return string(r) + excerptEllipsis
}
