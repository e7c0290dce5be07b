// Package sanitize provides text sanitization for user-provided free text.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

	entityReplacer = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	)
)

// StripHTML removes HTML tags, decodes the common entities and strips again so
// encoded tags cannot survive a single pass.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes a single-line field such as a business name.
func Text(s string) string {
	return strings.Join(strings.Fields(StripHTML(s)), " ")
}

// Notes sanitizes multi-line free text. Line breaks are kept, CRLF is folded to LF.
func Notes(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return StripHTML(s)
}

// TextPtr is a helper for optional string pointers.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}

// NotesPtr is the optional-pointer form of Notes.
func NotesPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Notes(*s)
	return &result
}
