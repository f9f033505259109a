package core

import "regexp"

// tagRE matches a single markup tag such as <b>, </font> or <img src="x">.
var tagRE = regexp.MustCompile(`<[^>]+>`)

// placeholderRE matches host-app template macros like {{user}} or {{char}}.
var placeholderRE = regexp.MustCompile(`\{\{[^}]+\}\}`)

// CleanText strips markup tags and template placeholders from a message body.
// Whitespace is left untouched so that character counts stay comparable
// across messages.
func CleanText(s string) string {
	s = tagRE.ReplaceAllString(s, "")
	return placeholderRE.ReplaceAllString(s, "")
}

// StripTags removes markup tags but keeps placeholders.
func StripTags(s string) string {
	return tagRE.ReplaceAllString(s, "")
}
