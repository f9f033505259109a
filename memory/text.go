package memory

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sahilm/fuzzy"
)

const previewRunes = 60

var stripPolicy = bluemonday.StripTagsPolicy()

// PlainText returns the memory text without markup and with entities
// decoded. Memories are often collected from rendered chat HTML.
func PlainText(text string) string {
	return html.UnescapeString(stripPolicy.Sanitize(text))
}

// Preview returns a short date label (the part before the first space) and
// the first characters of the plain text.
func Preview(m Memory) (date, text string) {
	date, _, _ = strings.Cut(m.Date, " ")
	date = strings.TrimSuffix(date, ",")
	r := []rune(PlainText(m.Text))
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return date, string(r)
}

// Filter returns the memories whose title or plain text contains query,
// ignoring case. With fuzzy set, memories are matched as fuzzy
// subsequences instead and ordered best match first. A blank query returns
// list unchanged.
func Filter(list []Memory, query string, fuzzyMatch bool) []Memory {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return list
	}

	if fuzzyMatch {
		haystack := make([]string, len(list))
		for i, m := range list {
			haystack[i] = strings.ToLower(m.Title + " " + PlainText(m.Text))
		}
		var out []Memory
		for _, match := range fuzzy.Find(query, haystack) {
			out = append(out, list[match.Index])
		}
		return out
	}

	var out []Memory
	for _, m := range list {
		if strings.Contains(strings.ToLower(m.Title), query) ||
			strings.Contains(strings.ToLower(PlainText(m.Text)), query) {
			out = append(out, m)
		}
	}
	return out
}
