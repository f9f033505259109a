// Package search finds chat messages containing a query and locates every
// occurrence for highlighting.
package search

import (
	"regexp"
	"strings"

	"github.com/sonnes/obsession/core"
)

// Hit is one matching message.
type Hit struct {
	Index   int          `json:"index"` // position in the searched slice
	Message core.Message `json:"message"`
	// Text is the message body with markup tags removed.
	Text string `json:"text"`
	// Spans are [start, end) byte offsets of each match within Text.
	Spans [][2]int `json:"spans,omitempty"`
}

// Messages returns the messages whose tag-stripped body contains query,
// ignoring case. Text inside markup tags never matches, so every hit has at
// least one span. Hits are ordered newest first. An empty or blank query
// matches nothing. The query is matched literally.
func Messages(msgs []core.Message, query string) []Hit {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(query))

	var hits []Hit
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		text := core.StripTags(msg.Text)
		spans := findSpans(re, text)
		if spans == nil {
			continue
		}
		hits = append(hits, Hit{
			Index:   i,
			Message: msg,
			Text:    text,
			Spans:   spans,
		})
	}
	return hits
}

func findSpans(re *regexp.Regexp, text string) [][2]int {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	spans := make([][2]int, len(locs))
	for i, loc := range locs {
		spans[i] = [2]int{loc[0], loc[1]}
	}
	return spans
}

// Highlight wraps every span of text with open and close, passing the
// surrounding text and the matched text through escape. A nil escape leaves
// text unchanged. Spans must be sorted and non-overlapping.
func Highlight(text string, spans [][2]int, open, close string, escape func(string) string) string {
	if escape == nil {
		escape = func(s string) string { return s }
	}
	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp[0] < pos || sp[1] > len(text) {
			continue
		}
		b.WriteString(escape(text[pos:sp[0]]))
		b.WriteString(open)
		b.WriteString(escape(text[sp[0]:sp[1]]))
		b.WriteString(close)
		pos = sp[1]
	}
	b.WriteString(escape(text[pos:]))
	return b.String()
}
