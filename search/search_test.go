package search

import (
	"html"
	"testing"

	"github.com/sonnes/obsession/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessages() []core.Message {
	return []core.Message{
		{Name: "Alice", IsUser: true, Text: "Do you remember the Forest?"},
		{Name: "Seraphina", Text: "<i>The forest</i> remembers you, forest child."},
		{Name: "Alice", IsUser: true, Text: "Let's go home."},
	}
}

func TestMessages(t *testing.T) {
	hits := Messages(testMessages(), "forest")

	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Index, "newest first")
	assert.Equal(t, 0, hits[1].Index)

	assert.Equal(t, "The forest remembers you, forest child.", hits[0].Text)
	assert.Equal(t, [][2]int{{4, 10}, {26, 32}}, hits[0].Spans)
	assert.Equal(t, [][2]int{{20, 26}}, hits[1].Spans)
}

func TestMessagesNoMatch(t *testing.T) {
	assert.Empty(t, Messages(testMessages(), "ocean"))
	assert.Empty(t, Messages(testMessages(), ""))
	assert.Empty(t, Messages(testMessages(), "   "))
	assert.Empty(t, Messages(nil, "forest"))
}

func TestMessagesLiteralQuery(t *testing.T) {
	msgs := []core.Message{{Text: "price is $5 (maybe)"}, {Text: "price is 5"}}

	hits := Messages(msgs, "$5 (")
	require.Len(t, hits, 1)
	assert.Equal(t, [][2]int{{9, 13}}, hits[0].Spans)
}

func TestMessagesIgnoresMarkup(t *testing.T) {
	msgs := []core.Message{
		{Text: `<span class="forest">hi</span>`},
		{Text: `<img src="a.png">`},
		{Text: `the <b>for</b>est`},
	}

	assert.Empty(t, Messages(msgs, "img"))
	assert.Empty(t, Messages(msgs, "span"))

	hits := Messages(msgs, "forest")
	require.Len(t, hits, 1, "only the visible text matches")
	assert.Equal(t, 2, hits[0].Index)
	assert.Equal(t, "the forest", hits[0].Text)
	assert.Equal(t, [][2]int{{4, 10}}, hits[0].Spans)
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		spans  [][2]int
		escape func(string) string
		want   string
	}{
		{
			name:  "no spans",
			text:  "plain",
			want:  "plain",
		},
		{
			name:  "two spans",
			text:  "a forest, a Forest",
			spans: [][2]int{{2, 8}, {12, 18}},
			want:  "a [forest], a [Forest]",
		},
		{
			name:   "escaped",
			text:   "<b> & forest",
			spans:  [][2]int{{6, 12}},
			escape: html.EscapeString,
			want:   "&lt;b&gt; &amp; [forest]",
		},
		{
			name:  "overlapping span skipped",
			text:  "abcdef",
			spans: [][2]int{{0, 3}, {2, 4}},
			want:  "[abc]def",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, tt.spans, "[", "]", tt.escape))
		})
	}
}
