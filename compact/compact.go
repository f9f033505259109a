// Package compact provides a Transformer that slims chats down to what the
// statistics and views read: no swipe alternatives, optionally no system
// messages or hidden reasoning, and inline images replaced by short
// summaries.
package compact

import (
	"fmt"
	"regexp"

	"github.com/sonnes/obsession/core"
)

// Config controls the compact transformer behavior.
type Config struct {
	// DropSystem removes narrator and system messages.
	DropSystem bool
	// StripReasoning deletes model reasoning kept in message extras.
	StripReasoning bool
}

// reasoningKey is the extras field holding model reasoning.
const reasoningKey = "reasoning"

// dataURIRE matches base64 inline images pasted into message bodies.
var dataURIRE = regexp.MustCompile(`data:image/[a-zA-Z0-9.+\-]+;base64,[A-Za-z0-9+/=]+`)

// Compactor removes bulk from chats in place.
type Compactor struct {
	dropSystem     bool
	stripReasoning bool
}

// New creates a Compactor from the given config.
func New(cfg Config) *Compactor {
	return &Compactor{dropSystem: cfg.DropSystem, stripReasoning: cfg.StripReasoning}
}

// Transform implements core.Transformer.
func (c *Compactor) Transform(chat *core.Chat) error {
	out := chat.Messages[:0]
	for _, m := range chat.Messages {
		if c.dropSystem && m.IsSystem {
			continue
		}
		c.compactMessage(&m)
		out = append(out, m)
	}
	chat.Messages = out
	return nil
}

func (c *Compactor) compactMessage(m *core.Message) {
	m.Swipes = nil
	m.Text = summarizeImages(m.Text)
	if c.stripReasoning && m.Extra != nil {
		delete(m.Extra, reasoningKey)
	}
}

// summarizeImages replaces each inline image with a size summary like
// "[image: 12 KB]".
func summarizeImages(s string) string {
	return dataURIRE.ReplaceAllStringFunc(s, func(uri string) string {
		return sizeSummary("image", len(uri))
	})
}

// sizeSummary returns a summary like "[image: 3 KB]". Anything under one
// kilobyte reads as "< 1 KB".
func sizeSummary(label string, n int) string {
	if n < 1024 {
		return fmt.Sprintf("[%s: < 1 KB]", label)
	}
	return fmt.Sprintf("[%s: %d KB]", label, n/1024)
}
