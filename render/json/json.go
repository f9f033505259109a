// Package json renders statistics, search hits and memories as JSON.
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sonnes/obsession/memory"
	"github.com/sonnes/obsession/search"
	"github.com/sonnes/obsession/stats"
)

// Renderer renders to JSON.
type Renderer struct {
	// Indent controls pretty-printing. When true, output is indented.
	Indent bool
}

// statsDoc adds the derived views to the raw statistics.
type statsDoc struct {
	*stats.Stats
	PeakHour  int     `json:"peak_hour"`
	UserShare float64 `json:"user_share"`
	CharShare float64 `json:"char_share"`
}

type searchDoc struct {
	Query string       `json:"query"`
	Total int          `json:"total"`
	Hits  []search.Hit `json:"hits"`
}

type memoriesDoc struct {
	Character string          `json:"character"`
	Memories  []memory.Memory `json:"memories"`
}

// Render writes s with its peak hour and side shares.
func (r *Renderer) Render(w io.Writer, s *stats.Stats) error {
	user, char := s.Shares()
	return r.encode(w, statsDoc{
		Stats:     s,
		PeakHour:  s.PeakHour(),
		UserShare: user,
		CharShare: char,
	})
}

// RenderSearch writes the hits of query.
func (r *Renderer) RenderSearch(w io.Writer, query string, hits []search.Hit) error {
	if hits == nil {
		hits = []search.Hit{}
	}
	return r.encode(w, searchDoc{Query: query, Total: len(hits), Hits: hits})
}

// RenderMemories writes the memories of a character.
func (r *Renderer) RenderMemories(w io.Writer, character string, list []memory.Memory) error {
	if list == nil {
		list = []memory.Memory{}
	}
	return r.encode(w, memoriesDoc{Character: character, Memories: list})
}

func (r *Renderer) encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
