// Package stats derives usage metrics from a chat log: per-side character
// counts, hour-of-day and day-of-year activity, the first contact date and
// the most frequent terms of quoted dialogue.
package stats

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sonnes/obsession/core"
)

// Unknown is the FirstContact value when no timestamp could be parsed.
const Unknown = "Unknown"

// DefaultTopN caps the TopTerms list.
const DefaultTopN = 30

// firstContactLayout mirrors the en-US short date style (1/2/2006).
const firstContactLayout = "1/2/2006"

var (
	// quoteRE captures dialogue spans between ASCII or curly double quotes.
	quoteRE = regexp.MustCompile(`["“]([^"”]*?)["”]`)
	// termRE matches CJK runs of two or more ideographs, or Latin runs of three
	// or more letters.
	termRE = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]{2,}|[a-zA-Z]{3,}`)
)

// Stats is the aggregate computed for one chat history.
type Stats struct {
	UserName string `json:"user_name,omitempty"`
	CharName string `json:"char_name,omitempty"`

	TotalMessages int `json:"total_messages"`
	UserMessages  int `json:"user_messages"`
	CharMessages  int `json:"char_messages"`

	// UserChars and CharChars count characters (runes) of cleaned bodies,
	// not words.
	UserChars int `json:"user_chars"`
	CharChars int `json:"char_chars"`

	TermFrequency map[string]int `json:"term_frequency"`
	TopTerms      []TermCount    `json:"top_terms"`

	// Hours counts messages per local hour of day.
	Hours [24]int `json:"hours"`
	// Daily counts messages per MM-DD key. Keys carry no year, so the same
	// calendar day of different years shares a bucket.
	Daily map[string]int `json:"daily"`

	FirstContact   string     `json:"first_contact"`
	FirstContactAt *time.Time `json:"first_contact_at,omitempty"`

	// Unparsed counts messages whose send date could not be parsed. Those
	// messages are missing from Hours and Daily only.
	Unparsed int `json:"unparsed"`
}

// TermCount is one entry of the frequent-terms list.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Config tunes an Aggregator. The zero value is usable.
type Config struct {
	// Location is used to bucket timestamps without an explicit zone and to
	// compute hours and days. Defaults to time.Local.
	Location *time.Location
	// ExtraStopWords are merged into the base stop-word set.
	ExtraStopWords []string
	// TopN caps TopTerms. Zero means DefaultTopN.
	TopN int
}

// Aggregator computes Stats. It holds no state between calls and is safe
// for concurrent use.
type Aggregator struct {
	cfg Config
}

// New creates an Aggregator from the given config.
func New(cfg Config) *Aggregator {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	return &Aggregator{cfg: cfg}
}

// Aggregate computes Stats with the default config.
func Aggregate(msgs []core.Message, userName, charName string) *Stats {
	return New(Config{}).Aggregate(msgs, userName, charName)
}

// AggregateChat computes Stats for a whole chat, taking participant names
// from the chat header.
func (a *Aggregator) AggregateChat(c *core.Chat) *Stats {
	return a.Aggregate(c.Messages, c.UserName, c.CharacterName)
}

// Aggregate makes a single pass over msgs. It never fails: a message whose
// send date does not parse is left out of Hours and Daily and still counted
// everywhere else.
func (a *Aggregator) Aggregate(msgs []core.Message, userName, charName string) *Stats {
	s := &Stats{
		UserName:      userName,
		CharName:      charName,
		TotalMessages: len(msgs),
		TermFrequency: make(map[string]int),
		Daily:         make(map[string]int),
		FirstContact:  Unknown,
	}

	stop := stopWordSet(a.cfg.ExtraStopWords, userName, charName)
	var order []string
	var first time.Time

	for _, msg := range msgs {
		if t, ok := ParseTimestamp(msg.SendDate, a.cfg.Location); ok {
			if first.IsZero() || t.Before(first) {
				first = t
			}
			s.Hours[t.Hour()]++
			s.Daily[fmt.Sprintf("%02d-%02d", int(t.Month()), t.Day())]++
		} else {
			s.Unparsed++
		}

		clean := core.CleanText(msg.Text)
		n := utf8.RuneCountInString(clean)
		if msg.IsUser {
			s.UserMessages++
			s.UserChars += n
		} else {
			s.CharMessages++
			s.CharChars += n
		}

		for _, term := range dialogueTerms(clean) {
			if _, skip := stop[term]; skip {
				continue
			}
			if s.TermFrequency[term] == 0 {
				order = append(order, term)
			}
			s.TermFrequency[term]++
		}
	}

	if !first.IsZero() {
		s.FirstContact = first.Format(firstContactLayout)
		s.FirstContactAt = &first
	}
	s.TopTerms = topTerms(s.TermFrequency, order, MinFrequency(s.TotalMessages), a.cfg.TopN)
	return s
}

// MinFrequency is the adaptive floor for TopTerms: long logs need a term to
// appear three times, short ones twice.
func MinFrequency(totalMessages int) int {
	if totalMessages > 300 {
		return 3
	}
	return 2
}

// dialogueTerms extracts lower-cased candidate terms from the quoted spans of
// s. Text outside quotes contributes nothing.
func dialogueTerms(s string) []string {
	spans := quoteRE.FindAllStringSubmatch(s, -1)
	if len(spans) == 0 {
		return nil
	}
	parts := make([]string, 0, len(spans))
	for _, m := range spans {
		parts = append(parts, m[1])
	}
	dialogue := strings.ToLower(strings.Join(parts, " "))
	if strings.TrimSpace(dialogue) == "" {
		return nil
	}
	return termRE.FindAllString(dialogue, -1)
}

// topTerms keeps terms at or above floor, sorted by count descending with
// ties in discovery order, truncated to n.
func topTerms(freq map[string]int, order []string, floor, n int) []TermCount {
	out := make([]TermCount, 0, len(order))
	for _, term := range order {
		if c := freq[term]; c >= floor {
			out = append(out, TermCount{Term: term, Count: c})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// PeakHour returns the first hour with the highest message count. It is 0
// when no timestamp parsed.
func (s *Stats) PeakHour() int {
	peak := 0
	for h, c := range s.Hours {
		if c > s.Hours[peak] {
			peak = h
		}
	}
	return peak
}

// Shares returns each side's percentage of all counted characters. An empty
// log reports 100% for the user side.
func (s *Stats) Shares() (user, char float64) {
	total := s.UserChars + s.CharChars
	if total == 0 {
		total = 1
	}
	char = float64(s.CharChars) / float64(total) * 100
	return 100 - char, char
}

// Trend returns the last n day keys in sorted order and their counts.
func (s *Stats) Trend(n int) (days []string, counts []int) {
	days = make([]string, 0, len(s.Daily))
	for d := range s.Daily {
		days = append(days, d)
	}
	sort.Strings(days)
	if n > 0 && len(days) > n {
		days = days[len(days)-n:]
	}
	counts = make([]int, len(days))
	for i, d := range days {
		counts[i] = s.Daily[d]
	}
	return days, counts
}

// HourTotal is the sum of Hours. It equals TotalMessages minus Unparsed.
func (s *Stats) HourTotal() int {
	n := 0
	for _, c := range s.Hours {
		n += c
	}
	return n
}
