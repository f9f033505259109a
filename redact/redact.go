package redact

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sonnes/obsession/core"
)

// Config controls which rules the Redactor applies.
type Config struct {
	Secrets    bool
	PII        bool
	ExtraRules []Rule
	Allowlist  []string // regex patterns to skip
}

// ParseKinds turns a comma-separated list such as "secrets,pii" into a
// Config. "all" enables both sets, "none" or an empty list neither.
func ParseKinds(list string) (Config, error) {
	var cfg Config
	for _, k := range strings.Split(list, ",") {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "", "none":
		case "secrets", "secret":
			cfg.Secrets = true
		case "pii":
			cfg.PII = true
		case "all":
			cfg.Secrets, cfg.PII = true, true
		default:
			return Config{}, fmt.Errorf("unknown redaction kind %q", k)
		}
	}
	return cfg, nil
}

// Redactor applies redaction rules to every string of a chat: message
// bodies, swipes and the string leaves of message extras.
type Redactor struct {
	rules     []Rule
	allowlist []*regexp.Regexp
}

// New creates a Redactor from the given config. Invalid allowlist patterns
// are ignored.
func New(cfg Config) *Redactor {
	var rules []Rule
	if cfg.Secrets {
		rules = append(rules, SecretRules()...)
	}
	if cfg.PII {
		rules = append(rules, PIIRules()...)
	}
	rules = append(rules, cfg.ExtraRules...)

	allowlist := make([]*regexp.Regexp, 0, len(cfg.Allowlist))
	for _, pattern := range cfg.Allowlist {
		if re, err := regexp.Compile(pattern); err == nil {
			allowlist = append(allowlist, re)
		}
	}

	return &Redactor{rules: rules, allowlist: allowlist}
}

// Transform redacts c in place.
func (r *Redactor) Transform(c *core.Chat) error {
	if len(r.rules) == 0 {
		return nil
	}
	for i := range c.Messages {
		m := &c.Messages[i]
		m.Text = r.String(m.Text)
		for j := range m.Swipes {
			m.Swipes[j] = r.String(m.Swipes[j])
		}
		if m.Extra != nil {
			m.Extra = walkAny(m.Extra, r.String).(map[string]any)
		}
	}
	return nil
}

// String applies all rules to s. Overlapping matches resolve to the
// earliest start, then the longest. Allowlisted values are kept.
func (r *Redactor) String(s string) string {
	if len(s) == 0 {
		return s
	}

	type replacement struct {
		start int
		end   int
		text  string
	}

	var reps []replacement
	for _, rule := range r.rules {
		for _, m := range rule.Detect(s) {
			if r.isAllowed(m.Value) {
				continue
			}
			reps = append(reps, replacement{
				start: m.Start,
				end:   m.End,
				text:  rule.Replacement(m),
			})
		}
	}

	if len(reps) == 0 {
		return s
	}

	sort.Slice(reps, func(i, j int) bool {
		if reps[i].start != reps[j].start {
			return reps[i].start < reps[j].start
		}
		return reps[i].end > reps[j].end
	})

	var b strings.Builder
	pos := 0
	for _, rep := range reps {
		if rep.start < pos {
			continue
		}
		b.WriteString(s[pos:rep.start])
		b.WriteString(rep.text)
		pos = rep.end
	}
	b.WriteString(s[pos:])
	return b.String()
}

func (r *Redactor) isAllowed(value string) bool {
	for _, re := range r.allowlist {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}
