package stats

import "strings"

// baseStopWords are function words in English and Chinese that carry no
// signal in a frequent-terms list, plus a few host-app artefacts.
var baseStopWords = []string{
	"the", "and", "a", "to", "of", "it", "in", "is", "you", "i", "me", "my", "that", "he", "she", "his", "her", "him",
	"with", "for", "on", "as", "at", "but", "be", "not", "what", "so", "have", "do", "this", "from", "by", "or",
	"just", "about", "very", "would", "could", "should", "really", "something", "anything", "nothing",
	"back", "down", "over", "there", "here", "then", "now", "when", "where", "why", "how", "out", "up", "all",
	"some", "any", "no", "yes", "oh", "well", "like", "one", "can", "want", "know", "think", "get", "go", "see",
	"are", "your", "will", "was", "has", "did", "does", "don",
	"look", "make", "tell", "need", "let",
	"because", "they", "them", "who", "only", "more", "too", "right", "time", "were",
	"mode", "sandbox",
	"我", "你", "他", "她", "它", "的", "了", "在", "是", "就", "都", "而", "及", "与", "着", "个", "这", "那",
	"有", "也", "很", "啊", "吧", "呢", "吗", "么", "去", "来", "说",
	"user", "char", "name",
}

// stopWordSet builds the per-call stop-word set: the base list, any extra
// words, and the lower-cased participant names. Empty entries are ignored.
func stopWordSet(extra []string, names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(baseStopWords)+len(extra)+len(names))
	for _, w := range baseStopWords {
		set[w] = struct{}{}
	}
	for _, w := range extra {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set[w] = struct{}{}
		}
	}
	for _, n := range names {
		if n = strings.ToLower(n); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
