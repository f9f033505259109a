package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/sonnes/obsession/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcAggregator() *Aggregator {
	return New(Config{Location: time.UTC})
}

func TestAggregateScenario(t *testing.T) {
	msgs := []core.Message{
		{Text: `"hello world" said A`, IsUser: true, SendDate: "2024/01/01 10:00"},
		{Text: "no quotes here", IsUser: false, SendDate: "bad-date"},
	}

	s := utcAggregator().Aggregate(msgs, "A", "B")

	assert.Equal(t, 2, s.TotalMessages)
	assert.Equal(t, 1, s.Hours[10])
	assert.Equal(t, 1, s.HourTotal())
	assert.Equal(t, map[string]int{"01-01": 1}, s.Daily)
	assert.Equal(t, 1, s.TermFrequency["hello"])
	assert.Equal(t, 1, s.TermFrequency["world"])
	assert.NotContains(t, s.TermFrequency, "said")
	assert.Equal(t, len(`"hello world" said A`), s.UserChars)
	assert.Equal(t, len("no quotes here"), s.CharChars)
	assert.Equal(t, 1, s.Unparsed)
	assert.Equal(t, "1/1/2024", s.FirstContact)
	assert.Empty(t, s.TopTerms)
}

func TestAggregateEmpty(t *testing.T) {
	s := utcAggregator().Aggregate(nil, "", "")

	assert.Equal(t, 0, s.TotalMessages)
	assert.Equal(t, Unknown, s.FirstContact)
	assert.Nil(t, s.FirstContactAt)
	assert.Empty(t, s.TermFrequency)
	assert.Empty(t, s.Daily)
	assert.Empty(t, s.TopTerms)
	assert.Len(t, s.Hours, 24)
}

func TestAggregateCharCounts(t *testing.T) {
	tests := []struct {
		name      string
		msg       core.Message
		wantUser  int
		wantChar  int
	}{
		{
			name:     "markup not counted",
			msg:      core.Message{IsUser: true, Text: "<b>hi</b>"},
			wantUser: 2,
		},
		{
			name:     "placeholders not counted",
			msg:      core.Message{Text: "{{char}} nods"},
			wantChar: 5,
		},
		{
			name:     "cjk counted per character",
			msg:      core.Message{Text: "你好世界"},
			wantChar: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := utcAggregator().Aggregate([]core.Message{tt.msg}, "", "")
			assert.Equal(t, tt.wantUser, s.UserChars)
			assert.Equal(t, tt.wantChar, s.CharChars)
		})
	}
}

func TestAggregateCharCountsMonotonic(t *testing.T) {
	var msgs []core.Message
	texts := []string{"one", "<i>two</i>", "", "{{user}}", `"three" four`}
	prev := 0
	for i, text := range texts {
		msgs = append(msgs, core.Message{Text: text, IsUser: i%2 == 0})
		s := utcAggregator().Aggregate(msgs, "", "")
		total := s.UserChars + s.CharChars
		assert.GreaterOrEqual(t, total, prev)
		prev = total
	}
}

func TestDialogueTerms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "no quotes",
			in:   "She walked away slowly.",
			want: nil,
		},
		{
			name: "ascii quotes",
			in:   `He said "Never Leave me" and left.`,
			want: []string{"never", "leave"},
		},
		{
			name: "curly quotes",
			in:   "“Stay here,” she whispered.",
			want: []string{"stay", "here"},
		},
		{
			name: "cjk dialogue",
			in:   "她说：“我们一起走吧”",
			want: []string{"我们一起走吧"},
		},
		{
			name: "short tokens dropped",
			in:   `"go to it, ok"`,
			want: nil,
		},
		{
			name: "multiple spans do not join",
			in:   `"abc" then "def"`,
			want: []string{"abc", "def"},
		},
		{
			name: "empty quotes",
			in:   `"" ""`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dialogueTerms(tt.in))
		})
	}
}

func TestAggregateStopWords(t *testing.T) {
	msgs := []core.Message{
		{Text: `"Seraphina, where are you going?"`},
		{Text: `"Alice stays with the forest"`, IsUser: true},
	}

	s := New(Config{Location: time.UTC, ExtraStopWords: []string{" Forest "}}).Aggregate(msgs, "Alice", "Seraphina")

	assert.NotContains(t, s.TermFrequency, "seraphina")
	assert.NotContains(t, s.TermFrequency, "alice")
	assert.NotContains(t, s.TermFrequency, "where")
	assert.NotContains(t, s.TermFrequency, "forest")
	assert.Equal(t, 1, s.TermFrequency["going"])
	assert.Equal(t, 1, s.TermFrequency["stays"])
}

func TestAggregateDoesNotLeakStopWords(t *testing.T) {
	a := utcAggregator()
	a.Aggregate([]core.Message{{Text: `"zephyr"`}}, "Zephyr", "")
	s := a.Aggregate([]core.Message{{Text: `"zephyr"`}}, "", "")
	assert.Equal(t, 1, s.TermFrequency["zephyr"])
}

func TestTopTerms(t *testing.T) {
	msgs := []core.Message{
		{Text: `"apple banana cherry"`},
		{Text: `"banana cherry"`},
		{Text: `"cherry apple durian"`},
		{Text: `"cherry"`},
	}

	s := utcAggregator().Aggregate(msgs, "", "")

	require.Len(t, s.TopTerms, 3)
	assert.Equal(t, TermCount{"cherry", 4}, s.TopTerms[0])
	// apple and banana tie at 2; apple was seen first.
	assert.Equal(t, TermCount{"apple", 2}, s.TopTerms[1])
	assert.Equal(t, TermCount{"banana", 2}, s.TopTerms[2])
	assert.NotContains(t, s.TopTerms, TermCount{"durian", 1})
}

func TestTopTermsAdaptiveFloor(t *testing.T) {
	msgs := make([]core.Message, 0, 301)
	msgs = append(msgs, core.Message{Text: `"twice twice"`})
	for i := 0; i < 300; i++ {
		msgs = append(msgs, core.Message{Text: "filler"})
	}

	s := utcAggregator().Aggregate(msgs, "", "")

	assert.Equal(t, 2, s.TermFrequency["twice"])
	assert.Empty(t, s.TopTerms)
	assert.Equal(t, 3, MinFrequency(301))
	assert.Equal(t, 2, MinFrequency(300))
}

func TestTopTermsLimit(t *testing.T) {
	var msgs []core.Message
	for i := 0; i < 40; i++ {
		term := fmt.Sprintf("term%c%c", 'a'+rune(i/26), 'a'+rune(i%26))
		msgs = append(msgs, core.Message{Text: fmt.Sprintf(`"%s %s"`, term, term)})
	}

	s := utcAggregator().Aggregate(msgs, "", "")

	require.Len(t, s.TopTerms, DefaultTopN)
	for i := 1; i < len(s.TopTerms); i++ {
		assert.GreaterOrEqual(t, s.TopTerms[i-1].Count, s.TopTerms[i].Count)
	}
	for _, tc := range s.TopTerms {
		assert.GreaterOrEqual(t, tc.Count, MinFrequency(s.TotalMessages))
	}

	small := New(Config{Location: time.UTC, TopN: 5}).Aggregate(msgs, "", "")
	assert.Len(t, small.TopTerms, 5)
}

func TestAggregateTimeBuckets(t *testing.T) {
	msgs := []core.Message{
		{SendDate: "March 5, 2024 11:30pm"},
		{SendDate: "2023年3月5日 08:15"},
		{SendDate: "2024-03-06T02:00:00Z"},
		{SendDate: ""},
		{SendDate: "sometime last week"},
	}

	s := utcAggregator().Aggregate(msgs, "", "")

	assert.Equal(t, 5, s.TotalMessages)
	assert.Equal(t, 2, s.Unparsed)
	assert.Equal(t, 1, s.Hours[23])
	assert.Equal(t, 1, s.Hours[8])
	assert.Equal(t, 1, s.Hours[2])
	assert.Equal(t, 3, s.HourTotal())
	// 2023-03-05 and 2024-03-05 share a bucket.
	assert.Equal(t, map[string]int{"03-05": 2, "03-06": 1}, s.Daily)
	assert.Equal(t, "3/5/2023", s.FirstContact)
	require.NotNil(t, s.FirstContactAt)
	assert.Equal(t, 2023, s.FirstContactAt.Year())
}

func TestAggregateCJKMeridiem(t *testing.T) {
	msgs := []core.Message{
		{SendDate: "2024年1月2日 下午3:04"},
		{SendDate: "2024年1月2日 上午3:04"},
		{SendDate: "2024年1月2日 凌晨3:04"},
	}

	s := utcAggregator().Aggregate(msgs, "", "")

	assert.Equal(t, 1, s.Hours[15])
	assert.Equal(t, 1, s.Hours[3])
	assert.Equal(t, 1, s.Unparsed, "unknown day-part markers are not guessed")
}

func TestAggregateLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	msgs := []core.Message{{SendDate: "2024-03-06T20:00:00Z"}}

	s := New(Config{Location: tokyo}).Aggregate(msgs, "", "")

	assert.Equal(t, 1, s.Hours[5])
	assert.Equal(t, map[string]int{"03-07": 1}, s.Daily)
}

func TestAggregateIdempotent(t *testing.T) {
	msgs := []core.Message{
		{Text: `"again and again"`, SendDate: "2024/01/01 10:00", IsUser: true},
		{Text: `"again"`, SendDate: "2024/01/02 11:00"},
	}
	a := utcAggregator()
	assert.Equal(t, a.Aggregate(msgs, "u", "c"), a.Aggregate(msgs, "u", "c"))
}

func TestPeakHour(t *testing.T) {
	s := &Stats{}
	assert.Equal(t, 0, s.PeakHour())

	s.Hours[9] = 3
	s.Hours[21] = 3
	s.Hours[4] = 1
	assert.Equal(t, 9, s.PeakHour())
}

func TestShares(t *testing.T) {
	user, char := (&Stats{UserChars: 25, CharChars: 75}).Shares()
	assert.InDelta(t, 25.0, user, 1e-9)
	assert.InDelta(t, 75.0, char, 1e-9)

	user, char = (&Stats{}).Shares()
	assert.InDelta(t, 100.0, user, 1e-9)
	assert.InDelta(t, 0.0, char, 1e-9)
}

func TestTrend(t *testing.T) {
	s := &Stats{Daily: map[string]int{"01-03": 3, "01-01": 1, "12-31": 7, "01-02": 2}}

	days, counts := s.Trend(3)
	assert.Equal(t, []string{"01-02", "01-03", "12-31"}, days)
	assert.Equal(t, []int{2, 3, 7}, counts)

	days, counts = s.Trend(0)
	assert.Len(t, days, 4)
	assert.Len(t, counts, 4)
}
