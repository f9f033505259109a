package stats

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	// cjkYearMonthRE matches the year and month markers of CJK dates (2024年1月1日).
	cjkYearMonthRE = regexp.MustCompile(`[年月]`)
	cjkDayRE       = regexp.MustCompile(`日`)
	// gluedMeridiemRE matches am/pm suffixes written directly after a digit (12:00pm).
	gluedMeridiemRE = regexp.MustCompile(`(?i)(\d)(am|pm)`)
	// cjkMeridiemRE matches 上午/下午 written before the clock time (下午3:04).
	cjkMeridiemRE = regexp.MustCompile(`(上午|下午)\s*(\d{1,2}:\d{2}(?::\d{2})?)`)
	// hanRE matches any ideograph left over after normalization.
	hanRE = regexp.MustCompile(`\p{Han}`)
	// humanizedRE matches SillyTavern's file-name friendly stamp: 2024-1-1 @12h 05m 09s 123ms.
	humanizedRE = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2}) ?@(\d{1,2})h ?(\d{1,2})m ?(\d{1,2})s(?: ?\d+ms)?$`)
)

// layouts are tried in order before falling back to dateparse. Values are
// upper-cased before matching, so PM markers and month names compare equal
// regardless of how the host app wrote them.
var layouts = []string{
	time.RFC3339Nano,
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2 3:04:05 PM",
	"2006/1/2 3:04 PM",
	"2006/1/2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"January 2, 2006 3:04:05 PM",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 15:04:05",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"Jan 2, 2006 3:04 PM",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// NormalizeTimestamp rewrites locale-specific date text into a form generic
// parsers understand: CJK year/month markers become "/", day markers are
// dropped, 上午/下午 become AM/PM after the clock time and a space is
// inserted between a digit and a glued am/pm suffix. Runs of whitespace
// collapse to one space.
func NormalizeTimestamp(s string) string {
	s = cjkMeridiemRE.ReplaceAllStringFunc(s, func(m string) string {
		sub := cjkMeridiemRE.FindStringSubmatch(m)
		if sub[1] == "下午" {
			return " " + sub[2] + " PM"
		}
		return " " + sub[2] + " AM"
	})
	s = cjkYearMonthRE.ReplaceAllString(s, "/")
	s = cjkDayRE.ReplaceAllString(s, "")
	s = gluedMeridiemRE.ReplaceAllString(s, "$1 $2")
	return strings.Join(strings.Fields(s), " ")
}

// ParseTimestamp normalizes and parses a free-text send date in loc. The
// returned time is expressed in loc. ok is false when nothing could parse it,
// including text that still holds ideographs after normalization: the
// lenient parser would drop them and could shift the hour.
func ParseTimestamp(s string, loc *time.Location) (t time.Time, ok bool) {
	if loc == nil {
		loc = time.Local
	}
	s = NormalizeTimestamp(s)
	if s == "" || hanRE.MatchString(s) {
		return time.Time{}, false
	}

	if m := humanizedRE.FindStringSubmatch(s); m != nil {
		s = m[1] + "-" + m[2] + "-" + m[3] + " " + m[4] + ":" + pad2(m[5]) + ":" + pad2(m[6])
	}

	upper := strings.ToUpper(s)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, upper, loc); err == nil {
			return t.In(loc), true
		}
	}
	return parseLenient(s, loc)
}

// parseLenient defers to dateparse. dateparse can panic on some malformed
// inputs, and one bad record must not abort a whole aggregation.
func parseLenient(s string, loc *time.Location) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	t, err := dateparse.ParseIn(s, loc)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t.In(loc), true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
