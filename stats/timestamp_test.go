package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024年1月2日 10:00", "2024/1/2 10:00"},
		{"January 1, 2024 12:00pm", "January 1, 2024 12:00 pm"},
		{"1/1/2024 9:05AM", "1/1/2024 9:05 AM"},
		{"2024/01/01 10:00", "2024/01/01 10:00"},
		{"2024年1月2日 下午3:04", "2024/1/2 3:04 PM"},
		{"2024年1月2日上午9:15:30", "2024/1/2 9:15:30 AM"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTimestamp(tt.in), "NormalizeTimestamp(%q)", tt.in)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "slash date with time",
			in:   "2024/01/01 10:00",
			want: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "month name with glued pm",
			in:   "January 1, 2024 12:30pm",
			want: time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC),
		},
		{
			name: "month name with glued am",
			in:   "February 14, 2024 9:05am",
			want: time.Date(2024, 2, 14, 9, 5, 0, 0, time.UTC),
		},
		{
			name: "cjk date",
			in:   "2024年3月9日 21:45",
			want: time.Date(2024, 3, 9, 21, 45, 0, 0, time.UTC),
		},
		{
			name: "cjk date only",
			in:   "2024年3月9日",
			want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "rfc3339 converted to location",
			in:   "2024-03-06T02:00:00.000+02:00",
			want: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "humanized file stamp",
			in:   "2024-1-5 @14h 3m 9s 120ms",
			want: time.Date(2024, 1, 5, 14, 3, 9, 0, time.UTC),
		},
		{
			name: "cjk afternoon marker",
			in:   "2024年1月2日 下午3:04",
			want: time.Date(2024, 1, 2, 15, 4, 0, 0, time.UTC),
		},
		{
			name: "cjk morning marker",
			in:   "2024年1月2日 上午3:04",
			want: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
		},
		{
			name: "cjk noon hour",
			in:   "2024/1/2 下午12:10",
			want: time.Date(2024, 1, 2, 12, 10, 0, 0, time.UTC),
		},
		{
			name: "us locale string",
			in:   "3/14/2024, 1:59:26 PM",
			want: time.Date(2024, 3, 14, 13, 59, 26, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in, time.UTC)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestampFailures(t *testing.T) {
	for _, in := range []string{"", "   ", "bad-date", "not a date at all", "2024年1月2日 晚上8:00"} {
		_, ok := ParseTimestamp(in, time.UTC)
		assert.False(t, ok, "ParseTimestamp(%q)", in)
	}
}

func TestParseTimestampNilLocation(t *testing.T) {
	got, ok := ParseTimestamp("2024/01/01 10:00", nil)
	require.True(t, ok)
	assert.Equal(t, time.Local, got.Location())
}
