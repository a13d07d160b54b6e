package record

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		line string
		want int64
	}{
		{"[123] hello", 123},
		{"no brackets", 0},
		{"[] x", 0},
		{"[abc] x", 0},
		{"", 0},
		{"[42", 0},
		{"  [7] leading space", 7},
		{"[ 9 ] padded", 9},
		{"[-5] negative", -5},
		{"x[12] not leading", 0},
		{"[99999999999999999999] overflow", 0},
		{"[1700000000123] IN: AT+OK", 1700000000123},
	}
	for _, tc := range cases {
		if got := ParseTimestamp(tc.line); got != tc.want {
			t.Fatalf("ParseTimestamp(%q) = %d, want %d", tc.line, got, tc.want)
		}
	}
}

func TestNewRecordCarriesParsedTimestamp(t *testing.T) {
	now := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	r := New(Out, "[55] AT+GMR", now)
	if r.Timestamp != 55 {
		t.Fatalf("expected timestamp 55, got %d", r.Timestamp)
	}
	if r.Direction != Out || r.Text != "[55] AT+GMR" || !r.Arrived.Equal(now) {
		t.Fatalf("unexpected record %+v", r)
	}
	if got := r.DisplayText(); got != "OUT: [55] AT+GMR" {
		t.Fatalf("unexpected display text %q", got)
	}
}

func TestDirectionLabels(t *testing.T) {
	if In.Label() != "IN" || Out.Label() != "OUT" {
		t.Fatalf("unexpected labels %q/%q", In.Label(), Out.Label())
	}
	if In.Other() != Out || Out.Other() != In {
		t.Fatalf("Other() must swap directions")
	}
	if In.Title() != "Incoming Data" || Out.Title() != "Outgoing Data" {
		t.Fatalf("unexpected titles %q/%q", In.Title(), Out.Title())
	}
}
