package merge

import (
	"math/rand"
	"testing"

	"sniffview/record"
)

func recs(dir record.Direction, stamps ...int64) []record.Record {
	out := make([]record.Record, len(stamps))
	for i, ts := range stamps {
		out[i] = record.Record{Timestamp: ts, Direction: dir, Text: "x"}
	}
	return out
}

func TestSortInterleavesByTimestamp(t *testing.T) {
	merged := Sort(recs(record.In, 1, 3, 5), recs(record.Out, 2, 3, 4))

	wantTS := []int64{1, 2, 3, 3, 4, 5}
	wantDir := []record.Direction{record.In, record.Out, record.In, record.Out, record.Out, record.In}
	if len(merged) != len(wantTS) {
		t.Fatalf("expected %d merged records, got %d", len(wantTS), len(merged))
	}
	for i := range merged {
		if merged[i].Timestamp != wantTS[i] || merged[i].Direction != wantDir[i] {
			t.Fatalf("position %d: expected %d/%s, got %d/%s", i, wantTS[i], wantDir[i], merged[i].Timestamp, merged[i].Direction)
		}
	}
}

func TestSortKeepsArrivalOrderWithinDirection(t *testing.T) {
	in := []record.Record{
		{Timestamp: 7, Direction: record.In, Text: "first"},
		{Timestamp: 7, Direction: record.In, Text: "second"},
	}
	merged := Sort(in, recs(record.Out, 7))
	if merged[0].Text != "first" || merged[1].Text != "second" || merged[2].Direction != record.Out {
		t.Fatalf("unexpected tie order %+v", merged)
	}
}

func TestSortPlacesUnparsedFirst(t *testing.T) {
	in := []record.Record{
		{Timestamp: 10, Direction: record.In, Text: "[10] ok"},
		{Timestamp: 0, Direction: record.In, Text: "garbage"},
	}
	merged := Sort(in, nil)
	if merged[0].Text != "garbage" {
		t.Fatalf("expected timestamp-0 record first, got %+v", merged)
	}
}

func TestSortIsNonDecreasingForRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		in := recs(record.In, randomStamps(rng)...)
		out := recs(record.Out, randomStamps(rng)...)
		merged := Sort(in, out)
		if len(merged) != len(in)+len(out) {
			t.Fatalf("round %d: lost records", round)
		}
		for i := 1; i < len(merged); i++ {
			if merged[i].Timestamp < merged[i-1].Timestamp {
				t.Fatalf("round %d: decreasing at %d (%d after %d)", round, i, merged[i].Timestamp, merged[i-1].Timestamp)
			}
		}
	}
}

func TestAlignPadsOppositeColumn(t *testing.T) {
	in, out := Align(Sort(recs(record.In, 1, 3, 5), recs(record.Out, 2, 3, 4)))

	// rows: 1 | pad, pad | 2, 3 | 3, pad | 4, 5 | pad
	wantInPad := []bool{false, true, false, true, false}
	wantOutPad := []bool{true, false, false, false, true}
	if len(in) != len(wantInPad) || len(out) != len(wantOutPad) {
		t.Fatalf("expected 5 rows per column, got in=%d out=%d", len(in), len(out))
	}
	for i := range in {
		if in[i].Pad != wantInPad[i] || out[i].Pad != wantOutPad[i] {
			t.Fatalf("row %d: expected pads in=%v out=%v, got in=%v out=%v", i, wantInPad[i], wantOutPad[i], in[i].Pad, out[i].Pad)
		}
	}
	if in[2].Timestamp != 3 || out[2].Timestamp != 3 {
		t.Fatalf("expected both records at ts=3 on the same row")
	}
	if in[0].Text != "IN: x" || out[1].Text != "OUT: x" {
		t.Fatalf("unexpected display text %q / %q", in[0].Text, out[1].Text)
	}
	if out[0].Text != "" || out[0].Timestamp != 0 {
		t.Fatalf("padding row must be blank, got %+v", out[0])
	}
}

func TestAlignSameTimestampBurst(t *testing.T) {
	in, out := Align(Sort(recs(record.In, 4, 4, 4), recs(record.Out, 4)))
	if len(in) != 3 || len(out) != 3 {
		t.Fatalf("expected 3 rows, got in=%d out=%d", len(in), len(out))
	}
	if out[0].Pad || !out[1].Pad || !out[2].Pad {
		t.Fatalf("expected OUT record on the first row then padding, got %+v", out)
	}
}

func TestAlignEqualLengthForRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for round := 0; round < 200; round++ {
		inRecs := recs(record.In, randomStamps(rng)...)
		outRecs := recs(record.Out, randomStamps(rng)...)
		in, out := Align(Sort(inRecs, outRecs))
		if len(in) != len(out) {
			t.Fatalf("round %d: unequal columns %d vs %d", round, len(in), len(out))
		}
		filled := 0
		for i := range in {
			if !in[i].Pad {
				filled++
			}
			if !out[i].Pad {
				filled++
			}
			if !in[i].Pad && !out[i].Pad && in[i].Timestamp != out[i].Timestamp {
				t.Fatalf("round %d row %d: mismatched timestamps %d/%d", round, i, in[i].Timestamp, out[i].Timestamp)
			}
		}
		if filled != len(inRecs)+len(outRecs) {
			t.Fatalf("round %d: expected %d filled rows, got %d", round, len(inRecs)+len(outRecs), filled)
		}
	}
}

func TestAlignEmpty(t *testing.T) {
	in, out := Align(nil)
	if len(in) != 0 || len(out) != 0 {
		t.Fatalf("expected empty columns, got %d/%d", len(in), len(out))
	}
}

func randomStamps(rng *rand.Rand) []int64 {
	n := rng.Intn(20)
	out := make([]int64, n)
	var ts int64
	for i := range out {
		ts += int64(rng.Intn(3))
		out[i] = ts
	}
	return out
}
