// Package merge turns the per-direction record snapshots of one cycle into a
// single timestamp-ordered sequence and re-splits it into two equal-length
// display columns, padded so rows with the same timestamp line up.
package merge

import (
	"sort"

	"sniffview/record"
)

// Line is one display row of a column. Padding rows have Pad set, no text and
// no timestamp.
type Line struct {
	Timestamp int64
	Direction record.Direction
	Text      string
	Pad       bool
}

// Sort concatenates in then out and stable-sorts by timestamp. Equal
// timestamps keep In before Out and arrival order within a direction; records
// with timestamp 0 (unparseable lines) therefore lead the sequence.
func Sort(in, out []record.Record) []record.Record {
	merged := make([]record.Record, 0, len(in)+len(out))
	merged = append(merged, in...)
	merged = append(merged, out...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// Align walks a sorted sequence once and builds the two columns. Each distinct
// timestamp occupies max(nIn, nOut) rows: both sides fill those rows with
// their records in order and pad the remainder, so a side with no data at that
// timestamp gets a blank row opposite every record of the other side.
// len(in) == len(out) holds for any input.
func Align(merged []record.Record) (in, out []Line) {
	in = make([]Line, 0, len(merged))
	out = make([]Line, 0, len(merged))
	for start := 0; start < len(merged); {
		ts := merged[start].Timestamp
		end := start
		nIn, nOut := 0, 0
		for end < len(merged) && merged[end].Timestamp == ts {
			if merged[end].Direction == record.Out {
				nOut++
			} else {
				nIn++
			}
			end++
		}
		rows := max(nIn, nOut)
		in = appendSide(in, merged[start:end], record.In, rows)
		out = appendSide(out, merged[start:end], record.Out, rows)
		start = end
	}
	return in, out
}

func appendSide(dst []Line, group []record.Record, dir record.Direction, rows int) []Line {
	used := 0
	for _, r := range group {
		if r.Direction != dir {
			continue
		}
		dst = append(dst, Line{Timestamp: r.Timestamp, Direction: dir, Text: r.DisplayText()})
		used++
	}
	for ; used < rows; used++ {
		dst = append(dst, Line{Direction: dir, Pad: true})
	}
	return dst
}

// Texts returns the display strings of lines, padding rows as "".
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
