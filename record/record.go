// Package record defines the canonical captured line: which side of the link it
// came from, the device timestamp embedded in it, and the raw text.
package record

import "time"

// Direction identifies which device stream a record was read from.
type Direction uint8

const (
	In  Direction = iota // device to host
	Out                  // host to device
)

// Directions lists both streams in merge order (In sorts before Out on ties).
var Directions = [...]Direction{In, Out}

// Label returns the short tag used in display text and log prefixes.
func (d Direction) Label() string {
	if d == Out {
		return "OUT"
	}
	return "IN"
}

// Title returns the pane heading shown by the dashboard.
func (d Direction) Title() string {
	if d == Out {
		return "Outgoing Data"
	}
	return "Incoming Data"
}

// Other returns the opposite stream.
func (d Direction) Other() Direction {
	if d == Out {
		return In
	}
	return Out
}

func (d Direction) String() string {
	return d.Label()
}

// Record is one complete line received from a stream. Records are never
// mutated after New returns them.
type Record struct {
	Timestamp int64     // device timestamp parsed from the leading [..] tag, 0 when unparseable
	Direction Direction // stream the line arrived on
	Text      string    // line content without terminators
	Arrived   time.Time // local receive time, diagnostics only
}

// New builds a record for line, extracting its timestamp.
func New(dir Direction, line string, arrived time.Time) Record {
	return Record{
		Timestamp: ParseTimestamp(line),
		Direction: dir,
		Text:      line,
		Arrived:   arrived,
	}
}

// DisplayText formats the record the way both panes show it: "IN: <text>".
func (r Record) DisplayText() string {
	return r.Direction.Label() + ": " + r.Text
}
