package merge

import (
	"time"

	"github.com/zeebo/xxh3"

	"sniffview/record"
)

// Frame is the output of one merge cycle: two equal-length columns plus the
// scroll position of the In view when the frame was built.
type Frame struct {
	Seq      uint64
	At       time.Time
	In       []Line
	Out      []Line
	Position float64
	Records  int    // records consumed by this cycle
	Padding  int    // padding rows across both columns
	Digest   uint64 // xxh3 over the rendered rows; equal digests render identically
}

// Rows returns the shared column length.
func (f Frame) Rows() int {
	return len(f.In)
}

// Column returns the lines for dir.
func (f Frame) Column(dir record.Direction) []Line {
	if dir == record.Out {
		return f.Out
	}
	return f.In
}

func newFrame(in, out []Line, records int) Frame {
	f := Frame{In: in, Out: out, Records: records}
	h := xxh3.New()
	sep := []byte{0x1f}
	nl := []byte{'\n'}
	for i := range in {
		if in[i].Pad {
			f.Padding++
		}
		if out[i].Pad {
			f.Padding++
		}
		_, _ = h.Write([]byte(in[i].Text))
		_, _ = h.Write(sep)
		_, _ = h.Write([]byte(out[i].Text))
		_, _ = h.Write(nl)
	}
	f.Digest = h.Sum64()
	return f
}
