package ui

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/mattn/go-runewidth"

	"sniffview/merge"
	"sniffview/record"
)

const plainSeparator = " | "

// Plain prints each frame as two fixed-width columns, one aligned row per
// line, under a short cycle header.
type Plain struct {
	mu    sync.Mutex
	w     io.Writer
	width int
}

var _ Surface = (*Plain)(nil)

// NewPlain writes frames to w with columns fitted into width terminal cells.
func NewPlain(w io.Writer, width int) *Plain {
	if width < 20 {
		width = 120
	}
	return &Plain{w: w, width: width}
}

func (p *Plain) columnWidth() int {
	return max((p.width-runewidth.StringWidth(plainSeparator))/2, 1)
}

// Publish writes the frame.
func (p *Plain) Publish(f merge.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()

	col := p.columnWidth()
	bw := bufio.NewWriter(p.w)
	fmt.Fprintf(bw, "-- cycle %d  %s  records %d  padding %d --\n", f.Seq, f.At.Format("15:04:05"), f.Records, f.Padding)
	fmt.Fprintf(bw, "%s%s%s\n", fitCell(record.In.Title(), col), plainSeparator, record.Out.Title())
	for i := range f.In {
		fmt.Fprintf(bw, "%s%s%s\n", fitCell(f.In[i].Text, col), plainSeparator, runewidth.Truncate(f.Out[i].Text, col, "…"))
	}
	_ = bw.Flush()
}

// fitCell truncates or pads s to exactly width cells.
func fitCell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// TopFraction is always the start: every frame is printed in full.
func (p *Plain) TopFraction() float64 { return 0 }

func (p *Plain) WaitReady() {}
func (p *Plain) Stop() {}
func (p *Plain) Done() <-chan struct{} { return nil }
func (p *Plain) SetStats(lines []string) {}
func (p *Plain) SystemWriter() io.Writer { return nil }
