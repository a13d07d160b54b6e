// Package scroll maps one scroll command onto both columns identically so the
// In and Out views keep showing the same rows.
package scroll

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind selects how a Command moves the view.
type Kind int

const (
	KindMoveTo Kind = iota // absolute: top row at Fraction of the total
	KindScroll             // relative: Amount units or pages
)

// Unit is the step size of a relative scroll.
type Unit int

const (
	Units Unit = iota // one row
	Pages             // one view height minus one row
)

// Command is a single scroll request from the presentation layer.
type Command struct {
	Kind     Kind
	Fraction float64
	Amount   int
	Unit     Unit
}

// MoveTo places the top of the view at fraction f of the content.
func MoveTo(f float64) Command {
	return Command{Kind: KindMoveTo, Fraction: f}
}

// By scrolls n steps of unit; negative n scrolls towards the start.
func By(n int, unit Unit) Command {
	return Command{Kind: KindScroll, Amount: n, Unit: unit}
}

// View is the visible window over one column.
type View struct {
	Offset int // first visible row
	Height int // visible rows
	Total  int // rows in the column
}

// MaxOffset is the largest offset that still fills the view.
func (v View) MaxOffset() int {
	return max(v.Total-v.Height, 0)
}

// Fraction returns the position of the top visible row as a fraction of the
// content (the first value a text widget's yview reports).
func (v View) Fraction() float64 {
	if v.Total <= 0 {
		return 0
	}
	return float64(v.Offset) / float64(v.Total)
}

// AtEnd reports whether the last row is visible.
func (v View) AtEnd() bool {
	return v.Offset >= v.MaxOffset()
}

// Apply returns v moved by cmd, clamped to the content.
func Apply(cmd Command, v View) View {
	switch cmd.Kind {
	case KindMoveTo:
		f := cmd.Fraction
		if math.IsNaN(f) || f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		v.Offset = int(math.Round(f * float64(v.Total)))
	case KindScroll:
		step := 1
		if cmd.Unit == Pages {
			step = max(v.Height-1, 1)
		}
		v.Offset += cmd.Amount * step
	}
	v.Offset = min(max(v.Offset, 0), v.MaxOffset())
	return v
}

// Sync applies the same command to the In and Out views.
func Sync(cmd Command, in, out View) (View, View) {
	return Apply(cmd, in), Apply(cmd, out)
}

// SliderFraction normalises a 0..steps slider position to 0..1.
func SliderFraction(value, steps int) float64 {
	if steps <= 0 {
		return 0
	}
	value = min(max(value, 0), steps)
	return float64(value) / float64(steps)
}

// ParseArgs reads a scrollbar-style command: "moveto <fraction>" or
// "scroll <n> units|pages".
func ParseArgs(args ...string) (Command, error) {
	if len(args) == 0 {
		return Command{}, fmt.Errorf("scroll: empty command")
	}
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "moveto":
		if len(args) != 2 {
			return Command{}, fmt.Errorf("scroll: moveto takes 1 argument, got %d", len(args)-1)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
		if err != nil {
			return Command{}, fmt.Errorf("scroll: moveto fraction %q: %w", args[1], err)
		}
		return MoveTo(f), nil
	case "scroll":
		if len(args) != 3 {
			return Command{}, fmt.Errorf("scroll: scroll takes 2 arguments, got %d", len(args)-1)
		}
		n, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil {
			return Command{}, fmt.Errorf("scroll: scroll amount %q: %w", args[1], err)
		}
		switch strings.ToLower(strings.TrimSpace(args[2])) {
		case "units", "unit":
			return By(n, Units), nil
		case "pages", "page":
			return By(n, Pages), nil
		default:
			return Command{}, fmt.Errorf("scroll: unknown unit %q", args[2])
		}
	default:
		return Command{}, fmt.Errorf("scroll: unknown command %q", args[0])
	}
}
