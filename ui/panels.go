package ui

import (
	"math"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"sniffview/scroll"
)

const (
	accentTag   = "[#ff69b4]"
	accentReset = "[-]"
)

var (
	uiBorderColor  = tcell.ColorGray
	uiTitleColor   = tcell.ColorHotPink
	uiFocusedColor = tcell.ColorWhite
)

func accentText(text string) string {
	if text == "" {
		return ""
	}
	return accentTag + text + accentReset
}

func applyFocusBoxStyle(box *tview.Box, title string, focused bool) {
	if box == nil {
		return
	}
	if focused {
		box.SetBorderColor(uiFocusedColor)
		box.SetTitle(" " + accentText(title) + " [::b]*[::-] ")
	} else {
		box.SetBorderColor(uiBorderColor)
		box.SetTitle(" " + accentText(title) + " ")
	}
	box.SetTitleAlign(tview.AlignLeft)
	box.SetTitleColor(uiTitleColor)
}

func newBoxedTextView(title string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	tv.SetBorder(true)
	if title != "" {
		tv.SetTitle(accentText(title)).SetTitleAlign(tview.AlignLeft)
	}
	tv.SetBorderColor(uiBorderColor)
	tv.SetTitleColor(uiTitleColor)
	return tv
}

// positionBar is the horizontal slider under the columns. Its value runs
// 0..steps; moving it issues a moveto with the normalised fraction. When not
// being moved it tracks the In column's position.
type positionBar struct {
	*tview.Box

	model *pairModel
	steps int
}

func newPositionBar(model *pairModel, steps int) *positionBar {
	if steps <= 0 {
		steps = 1000
	}
	return &positionBar{Box: tview.NewBox(), model: model, steps: steps}
}

// Value returns the slider position matching the current top row.
func (b *positionBar) Value() int {
	return int(math.Round(b.model.TopFraction() * float64(b.steps)))
}

// Set moves the slider to value and scrolls both columns there.
func (b *positionBar) Set(value int) {
	b.model.Apply(scroll.MoveTo(scroll.SliderFraction(value, b.steps)))
}

// Step nudges the slider by one fiftieth of its range.
func (b *positionBar) Step(dir int) {
	step := max(b.steps/50, 1)
	b.Set(b.Value() + dir*step)
}

// HandleKey moves the slider with the left/right arrows and [ ].
func (b *positionBar) HandleKey(event *tcell.EventKey) bool {
	if event == nil {
		return false
	}
	switch event.Key() {
	case tcell.KeyLeft:
		b.Step(-1)
		return true
	case tcell.KeyRight:
		b.Step(1)
		return true
	case tcell.KeyRune:
		switch event.Rune() {
		case '[':
			b.Step(-1)
			return true
		case ']':
			b.Step(1)
			return true
		}
	}
	return false
}

func (b *positionBar) Draw(screen tcell.Screen) {
	b.Box.DrawForSubclass(screen, b)
	x, y, width, height := b.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}
	tview.Print(screen, b.render(width), x, y, width, tview.AlignLeft, tcell.ColorWhite)
}

// render draws "|=====#-----| 42% follow" sized to width cells.
func (b *positionBar) render(width int) string {
	pct := int(math.Round(b.model.TopFraction() * 100))
	suffix := " " + strconv.Itoa(pct) + "%"
	if b.model.Following() {
		suffix += " follow"
	}
	track := width - len(suffix) - 2
	if track < 1 {
		return strings.TrimSpace(suffix)
	}
	knob := int(math.Round(float64(b.Value()) / float64(b.steps) * float64(track-1)))
	var sb strings.Builder
	sb.WriteByte('|')
	for i := 0; i < track; i++ {
		switch {
		case i == knob:
			sb.WriteByte('#')
		case i < knob:
			sb.WriteByte('=')
		default:
			sb.WriteByte('-')
		}
	}
	sb.WriteByte('|')
	sb.WriteString(suffix)
	return sb.String()
}
