package ui

import (
	"strconv"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"sniffview/merge"
	"sniffview/record"
	"sniffview/scroll"
)

// rowPair is one aligned row: the In text and the Out text ("" for padding).
type rowPair [2]string

// pairModel holds the aligned rows shown by both columns and the scroll state
// of each column. Every scroll command goes through scroll.Sync so both
// columns always sit on the same row.
// Concurrency: Load may be called from the merge goroutine; the draw and key
// paths run on the UI goroutine.
type pairModel struct {
	mu      sync.Mutex
	rows    []rowPair
	head    int
	count   int
	history int
	total   uint64

	views  [2]scroll.View
	follow bool
	digest uint64
}

// newPairModel keeps up to history rows across frames; 0 keeps only the most
// recent frame.
func newPairModel(history int) *pairModel {
	if history < 0 {
		history = 0
	}
	m := &pairModel{history: history, follow: true}
	if history > 0 {
		m.rows = make([]rowPair, history)
	}
	return m
}

// Load adds a frame's rows. It reports false when the frame would not change
// what is shown (replace mode with an identical digest).
func (m *pairModel) Load(f merge.Frame) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.history == 0 {
		if m.count > 0 && f.Digest == m.digest {
			return false
		}
		m.digest = f.Digest
		m.rows = make([]rowPair, f.Rows())
		m.head = 0
		m.count = 0
		for i := range f.In {
			m.rows[i] = rowPair{f.In[i].Text, f.Out[i].Text}
			m.count++
		}
		m.total += uint64(f.Rows())
		m.syncTotalsLocked()
		return true
	}

	for i := range f.In {
		pair := rowPair{f.In[i].Text, f.Out[i].Text}
		if m.count < m.history {
			m.rows[(m.head+m.count)%m.history] = pair
			m.count++
		} else {
			m.rows[m.head] = pair
			m.head = (m.head + 1) % m.history
			m.shiftLocked(-1)
		}
		m.total++
	}
	m.digest = f.Digest
	m.syncTotalsLocked()
	return true
}

// shiftLocked moves both offsets when the oldest row is evicted so the user
// keeps looking at the same content.
func (m *pairModel) shiftLocked(delta int) {
	if m.follow {
		return
	}
	for i := range m.views {
		m.views[i].Offset = max(m.views[i].Offset+delta, 0)
	}
}

func (m *pairModel) syncTotalsLocked() {
	for i := range m.views {
		m.views[i].Total = m.count
	}
	if m.follow {
		m.views[record.In], m.views[record.Out] = scroll.Sync(scroll.MoveTo(1), m.views[record.In], m.views[record.Out])
		return
	}
	m.views[record.In], m.views[record.Out] = scroll.Sync(scroll.By(0, scroll.Units), m.views[record.In], m.views[record.Out])
}

// Apply runs cmd against both columns. Landing on the last row turns follow
// mode back on; anything else turns it off.
func (m *pairModel) Apply(cmd scroll.Command) {
	m.mu.Lock()
	m.views[record.In], m.views[record.Out] = scroll.Sync(cmd, m.views[record.In], m.views[record.Out])
	m.follow = m.views[record.In].AtEnd()
	m.mu.Unlock()
}

// SetHeight records the visible height of one column before drawing.
func (m *pairModel) SetHeight(dir record.Direction, height int) {
	m.mu.Lock()
	m.views[dir].Height = max(height, 0)
	if m.follow {
		m.views[dir].Offset = m.views[dir].MaxOffset()
	} else {
		m.views[dir].Offset = min(m.views[dir].Offset, m.views[dir].MaxOffset())
	}
	m.mu.Unlock()
}

// TopFraction is the In column's top-row fraction; it satisfies
// merge.PositionSource.
func (m *pairModel) TopFraction() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.views[record.In].Fraction()
}

// Following reports whether new rows scroll into view automatically.
func (m *pairModel) Following() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.follow
}

// View returns the scroll state of one column.
func (m *pairModel) View(dir record.Direction) scroll.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.views[dir]
}

// Total returns how many rows have been loaded since start.
func (m *pairModel) Total() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Visible copies the rows of dir currently inside its view into dst.
func (m *pairModel) Visible(dir record.Direction, dst []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.views[dir]
	end := min(v.Offset+v.Height, m.count)
	dst = dst[:0]
	for i := v.Offset; i < end; i++ {
		dst = append(dst, m.rowLocked(i)[dir])
	}
	return dst
}

// Column returns every retained row of dir.
func (m *pairModel) Column(dir record.Direction) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, m.count)
	for i := 0; i < m.count; i++ {
		out = append(out, m.rowLocked(i)[dir])
	}
	return out
}

func (m *pairModel) rowLocked(i int) rowPair {
	return m.rows[(m.head+i)%len(m.rows)]
}

// columnView draws one side of a pairModel. The two columns of the dashboard
// share a model, so scrolling either one moves both.
type columnView struct {
	*tview.Box

	model      *pairModel
	dir        record.Direction
	baseTitle  string
	renderRows []string
}

func newColumnView(model *pairModel, dir record.Direction) *columnView {
	c := &columnView{
		Box:       tview.NewBox().SetBorder(true),
		model:     model,
		dir:       dir,
		baseTitle: dir.Title(),
	}
	applyFocusBoxStyle(c.Box, c.baseTitle, false)
	return c
}

func (c *columnView) SetFocused(focused bool) {
	applyFocusBoxStyle(c.Box, c.baseTitle, focused)
}

func (c *columnView) Draw(screen tcell.Screen) {
	c.Box.DrawForSubclass(screen, c)

	x, y, width, height := c.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}
	c.model.SetHeight(c.dir, height)
	c.renderRows = c.model.Visible(c.dir, c.renderRows)
	for i, row := range c.renderRows {
		drawPlainLine(screen, x, y+i, width, row, c.GetBackgroundColor())
	}
}

// HandleScroll maps navigation keys onto scroll commands for both columns.
func (c *columnView) HandleScroll(event *tcell.EventKey) bool {
	cmd, ok := scrollCommandForKey(event)
	if !ok {
		return false
	}
	c.model.Apply(cmd)
	return true
}

func scrollCommandForKey(event *tcell.EventKey) (scroll.Command, bool) {
	if event == nil {
		return scroll.Command{}, false
	}
	switch event.Key() {
	case tcell.KeyUp:
		return scroll.By(-1, scroll.Units), true
	case tcell.KeyDown:
		return scroll.By(1, scroll.Units), true
	case tcell.KeyPgUp:
		return scroll.By(-1, scroll.Pages), true
	case tcell.KeyPgDn:
		return scroll.By(1, scroll.Pages), true
	case tcell.KeyHome:
		return scroll.MoveTo(0), true
	case tcell.KeyEnd:
		return scroll.MoveTo(1), true
	case tcell.KeyRune:
		switch event.Rune() {
		case 'k':
			return scroll.By(-1, scroll.Units), true
		case 'j':
			return scroll.By(1, scroll.Units), true
		}
	}
	return scroll.Command{}, false
}

// rowRange renders "rows a-b of n" for a column title.
func rowRange(v scroll.View) string {
	if v.Total == 0 {
		return "empty"
	}
	first := v.Offset + 1
	last := min(v.Offset+v.Height, v.Total)
	return "rows " + strconv.Itoa(first) + "-" + strconv.Itoa(last) + " of " + strconv.Itoa(v.Total)
}

func drawPlainLine(screen tcell.Screen, x, y, width int, text string, bg tcell.Color) {
	if width <= 0 {
		return
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(bg)

	col := 0
	screen.SetContent(x+col, y, ' ', nil, style)
	col++
	for _, r := range text {
		if col >= width {
			return
		}
		if r == '\n' || r == '\r' {
			return
		}
		if r == '\t' {
			r = ' '
		}
		screen.SetContent(x+col, y, r, nil, style)
		col++
	}
}
