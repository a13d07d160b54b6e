package ui

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"sniffview/config"
	"sniffview/merge"
	"sniffview/record"
)

const (
	windowTitle        = "ESP32 Bluetooth Serial Monitor"
	paneWriterMaxBytes = 64 * 1024
	systemMaxLines     = 200
)

// Dashboard renders the two aligned columns side by side with a shared
// position bar, a stats box and the system log.
type Dashboard struct {
	app        *tview.Application
	model      *pairModel
	columns    [2]*columnView
	bar        *positionBar
	statsView  *tview.TextView
	systemView *tview.TextView
	footer     *tview.TextView
	scheduler  *frameScheduler

	ready    chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	focus    record.Direction

	systemMu    sync.Mutex
	systemLines []string

	frames  atomic.Uint64
	skipped atomic.Uint64
}

var _ Surface = (*Dashboard)(nil)

// NewDashboard starts the tview application on the terminal.
func NewDashboard(cfg config.UIConfig) *Dashboard {
	return newDashboard(cfg, nil)
}

func newDashboard(cfg config.UIConfig, screen tcell.Screen) *Dashboard {
	app := tview.NewApplication().EnableMouse(false)
	if screen != nil {
		app.SetScreen(screen)
	}
	ready := make(chan struct{})
	var once sync.Once
	app.SetBeforeDrawFunc(func(tcell.Screen) bool {
		once.Do(func() { close(ready) })
		return false
	})

	model := newPairModel(cfg.HistoryRows)
	d := &Dashboard{
		app:        app,
		model:      model,
		bar:        newPositionBar(model, cfg.SliderSteps),
		statsView:  newBoxedTextView(windowTitle),
		systemView: newBoxedTextView("System"),
		footer:     tview.NewTextView().SetDynamicColors(true),
		ready:      ready,
		done:       make(chan struct{}),
	}
	for _, dir := range record.Directions {
		d.columns[dir] = newColumnView(model, dir)
	}
	d.columns[record.In].SetFocused(true)
	d.statsView.SetTextColor(tcell.ColorYellow)
	d.systemView.SetTextColor(tcell.ColorYellow)
	d.footer.SetText(footerText())

	panes := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(d.columns[record.In], 0, 1, true).
		AddItem(d.columns[record.Out], 0, 1, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.statsView, 5, 0, false).
		AddItem(panes, 0, 1, true).
		AddItem(d.bar, 1, 0, false).
		AddItem(d.systemView, 7, 0, false).
		AddItem(d.footer, 1, 0, false)
	app.SetRoot(root, true)
	d.installKeybindings()

	d.scheduler = newFrameScheduler(app, cfg.TargetFPS, 100*time.Millisecond)
	d.scheduler.Start()

	go func() {
		defer close(d.done)
		if err := app.Run(); err != nil {
			log.Printf("UI: dashboard error: %v", err)
		}
	}()
	return d
}

func (d *Dashboard) installKeybindings() {
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			d.app.Stop()
			return nil
		case tcell.KeyTab, tcell.KeyBacktab:
			d.setFocus(d.focus.Other())
			return nil
		}
		if event.Key() == tcell.KeyRune && (event.Rune() == 'q' || event.Rune() == 'Q') {
			d.app.Stop()
			return nil
		}
		if d.columns[d.focus].HandleScroll(event) || d.bar.HandleKey(event) {
			d.refreshTitles()
			return nil
		}
		return event
	})
}

func (d *Dashboard) setFocus(dir record.Direction) {
	d.focus = dir
	for _, c := range d.columns {
		c.SetFocused(c.dir == dir)
	}
	d.app.SetFocus(d.columns[dir])
}

func footerText() string {
	return accentText("Up/Down") + " Scroll  " + accentText("PgUp/PgDn") + " Page  " +
		accentText("Home/End") + " Top/Follow  " + accentText("Left/Right") + " Slider  " +
		accentText("Tab") + " Pane  [Q]Quit"
}

// WaitReady blocks until the first draw.
func (d *Dashboard) WaitReady() {
	if d == nil || d.ready == nil {
		return
	}
	<-d.ready
}

// Done is closed once the application has exited.
func (d *Dashboard) Done() <-chan struct{} {
	return d.done
}

func (d *Dashboard) Stop() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.scheduler.Stop()
		d.app.Stop()
		select {
		case <-d.done:
		case <-time.After(200 * time.Millisecond):
			log.Printf("UI: dashboard stop timeout")
		}
	})
}

// Publish loads a merge frame into both columns.
func (d *Dashboard) Publish(f merge.Frame) {
	if d == nil {
		return
	}
	if !d.model.Load(f) {
		d.skipped.Add(1)
		return
	}
	d.frames.Add(1)
	d.scheduler.Schedule("frame", d.refreshTitles)
}

// TopFraction reports the In column position for the next frame.
func (d *Dashboard) TopFraction() float64 {
	return d.model.TopFraction()
}

func (d *Dashboard) refreshTitles() {
	for _, c := range d.columns {
		c.baseTitle = c.dir.Title() + " (" + rowRange(d.model.View(c.dir)) + ")"
		c.SetFocused(c.dir == d.focus)
	}
}

func (d *Dashboard) SetStats(lines []string) {
	if d == nil {
		return
	}
	text := strings.Join(lines, "\n")
	d.scheduler.Schedule("stats", func() {
		d.statsView.SetText(text)
	})
}

// AppendSystem adds a line to the bounded system log pane.
func (d *Dashboard) AppendSystem(line string) {
	if d == nil {
		return
	}
	tsLine := time.Now().Format("15:04:05 ") + line
	d.systemMu.Lock()
	d.systemLines = append(d.systemLines, tsLine)
	if len(d.systemLines) > systemMaxLines {
		d.systemLines = d.systemLines[len(d.systemLines)-systemMaxLines:]
	}
	text := strings.Join(d.systemLines, "\n")
	d.systemMu.Unlock()
	d.scheduler.Schedule("system", func() {
		d.systemView.SetText(text)
		d.systemView.ScrollToEnd()
	})
}

func (d *Dashboard) SystemWriter() io.Writer {
	if d == nil {
		return nil
	}
	return &paneWriter{dash: d}
}

// paneWriter splits log output into lines for the system pane.
type paneWriter struct {
	dash *Dashboard
	// buf holds any partial line; it is bounded to avoid unbounded growth when no newline arrives.
	buf          []byte
	mu           sync.Mutex
	droppedBytes uint64
	lastDropLog  time.Time
}

func (w *paneWriter) Write(p []byte) (int, error) {
	if w == nil || w.dash == nil {
		return len(p), nil
	}
	var logDrop bool
	var dropBytes, totalDropped uint64
	now := time.Now().UTC()

	w.mu.Lock()
	w.buf = append(w.buf, p...)
	if excess := len(w.buf) - paneWriterMaxBytes; excess > 0 {
		w.buf = w.buf[excess:]
		w.droppedBytes += uint64(excess)
		dropBytes = uint64(excess)
		totalDropped = w.droppedBytes
		if w.lastDropLog.IsZero() || now.Sub(w.lastDropLog) >= 30*time.Second {
			w.lastDropLog = now
			logDrop = true
		}
	}
	var lines []string
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx == -1 {
			break
		}
		lines = append(lines, string(bytes.TrimRight(w.buf[:idx], "\r")))
		w.buf = w.buf[idx+1:]
	}
	w.mu.Unlock()

	for _, line := range lines {
		w.dash.AppendSystem(line)
	}
	if logDrop {
		w.dash.AppendSystem(fmt.Sprintf("UI: system pane dropped %d bytes (total %d) due to missing newline", dropBytes, totalDropped))
	}
	return len(p), nil
}
