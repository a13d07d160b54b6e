// Package stats tracks per-direction line counters, reader state and merge
// output for display in the dashboard and periodic console output.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"sniffview/merge"
	"sniffview/record"
	"sniffview/stream"
)

// Tracker implements stream.Observer and merge.Publisher so both readers and
// the engine can report into it without coordinating.
type Tracker struct {
	start atomic.Int64

	// drop counters live in sync.Map + atomic.Uint64 keyed "DIR|reason"
	dropped sync.Map

	lanes [2]lane

	frames    atomic.Uint64
	rows      atomic.Uint64
	padding   atomic.Uint64
	lastFrame atomic.Int64
}

type lane struct {
	accepted  atomic.Uint64
	unstamped atomic.Uint64
	state     atomic.Int32

	mu   sync.Mutex
	addr string
	err  error
}

// NewTracker creates a new stats tracker
func NewTracker() *Tracker {
	t := &Tracker{}
	t.start.Store(time.Now().UnixNano())
	return t
}

func (t *Tracker) lane(dir record.Direction) *lane {
	if dir == record.Out {
		return &t.lanes[1]
	}
	return &t.lanes[0]
}

// SetEndpoint records the address a direction reads from, for display only.
func (t *Tracker) SetEndpoint(dir record.Direction, addr string) {
	l := t.lane(dir)
	l.mu.Lock()
	l.addr = addr
	l.mu.Unlock()
}

// LineAccepted counts a buffered record; unparseable timestamps are tallied
// separately because they sort to the top of every frame.
func (t *Tracker) LineAccepted(dir record.Direction, r record.Record) {
	l := t.lane(dir)
	l.accepted.Add(1)
	if r.Timestamp == 0 {
		l.unstamped.Add(1)
	}
}

// LineDropped counts a discarded line by reason.
func (t *Tracker) LineDropped(dir record.Direction, reason stream.DropReason) {
	incrementCounter(&t.dropped, dir.Label()+"|"+string(reason))
}

// ReaderStateChanged keeps the latest state and terminal error per direction.
func (t *Tracker) ReaderStateChanged(dir record.Direction, state stream.State, err error) {
	l := t.lane(dir)
	l.state.Store(int32(state))
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

// Publish counts a merge frame.
func (t *Tracker) Publish(f merge.Frame) {
	t.frames.Add(1)
	t.rows.Add(uint64(f.Rows()))
	t.padding.Add(uint64(f.Padding))
	at := f.At
	if at.IsZero() {
		at = time.Now()
	}
	t.lastFrame.Store(at.UnixNano())
}

// Accepted returns how many records a direction has buffered.
func (t *Tracker) Accepted(dir record.Direction) uint64 {
	return t.lane(dir).accepted.Load()
}

// Unstamped returns how many buffered records had no parseable timestamp.
func (t *Tracker) Unstamped(dir record.Direction) uint64 {
	return t.lane(dir).unstamped.Load()
}

// ReaderState returns the last reported state and error for dir.
func (t *Tracker) ReaderState(dir record.Direction) (stream.State, error) {
	l := t.lane(dir)
	l.mu.Lock()
	defer l.mu.Unlock()
	return stream.State(l.state.Load()), l.err
}

// GetDropCounts returns a copy of drop counters keyed "DIR|reason".
func (t *Tracker) GetDropCounts() map[string]uint64 {
	counts := make(map[string]uint64)
	t.dropped.Range(func(key, value any) bool {
		counts[key.(string)] = value.(*atomic.Uint64).Load()
		return true
	})
	return counts
}

// Frames returns the number of merge frames published.
func (t *Tracker) Frames() uint64 {
	return t.frames.Load()
}

// GetUptime returns how long the tracker has been running
func (t *Tracker) GetUptime() time.Duration {
	return time.Since(time.Unix(0, t.start.Load()))
}

// SnapshotLines returns human-readable stats ready for console display.
func (t *Tracker) SnapshotLines() []string {
	lines := make([]string, 0, 3)
	frameLine := fmt.Sprintf("Uptime %s | Frames %s | Rows %s (padding %s)",
		t.GetUptime().Truncate(time.Second),
		humanize.Comma(int64(t.frames.Load())),
		humanize.Comma(int64(t.rows.Load())),
		humanize.Comma(int64(t.padding.Load())))
	if last := t.lastFrame.Load(); last > 0 {
		frameLine += " | last frame " + humanize.Time(time.Unix(0, last))
	}
	lines = append(lines, frameLine)
	for _, dir := range record.Directions {
		lines = append(lines, t.laneLine(dir))
	}
	return lines
}

func (t *Tracker) laneLine(dir record.Direction) string {
	l := t.lane(dir)
	state, err := t.ReaderState(dir)
	l.mu.Lock()
	addr := l.addr
	l.mu.Unlock()
	if addr == "" {
		addr = "-"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-3s %s %s | lines %s | unstamped %s | dropped %s",
		dir.Label(), addr, state,
		humanize.Comma(int64(l.accepted.Load())),
		humanize.Comma(int64(l.unstamped.Load())),
		formatDrops(t.GetDropCounts(), dir))
	if err != nil {
		fmt.Fprintf(&b, " | %v", err)
	}
	return b.String()
}

func formatDrops(counts map[string]uint64, dir record.Direction) string {
	prefix := dir.Label() + "|"
	keys := make([]string, 0, len(counts))
	for key := range counts {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return "0"
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", strings.TrimPrefix(key, prefix), humanize.Comma(int64(counts[key]))))
	}
	return strings.Join(parts, ", ")
}

func incrementCounter(m *sync.Map, key string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	if value, ok := m.Load(key); ok {
		value.(*atomic.Uint64).Add(1)
		return
	}
	counter := &atomic.Uint64{}
	actual, loaded := m.LoadOrStore(key, counter)
	if loaded {
		actual.(*atomic.Uint64).Add(1)
		return
	}
	counter.Add(1)
}
