package merge

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"sniffview/record"
)

// Source hands the engine everything buffered since the previous cycle and
// clears it in the same step.
type Source interface {
	TakeAll() (in, out []record.Record)
}

// Publisher receives every non-empty frame. Publish runs on the engine
// goroutine and must not block for long.
type Publisher interface {
	Publish(Frame)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Frame)

func (f PublisherFunc) Publish(fr Frame) { f(fr) }

// PositionSource reports the top fraction (0..1) of the presentation's In view.
type PositionSource interface {
	TopFraction() float64
}

// Engine runs merge cycles at a fixed cadence.
type Engine struct {
	src      Source
	interval time.Duration
	now      func() time.Time

	mu         sync.Mutex
	publishers []Publisher
	position   PositionSource

	seq    atomic.Uint64
	latest atomic.Pointer[Frame]
}

// NewEngine validates the cadence and returns an idle engine; call Run to
// start cycling.
func NewEngine(src Source, interval time.Duration) (*Engine, error) {
	if src == nil {
		return nil, errors.New("merge: nil source")
	}
	if interval <= 0 {
		return nil, errors.New("merge: interval must be positive")
	}
	return &Engine{src: src, interval: interval, now: time.Now}, nil
}

// Subscribe registers p for every frame published after the call.
func (e *Engine) Subscribe(p Publisher) {
	if p == nil {
		return
	}
	e.mu.Lock()
	e.publishers = append(e.publishers, p)
	e.mu.Unlock()
}

// SetPositionSource attaches the view whose scroll fraction frames carry.
func (e *Engine) SetPositionSource(p PositionSource) {
	e.mu.Lock()
	e.position = p
	e.mu.Unlock()
}

// Interval returns the cycle cadence.
func (e *Engine) Interval() time.Duration {
	return e.interval
}

// Cycle performs one snapshot, sort, align and publish pass. When both
// collectors are empty nothing is published, the previous frame stays current
// and ok is false.
func (e *Engine) Cycle() (Frame, bool) {
	in, out := e.src.TakeAll()
	if len(in) == 0 && len(out) == 0 {
		return Frame{}, false
	}
	colIn, colOut := Align(Sort(in, out))
	f := newFrame(colIn, colOut, len(in)+len(out))
	f.Seq = e.seq.Add(1)
	f.At = e.now()

	e.mu.Lock()
	pos := e.position
	pubs := append([]Publisher(nil), e.publishers...)
	e.mu.Unlock()
	if pos != nil {
		f.Position = clampFraction(pos.TopFraction())
	}

	e.latest.Store(&f)
	for _, p := range pubs {
		p.Publish(f)
	}
	return f, true
}

// Latest returns the most recently published frame.
func (e *Engine) Latest() (Frame, bool) {
	f := e.latest.Load()
	if f == nil {
		return Frame{}, false
	}
	return *f, true
}

// Cycles returns how many frames have been published.
func (e *Engine) Cycles() uint64 {
	return e.seq.Load()
}

// Run cycles every interval until ctx is cancelled. Records still buffered at
// cancellation are discarded.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	log.Printf("Merge: cycling every %s", e.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("Merge: stopped after %d frames", e.Cycles())
			return nil
		case <-ticker.C:
			e.Cycle()
		}
	}
}

func clampFraction(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
