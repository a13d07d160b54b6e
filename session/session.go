// Package session runs one capture: two stream readers feeding an interleave
// buffer and the merge engine that drains it.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"sniffview/buffer"
	"sniffview/config"
	"sniffview/merge"
	"sniffview/record"
	"sniffview/stream"
)

// Options describes the endpoints and cadence of a capture.
type Options struct {
	Host               string
	InPort             int
	OutPort            int
	DialTimeout        time.Duration
	ReadTimeout        time.Duration
	MaxLineBytes       int
	Interval           time.Duration
	MaxRecordsPerCycle int

	Observer stream.Observer
	Dial     stream.DialFunc
}

// OptionsFromConfig maps the device and merge sections onto session options.
func OptionsFromConfig(cfg *config.Config, obs stream.Observer) Options {
	return Options{
		Host:               cfg.Device.Host,
		InPort:             cfg.Device.InPort,
		OutPort:            cfg.Device.OutPort,
		DialTimeout:        cfg.Device.DialTimeout(),
		ReadTimeout:        cfg.Device.ReadTimeout(),
		MaxLineBytes:       cfg.Device.MaxLineBytes,
		Interval:           cfg.Merge.Interval(),
		MaxRecordsPerCycle: cfg.Merge.MaxRecordsPerCycle,
		Observer:           obs,
	}
}

// Session owns the buffer, both readers and the engine for one capture.
type Session struct {
	buf     *buffer.Interleave
	readers [2]*stream.Reader
	engine  *merge.Engine
}

// New wires the readers to a shared interleave buffer and builds the engine.
// Nothing connects until Run.
func New(opts Options) (*Session, error) {
	s := &Session{buf: buffer.NewInterleave(opts.MaxRecordsPerCycle)}
	for _, dir := range record.Directions {
		port := opts.InPort
		if dir == record.Out {
			port = opts.OutPort
		}
		r, err := stream.New(stream.Options{
			Direction:    dir,
			Host:         opts.Host,
			Port:         port,
			DialTimeout:  opts.DialTimeout,
			ReadTimeout:  opts.ReadTimeout,
			MaxLineBytes: opts.MaxLineBytes,
			Sink:         s.buf,
			Observer:     opts.Observer,
			Dial:         opts.Dial,
		})
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		s.readers[dir] = r
	}
	engine, err := merge.NewEngine(s.buf, opts.Interval)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.engine = engine
	return s, nil
}

// Engine exposes the merge engine so presentations can subscribe before Run.
func (s *Session) Engine() *merge.Engine {
	return s.engine
}

// Buffer returns the shared interleave buffer.
func (s *Session) Buffer() *buffer.Interleave {
	return s.buf
}

// Reader returns the reader for one direction.
func (s *Session) Reader(dir record.Direction) *stream.Reader {
	return s.readers[dir]
}

// Run starts both readers and the engine and blocks until ctx is cancelled.
// A failed reader is logged and left stopped; the other reader and the engine
// keep running so the healthy direction stays visible.
func (s *Session) Run(ctx context.Context) error {
	var g errgroup.Group
	for _, r := range s.readers {
		r := r
		g.Go(func() error {
			if err := r.Run(ctx); err != nil {
				log.Printf("Session: %s capture stopped: %v", r.Direction().Label(), err)
			}
			return nil
		})
	}
	g.Go(func() error {
		return s.engine.Run(ctx)
	})
	err := g.Wait()
	in, out := s.buf.Pending()
	if in+out > 0 {
		log.Printf("Session: discarded %d undelivered records on stop", in+out)
	}
	return err
}
