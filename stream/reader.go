// Package stream reads one direction of the sniffer's telnet traffic log and
// turns each received line into a record.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/ziutek/telnet"

	"sniffview/record"
)

// Sink receives records in arrival order. Append returns false when the
// record could not be buffered.
type Sink interface {
	Append(record.Record) bool
}

// DropReason says why a received line did not become a buffered record.
type DropReason string

const (
	DropDecode   DropReason = "decode"   // not valid UTF-8
	DropOversize DropReason = "oversize" // longer than the configured line limit
	DropOverflow DropReason = "overflow" // sink refused the record
)

// Observer is told about every line outcome and about reader termination.
// Implementations must be safe for concurrent use by both readers.
type Observer interface {
	LineAccepted(dir record.Direction, r record.Record)
	LineDropped(dir record.Direction, reason DropReason)
	ReaderStateChanged(dir record.Direction, state State, err error)
}

// State is the lifecycle stage of a Reader.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// DialFunc opens the transport connection for a reader.
type DialFunc func(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error)

// Options configures a Reader. Host, Port, DialTimeout, ReadTimeout and Sink
// are required.
type Options struct {
	Direction    record.Direction
	Host         string
	Port         int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	MaxLineBytes int // 0 disables the limit
	Sink         Sink
	Observer     Observer
	Dial         DialFunc // nil dials TCP and wraps the socket in a telnet connection
}

// Reader owns one connection and feeds its lines into a Sink until the
// connection fails or the context is cancelled. It never reconnects.
type Reader struct {
	opts  Options
	addr  string
	state atomic.Int32

	errMu   sync.Mutex
	lastErr error

	dropMu      sync.Mutex
	lastDropLog time.Time
}

// New validates opts and returns an idle reader.
func New(opts Options) (*Reader, error) {
	label := opts.Direction.Label()
	switch {
	case strings.TrimSpace(opts.Host) == "":
		return nil, fmt.Errorf("%s reader: host is required", label)
	case opts.Port <= 0 || opts.Port > 65535:
		return nil, fmt.Errorf("%s reader: invalid port %d", label, opts.Port)
	case opts.DialTimeout <= 0:
		return nil, fmt.Errorf("%s reader: dial timeout must be positive", label)
	case opts.ReadTimeout <= 0:
		return nil, fmt.Errorf("%s reader: read timeout must be positive", label)
	case opts.MaxLineBytes < 0:
		return nil, fmt.Errorf("%s reader: max line bytes must not be negative", label)
	case opts.Sink == nil:
		return nil, fmt.Errorf("%s reader: sink is required", label)
	}
	if opts.Dial == nil {
		opts.Dial = dialTelnet
	}
	return &Reader{
		opts: opts,
		addr: net.JoinHostPort(strings.TrimSpace(opts.Host), strconv.Itoa(opts.Port)),
	}, nil
}

// dialTelnet connects over TCP and lets the telnet layer strip IAC
// negotiation bytes from everything read afterwards.
func dialTelnet(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := telnet.NewConn(raw)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return conn, nil
}

// Direction returns the stream this reader captures.
func (r *Reader) Direction() record.Direction {
	return r.opts.Direction
}

// Addr returns the host:port the reader dials.
func (r *Reader) Addr() string {
	return r.addr
}

// State returns the current lifecycle stage.
func (r *Reader) State() State {
	return State(r.state.Load())
}

// Err returns the error that ended the reader, if any.
func (r *Reader) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.lastErr
}

// Run connects and reads until ctx is cancelled (returns nil) or the
// connection fails (returns the error after reporting it). Cancelling ctx
// closes the connection so a pending read returns immediately.
func (r *Reader) Run(ctx context.Context) error {
	label := r.opts.Direction.Label()
	r.setState(StateConnecting, nil)
	log.Printf("%s reader: connecting to %s...", label, r.addr)

	conn, err := r.opts.Dial(ctx, r.addr, r.opts.DialTimeout)
	if err != nil {
		if ctx.Err() != nil {
			r.setState(StateStopped, nil)
			return nil
		}
		return r.fail(fmt.Errorf("%s reader: dial %s: %w", label, r.addr, err))
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	r.setState(StateStreaming, nil)
	log.Printf("%s reader: connection established", label)

	reader := newLineReader(conn, r.opts.MaxLineBytes)
	for {
		line, err := reader.ReadLine(time.Now().Add(r.opts.ReadTimeout))
		if err != nil {
			if ctx.Err() != nil {
				r.setState(StateStopped, nil)
				log.Printf("%s reader: stopped", label)
				return nil
			}
			var tooLong errLineTooLong
			if errors.As(err, &tooLong) {
				r.drop(DropOversize, fmt.Sprintf("%d byte line (limit %d): %.40q", tooLong.length, r.opts.MaxLineBytes, tooLong.preview))
				continue
			}
			if isTimeout(err) {
				continue
			}
			return r.fail(fmt.Errorf("%s reader: read %s: %w", label, r.addr, err))
		}
		r.handleLine(line)
	}
}

func (r *Reader) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if !utf8.ValidString(line) {
		r.drop(DropDecode, fmt.Sprintf("invalid UTF-8: %.40q", line))
		return
	}
	rec := record.New(r.opts.Direction, line, time.Now())
	if !r.opts.Sink.Append(rec) {
		r.drop(DropOverflow, "collector full for this cycle")
		return
	}
	if r.opts.Observer != nil {
		r.opts.Observer.LineAccepted(r.opts.Direction, rec)
	}
}

func (r *Reader) fail(err error) error {
	log.Printf("%v", err)
	r.setState(StateFailed, err)
	return err
}

func (r *Reader) setState(s State, err error) {
	r.state.Store(int32(s))
	if err != nil {
		r.errMu.Lock()
		r.lastErr = err
		r.errMu.Unlock()
	}
	if r.opts.Observer != nil {
		r.opts.Observer.ReaderStateChanged(r.opts.Direction, s, err)
	}
}

// drop reports a discarded line; the log line is limited to one per 30s.
func (r *Reader) drop(reason DropReason, detail string) {
	if r.opts.Observer != nil {
		r.opts.Observer.LineDropped(r.opts.Direction, reason)
	}
	now := time.Now()
	r.dropMu.Lock()
	if !r.lastDropLog.IsZero() && now.Sub(r.lastDropLog) < 30*time.Second {
		r.dropMu.Unlock()
		return
	}
	r.lastDropLog = now
	r.dropMu.Unlock()
	log.Printf("%s reader: dropped %s line: %s", r.opts.Direction.Label(), reason, detail)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
