package stream

import (
	"net"
	"time"
)

// lineReader splits a telnet byte stream into CR, LF or CRLF terminated lines.
// Bytes without a terminator stay buffered across read deadlines, so a line
// that straddles two attempts is delivered whole on the later one.
type lineReader struct {
	conn     net.Conn
	readFn   func([]byte) (int, error)
	buf      []byte
	maxLine  int
	dropping bool
	readBuf  []byte
}

// errLineTooLong carries a preview and length when a line exceeds maxLine.
type errLineTooLong struct {
	preview string
	length  int
}

func (e errLineTooLong) Error() string {
	return "line too long"
}

func newLineReader(conn net.Conn, maxLine int) *lineReader {
	return &lineReader{
		conn:    conn,
		readFn:  conn.Read,
		buf:     make([]byte, 0, maxLine),
		maxLine: maxLine,
		readBuf: make([]byte, 4096),
	}
}

// ReadLine returns the next complete line or the error that ended this
// attempt. A deadline expiry surfaces as a net.Error with Timeout() true.
func (r *lineReader) ReadLine(deadline time.Time) (string, error) {
	if err := r.conn.SetReadDeadline(deadline); err != nil {
		return "", err
	}
	for {
		if !r.dropping {
			line, err, ready := r.tryReadLine()
			if ready {
				return line, err
			}
		}
		n, err := r.readFn(r.readBuf)
		if n > 0 {
			data := r.readBuf[:n]
			if r.dropping {
				// Discard the rest of an oversize line up to its terminator.
				if idx, size := bytesIndexTerminator(data); idx >= 0 {
					r.dropping = false
					r.buf = append(r.buf[:0], data[idx+size:]...)
				}
			} else {
				r.buf = append(r.buf, data...)
			}
		}
		if err != nil {
			return "", err
		}
	}
}

func (r *lineReader) tryReadLine() (string, error, bool) {
	r.buf = trimLeadingTerminators(r.buf)
	if len(r.buf) == 0 {
		return "", nil, false
	}
	if idx, size := bytesIndexTerminator(r.buf); idx >= 0 {
		if r.maxLine > 0 && idx > r.maxLine {
			preview := string(r.buf[:r.maxLine])
			r.buf = append(r.buf[:0], r.buf[idx+size:]...)
			return "", errLineTooLong{preview: preview, length: idx}, true
		}
		line := string(r.buf[:idx])
		r.buf = append(r.buf[:0], r.buf[idx+size:]...)
		return line, nil, true
	}
	if r.maxLine > 0 && len(r.buf) > r.maxLine {
		preview := string(r.buf[:r.maxLine])
		length := len(r.buf)
		r.buf = r.buf[:0]
		r.dropping = true
		return "", errLineTooLong{preview: preview, length: length}, true
	}
	return "", nil, false
}

// trimLeadingTerminators discards CR/LF left over from the previous line.
func trimLeadingTerminators(b []byte) []byte {
	for len(b) > 0 && isTerminator(b[0]) {
		b = b[1:]
	}
	return b
}

func isTerminator(b byte) bool {
	return b == '\n' || b == '\r'
}

// bytesIndexTerminator returns the index and width of the first CRLF, CR or LF.
func bytesIndexTerminator(b []byte) (int, int) {
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '\n':
			return i, 1
		case '\r':
			if i+1 < len(b) && b[i+1] == '\n' {
				return i, 2
			}
			return i, 1
		}
	}
	return -1, 0
}
