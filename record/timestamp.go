package record

import (
	"strconv"
	"strings"
)

// ParseTimestamp extracts the integer between a leading '[' and the next ']'.
// Lines that do not follow the "[<timestamp>] ..." shape yield 0 so a single
// malformed line never stops a reader; those records sort first at merge time.
func ParseTimestamp(line string) int64 {
	line = strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(line, "[") {
		return 0
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return 0
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(line[1:end]), 10, 64)
	if err != nil {
		return 0
	}
	return ts
}
