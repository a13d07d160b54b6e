// Package ui holds the presentations that consume merge frames: an
// interactive tview dashboard and line-oriented plain and JSON renderers.
package ui

import (
	"io"

	"sniffview/merge"
)

// Surface is a presentation collaborator of the merge engine. Publish and
// TopFraction are called from the merge goroutine; SetStats and writes to
// SystemWriter from the stats and logging paths.
type Surface interface {
	merge.Publisher
	merge.PositionSource
	WaitReady()
	Stop()
	// Done is closed when the user asks to quit; renderers that cannot quit
	// return nil.
	Done() <-chan struct{}
	SetStats(lines []string)
	// SystemWriter returns a sink for log output, or nil to keep logs on the
	// console.
	SystemWriter() io.Writer
}
