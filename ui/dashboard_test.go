package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"sniffview/config"
	"sniffview/record"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDashboardLoadsFramesAndSystemLines(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	d := newDashboard(config.UIConfig{HistoryRows: 50, TargetFPS: 60, SliderSteps: 100}, screen)
	defer d.Stop()

	ready := make(chan struct{})
	go func() {
		d.WaitReady()
		close(ready)
	}()
	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatalf("dashboard never drew")
	}

	d.Publish(testFrame(0, 4, 1))
	if got := d.model.Total(); got != 4 {
		t.Fatalf("model total = %d, want 4", got)
	}
	if col := d.model.Column(record.Out); col[0] != "OUT: [0] tx" {
		t.Fatalf("unexpected Out column %q", col)
	}

	if _, err := d.SystemWriter().Write([]byte("IN reader: connection established\npartial")); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, "system pane line", func() bool {
		d.systemMu.Lock()
		defer d.systemMu.Unlock()
		return len(d.systemLines) == 1 && strings.HasSuffix(d.systemLines[0], "IN reader: connection established")
	})

	d.Stop()
	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("dashboard did not exit")
	}
}
