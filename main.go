package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"sniffview/config"
	"sniffview/record"
	"sniffview/session"
	"sniffview/stats"
	"sniffview/ui"
)

const (
	defaultConfigPath = "data/config/sniffview.yaml"
	envConfigPath     = "SNIFFVIEW_CONFIG"
	shutdownTimeout   = 5 * time.Second
)

// Purpose: Report whether stdout is a TTY for UI gating.
// Key aspects: Uses term.IsTerminal on stdout fd.
// Upstream: main UI selection.
// Downstream: term.IsTerminal.
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 120
}

// Purpose: Load configuration from the flag, env, or default location.
// Key aspects: Missing files fall through to the next candidate; a file that
// exists but does not parse or validate stops the search.
// Upstream: main startup.
// Downstream: config.Load.
func loadConfig(flagPath string) (*config.Config, error) {
	candidates := make([]string, 0, 3)
	if p := strings.TrimSpace(flagPath); p != "" {
		candidates = append(candidates, p)
	}
	if envPath := strings.TrimSpace(os.Getenv(envConfigPath)); envPath != "" {
		candidates = append(candidates, envPath)
	}
	candidates = append(candidates, defaultConfigPath)

	var lastErr error
	for _, path := range candidates {
		cfg, err := config.Load(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("unable to load config; tried %s (last error: %v)", strings.Join(candidates, ", "), lastErr)
}

// machineOutput reports whether stdout carries rendered frames, in which case
// logs move to stderr.
func machineOutput(mode string) bool {
	return mode == config.UIModePlain || mode == config.UIModeJSON
}

// Purpose: Pick the presentation for the configured mode.
// Key aspects: tview needs a terminal and falls back to the plain renderer
// without one; headless returns nil.
// Upstream: main startup.
// Downstream: ui constructors.
func selectSurface(cfg config.UIConfig, tty bool, stdout io.Writer) (ui.Surface, string) {
	mode := cfg.Mode
	if mode == config.UIModeTView && !tty {
		log.Printf("UI: tview requires an interactive console; using plain output")
		mode = config.UIModePlain
	}
	switch mode {
	case config.UIModeTView:
		return ui.NewDashboard(cfg), mode
	case config.UIModePlain:
		width := 120
		if tty {
			width = terminalWidth()
		}
		return ui.NewPlain(stdout, width), mode
	case config.UIModeJSON:
		return ui.NewJSONLines(stdout), mode
	default:
		return nil, config.UIModeHeadless
	}
}

// Purpose: Periodically publish reader and merge counters.
// Key aspects: Dashboard gets the lines in its stats box (file log only);
// other modes log them.
// Upstream: main startup.
// Downstream: stats.Tracker.SnapshotLines.
func displayStats(ctx context.Context, interval time.Duration, tracker *stats.Tracker, surface ui.Surface, fanout *logFanout) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			lines := tracker.SnapshotLines()
			if surface != nil && surface.SystemWriter() != nil {
				surface.SetStats(lines)
				for _, line := range lines {
					fanout.WriteFileOnlyLine("Stats: "+line, now)
				}
				continue
			}
			for _, line := range lines {
				log.Printf("Stats: %s", line)
			}
		}
	}
}

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default $"+envConfigPath+" or "+defaultConfigPath+")")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	console := io.Writer(os.Stdout)
	if machineOutput(cfg.UI.Mode) {
		console = os.Stderr
	}
	fanout, err := setupLogging(cfg.Logging, console)
	log.SetFlags(0)
	log.SetOutput(fanout)
	defer fanout.Close()
	if err != nil {
		log.Printf("Logging: file logging disabled: %v", err)
	}
	log.Printf("Loaded configuration from %s", cfg.LoadedFrom)
	if !machineOutput(cfg.UI.Mode) {
		cfg.Print()
	}

	tracker := stats.NewTracker()
	sess, err := session.New(session.OptionsFromConfig(cfg, tracker))
	if err != nil {
		log.Fatalf("Error creating capture session: %v", err)
	}
	for _, dir := range record.Directions {
		tracker.SetEndpoint(dir, sess.Reader(dir).Addr())
	}
	engine := sess.Engine()
	engine.Subscribe(tracker)

	surface, mode := selectSurface(cfg.UI, isStdoutTTY(), os.Stdout)
	var quit <-chan struct{}
	if surface != nil {
		engine.Subscribe(surface)
		engine.SetPositionSource(surface)
		surface.WaitReady()
		if w := surface.SystemWriter(); w != nil {
			fanout.SetConsoleSink(w, false)
		}
		quit = surface.Done()
	}
	log.Printf("UI: %s", mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan error, 1)
	go func() {
		runDone <- sess.Run(ctx)
	}()
	go displayStats(ctx, cfg.Stats.DisplayInterval(), tracker, surface, fanout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	log.Printf("Capturing %s (in) and %s (out); merging every %s. Press Ctrl+C to stop.",
		sess.Reader(record.In).Addr(), sess.Reader(record.Out).Addr(), engine.Interval())

	finished := false
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case <-quit:
		log.Println("UI closed")
	case err := <-runDone:
		finished = true
		log.Printf("Capture ended unexpectedly: %v", err)
	}
	log.Println("Shutting down gracefully...")
	cancel()

	if !finished {
		select {
		case err := <-runDone:
			if err != nil {
				log.Printf("Capture stopped with error: %v", err)
			}
		case <-time.After(shutdownTimeout):
			log.Printf("Capture did not stop within %s", shutdownTimeout)
		}
	}
	if surface != nil {
		surface.Stop()
	}
	fanout.SetConsoleSink(console, true)
	for _, line := range tracker.SnapshotLines() {
		log.Printf("Final: %s", line)
	}
	log.Println("Shutdown complete")
}
