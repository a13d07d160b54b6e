package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleConfig = `device:
  host: " 192.168.4.1 "
  in_port: 23
  out_port: 24
  dial_timeout_seconds: 10
  read_timeout_ms: 500
  max_line_bytes: 4096
merge:
  interval_ms: 1000
ui:
  mode: PLAIN
  history_rows: 200
logging:
  enabled: true
  dir: data/logs
  retention_days: 3
stats:
  display_interval_seconds: 5
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sniffview.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesAllSections(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LoadedFrom != path {
		t.Fatalf("LoadedFrom = %q, want %q", cfg.LoadedFrom, path)
	}
	if cfg.Device.Host != "192.168.4.1" {
		t.Fatalf("host not trimmed: %q", cfg.Device.Host)
	}
	if cfg.Device.InPort != 23 || cfg.Device.OutPort != 24 {
		t.Fatalf("ports = %d/%d", cfg.Device.InPort, cfg.Device.OutPort)
	}
	if got := cfg.Device.DialTimeout(); got != 10*time.Second {
		t.Fatalf("dial timeout = %s", got)
	}
	if got := cfg.Device.ReadTimeout(); got != 500*time.Millisecond {
		t.Fatalf("read timeout = %s", got)
	}
	if got := cfg.Merge.Interval(); got != time.Second {
		t.Fatalf("merge interval = %s", got)
	}
	if cfg.UI.Mode != UIModePlain {
		t.Fatalf("ui mode = %q, want plain", cfg.UI.Mode)
	}
	if cfg.UI.TargetFPS != 30 || cfg.UI.SliderSteps != 1000 {
		t.Fatalf("ui defaults not applied: %+v", cfg.UI)
	}
	if !cfg.Logging.Enabled || cfg.Logging.RetentionDays != 3 {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if got := cfg.Stats.DisplayInterval(); got != 5*time.Second {
		t.Fatalf("stats interval = %s", got)
	}
}

func TestLoadDefaultsUIModeToTView(t *testing.T) {
	body := strings.Replace(sampleConfig, "  mode: PLAIN\n", "", 1)
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UI.Mode != UIModeTView {
		t.Fatalf("ui mode = %q, want tview", cfg.UI.Mode)
	}
}

func TestLoadReportsEveryMissingCoreValue(t *testing.T) {
	_, err := Load(writeConfig(t, "ui:\n  mode: json\n"))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{
		"device.host",
		"device.in_port",
		"device.out_port",
		"device.dial_timeout_seconds",
		"device.read_timeout_ms",
		"merge.interval_ms",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	body := strings.Replace(sampleConfig, "in_port", "inport", 1)
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadRejectsUnknownUIMode(t *testing.T) {
	body := strings.Replace(sampleConfig, "mode: PLAIN", "mode: gtk", 1)
	_, err := Load(writeConfig(t, body))
	if err == nil || !strings.Contains(err.Error(), "ui.mode") {
		t.Fatalf("expected ui.mode error, got %v", err)
	}
}

func TestValidateLoggingNeedsDir(t *testing.T) {
	body := strings.Replace(sampleConfig, "  dir: data/logs\n", "", 1)
	_, err := Load(writeConfig(t, body))
	if err == nil || !strings.Contains(err.Error(), "logging.dir") {
		t.Fatalf("expected logging.dir error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
