package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sniffview/config"
	"sniffview/ui"
)

const testConfigBody = `device:
  host: 127.0.0.1
  in_port: 2323
  out_port: 2324
  dial_timeout_seconds: 1
  read_timeout_ms: 100
merge:
  interval_ms: 500
ui:
  mode: json
`

func writeTestConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "sniffview.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigPrefersFlagOverEnv(t *testing.T) {
	flagPath := writeTestConfig(t, t.TempDir(), testConfigBody)
	envPath := writeTestConfig(t, t.TempDir(), strings.Replace(testConfigBody, "2323", "3333", 1))
	t.Setenv(envConfigPath, envPath)

	cfg, err := loadConfig(flagPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LoadedFrom != flagPath || cfg.Device.InPort != 2323 {
		t.Fatalf("expected flag config, got %s port %d", cfg.LoadedFrom, cfg.Device.InPort)
	}

	cfg, err = loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig env: %v", err)
	}
	if cfg.LoadedFrom != envPath || cfg.Device.InPort != 3333 {
		t.Fatalf("expected env config, got %s port %d", cfg.LoadedFrom, cfg.Device.InPort)
	}
}

func TestLoadConfigSkipsMissingFiles(t *testing.T) {
	envPath := writeTestConfig(t, t.TempDir(), testConfigBody)
	t.Setenv(envConfigPath, envPath)

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LoadedFrom != envPath {
		t.Fatalf("expected fallback to env config, got %s", cfg.LoadedFrom)
	}
}

func TestLoadConfigStopsOnInvalidFile(t *testing.T) {
	bad := writeTestConfig(t, t.TempDir(), "device:\n  host: \"\"\n")
	t.Setenv(envConfigPath, writeTestConfig(t, t.TempDir(), testConfigBody))
	if _, err := loadConfig(bad); err == nil || !strings.Contains(err.Error(), "device.host") {
		t.Fatalf("expected validation error from flag config, got %v", err)
	}
}

func TestSelectSurface(t *testing.T) {
	var out bytes.Buffer
	if s, mode := selectSurface(config.UIConfig{Mode: config.UIModeHeadless}, false, &out); s != nil || mode != config.UIModeHeadless {
		t.Fatalf("headless = %T/%s", s, mode)
	}
	if s, mode := selectSurface(config.UIConfig{Mode: config.UIModeJSON}, false, &out); mode != config.UIModeJSON {
		t.Fatalf("json mode = %s", mode)
	} else if _, ok := s.(*ui.JSONLines); !ok {
		t.Fatalf("json surface = %T", s)
	}
	s, mode := selectSurface(config.UIConfig{Mode: config.UIModeTView}, false, &out)
	if mode != config.UIModePlain {
		t.Fatalf("tview without a terminal should fall back to plain, got %s", mode)
	}
	if _, ok := s.(*ui.Plain); !ok {
		t.Fatalf("fallback surface = %T", s)
	}
}

func TestMachineOutput(t *testing.T) {
	for mode, want := range map[string]bool{
		config.UIModePlain:    true,
		config.UIModeJSON:     true,
		config.UIModeTView:    false,
		config.UIModeHeadless: false,
	} {
		if got := machineOutput(mode); got != want {
			t.Fatalf("machineOutput(%s) = %v, want %v", mode, got, want)
		}
	}
}
