package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}
	if cfg.Level != "INFO" {
		t.Errorf("Level = %q, want INFO", cfg.Level)
	}
	if !cfg.Console() {
		t.Error("console should be enabled by default")
	}
	if cfg.FileEnabled {
		t.Error("file output should be disabled by default")
	}
	if cfg.FilePath != "logs/drpg.log" {
		t.Errorf("FilePath = %q, want logs/drpg.log", cfg.FilePath)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	content := `logging:
  level: DEBUG
  console_enabled: false
  format: json
  file_enabled: true
  file_path: out.log
  file_max_size_mb: 20
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Level != "DEBUG" {
		t.Errorf("Level = %q, want DEBUG", cfg.Level)
	}
	if cfg.Console() {
		t.Error("console_enabled: false was ignored")
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if !cfg.FileEnabled || cfg.FilePath != "out.log" {
		t.Errorf("file settings = %v %q", cfg.FileEnabled, cfg.FilePath)
	}
	if cfg.FileMaxSizeMB != 20 {
		t.Errorf("FileMaxSizeMB = %d, want 20", cfg.FileMaxSizeMB)
	}
	if cfg.FileMaxBackups != 5 {
		t.Errorf("FileMaxBackups = %d, want default 5", cfg.FileMaxBackups)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DRPG_LOG_LEVEL", "ERROR")
	t.Setenv("DRPG_LOG_FORMAT", "json")
	t.Setenv("DRPG_LOG_FILE_ENABLED", "true")
	t.Setenv("DRPG_LOG_FILE", "/tmp/custom.log")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Level != "ERROR" || cfg.Format != "json" || !cfg.FileEnabled || cfg.FilePath != "/tmp/custom.log" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestAlwaysBypassesLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(newHandler(&buf, "text", slog.LevelError)))
	defer SetLogger(nil)

	Info("hidden")
	Always("session saved", "slot", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("INFO line passed an ERROR filter")
	}
	if !strings.Contains(out, "level=ALWAYS") || !strings.Contains(out, "slot=1") {
		t.Errorf("ALWAYS line missing or malformed: %s", out)
	}
}

func TestWithTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(newHandler(&buf, "json", slog.LevelDebug)))
	defer SetLogger(nil)

	With("dungeon").Info("generated", "map_id", 3)

	out := buf.String()
	if !strings.Contains(out, `"component":"dungeon"`) || !strings.Contains(out, `"map_id":3`) {
		t.Errorf("component tag missing: %s", out)
	}
}

func TestWithBeforeInitialize(t *testing.T) {
	SetLogger(nil)
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("With on nil logger panicked: %v", r)
		}
	}()
	With("quest").Info("dropped")
	Debug("debug")
	Warning("warning")
	Error("error")
	Always("always")
}

func TestMultiHandler(t *testing.T) {
	var a, b bytes.Buffer
	SetLogger(slog.New(newMultiHandler(
		newHandler(&a, "text", slog.LevelInfo),
		newHandler(&b, "text", slog.LevelWarn),
	)))
	defer SetLogger(nil)

	Infof("cache %s", "hit")
	Warningf("retry %d", 2)

	if !strings.Contains(a.String(), "cache hit") || !strings.Contains(a.String(), "retry 2") {
		t.Errorf("first handler output: %s", a.String())
	}
	if strings.Contains(b.String(), "cache hit") {
		t.Error("WARN handler received INFO record")
	}
	if !strings.Contains(b.String(), "retry 2") {
		t.Errorf("second handler output: %s", b.String())
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format   string
		terminal bool
		want     string
	}{
		{"auto", true, "text"},
		{"AUTO", false, "json"},
		{"json", true, "json"},
		{"text", false, "text"},
	}
	for _, tt := range tests {
		if got := resolveFormat(tt.format, tt.terminal); got != tt.want {
			t.Errorf("resolveFormat(%q, %v) = %q, want %q", tt.format, tt.terminal, got, tt.want)
		}
	}
}
