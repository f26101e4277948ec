package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr() != "127.0.0.1:8080" {
		t.Errorf("addr = %q", cfg.Server.Addr())
	}
	if cfg.Orchestrator.DispatchTimeout != 2*time.Minute {
		t.Errorf("dispatch timeout = %v", cfg.Orchestrator.DispatchTimeout)
	}
	if cfg.Anthropic.MaxTokens != 8192 {
		t.Errorf("max tokens = %d", cfg.Anthropic.MaxTokens)
	}
	if cfg.Journal.Enabled {
		t.Error("journal should be disabled by default")
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 9090
anthropic:
  model: claude-3-5-haiku-20241022
  use_mock: true
orchestrator:
  dispatch_timeout: 30s
workers:
  roster_path: /etc/scaffold/workers.yaml
  watch: true
journal:
  enabled: true
  path: /tmp/scaffold.db
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath returned error: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("addr = %q", cfg.Server.Addr())
	}
	if cfg.Anthropic.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("model = %q", cfg.Anthropic.Model)
	}
	if !cfg.Anthropic.UseMock {
		t.Error("use_mock should be true")
	}
	if cfg.Orchestrator.DispatchTimeout != 30*time.Second {
		t.Errorf("dispatch timeout = %v", cfg.Orchestrator.DispatchTimeout)
	}
	if cfg.Workers.RosterPath != "/etc/scaffold/workers.yaml" || !cfg.Workers.Watch {
		t.Errorf("workers = %+v", cfg.Workers)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "/tmp/scaffold.db" {
		t.Errorf("journal = %+v", cfg.Journal)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	// Defaults still apply for keys the file omits.
	if cfg.Anthropic.MaxTokens != 8192 {
		t.Errorf("max tokens = %d, want default", cfg.Anthropic.MaxTokens)
	}
}

func TestLoadFromPath_ExpandsAPIKeyEnv(t *testing.T) {
	t.Setenv("TEST_SCAFFOLD_KEY", "sk-test-123")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("anthropic:\n  api_key: ${TEST_SCAFFOLD_KEY}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Anthropic.APIKey != "sk-test-123" {
		t.Errorf("api key = %q", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: "warn", Format: "text"}.NewLogger(&buf)

	logger.Info("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("info record emitted at warn level: %s", buf.String())
	}
	logger.Warn("should appear")
	if buf.Len() == 0 {
		t.Error("warn record missing")
	}
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: "info", Format: "json"}.NewLogger(&buf)

	logger.Info("hello", "key", "value")
	if !bytes.Contains(buf.Bytes(), []byte(`"key":"value"`)) {
		t.Errorf("output not JSON: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
