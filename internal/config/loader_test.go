package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `{
  // poll every two minutes
  "queue": { "interval": "2m" },
  "gateway": { "host": "0.0.0.0", "port": 9000 },
  "events": { "buffer_size": 256 },
  "executor": {
    "model": "claude-sonnet-4-5",
    "max_tokens": 2000,
    "api_key": "sk-test",
    "timeout": "90s",
  },
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Queue.Interval.Duration() != 2*time.Minute {
		t.Errorf("Interval: got %v", cfg.Queue.Interval.Duration())
	}
	if cfg.Gateway.Host != "0.0.0.0" || cfg.Gateway.Port != 9000 {
		t.Errorf("Gateway: %+v", cfg.Gateway)
	}
	if cfg.Events.BufferSize != 256 {
		t.Errorf("BufferSize: got %d", cfg.Events.BufferSize)
	}
	if cfg.Executor.Model != "claude-sonnet-4-5" || cfg.Executor.APIKey != "sk-test" {
		t.Errorf("Executor: %+v", cfg.Executor)
	}
	if cfg.Executor.Timeout.Duration() != 90*time.Second {
		t.Errorf("Timeout: got %v", cfg.Executor.Timeout.Duration())
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.jsonc"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Queue.Interval.Duration() != 30*time.Second {
		t.Errorf("Interval default: got %v", cfg.Queue.Interval.Duration())
	}
	if cfg.Gateway.Host != "127.0.0.1" || cfg.Gateway.Port != 18420 {
		t.Errorf("Gateway defaults: %+v", cfg.Gateway)
	}
	if cfg.Events.BufferSize != 1024 {
		t.Errorf("BufferSize default: got %d", cfg.Events.BufferSize)
	}
}

func TestLoadExpandsEnvTemplates(t *testing.T) {
	t.Setenv("TEST_TASKER_KEY", "sk-from-env")
	path := writeConfig(t, `{
  "executor": { "api_key": "${{ .Env.TEST_TASKER_KEY }}" }
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Executor.APIKey != "sk-from-env" {
		t.Errorf("APIKey: got %q", cfg.Executor.APIKey)
	}
}

func TestLoadFallsBackToAnthropicEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ambient")
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Executor.APIKey != "sk-ambient" {
		t.Errorf("APIKey: got %q", cfg.Executor.APIKey)
	}
}

func TestLoadRejectsMalformedConfig(t *testing.T) {
	path := writeConfig(t, `{ "queue": `)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
