package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "whereismy.sqlite3" {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Embedding.MaxRetries != 3 || cfg.Embedding.Timeout != Duration(30*time.Second) {
		t.Errorf("unexpected embedding defaults: %+v", cfg.Embedding)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
db_path: /var/lib/whereismy/db.sqlite3
addr: ":9000"
embedding:
  base_url: http://embedder:8000/v1
  model: custom-model
  timeout: 5s
telegram:
  token: file-token
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/var/lib/whereismy/db.sqlite3" {
		t.Errorf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("unexpected addr %q", cfg.Addr)
	}
	if cfg.Embedding.Model != "custom-model" {
		t.Errorf("unexpected model %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Timeout != Duration(5*time.Second) {
		t.Errorf("unexpected timeout %v", cfg.Embedding.Timeout)
	}
	// Values the file omits keep their defaults.
	if cfg.Embedding.MaxRetries != 3 {
		t.Errorf("expected default retries, got %d", cfg.Embedding.MaxRetries)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WHEREISMY_ADDR", ":7000")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("expected env override to win, got %q", cfg.Addr)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Errorf("expected env token, got %q", cfg.Telegram.Token)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected an error for invalid YAML")
	}
}
