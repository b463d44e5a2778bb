package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFilePartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "model: claude-opus-4-5\nautoApproveStaged: true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "claude-opus-4-5" {
		t.Errorf("model = %q", cfg.Model)
	}
	if !cfg.AutoApproveStaged {
		t.Error("autoApproveStaged should be true")
	}
	// Untouched fields keep their defaults.
	if cfg.ContextLines != Default().ContextLines || cfg.ListenAddr != Default().ListenAddr {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("malformed yaml should error")
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	if got := (Config{APIKey: "file-key"}).ResolveAPIKey(); got != "file-key" {
		t.Errorf("key = %q, config should win", got)
	}
	if got := (Config{}).ResolveAPIKey(); got != "env-key" {
		t.Errorf("key = %q, env fallback", got)
	}
}
