package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "release" {
		t.Errorf("mode %q, want release", cfg.Mode)
	}
	if cfg.Port != 8080 {
		t.Errorf("port %d, want 8080", cfg.Port)
	}
	if cfg.ReadLimit != 65536 {
		t.Errorf("read_limit %d, want 65536", cfg.ReadLimit)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("ping_period %v, want 54s", cfg.PingPeriod)
	}
	if cfg.JoinWindow != time.Minute {
		t.Errorf("join_window %v, want 1m", cfg.JoinWindow)
	}
	if len(cfg.STUNServers) != 1 || cfg.STUNServers[0] != "stun:stun.l.google.com:19302" {
		t.Errorf("stun_servers %v", cfg.STUNServers)
	}
}

func TestLoadFromEnvSelectedFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := []byte("mode: debug\nport: 9090\nping_period: 10s\nsecret: testing\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), body, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "debug" {
		t.Errorf("mode %q, want debug", cfg.Mode)
	}
	if cfg.Port != 9090 {
		t.Errorf("port %d, want 9090", cfg.Port)
	}
	if cfg.PingPeriod != 10*time.Second {
		t.Errorf("ping_period %v, want 10s", cfg.PingPeriod)
	}
	if cfg.Secret != "testing" {
		t.Errorf("secret %q", cfg.Secret)
	}
	// File values override defaults; untouched keys keep theirs.
	if cfg.ReadLimit != 65536 {
		t.Errorf("read_limit %d, want default 65536", cfg.ReadLimit)
	}
}
