package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client_config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultHost != "localhost" {
		t.Errorf("DefaultHost = %q, want localhost", cfg.DefaultHost)
	}
	if cfg.MaxConcurrentTransfers != 3 {
		t.Errorf("MaxConcurrentTransfers = %d, want 3", cfg.MaxConcurrentTransfers)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected default config file to be written: %v", err)
	}
}

func TestLoadReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client_config.json")
	body := `{"default_host": "ftp.example.com", "default_port": 2121, "bandwidth_limit": 1048576}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultHost != "ftp.example.com" {
		t.Errorf("DefaultHost = %q, want ftp.example.com", cfg.DefaultHost)
	}
	if cfg.DefaultPort != 2121 {
		t.Errorf("DefaultPort = %d, want 2121", cfg.DefaultPort)
	}
	if cfg.BandwidthLimit != 1048576 {
		t.Errorf("BandwidthLimit = %d, want 1048576", cfg.BandwidthLimit)
	}
	// Keys absent from the file still fall back to defaults.
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
}
