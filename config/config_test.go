package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8080
scan:
  watchlist: ["SH510300", " sz159915 ", "sh510300"]
  days: 300
  cron: "0 0 16 * * 1-5"
recorder:
  enabled: true
  path: "/tmp/runs.db"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 8080 {
		t.Fatalf("port = %d", cfg.Port)
	}
	// 前缀转小写、去空白、去重
	if len(cfg.Watchlist) != 2 || cfg.Watchlist[0] != "sh510300" || cfg.Watchlist[1] != "sz159915" {
		t.Fatalf("watchlist = %v", cfg.Watchlist)
	}
	if cfg.ScanDays != 300 || cfg.ScanCron != "0 0 16 * * 1-5" {
		t.Fatalf("scan = %d %q", cfg.ScanDays, cfg.ScanCron)
	}
	if !cfg.RecorderEnabled || cfg.RecorderPath != "/tmp/runs.db" {
		t.Fatalf("recorder = %v %q", cfg.RecorderEnabled, cfg.RecorderPath)
	}
}

func TestGetConfigFallsBackToDefaults(t *testing.T) {
	cfg := GetConfig("")
	if cfg.Port != DefaultConfig.Port {
		t.Fatalf("port = %d", cfg.Port)
	}
	if len(cfg.Watchlist) == 0 {
		t.Fatalf("empty default watchlist")
	}
}

func TestGetConfigBadFileUsesDefaults(t *testing.T) {
	cfg := GetConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg.Port != DefaultConfig.Port {
		t.Fatalf("port = %d", cfg.Port)
	}
}
