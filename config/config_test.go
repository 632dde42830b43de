package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != "8000" {
		t.Errorf("HTTPPort = %q, want 8000", cfg.Server.HTTPPort)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Sync.PollIntervalMinutes != 60 {
		t.Errorf("PollIntervalMinutes = %d, want 60", cfg.Sync.PollIntervalMinutes)
	}
	if cfg.Energy.AdminFallbackMin != 20 || cfg.Energy.AdminFallbackMax != 70 {
		t.Errorf("fallback range = [%v, %v], want [20, 70]",
			cfg.Energy.AdminFallbackMin, cfg.Energy.AdminFallbackMax)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HEARTH_SERVER_HTTP_PORT", "9100")
	t.Setenv("HEARTH_REMOTE_BASE_URL", "http://upstream:7700")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != "9100" {
		t.Errorf("HTTPPort = %q, want 9100", cfg.Server.HTTPPort)
	}
	if cfg.Remote.BaseURL != "http://upstream:7700" {
		t.Errorf("BaseURL = %q", cfg.Remote.BaseURL)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hearth.yaml")
	body := []byte("database:\n  driver: postgres\n  dsn: host=db user=hearth\nenergy:\n  admin_fallback_min: 50\n  admin_fallback_max: 10\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q, want postgres", cfg.Database.Driver)
	}
	// перевёрнутый диапазон нормализуется
	if cfg.Energy.AdminFallbackMax < cfg.Energy.AdminFallbackMin {
		t.Errorf("range not normalized: [%v, %v]",
			cfg.Energy.AdminFallbackMin, cfg.Energy.AdminFallbackMax)
	}
}
