package config

import (
	"os"
	"path/filepath"
	"testing"
)

func withHome(t *testing.T, dir string) {
	t.Helper()
	original := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	t.Cleanup(func() { os.Setenv("HOME", original) })
}

func TestLoadDefaultsWhenNoFileExists(t *testing.T) {
	root := t.TempDir()
	withHome(t, t.TempDir())

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MigrationsDir != "migrations" {
		t.Errorf("MigrationsDir = %q, want migrations", cfg.MigrationsDir)
	}
	if !cfg.ColorEnabled() {
		t.Error("ColorEnabled() = false, want true by default")
	}
}

func TestLoadProjectConfigOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	withHome(t, t.TempDir())

	contents := "migrations_dir: db/migrations\ncolor: false\ndefault_app_name: blog\n"
	if err := os.WriteFile(filepath.Join(root, fileName), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MigrationsDir != "db/migrations" {
		t.Errorf("MigrationsDir = %q, want db/migrations", cfg.MigrationsDir)
	}
	if cfg.ColorEnabled() {
		t.Error("ColorEnabled() = true, want false")
	}
	if cfg.DefaultAppName != "blog" {
		t.Errorf("DefaultAppName = %q, want blog", cfg.DefaultAppName)
	}
}

func TestLoadFallsBackToHomeConfig(t *testing.T) {
	root := t.TempDir()
	home := t.TempDir()
	withHome(t, home)

	homeDir := filepath.Join(home, ".makemigrations")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	contents := "default_app_name: fallback\n"
	if err := os.WriteFile(filepath.Join(homeDir, "config.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultAppName != "fallback" {
		t.Errorf("DefaultAppName = %q, want fallback", cfg.DefaultAppName)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	root := t.TempDir()
	withHome(t, t.TempDir())

	color := false
	cfg := &Config{MigrationsDir: "migrations", Color: &color, DefaultAppName: "shop"}
	if err := Save(root, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DefaultAppName != "shop" || loaded.ColorEnabled() {
		t.Fatalf("Load() after Save = %+v", loaded)
	}
}
