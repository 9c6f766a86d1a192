package config

import (
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/settlement")
	t.Setenv("SESSION_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("default port = %d, want 8080", cfg.Port)
	}
	if cfg.UploadDir != "uploads" || cfg.ExportDir != "exports" {
		t.Fatalf("unexpected default dirs %q / %q", cfg.UploadDir, cfg.ExportDir)
	}
	if len(cfg.AllowedExtensions) != 1 || cfg.AllowedExtensions[0] != "xlsx" {
		t.Fatalf("unexpected default extensions %v", cfg.AllowedExtensions)
	}
	if cfg.SessionTTLMinutes != 480 {
		t.Fatalf("default session ttl = %d, want 480", cfg.SessionTTLMinutes)
	}
	if cfg.RateCacheTTLSecs != 60 {
		t.Fatalf("default rate cache ttl = %d, want 60", cfg.RateCacheTTLSecs)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_SECRET", "test-secret")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/settlement")
	t.Setenv("SESSION_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without SESSION_SECRET")
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid PORT")
	}
}

func TestLoadParsesAllowedExtensions(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_EXTENSIONS", ".XLSX, xls ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.AllowedExtensions) != 2 {
		t.Fatalf("expected 2 extensions, got %v", cfg.AllowedExtensions)
	}
	if cfg.AllowedExtensions[0] != "xlsx" || cfg.AllowedExtensions[1] != "xls" {
		t.Fatalf("unexpected extensions %v", cfg.AllowedExtensions)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("UPLOAD_DIR", "/var/data/uploads")
	t.Setenv("EXPORT_DIR", "/var/data/exports")
	t.Setenv("SESSION_TTL_MINUTES", "60")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RATE_CACHE_TTL_SECONDS", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.Port)
	}
	if cfg.UploadDir != "/var/data/uploads" || cfg.ExportDir != "/var/data/exports" {
		t.Fatalf("unexpected dirs %q / %q", cfg.UploadDir, cfg.ExportDir)
	}
	if cfg.SessionTTLMinutes != 60 {
		t.Fatalf("session ttl = %d, want 60", cfg.SessionTTLMinutes)
	}
	if cfg.RedisAddr != "127.0.0.1:6379" || cfg.RedisDB != 3 {
		t.Fatalf("unexpected redis settings %q / %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.RateCacheTTLSecs != 120 {
		t.Fatalf("rate cache ttl = %d, want 120", cfg.RateCacheTTLSecs)
	}
}
