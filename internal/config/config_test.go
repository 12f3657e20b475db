package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"DATABASE_URI", "LOG_LEVEL", "MATERIALIZE_CRON", "MATERIALIZE_HORIZON_DAYS", "DAYLINE_CONFIG"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URI", "postgres://localhost/dayline")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("LogLevel = %q, want INFO", cfg.LogLevel)
	}
	if cfg.MaterializeCron != "5 0 * * *" {
		t.Errorf("MaterializeCron = %q", cfg.MaterializeCron)
	}
	if cfg.HorizonDays != 7 {
		t.Errorf("HorizonDays = %d, want 7", cfg.HorizonDays)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate returned error: %v", err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "dayline.yaml")
	data := []byte("database_uri: postgres://file/dayline\nlog_level: DEBUG\nmaterialize_horizon_days: 14\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAYLINE_CONFIG", path)
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DatabaseURI != "postgres://file/dayline" {
		t.Errorf("DatabaseURI = %q", cfg.DatabaseURI)
	}
	if cfg.LogLevel != "WARN" {
		t.Errorf("environment should win over file, LogLevel = %q", cfg.LogLevel)
	}
	if cfg.HorizonDays != 14 {
		t.Errorf("HorizonDays = %d, want 14", cfg.HorizonDays)
	}
}

func TestLoadRejectsBadHorizon(t *testing.T) {
	clearEnv(t)
	t.Setenv("MATERIALIZE_HORIZON_DAYS", "a week")

	if _, err := Load(); err == nil {
		t.Error("Expected error for non-numeric horizon")
	}
}

func TestValidate(t *testing.T) {
	if err := (&Config{HorizonDays: 7}).Validate(); err == nil {
		t.Error("Expected error without database URI")
	}
	if err := (&Config{DatabaseURI: "x", HorizonDays: -1}).Validate(); err == nil {
		t.Error("Expected error for negative horizon")
	}
}
