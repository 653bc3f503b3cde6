package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	cfg, err := Load(New(""))
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg != DefaultRuntimeConfig() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, ok, _ := cfg.StartDate(); ok {
		t.Fatal("expected no week start override by default")
	}
}

func TestRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv("TASKWISE_DB_PATH", "/tmp/plan.db")
	t.Setenv("TASKWISE_LOG_LEVEL", "DEBUG")
	t.Setenv("TASKWISE_DESKTOP_NOTIFICATIONS", "true")
	t.Setenv("TASKWISE_OPTIMIZE_DELAY", "150ms")
	t.Setenv("TASKWISE_REMINDER_BUFFER", "128")
	t.Setenv("TASKWISE_WEEK_START", "2026-03-02")

	cfg, err := Load(New(""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/plan.db" || cfg.LogLevel != "debug" || !cfg.DesktopNotifications {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.OptimizeDelay != 150*time.Millisecond || cfg.ReminderBuffer != 128 {
		t.Fatalf("unexpected numeric overrides: %+v", cfg)
	}
	start, ok, err := cfg.StartDate()
	if err != nil || !ok || start.Format("2006-01-02") != "2026-03-02" {
		t.Fatalf("unexpected start date %v %v %v", start, ok, err)
	}
}

func TestConfigFileAndDotEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "taskwise.yaml")
	writeFile(t, file, "db_path: from-file.db\nreminder_buffer: 8\nlog_level: warn\n")
	dotenv := filepath.Join(dir, ".env")
	writeFile(t, dotenv, "TASKWISE_REMINDER_BUFFER=16\nTASKWISE_LOG_LEVEL=error\nOTHER_VAR=ignored\n")
	t.Setenv("TASKWISE_LOG_LEVEL", "debug")

	v := New(file)
	if err := ApplyDotEnv(v, dotenv, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("apply dotenv: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "from-file.db" {
		t.Fatalf("expected db path from file, got %q", cfg.DBPath)
	}
	if cfg.ReminderBuffer != 16 {
		t.Fatalf("expected .env to override file, got %d", cfg.ReminderBuffer)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected process env to win over .env, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"TASKWISE_LOG_LEVEL":       "verbose",
		"TASKWISE_REMINDER_BUFFER": "0",
		"TASKWISE_WEEK_START":      "next monday",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(New("")); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := Load(New(filepath.Join(t.TempDir(), "absent.yaml"))); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
