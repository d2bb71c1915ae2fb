package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var announcerKeys = []string{
	"TELEGRAM_BOT_TOKEN",
	"TELEGRAM_API_ENDPOINT",
	"ANNOUNCER_CHANNEL",
	"ANNOUNCER_SQLITE_PATH",
	"ANNOUNCER_TIMEZONE",
	"ANNOUNCER_DEFAULT_CAPACITY",
	"ANNOUNCER_HTTP_PORT",
	"ANNOUNCER_ADMIN_TOKEN_HASH",
	"ANNOUNCER_GATEWAY_TOKEN_HASH",
	"ANNOUNCER_REDIS_ADDR",
	"ANNOUNCER_REDIS_PASSWORD",
	"ANNOUNCER_REDIS_DB",
	"ANNOUNCER_MAINTENANCE_INTERVAL",
	"ANNOUNCER_LOG_LEVEL",
}

// clearEnv unsets every announcer variable and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range announcerKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ANNOUNCER_CHANNEL", "@games")
	t.Setenv("ANNOUNCER_ADMIN_TOKEN_HASH", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$a2V5")
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)

		cfg, err := Load(noEnvFile(t))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "announcer.db" {
			t.Fatalf("unexpected default SQLite path: %q", cfg.SQLitePath)
		}
		if cfg.Location == nil || cfg.Location.String() != "Europe/Moscow" {
			t.Fatalf("unexpected default location: %v", cfg.Location)
		}
		if cfg.DefaultCapacity != 10 {
			t.Fatalf("expected default capacity 10, got %d", cfg.DefaultCapacity)
		}
		if cfg.MaintenanceInterval != time.Hour {
			t.Fatalf("expected hourly maintenance, got %s", cfg.MaintenanceInterval)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected info level, got %s", cfg.LogLevel)
		}
		if cfg.RedisAddr != "" {
			t.Fatalf("expected redis to be disabled, got %q", cfg.RedisAddr)
		}
		if cfg.GatewayTokenHash != "" {
			t.Fatalf("expected player endpoints to be open by default, got %q", cfg.GatewayTokenHash)
		}
		if cfg.Channel != "@games" {
			t.Fatalf("unexpected channel: %q", cfg.Channel)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ANNOUNCER_CHANNEL", "@games")

		_, err := Load(noEnvFile(t))
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "не заданы обязательные переменные окружения: TELEGRAM_BOT_TOKEN, ANNOUNCER_ADMIN_TOKEN_HASH"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports invalid values", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)
		t.Setenv("ANNOUNCER_HTTP_PORT", "zero")
		t.Setenv("ANNOUNCER_TIMEZONE", "Mars/Olympus")
		t.Setenv("ANNOUNCER_MAINTENANCE_INTERVAL", "-1m")

		_, err := Load(noEnvFile(t))
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "некорректные значения переменных окружения: ANNOUNCER_TIMEZONE, ANNOUNCER_HTTP_PORT, ANNOUNCER_MAINTENANCE_INTERVAL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)
		t.Setenv("ANNOUNCER_HTTP_PORT", "9090")
		t.Setenv("ANNOUNCER_SQLITE_PATH", "/tmp/announcer.db")
		t.Setenv("ANNOUNCER_TIMEZONE", "UTC")
		t.Setenv("ANNOUNCER_DEFAULT_CAPACITY", "16")
		t.Setenv("ANNOUNCER_REDIS_ADDR", "localhost:6379")
		t.Setenv("ANNOUNCER_REDIS_DB", "2")
		t.Setenv("ANNOUNCER_MAINTENANCE_INTERVAL", "15m")
		t.Setenv("ANNOUNCER_LOG_LEVEL", "debug")
		t.Setenv("ANNOUNCER_GATEWAY_TOKEN_HASH", "$argon2id$v=19$m=65536,t=3,p=2$Z2F0ZQ$a2V5")

		cfg, err := Load(noEnvFile(t))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "/tmp/announcer.db" {
			t.Fatalf("unexpected SQLite path: %q", cfg.SQLitePath)
		}
		if cfg.Location != time.UTC {
			t.Fatalf("expected UTC, got %v", cfg.Location)
		}
		if cfg.DefaultCapacity != 16 {
			t.Fatalf("expected capacity 16, got %d", cfg.DefaultCapacity)
		}
		if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
			t.Fatalf("unexpected redis settings: %q/%d", cfg.RedisAddr, cfg.RedisDB)
		}
		if cfg.MaintenanceInterval != 15*time.Minute {
			t.Fatalf("expected 15m interval, got %s", cfg.MaintenanceInterval)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("expected debug level, got %s", cfg.LogLevel)
		}
		if cfg.GatewayTokenHash == "" {
			t.Fatalf("expected gateway token hash to be read")
		}
	})

	t.Run("reads values from an env file without overriding the environment", func(t *testing.T) {
		clearEnv(t)
		setRequired(t)
		t.Setenv("ANNOUNCER_HTTP_PORT", "7070")

		path := filepath.Join(t.TempDir(), "announcer.env")
		content := "ANNOUNCER_HTTP_PORT=6060\nANNOUNCER_DEFAULT_CAPACITY=12\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 7070 {
			t.Fatalf("expected environment to win, got port %d", cfg.HTTPPort)
		}
		if cfg.DefaultCapacity != 12 {
			t.Fatalf("expected capacity from file, got %d", cfg.DefaultCapacity)
		}
	})
}
