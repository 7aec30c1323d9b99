package config

import (
	"log/slog"
	"testing"
	"time"
)

// setRequiredEnv задаёт минимальный набор обязательных переменных.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DM_DB_HOST", "localhost")
	t.Setenv("DM_DB_NAME", "strimly")
	t.Setenv("DM_DB_USER", "strimly")
	t.Setenv("DM_DB_PASSWORD", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() ошибка: %v", err)
	}

	if cfg.Port != 8010 {
		t.Errorf("Port = %d, хотели 8010", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, хотели info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, хотели json", cfg.LogFormat)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, хотели 5432", cfg.DBPort)
	}
	if cfg.StreamCacheSize != 1000 {
		t.Errorf("StreamCacheSize = %d, хотели 1000", cfg.StreamCacheSize)
	}
	if cfg.StreamCacheTTL != 30*time.Second {
		t.Errorf("StreamCacheTTL = %v, хотели 30s", cfg.StreamCacheTTL)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, хотели 5s", cfg.ShutdownTimeout)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DM_DB_HOST", "")
	t.Setenv("DM_DB_NAME", "strimly")
	t.Setenv("DM_DB_USER", "strimly")
	t.Setenv("DM_DB_PASSWORD", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("Load() без DM_DB_HOST должен вернуть ошибку")
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DM_LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("Load() с DM_LOG_LEVEL=verbose должен вернуть ошибку")
	}
}

func TestLoadInvalidSSLMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DM_DB_SSL_MODE", "maybe")

	if _, err := Load(); err == nil {
		t.Fatal("Load() с DM_DB_SSL_MODE=maybe должен вернуть ошибку")
	}
}

func TestLoadPortOutOfRange(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DM_PORT", "0")

	if _, err := Load(); err == nil {
		t.Fatal("Load() с DM_PORT=0 должен вернуть ошибку")
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db.local", DBPort: 5433, DBName: "strimly",
		DBUser: "app", DBPassword: "pw", DBSSLMode: "require",
	}

	want := "host=db.local port=5433 dbname=strimly user=app password=pw sslmode=require"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DatabaseDSN() = %q, хотели %q", got, want)
	}
}

func TestLoadDurationOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DM_STREAM_CACHE_TTL", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() ошибка: %v", err)
	}
	if cfg.StreamCacheTTL != 2*time.Minute {
		t.Errorf("StreamCacheTTL = %v, хотели 2m", cfg.StreamCacheTTL)
	}
}
