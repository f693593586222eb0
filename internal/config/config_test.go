package config

import (
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/sheetload/internal/i18n"
)

// envMap is a getenv backed by a map.
func envMap(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Database.Enabled() {
		t.Error("database should be disabled without a URL")
	}
	if cfg.Load.MaxConcurrent != 4 {
		t.Errorf("Load.MaxConcurrent = %d, want 4", cfg.Load.MaxConcurrent)
	}
	if cfg.Load.MaxFileSize != 50<<20 {
		t.Errorf("Load.MaxFileSize = %d, want %d", cfg.Load.MaxFileSize, 50<<20)
	}
	if cfg.Load.Retention != time.Hour {
		t.Errorf("Load.Retention = %v, want 1h", cfg.Load.Retention)
	}
	if cfg.DefaultLanguage() != i18n.EN {
		t.Errorf("DefaultLanguage() = %s, want en", cfg.DefaultLanguage())
	}
	if !cfg.Rate.Enabled || cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate = %+v", cfg.Rate)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"DATABASE_URL":          "postgres://localhost/sheets",
		"SERVER_PORT":           "9090",
		"LOAD_MAX_CONCURRENT":   "8",
		"LOAD_TIMEOUT":          "90s",
		"LOAD_DEFAULT_LANGUAGE": "de",
		"LOG_LEVEL":             "debug",
		"TRUSTED_PROXIES":       " 10.0.0.0/8, ,127.0.0.1 ",
		"DB_AUTO_MIGRATE":       "false",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Database.Enabled() || cfg.Database.AutoMigrate {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Load.MaxConcurrent != 8 || cfg.Load.Timeout != 90*time.Second {
		t.Errorf("Load = %+v", cfg.Load)
	}
	if cfg.DefaultLanguage() != i18n.DE {
		t.Errorf("DefaultLanguage() = %s, want de", cfg.DefaultLanguage())
	}
	if got := cfg.Security.TrustedProxies; len(got) != 2 || got[0] != "10.0.0.0/8" || got[1] != "127.0.0.1" {
		t.Errorf("TrustedProxies = %q", got)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{"DB_URL": "postgres://localhost/alt"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/alt" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad integer", map[string]string{"SERVER_PORT": "eighty"}, "SERVER_PORT"},
		{"bad duration", map[string]string{"LOAD_TIMEOUT": "soon"}, "invalid duration"},
		{"bad bool", map[string]string{"RATE_LIMIT_ENABLED": "perhaps"}, "invalid boolean"},
		{"port range", map[string]string{"SERVER_PORT": "70000"}, "must be 1-65535"},
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"language", map[string]string{"LOAD_DEFAULT_LANGUAGE": "fr"}, "LOAD_DEFAULT_LANGUAGE"},
		{"api keys", map[string]string{"REQUIRE_API_KEY": "true"}, "API_KEYS is empty"},
		{
			"pool sizes",
			map[string]string{"DATABASE_URL": "postgres://x", "DB_MAX_CONNS": "2", "DB_MIN_CONNS": "5"},
			"DB_MAX_CONNS (2) must be >= DB_MIN_CONNS (5)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envMap(tt.env))
			if err == nil {
				t.Fatal("LoadFrom() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg, err := LoadFrom(envMap(nil))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	cfg.Server.Port = 0
	cfg.Load.MaxConcurrent = 0

	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") || !strings.Contains(err.Error(), "LOAD_MAX_CONCURRENT") {
		t.Errorf("Validate() = %v, want both violations", err)
	}
}

func TestLoad_FromProcessEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
}

func TestConfigString_MasksURL(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{"DATABASE_URL": "postgres://user:secret@db/sheets"}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	s := cfg.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String() leaks credentials: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s, want masked URL", s)
	}
}
