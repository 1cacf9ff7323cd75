package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBackendTimeoutFallsBack(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
	}{
		{"valid", "45s", 45 * time.Second},
		{"minutes", "2m", 2 * time.Minute},
		{"empty", "", 30 * time.Second},
		{"garbage", "soon", 30 * time.Second},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &Config{}
			cfg.Backend.Timeout = tt.timeout
			if got := cfg.BackendTimeout(); got != tt.want {
				t.Errorf("BackendTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheTTLFallsBack(t *testing.T) {
	t.Parallel()
	cfg := &Config{}
	if got := cfg.CacheTTL(); got != time.Hour {
		t.Errorf("CacheTTL() = %v, want 1h", got)
	}

	cfg.Cache.TTL = "24h"
	if got := cfg.CacheTTL(); got != 24*time.Hour {
		t.Errorf("CacheTTL() = %v, want 24h", got)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	logger := NewLogger(cfg)
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}

	// Invalid levels fall back to info.
	cfg.LogLevel = "chatty"
	logger = NewLogger(cfg)
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", logger.GetLevel())
	}
}
