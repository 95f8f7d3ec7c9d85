package config

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"FLIPCHESS_ADDR", "FLIPCHESS_ALLOW_ORIGINS", "FLIPCHESS_CPU_DELAY",
		"FLIPCHESS_MATCH_INTERVAL", "FLIPCHESS_LOG_LEVEL", "FLIPCHESS_WS_BUFFER",
	} {
		t.Setenv(key, "")
	}

	got, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		Addr:          ":3000",
		AllowOrigins:  "http://localhost:5173",
		CPUDelay:      500 * time.Millisecond,
		MatchInterval: time.Second,
		LogLevel:      log.LevelInfo,
		WSBufferSize:  1024,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvThenFlags(t *testing.T) {
	t.Setenv("FLIPCHESS_ADDR", ":9000")
	t.Setenv("FLIPCHESS_CPU_DELAY", "2s")
	t.Setenv("FLIPCHESS_LOG_LEVEL", "debug")
	t.Setenv("FLIPCHESS_ALLOW_ORIGINS", "http://a.test, http://b.test")

	got, err := Load([]string{"-addr", ":9100", "-ws-buffer", "4096"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Addr != ":9100" {
		t.Errorf("Addr = %q; want flag to win over env", got.Addr)
	}
	if got.CPUDelay != 2*time.Second {
		t.Errorf("CPUDelay = %s; want 2s from env", got.CPUDelay)
	}
	if got.LogLevel != log.LevelDebug {
		t.Errorf("LogLevel = %v; want debug", got.LogLevel)
	}
	if got.WSBufferSize != 4096 {
		t.Errorf("WSBufferSize = %d; want 4096", got.WSBufferSize)
	}
	if diff := cmp.Diff([]string{"http://a.test", "http://b.test"}, got.Origins()); diff != "" {
		t.Errorf("Origins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad env duration", map[string]string{"FLIPCHESS_CPU_DELAY": "soon"}, nil},
		{"bad env buffer", map[string]string{"FLIPCHESS_WS_BUFFER": "big"}, nil},
		{"bad log level", nil, []string{"-log-level", "loud"}},
		{"negative delay", nil, []string{"-cpu-delay", "-1s"}},
		{"zero interval", nil, []string{"-match-interval", "0s"}},
		{"unknown flag", nil, []string{"-colour", "white"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(tt.args); err == nil {
				t.Error("Load succeeded; want error")
			}
		})
	}
}
