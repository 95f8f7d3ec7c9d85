package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benbeisheim/flipchess-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
)

type Config struct {
	Addr          string
	AllowOrigins  string
	CPUDelay      time.Duration
	MatchInterval time.Duration
	LogLevel      log.Level
	WSBufferSize  int
}

// Load reads flags from args. Every flag defaults to its FLIPCHESS_*
// environment variable, then to a built-in value.
func Load(args []string) (Config, error) {
	var cfg Config

	cpuDelay, err := getenvDuration("FLIPCHESS_CPU_DELAY", model.DefaultCPUDelay)
	if err != nil {
		return cfg, err
	}
	matchInterval, err := getenvDuration("FLIPCHESS_MATCH_INTERVAL", time.Second)
	if err != nil {
		return cfg, err
	}
	bufferSize, err := getenvInt("FLIPCHESS_WS_BUFFER", 1024)
	if err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("flipchess", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", getenv("FLIPCHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", getenv("FLIPCHESS_ALLOW_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	fs.DurationVar(&cfg.CPUDelay, "cpu-delay", cpuDelay, "pause before the computer moves")
	fs.DurationVar(&cfg.MatchInterval, "match-interval", matchInterval, "how often queued players are paired")
	fs.IntVar(&cfg.WSBufferSize, "ws-buffer", bufferSize, "websocket read/write buffer size in bytes")
	level := fs.String("log-level", getenv("FLIPCHESS_LOG_LEVEL", "info"), "trace, debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.LogLevel, err = ParseLevel(*level); err != nil {
		return cfg, err
	}
	if cfg.CPUDelay < 0 {
		return cfg, fmt.Errorf("cpu-delay must not be negative, got %s", cfg.CPUDelay)
	}
	if cfg.MatchInterval <= 0 {
		return cfg, fmt.Errorf("match-interval must be positive, got %s", cfg.MatchInterval)
	}
	if cfg.WSBufferSize <= 0 {
		return cfg, fmt.Errorf("ws-buffer must be positive, got %d", cfg.WSBufferSize)
	}
	return cfg, nil
}

// Origins splits AllowOrigins for the websocket origin check.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	default:
		return log.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
