package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/IvanBrykalov/lrubuffer/hooks/redisstore"
)

// Config drives the benchmark. Every field is read from LRUBENCH_* variables;
// a .env file in the working directory is loaded first when present.
type Config struct {
	Capacity int           `env:"CAPACITY" envDefault:"100000"`
	Workers  int           `env:"WORKERS" envDefault:"8"`
	Duration time.Duration `env:"DURATION" envDefault:"10s"`
	ReadPct  int           `env:"READS" envDefault:"80"`

	Keys    uint64  `env:"KEYS" envDefault:"1000000"`
	ZipfS   float64 `env:"ZIPF_S" envDefault:"1.1"`
	ZipfV   float64 `env:"ZIPF_V" envDefault:"1.0"`
	Seed    int64   `env:"SEED"`    // 0 => time-based
	Preload int     `env:"PRELOAD"` // 0 => capacity/2

	HTTPAddr string `env:"HTTP"` // unset => :8080, empty disables /metrics

	// Redis enables the read-through/write-back tier.
	Redis       bool   `env:"REDIS"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"lrubench:"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	LogFormat string     `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

const defaultHTTPAddr = ":8080"

var errInvalidConfig = errors.New("lrubench: invalid config")

// loadConfig reads .env files (missing files are ignored) and parses the
// LRUBENCH_ environment into a Config.
func loadConfig(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "LRUBENCH_"}); err != nil {
		return Config{}, errors.Join(errInvalidConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	// envDefault would also replace an explicit empty value.
	if _, ok := os.LookupEnv("LRUBENCH_HTTP"); !ok {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.Preload == 0 {
		cfg.Preload = cfg.Capacity / 2
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be > 0, got %d", errInvalidConfig, c.Capacity)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be > 0, got %d", errInvalidConfig, c.Workers)
	case c.ReadPct < 0 || c.ReadPct > 100:
		return fmt.Errorf("%w: reads must be in [0..100], got %d", errInvalidConfig, c.ReadPct)
	case c.Keys == 0:
		return fmt.Errorf("%w: keys must be > 0", errInvalidConfig)
	case c.ZipfS <= 1:
		return fmt.Errorf("%w: zipf_s must be > 1, got %g", errInvalidConfig, c.ZipfS)
	case c.ZipfV < 1:
		return fmt.Errorf("%w: zipf_v must be >= 1, got %g", errInvalidConfig, c.ZipfV)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log format must be text or json, got %q", errInvalidConfig, c.LogFormat)
	}
	return nil
}

func (c Config) redisConfig() redisstore.Config {
	return redisstore.Config{
		ConnectionURL:  c.RedisURL,
		RetryAttempts:  3,
		RetryInterval:  time.Second,
		ConnectTimeout: 10 * time.Second,
	}
}

func (c Config) logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
