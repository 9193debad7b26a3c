// Package config loads tool settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/moffa90/go-model2450/transport"
)

const (
	EnvPort    = "MODEL2450_PORT"
	EnvBaud    = "MODEL2450_BAUD"
	EnvNATSURL = "MODEL2450_NATS_URL"

	DefaultNATSSubject = "model2450"
)

// Config holds everything the command-line tool needs to reach the device
// and, optionally, a NATS server.
type Config struct {
	Port           string
	BaudRate       int
	ReadTimeout    time.Duration
	CommandTimeout time.Duration
	PollInterval   time.Duration
	TextWait       time.Duration
	SequenceCheck  bool

	Log  LogConfig
	NATS NATSConfig
}

type LogConfig struct {
	Level     string
	NoColor   bool
	Timestamp bool
}

// NATSConfig selects where readings are published. An empty URL disables publishing.
type NATSConfig struct {
	URL     string
	Subject string
}

type fileConfig struct {
	Port           string `toml:"port"`
	BaudRate       int    `toml:"baud_rate"`
	ReadTimeout    string `toml:"read_timeout"`
	CommandTimeout string `toml:"command_timeout"`
	PollInterval   string `toml:"poll_interval"`
	TextWait       string `toml:"text_wait"`
	SequenceCheck  bool   `toml:"sequence_check"`

	Log struct {
		Level     string `toml:"level"`
		NoColor   bool   `toml:"no_color"`
		Timestamp bool   `toml:"timestamp"`
	} `toml:"log"`

	NATS struct {
		URL     string `toml:"url"`
		Subject string `toml:"subject"`
	} `toml:"nats"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		BaudRate:       transport.DefaultBaudRate,
		ReadTimeout:    transport.DefaultReadTimeout,
		CommandTimeout: 5 * time.Second,
		PollInterval:   600 * time.Microsecond,
		TextWait:       2 * time.Second,
		Log: LogConfig{
			Level:     "info",
			Timestamp: true,
		},
		NATS: NATSConfig{
			Subject: DefaultNATSSubject,
		},
	}
}

// Load decodes the TOML file at path over Default. Keys absent from the file
// keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baud_rate") {
		cfg.BaudRate = raw.BaudRate
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
		{"command_timeout", raw.CommandTimeout, &cfg.CommandTimeout},
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
		{"text_wait", raw.TextWait, &cfg.TextWait},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if meta.IsDefined("sequence_check") {
		cfg.SequenceCheck = raw.SequenceCheck
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}

	if meta.IsDefined("nats", "url") {
		cfg.NATS.URL = strings.TrimSpace(raw.NATS.URL)
	}
	if meta.IsDefined("nats", "subject") {
		if s := strings.TrimSpace(raw.NATS.Subject); s != "" {
			cfg.NATS.Subject = s
		}
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	return cfg, nil
}

// ApplyEnv overrides cfg from MODEL2450_PORT, MODEL2450_BAUD and MODEL2450_NATS_URL.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		cfg.Port = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaud)); v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvBaud, err)
		}
		cfg.BaudRate = baud
	}
	if v := strings.TrimSpace(os.Getenv(EnvNATSURL)); v != "" {
		cfg.NATS.URL = v
	}
	return nil
}

// Validate reports settings the device cannot be opened with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("baud_rate must be positive, got %d", c.BaudRate))
	}
	if c.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("read_timeout must be positive, got %s", c.ReadTimeout))
	}
	if c.CommandTimeout < 0 {
		errs = append(errs, fmt.Errorf("command_timeout must not be negative, got %s", c.CommandTimeout))
	}
	return errors.Join(errs...)
}

// Serial returns the transport settings.
func (c Config) Serial() transport.SerialConfig {
	sc := transport.DefaultSerialConfig(c.Port)
	sc.BaudRate = c.BaudRate
	sc.ReadTimeout = c.ReadTimeout
	return sc
}
