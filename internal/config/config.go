// Package config loads server and CLI settings from a YAML file.
package config

import (
    "errors"
    "fmt"
    "io"
    "log/slog"
    "os"
    "strings"
    "time"

    "gopkg.in/yaml.v3"

    "github.com/jaminalder/octagon-tictactoe/internal/domain"
)

// Config holds runtime settings. An empty DBPath keeps scores in memory.
type Config struct {
    Addr       string        `yaml:"addr"`
    DBPath     string        `yaml:"db_path"`
    LogLevel   string        `yaml:"log_level"`
    LogFormat  string        `yaml:"log_format"`
    Heartbeat  time.Duration `yaml:"heartbeat"`
    Difficulty string        `yaml:"difficulty"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
    return Config{
        Addr:       ":8080",
        LogLevel:   "info",
        LogFormat:  "text",
        Heartbeat:  15 * time.Second,
        Difficulty: "medium",
    }
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        return cfg, nil
    }
    f, err := os.Open(path)
    if err != nil {
        return cfg, fmt.Errorf("open config: %w", err)
    }
    defer f.Close()
    return Parse(f)
}

// Parse decodes YAML from r over the defaults and validates the result.
func Parse(r io.Reader) (Config, error) {
    cfg := Default()
    dec := yaml.NewDecoder(r)
    dec.KnownFields(true)
    if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
        return cfg, fmt.Errorf("decode config: %w", err)
    }
    if err := cfg.Validate(); err != nil {
        return cfg, err
    }
    return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
    if strings.TrimSpace(c.Addr) == "" {
        return errors.New("config: addr must not be empty")
    }
    if _, err := c.Level(); err != nil {
        return err
    }
    switch c.LogFormat {
    case "text", "json":
    default:
        return fmt.Errorf("config: log_format %q must be text or json", c.LogFormat)
    }
    if c.Heartbeat <= 0 {
        return fmt.Errorf("config: heartbeat must be positive, got %s", c.Heartbeat)
    }
    if _, err := domain.ParseDifficulty(c.Difficulty); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
    var l slog.Level
    if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
        return l, fmt.Errorf("config: log_level %q: %w", c.LogLevel, err)
    }
    return l, nil
}

// DefaultDifficulty parses Difficulty; invalid values fall back to medium.
func (c Config) DefaultDifficulty() domain.Difficulty {
    d, _ := domain.ParseDifficulty(c.Difficulty)
    return d
}

// NewLogger builds a slog logger writing to w according to the config.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
    level, err := c.Level()
    if err != nil {
        level = slog.LevelInfo
    }
    opts := &slog.HandlerOptions{Level: level}
    if c.LogFormat == "json" {
        return slog.New(slog.NewJSONHandler(w, opts))
    }
    return slog.New(slog.NewTextHandler(w, opts))
}
