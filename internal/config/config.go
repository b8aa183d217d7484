package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration file.
type Config struct {
	HTTPAddr      string        `yaml:"http_addr"`
	GRPCAddr      string        `yaml:"grpc_addr"` // empty disables gRPC
	PresetDir     string        `yaml:"preset_dir"`
	WatchInterval time.Duration `yaml:"watch_interval"` // 0 disables hot reload
	LogLevel      string        `yaml:"log_level"`
	LogPrefix     string        `yaml:"log_prefix"`
}

// Flags carries command-line overrides. Zero values mean "not set".
type Flags struct {
	HTTPAddr      string
	GRPCAddr      string
	PresetDir     string
	WatchInterval time.Duration
	LogLevel      string
}

func Default() Config {
	return Config{
		HTTPAddr:      ":8080",
		GRPCAddr:      ":9090",
		PresetDir:     "config",
		WatchInterval: 2 * time.Second,
		LogLevel:      "info",
		LogPrefix:     "lighting",
	}
}

// Load reads a YAML config over the defaults. An empty path or a missing
// file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve applies flag overrides; flags win when set.
func (c *Config) Resolve(f Flags) {
	if f.HTTPAddr != "" {
		c.HTTPAddr = f.HTTPAddr
	}
	if f.GRPCAddr != "" {
		c.GRPCAddr = f.GRPCAddr
	}
	if f.PresetDir != "" {
		c.PresetDir = f.PresetDir
	}
	if f.WatchInterval > 0 {
		c.WatchInterval = f.WatchInterval
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" && c.GRPCAddr == "" {
		return errors.New("config: at least one of http_addr or grpc_addr is required")
	}
	if c.PresetDir == "" {
		return errors.New("config: preset_dir is required")
	}
	if c.WatchInterval < 0 {
		return errors.New("config: watch_interval must be >= 0")
	}
	return nil
}
