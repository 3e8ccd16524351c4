// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package config loads gatehouse configuration from defaults, an
// optional YAML file, and command-line flags, in that precedence order.
package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default values.
const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultSessionTTL  = 72 * time.Hour
	DefaultCookieName  = "sid"
	DefaultLogFormat   = "json"

	DefaultKDFIterations = 100_000
	DefaultKDFSaltBytes  = 32
	DefaultKDFKeyBytes   = 64
)

// Config is the full gatehouse configuration.
type Config struct {
	Listen  ListenConfig  `koanf:"listen"`
	Session SessionConfig `koanf:"session"`
	KDF     KDFConfig     `koanf:"kdf"`
	Log     LogConfig     `koanf:"log"`
	Seed    string        `koanf:"seed"` // path to the account seed file
}

// ListenConfig holds network addresses.
type ListenConfig struct {
	Addr        string `koanf:"addr"`         // HTTP listen address
	MetricsAddr string `koanf:"metrics_addr"` // metrics/health address (empty = disabled)
}

// SessionConfig holds session behavior.
type SessionConfig struct {
	TTL        time.Duration `koanf:"ttl"`         // session lifetime
	CookieName string        `koanf:"cookie_name"` // session cookie key
}

// KDFConfig holds key-derivation cost parameters.
type KDFConfig struct {
	Iterations int `koanf:"iterations"` // derivation cost
	SaltBytes  int `koanf:"salt_bytes"` // salt length for new derivations
	KeyBytes   int `koanf:"key_bytes"`  // derived key length
}

// LogConfig holds logging behavior.
type LogConfig struct {
	Format string `koanf:"format"` // "json" or "text"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen: ListenConfig{
			Addr:        DefaultListenAddr,
			MetricsAddr: DefaultMetricsAddr,
		},
		Session: SessionConfig{
			TTL:        DefaultSessionTTL,
			CookieName: DefaultCookieName,
		},
		KDF: KDFConfig{
			Iterations: DefaultKDFIterations,
			SaltBytes:  DefaultKDFSaltBytes,
			KeyBytes:   DefaultKDFKeyBytes,
		},
		Log: LogConfig{
			Format: DefaultLogFormat,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at
// path (if non-empty), then the given flag set (if non-nil).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").
			With("operation", "unmarshal").
			Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Listen.Addr == "" {
		return fmt.Errorf("listen.addr is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if c.KDF.Iterations < 1 {
		return fmt.Errorf("kdf.iterations must be at least 1, got %d", c.KDF.Iterations)
	}
	if c.KDF.SaltBytes < 1 {
		return fmt.Errorf("kdf.salt_bytes must be at least 1, got %d", c.KDF.SaltBytes)
	}
	if c.KDF.KeyBytes < 1 {
		return fmt.Errorf("kdf.key_bytes must be at least 1, got %d", c.KDF.KeyBytes)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}
