package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent hiveswarm configuration stored as
// config.toml in the .hiveswarm/ directory. The TOML layout uses sections for
// logical grouping. API keys are never written to config.toml; they come
// from the environment or credentials.toml.
type Config struct {
	Version     int               `toml:"version"`
	Airtable    AirtableConfig    `toml:"airtable"`
	Generation  GenerationConfig  `toml:"generation"`
	Server      ServerConfig      `toml:"server"`
	Cache       CacheConfig       `toml:"cache"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Sync        SyncConfig        `toml:"sync"`
}

// AirtableConfig identifies the memory table.
type AirtableConfig struct {
	BaseID    string `toml:"base_id,omitempty"`
	TableName string `toml:"table_name,omitempty"`
	BaseURL   string `toml:"base_url,omitempty"`

	APIKey string `toml:"-"`
}

// GenerationConfig holds text-generation provider settings.
type GenerationConfig struct {
	Provider  string `toml:"provider,omitempty"`
	Model     string `toml:"model,omitempty"`
	BaseURL   string `toml:"base_url,omitempty"`
	MaxTokens int    `toml:"max_tokens,omitempty"`

	APIKey string `toml:"-"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// CacheConfig selects the node cache driver.
type CacheConfig struct {
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig selects where sync events are published.
type EventStreamConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// SyncConfig bounds sync and harmonization runs. Durations use Go syntax
// ("2m", "90s").
type SyncConfig struct {
	Timeout          string `toml:"timeout,omitempty"`
	HarmonizeTimeout string `toml:"harmonize_timeout,omitempty"`
	OnStart          *bool  `toml:"on_start,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func setDuration(key string, target *string, v string) error {
	if _, err := time.ParseDuration(v); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = v
	return nil
}

func setOneOf(key string, target *string, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			*target = v
			return nil
		}
	}
	return fmt.Errorf("invalid value for %s: %q (allowed: %v)", key, v, allowed)
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"airtable.base_id": {
		get: func(c *Config) string { return c.Airtable.BaseID },
		set: func(c *Config, v string) error { c.Airtable.BaseID = v; return nil },
	},
	"airtable.table_name": {
		get: func(c *Config) string { return c.Airtable.TableName },
		set: func(c *Config, v string) error { c.Airtable.TableName = v; return nil },
	},
	"airtable.base_url": {
		get: func(c *Config) string { return c.Airtable.BaseURL },
		set: func(c *Config, v string) error { c.Airtable.BaseURL = v; return nil },
	},
	"generation.provider": {
		get: func(c *Config) string { return c.Generation.Provider },
		set: func(c *Config, v string) error {
			return setOneOf("generation.provider", &c.Generation.Provider, v, generationProviders...)
		},
	},
	"generation.model": {
		get: func(c *Config) string { return c.Generation.Model },
		set: func(c *Config, v string) error { c.Generation.Model = v; return nil },
	},
	"generation.base_url": {
		get: func(c *Config) string { return c.Generation.BaseURL },
		set: func(c *Config, v string) error { c.Generation.BaseURL = v; return nil },
	},
	"generation.max_tokens": {
		get: func(c *Config) string {
			if c.Generation.MaxTokens == 0 {
				return ""
			}
			return strconv.Itoa(c.Generation.MaxTokens)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid value for generation.max_tokens: %q", v)
			}
			c.Generation.MaxTokens = n
			return nil
		},
	},
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"cache.driver": {
		get: func(c *Config) string { return c.Cache.Driver },
		set: func(c *Config, v string) error {
			return setOneOf("cache.driver", &c.Cache.Driver, v, cacheDrivers...)
		},
	},
	"cache.sqlite_path": {
		get: func(c *Config) string { return c.Cache.SQLitePath },
		set: func(c *Config, v string) error { c.Cache.SQLitePath = v; return nil },
	},
	"cache.postgres_dsn": {
		get: func(c *Config) string { return c.Cache.PostgresDSN },
		set: func(c *Config, v string) error { c.Cache.PostgresDSN = v; return nil },
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			return setOneOf("eventstream.provider", &c.EventStream.Provider, v, eventStreamProviders...)
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return c.EventStream.Brokers },
		set: func(c *Config, v string) error { c.EventStream.Brokers = v; return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"sync.timeout": {
		get: func(c *Config) string { return c.Sync.Timeout },
		set: func(c *Config, v string) error { return setDuration("sync.timeout", &c.Sync.Timeout, v) },
	},
	"sync.harmonize_timeout": {
		get: func(c *Config) string { return c.Sync.HarmonizeTimeout },
		set: func(c *Config, v string) error {
			return setDuration("sync.harmonize_timeout", &c.Sync.HarmonizeTimeout, v)
		},
	},
	"sync.on_start": {
		get: func(c *Config) string {
			if c.Sync.OnStart == nil {
				return ""
			}
			return strconv.FormatBool(*c.Sync.OnStart)
		},
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for sync.on_start: %w", err)
			}
			c.Sync.OnStart = &b
			return nil
		},
	},
}
