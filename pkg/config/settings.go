package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the resolved runtime view of the configuration after flags,
// environment and config.toml have been merged by viper.
type Settings struct {
	Airtable    AirtableConfig
	Generation  GenerationConfig
	Listen      string
	Cache       CacheConfig
	EventStream EventStreamConfig

	SyncTimeout      time.Duration
	HarmonizeTimeout time.Duration
	SyncOnStart      bool
}

// Brokers splits the comma separated broker list.
func (s *Settings) Brokers() []string {
	var out []string
	for b := range strings.SplitSeq(s.EventStream.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Load resolves Settings from v and validates enumerated values.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Airtable: AirtableConfig{
			BaseID:    v.GetString("airtable.base_id"),
			TableName: v.GetString("airtable.table_name"),
			BaseURL:   v.GetString("airtable.base_url"),
			APIKey:    v.GetString("airtable.api_key"),
		},
		Generation: GenerationConfig{
			Provider:  v.GetString("generation.provider"),
			Model:     v.GetString("generation.model"),
			BaseURL:   v.GetString("generation.base_url"),
			MaxTokens: v.GetInt("generation.max_tokens"),
			APIKey:    v.GetString("generation.api_key"),
		},
		Listen: v.GetString("server.listen"),
		Cache: CacheConfig{
			Driver:      v.GetString("cache.driver"),
			SQLitePath:  v.GetString("cache.sqlite_path"),
			PostgresDSN: v.GetString("cache.postgres_dsn"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("eventstream.provider"),
			Brokers:  v.GetString("eventstream.brokers"),
			Topic:    v.GetString("eventstream.topic"),
		},
		SyncOnStart: v.GetBool("sync.on_start"),
	}

	var err error
	if s.SyncTimeout, err = parseDuration(v, "sync.timeout"); err != nil {
		return nil, err
	}
	if s.HarmonizeTimeout, err = parseDuration(v, "sync.harmonize_timeout"); err != nil {
		return nil, err
	}

	if !slices.Contains(cacheDrivers, s.Cache.Driver) {
		return nil, fmt.Errorf("unsupported cache driver %q (allowed: %v)", s.Cache.Driver, cacheDrivers)
	}
	if !slices.Contains(eventStreamProviders, s.EventStream.Provider) {
		return nil, fmt.Errorf("unsupported eventstream provider %q (allowed: %v)", s.EventStream.Provider, eventStreamProviders)
	}
	if !slices.Contains(generationProviders, s.Generation.Provider) {
		return nil, fmt.Errorf("unsupported generation provider %q (allowed: %v)", s.Generation.Provider, generationProviders)
	}

	return s, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid value for %s: must not be negative", key)
	}
	return d, nil
}
