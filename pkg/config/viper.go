package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/dotdir"
)

// legacyEnvVars maps viper keys to the unprefixed environment variables the
// bridge has always honored. The HIVESWARM_ prefixed name wins when both are
// set.
var legacyEnvVars = map[string][]string{
	"airtable.base_id":    {"AIRTABLE_BASE_ID"},
	"airtable.table_name": {"AIRTABLE_TABLE_NAME"},
	"airtable.api_key":    {"AIRTABLE_API_KEY"},
	"generation.api_key":  {"CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the HIVESWARM_ prefix plus the legacy unprefixed names.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (HIVESWARM_SERVER_LISTEN, AIRTABLE_BASE_ID, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: HIVESWARM_SERVER_LISTEN, HIVESWARM_CACHE_DRIVER, etc.
	v.SetEnvPrefix("HIVESWARM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnvVars {
		prefixed := "HIVESWARM_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(append([]string{key, prefixed}, names...)...)
	}

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Airtable
	v.SetDefault("airtable.base_id", d.Airtable.BaseID)
	v.SetDefault("airtable.table_name", d.Airtable.TableName)
	v.SetDefault("airtable.base_url", d.Airtable.BaseURL)

	// Generation
	v.SetDefault("generation.provider", d.Generation.Provider)
	v.SetDefault("generation.model", d.Generation.Model)
	v.SetDefault("generation.base_url", d.Generation.BaseURL)
	v.SetDefault("generation.max_tokens", d.Generation.MaxTokens)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)

	// Cache
	v.SetDefault("cache.driver", d.Cache.Driver)
	v.SetDefault("cache.sqlite_path", d.Cache.SQLitePath)
	v.SetDefault("cache.postgres_dsn", d.Cache.PostgresDSN)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)

	// Sync
	v.SetDefault("sync.timeout", d.Sync.Timeout)
	v.SetDefault("sync.harmonize_timeout", d.Sync.HarmonizeTimeout)
	v.SetDefault("sync.on_start", *d.Sync.OnStart)
}
