package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --sqlite
// on both "hiveswarm serve" and "hiveswarm sync").
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen           = "listen"
	FlagBaseID           = "base-id"
	FlagTable            = "table"
	FlagProvider         = "provider"
	FlagModel            = "model"
	FlagMaxTokens        = "max-tokens"
	FlagCacheDriver      = "cache"
	FlagSQLite           = "sqlite"
	FlagPostgres         = "postgres"
	FlagEventStream      = "eventstream"
	FlagKafkaBrokers     = "kafka-brokers"
	FlagKafkaTopic       = "kafka-topic"
	FlagSyncTimeout      = "sync-timeout"
	FlagHarmonizeTimeout = "harmonize-timeout"
)

// Flags is the registry shared by every command.
var Flags = FlagSet{
	FlagListen:           {Name: "listen", Shorthand: "l", ViperKey: "server.listen", Description: "Address for the API server to listen on"},
	FlagBaseID:           {Name: "base-id", ViperKey: "airtable.base_id", Description: "Airtable base id"},
	FlagTable:            {Name: "table", Shorthand: "t", ViperKey: "airtable.table_name", Description: "Airtable table holding memory records"},
	FlagProvider:         {Name: "provider", Shorthand: "p", ViperKey: "generation.provider", Description: "Text generation provider (anthropic, ollama)"},
	FlagModel:            {Name: "model", Shorthand: "m", ViperKey: "generation.model", Description: "Text generation model"},
	FlagMaxTokens:        {Name: "max-tokens", ViperKey: "generation.max_tokens", Description: "Maximum tokens per generation"},
	FlagCacheDriver:      {Name: "cache", ViperKey: "cache.driver", Description: "Node cache driver (memory, sqlite, postgres)"},
	FlagSQLite:           {Name: "sqlite", Shorthand: "s", ViperKey: "cache.sqlite_path", Description: "Path to SQLite node cache"},
	FlagPostgres:         {Name: "postgres", ViperKey: "cache.postgres_dsn", Description: "PostgreSQL connection string for the node cache"},
	FlagEventStream:      {Name: "eventstream", ViperKey: "eventstream.provider", Description: "Sync event publisher (nop, kafka)"},
	FlagKafkaBrokers:     {Name: "kafka-brokers", ViperKey: "eventstream.brokers", Description: "Comma separated Kafka brokers"},
	FlagKafkaTopic:       {Name: "kafka-topic", ViperKey: "eventstream.topic", Description: "Kafka topic for sync events"},
	FlagSyncTimeout:      {Name: "sync-timeout", ViperKey: "sync.timeout", Description: "Upper bound for one sync run"},
	FlagHarmonizeTimeout: {Name: "harmonize-timeout", ViperKey: "sync.harmonize_timeout", Description: "Upper bound for one harmonization"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}
