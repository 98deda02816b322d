package config

const (
	defaultTableName = "MarleyMemory"

	defaultGenerationProvider = "anthropic"
	defaultGenerationModel    = "claude-3-5-sonnet-20241022"
	defaultMaxTokens          = 4000

	defaultListen = "0.0.0.0:8080"

	defaultCacheDriver = CacheDriverMemory

	defaultEventStreamProvider = EventStreamNop
	defaultEventStreamTopic    = "hiveswarm.sync"

	defaultSyncTimeout      = "2m"
	defaultHarmonizeTimeout = "60s"
	defaultSyncOnStart      = true
)

// Cache drivers.
const (
	CacheDriverMemory   = "memory"
	CacheDriverSQLite   = "sqlite"
	CacheDriverPostgres = "postgres"
)

// Event stream providers.
const (
	EventStreamNop   = "nop"
	EventStreamKafka = "kafka"
)

var (
	cacheDrivers         = []string{CacheDriverMemory, CacheDriverSQLite, CacheDriverPostgres}
	eventStreamProviders = []string{EventStreamNop, EventStreamKafka}
	generationProviders  = []string{"anthropic", "ollama"}
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	onStart := defaultSyncOnStart
	return &Config{
		Version: CurrentV,
		Airtable: AirtableConfig{
			TableName: defaultTableName,
		},
		Generation: GenerationConfig{
			Provider:  defaultGenerationProvider,
			Model:     defaultGenerationModel,
			MaxTokens: defaultMaxTokens,
		},
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Cache: CacheConfig{
			Driver: defaultCacheDriver,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		Sync: SyncConfig{
			Timeout:          defaultSyncTimeout,
			HarmonizeTimeout: defaultHarmonizeTimeout,
			OnStart:          &onStart,
		},
	}
}
