// Package bridgebuilder wires a bridge.Bridge from resolved CLI settings:
// the Airtable record store, the generation caller, the node cache and the
// sync event publisher.
package bridgebuilder

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/airtable"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/config"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/credentials"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/eventstream"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/eventstream/kafka"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/eventstream/nop"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/eventstream/worker"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/generation"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage/inmemory"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage/postgres"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage/sqlite"
)

// KeyResolver looks up an API key for a provider. *credentials.Manager
// satisfies it.
type KeyResolver interface {
	ResolveKey(provider string) (string, error)
}

// Build creates a Bridge for s. A missing Airtable base id or key leaves the
// bridge without a record store, and a missing Anthropic key leaves it
// without a generator; both are logged and surface when the operation runs.
func Build(ctx context.Context, s *config.Settings, keys KeyResolver, logger *zap.Logger) (*bridge.Bridge, error) {
	store, err := newRecordStore(s, keys, logger)
	if err != nil {
		return nil, err
	}

	generate, err := newGenerator(s, keys, logger)
	if err != nil {
		return nil, err
	}

	cache, err := NewCache(ctx, s.Cache, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := NewPublisher(s, logger)
	if err != nil {
		cache.Close()
		return nil, err
	}

	b, err := bridge.New(bridge.Config{
		Store:     store,
		Generate:  generate,
		Cache:     cache,
		Publisher: publisher,
		Source: eventstream.EventSource{
			BaseID:    s.Airtable.BaseID,
			TableName: s.Airtable.TableName,
		},
		Logger: logger,
		Options: bridge.Options{
			SyncTimeout:      s.SyncTimeout,
			HarmonizeTimeout: s.HarmonizeTimeout,
		},
	})
	if err != nil {
		return nil, errors.Join(err, cache.Close(), publisher.Close())
	}

	return b, nil
}

func newRecordStore(s *config.Settings, keys KeyResolver, logger *zap.Logger) (bridge.RecordStore, error) {
	if s.Airtable.BaseID == "" {
		logger.Warn("airtable base id not configured, sync is disabled")
		return nil, nil
	}

	apiKey, err := resolve(s.Airtable.APIKey, credentials.ProviderAirtable, keys)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		logger.Warn("airtable api key not configured, sync is disabled",
			zap.String("env", credentials.EnvVarForProvider(credentials.ProviderAirtable)),
		)
		return nil, nil
	}

	client, err := airtable.NewClient(airtable.Config{
		BaseID:    s.Airtable.BaseID,
		TableName: s.Airtable.TableName,
		BaseURL:   s.Airtable.BaseURL,
		APIKey:    apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating airtable client: %w", err)
	}

	logger.Info("using airtable record store",
		zap.String("base_id", s.Airtable.BaseID),
		zap.String("table", s.Airtable.TableName),
	)
	return client, nil
}

func newGenerator(s *config.Settings, keys KeyResolver, logger *zap.Logger) (generation.CallFunc, error) {
	var apiKey string
	if s.Generation.Provider == generation.ProviderAnthropic {
		var err error
		apiKey, err = resolve(s.Generation.APIKey, credentials.ProviderAnthropic, keys)
		if err != nil {
			return nil, err
		}
		if apiKey == "" {
			logger.Warn("anthropic api key not configured, harmonization is disabled",
				zap.String("env", credentials.EnvVarForProvider(credentials.ProviderAnthropic)),
			)
			return nil, nil
		}
	}

	model := s.Generation.Model
	if s.Generation.Provider == generation.ProviderOllama && model == generation.DefaultAnthropicModel {
		// The config default names an Anthropic model; let ollama pick its own.
		model = ""
	}

	generate, err := generation.NewCaller(generation.Config{
		Provider:  s.Generation.Provider,
		Model:     model,
		APIKey:    apiKey,
		BaseURL:   s.Generation.BaseURL,
		MaxTokens: s.Generation.MaxTokens,
		Timeout:   s.HarmonizeTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generation caller: %w", err)
	}

	logger.Info("using generation provider",
		zap.String("provider", s.Generation.Provider),
		zap.String("model", model),
	)
	return generate, nil
}

// NewCache opens the node cache selected by c.
func NewCache(ctx context.Context, c config.CacheConfig, logger *zap.Logger) (storage.Driver, error) {
	switch c.Driver {
	case config.CacheDriverSQLite:
		if c.SQLitePath == "" {
			return nil, errors.New("sqlite cache requires cache.sqlite_path")
		}
		driver, err := sqlite.NewDriver(ctx, c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite cache: %w", err)
		}
		logger.Info("using SQLite node cache", zap.String("path", c.SQLitePath))
		return driver, nil

	case config.CacheDriverPostgres:
		if c.PostgresDSN == "" {
			return nil, errors.New("postgres cache requires cache.postgres_dsn")
		}
		driver, err := postgres.NewDriver(ctx, c.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL cache: %w", err)
		}
		logger.Info("using PostgreSQL node cache")
		return driver, nil

	case config.CacheDriverMemory, "":
		logger.Info("using in-memory node cache")
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unsupported cache driver %q", c.Driver)
	}
}

// NewPublisher creates the sync event publisher selected by s.
func NewPublisher(s *config.Settings, logger *zap.Logger) (eventstream.Publisher, error) {
	switch s.EventStream.Provider {
	case config.EventStreamKafka:
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: s.Brokers(),
			Topic:   s.EventStream.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		pool, err := worker.NewPool(worker.Config{
			Publisher: p,
			Logger:    logger,
		})
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("creating event worker pool: %w", err)
		}
		logger.Info("publishing sync events to kafka",
			zap.Strings("brokers", s.Brokers()),
			zap.String("topic", s.EventStream.Topic),
		)
		return pool, nil

	case config.EventStreamNop, "":
		return nop.NewPublisher(), nil

	default:
		return nil, fmt.Errorf("unsupported eventstream provider %q", s.EventStream.Provider)
	}
}

func resolve(explicit, provider string, keys KeyResolver) (string, error) {
	if explicit != "" || keys == nil {
		return explicit, nil
	}
	key, err := keys.ResolveKey(provider)
	if err != nil {
		return "", fmt.Errorf("resolving %s api key: %w", provider, err)
	}
	return key, nil
}
