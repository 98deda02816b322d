// Package bridge orchestrates memory synchronization between the tabular
// store and the node cache, and harmonizes content through the text
// generator.
package bridge

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/airtable"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/align"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/eventstream"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/eventstream/nop"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/generation"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/memory"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/spectral"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage/inmemory"
)

const (
	DefaultSyncTimeout      = 2 * time.Minute
	DefaultHarmonizeTimeout = 60 * time.Second
)

var (
	// ErrNoRecordStore is returned by Sync when no tabular store is configured.
	ErrNoRecordStore = errors.New("no record store configured")

	// ErrNoGenerator is reported by Harmonize when no generator is configured.
	ErrNoGenerator = errors.New("no text generator configured")
)

// RecordStore is the tabular store the bridge reads records from and writes
// analysis results back to. *airtable.Client satisfies it.
type RecordStore interface {
	ListRecords(ctx context.Context) ([]airtable.Record, error)
	UpdateRecord(ctx context.Context, id string, fields map[string]any) error
}

// FieldNames maps node attributes to tabular store columns.
type FieldNames struct {
	Content             string
	Format              string
	SpectralFrequency   string
	ResonanceThreads    string
	HarmonizationStatus string
	LastSync            string
}

// DefaultFieldNames returns the column names used by the memory table.
func DefaultFieldNames() FieldNames {
	return FieldNames{
		Content:             "Content",
		Format:              "Format",
		SpectralFrequency:   "SpectralFrequency",
		ResonanceThreads:    "ResonanceThreads",
		HarmonizationStatus: "HarmonizationStatus",
		LastSync:            "LastSync",
	}
}

// Options tunes a Bridge. Zero values fall back to defaults.
type Options struct {
	SyncTimeout      time.Duration
	HarmonizeTimeout time.Duration
	Fields           FieldNames

	// Now overrides the clock (used by tests).
	Now func() time.Time

	// NewEventID overrides event id generation (used by tests).
	NewEventID func() string
}

// Config holds the collaborators of a Bridge.
type Config struct {
	// Store is the tabular store. Sync fails with ErrNoRecordStore when nil.
	Store RecordStore

	// Generate produces harmonized text. Harmonize reports ErrNoGenerator
	// when nil.
	Generate generation.CallFunc

	// Cache holds aligned nodes. Defaults to an in-memory driver.
	Cache storage.Driver

	// Publisher receives sync events. Defaults to a no-op publisher.
	Publisher eventstream.Publisher

	// Source identifies the upstream table in published events.
	Source eventstream.EventSource

	Logger  *zap.Logger
	Options Options
}

// Bridge synchronizes memory records and serves analysis over the cache.
type Bridge struct {
	store     RecordStore
	generate  generation.CallFunc
	cache     storage.Driver
	publisher eventstream.Publisher
	source    eventstream.EventSource
	logger    *zap.Logger

	syncTimeout      time.Duration
	harmonizeTimeout time.Duration
	fields           FieldNames
	now              func() time.Time
	newEventID       func() string

	syncGroup singleflight.Group
}

// New creates a Bridge from cfg.
func New(cfg Config) (*Bridge, error) {
	opts := cfg.Options
	if opts.SyncTimeout < 0 || opts.HarmonizeTimeout < 0 {
		return nil, errors.New("bridge timeouts must not be negative")
	}

	b := &Bridge{
		store:            cfg.Store,
		generate:         cfg.Generate,
		cache:            cfg.Cache,
		publisher:        cfg.Publisher,
		source:           cfg.Source,
		logger:           cfg.Logger,
		syncTimeout:      cmp.Or(opts.SyncTimeout, DefaultSyncTimeout),
		harmonizeTimeout: cmp.Or(opts.HarmonizeTimeout, DefaultHarmonizeTimeout),
		fields:           mergeFieldNames(opts.Fields),
		now:              opts.Now,
		newEventID:       opts.NewEventID,
	}

	if b.cache == nil {
		b.cache = inmemory.NewDriver()
	}
	if b.publisher == nil {
		b.publisher = nop.NewPublisher()
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.newEventID == nil {
		b.newEventID = uuid.NewString
	}

	return b, nil
}

// Analyze returns the structural analysis of text.
func (b *Bridge) Analyze(text string) spectral.Analysis {
	return spectral.Analyze(text)
}

// Nodes returns the cached nodes sorted by spectral frequency, highest
// first. Ties are ordered by id.
func (b *Bridge) Nodes(ctx context.Context) ([]memory.MemoryNode, error) {
	nodes, err := b.cache.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cached nodes: %w", err)
	}

	slices.SortFunc(nodes, func(x, y memory.MemoryNode) int {
		return cmp.Compare(x.ID, y.ID)
	})
	align.SortByFrequency(nodes)
	return nodes, nil
}

// ResonanceMap builds the connection map of every cached node.
func (b *Bridge) ResonanceMap(ctx context.Context) (map[string]align.ResonanceEntry, error) {
	nodes, err := b.Nodes(ctx)
	if err != nil {
		return nil, err
	}
	return align.ResonanceMap(nodes), nil
}

// Close releases the cache and the publisher.
func (b *Bridge) Close() error {
	return errors.Join(b.cache.Close(), b.publisher.Close())
}

func mergeFieldNames(f FieldNames) FieldNames {
	d := DefaultFieldNames()
	return FieldNames{
		Content:             cmp.Or(f.Content, d.Content),
		Format:              cmp.Or(f.Format, d.Format),
		SpectralFrequency:   cmp.Or(f.SpectralFrequency, d.SpectralFrequency),
		ResonanceThreads:    cmp.Or(f.ResonanceThreads, d.ResonanceThreads),
		HarmonizationStatus: cmp.Or(f.HarmonizationStatus, d.HarmonizationStatus),
		LastSync:            cmp.Or(f.LastSync, d.LastSync),
	}
}
