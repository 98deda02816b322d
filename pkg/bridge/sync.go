package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/airtable"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/align"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/eventstream"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/memory"
)

const syncKey = "sync"

// SyncSummary is the aggregate result of one sync run.
type SyncSummary struct {
	SynchronizedNodes      int       `json:"synchronized_nodes"`
	TotalSpectralFrequency float64   `json:"total_spectral_frequency"`
	UniqueResonanceThreads int       `json:"unique_resonance_threads"`
	Timestamp              time.Time `json:"timestamp"`
}

// Sync fetches every record from the store, aligns the batch, caches the
// aligned nodes, writes the analysis back to the store and publishes a
// completion event.
//
// Concurrent calls share a single in-flight run and receive the same result.
// The run is bounded by the sync timeout and is not cancelled when an
// individual caller's ctx is; that caller simply stops waiting.
func (b *Bridge) Sync(ctx context.Context) (*SyncSummary, error) {
	if b.store == nil {
		return nil, ErrNoRecordStore
	}

	ch := b.syncGroup.DoChan(syncKey, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.syncTimeout)
		defer cancel()
		return b.runSync(runCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		summary := *res.Val.(*SyncSummary)
		return &summary, nil
	}
}

func (b *Bridge) runSync(ctx context.Context) (*SyncSummary, error) {
	started := b.now()
	b.logger.Info("starting memory sync")

	records, err := b.store.ListRecords(ctx)
	if err != nil {
		b.logger.Error("memory sync failed", zap.Error(err))
		return nil, fmt.Errorf("fetching records: %w", err)
	}

	nodes := b.nodesFromRecords(records, started)
	aligned := align.Align(nodes)

	for _, node := range aligned {
		if err := b.cache.Put(ctx, node); err != nil {
			b.logger.Error("memory sync failed", zap.String("node_id", node.ID), zap.Error(err))
			return nil, fmt.Errorf("caching node %s: %w", node.ID, err)
		}
	}

	syncedAt := b.now()
	for _, node := range aligned {
		if err := b.store.UpdateRecord(ctx, node.ID, b.writeBackFields(node, syncedAt)); err != nil {
			b.logger.Error("memory sync failed", zap.String("node_id", node.ID), zap.Error(err))
			return nil, fmt.Errorf("writing back node %s: %w", node.ID, err)
		}
	}

	summary := summarize(aligned, b.now())
	b.publishSync(ctx, summary, aligned, started)

	b.logger.Info("memory sync completed",
		zap.Int("records", len(records)),
		zap.Int("synchronized_nodes", summary.SynchronizedNodes),
		zap.Float64("total_spectral_frequency", summary.TotalSpectralFrequency),
		zap.Int("unique_resonance_threads", summary.UniqueResonanceThreads),
		zap.Duration("duration", summary.Timestamp.Sub(started)),
	)

	return summary, nil
}

// nodesFromRecords converts records to pending nodes, skipping records whose
// content field is missing or not text.
func (b *Bridge) nodesFromRecords(records []airtable.Record, now time.Time) []memory.MemoryNode {
	nodes := make([]memory.MemoryNode, 0, len(records))
	for _, record := range records {
		content, ok := record.StringField(b.fields.Content)
		if !ok {
			b.logger.Debug("skipping record without content", zap.String("record_id", record.ID))
			continue
		}

		format, _ := record.StringField(b.fields.Format)
		nodes = append(nodes, memory.NewNode(record.ID, content, format, memory.SourceMarley, now))
	}
	return nodes
}

func (b *Bridge) writeBackFields(node memory.MemoryNode, syncedAt time.Time) map[string]any {
	return map[string]any{
		b.fields.SpectralFrequency:   node.SpectralFrequency,
		b.fields.ResonanceThreads:    strings.Join(node.ResonanceThreads, ", "),
		b.fields.HarmonizationStatus: string(node.HarmonizationStatus),
		b.fields.LastSync:            syncedAt.Format(time.RFC3339),
	}
}

func summarize(nodes []memory.MemoryNode, completedAt time.Time) *SyncSummary {
	summary := &SyncSummary{
		SynchronizedNodes: len(nodes),
		Timestamp:         completedAt,
	}

	threads := make(map[string]struct{})
	for _, node := range nodes {
		summary.TotalSpectralFrequency += node.SpectralFrequency
		for _, t := range node.ResonanceThreads {
			threads[t] = struct{}{}
		}
	}
	summary.UniqueResonanceThreads = len(threads)

	return summary
}

// publishSync emits the completion event. Publish failures are logged and
// do not fail the run.
func (b *Bridge) publishSync(ctx context.Context, summary *SyncSummary, nodes []memory.MemoryNode, started time.Time) {
	ids := make([]string, 0, len(nodes))
	for _, node := range nodes {
		ids = append(ids, node.ID)
	}

	event := &eventstream.SyncCompletedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeSyncCompleted,
		EventID:       b.newEventID(),
		EmittedAt:     summary.Timestamp,
		Source:        b.source,
		Summary: eventstream.SyncStats{
			SynchronizedNodes:      summary.SynchronizedNodes,
			TotalSpectralFrequency: summary.TotalSpectralFrequency,
			UniqueResonanceThreads: summary.UniqueResonanceThreads,
			StartedAt:              started,
			CompletedAt:            summary.Timestamp,
			DurationMs:             summary.Timestamp.Sub(started).Milliseconds(),
		},
		NodeIDs: ids,
	}

	if err := b.publisher.PublishSync(ctx, event); err != nil {
		b.logger.Warn("failed to publish sync event",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}
