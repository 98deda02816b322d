// Package sqldriver provides node cache operations over database/sql.
// It is database-agnostic and can be embedded by specific drivers.
package sqldriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/memory"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage"
)

// Dialect selects the placeholder style of the underlying database.
type Dialect int

const (
	// DialectSQLite uses "?" placeholders.
	DialectSQLite Dialect = iota

	// DialectPostgres uses "$n" placeholders.
	DialectPostgres
)

const schema = `
CREATE TABLE IF NOT EXISTS memory_nodes (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	markdown_format TEXT NOT NULL,
	spectral_frequency DOUBLE PRECISION NOT NULL DEFAULT 0,
	resonance_threads TEXT NOT NULL DEFAULT '[]',
	captured_at TEXT NOT NULL,
	source TEXT NOT NULL,
	harmonization_status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memory_nodes_frequency ON memory_nodes(spectral_frequency);
`

const selectColumns = `id, content, markdown_format, spectral_frequency, resonance_threads, captured_at, source, harmonization_status`

// SQLDriver implements storage.Driver on top of a *sql.DB.
type SQLDriver struct {
	DB      *sql.DB
	Dialect Dialect
}

// Migrate creates the node table if it doesn't exist.
func (d *SQLDriver) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Put upserts a node. An existing row with the same id is overwritten.
func (d *SQLDriver) Put(ctx context.Context, node memory.MemoryNode) error {
	if node.ID == "" {
		return storage.ErrEmptyID
	}

	threads := node.ResonanceThreads
	if threads == nil {
		threads = []string{}
	}
	threadsJSON, err := json.Marshal(threads)
	if err != nil {
		return fmt.Errorf("failed to marshal resonance threads: %w", err)
	}

	query := d.rebind(`
		INSERT INTO memory_nodes (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			content = excluded.content,
			markdown_format = excluded.markdown_format,
			spectral_frequency = excluded.spectral_frequency,
			resonance_threads = excluded.resonance_threads,
			captured_at = excluded.captured_at,
			source = excluded.source,
			harmonization_status = excluded.harmonization_status`)

	_, err = d.DB.ExecContext(ctx, query,
		node.ID,
		node.Content,
		node.MarkdownFormat,
		node.SpectralFrequency,
		string(threadsJSON),
		node.Timestamp.UTC().Format(time.RFC3339Nano),
		string(node.Source),
		string(node.HarmonizationStatus),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert node: %w", err)
	}

	return nil
}

// Get retrieves a node by id.
func (d *SQLDriver) Get(ctx context.Context, id string) (memory.MemoryNode, error) {
	query := d.rebind(`SELECT ` + selectColumns + ` FROM memory_nodes WHERE id = ?`)

	node, err := scanNode(d.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return memory.MemoryNode{}, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return memory.MemoryNode{}, err
	}

	return node, nil
}

// List returns all cached nodes ordered by id.
func (d *SQLDriver) List(ctx context.Context) ([]memory.MemoryNode, error) {
	rows, err := d.DB.QueryContext(ctx, `SELECT `+selectColumns+` FROM memory_nodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	nodes := []memory.MemoryNode{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nodes: %w", err)
	}

	return nodes, nil
}

// Len returns the number of cached nodes.
func (d *SQLDriver) Len(ctx context.Context) (int, error) {
	var n int
	if err := d.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_nodes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (d *SQLDriver) Close() error {
	return d.DB.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (memory.MemoryNode, error) {
	var (
		node        memory.MemoryNode
		threadsJSON string
		capturedAt  string
		source      string
		status      string
	)

	err := row.Scan(
		&node.ID,
		&node.Content,
		&node.MarkdownFormat,
		&node.SpectralFrequency,
		&threadsJSON,
		&capturedAt,
		&source,
		&status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return node, err
	}
	if err != nil {
		return node, fmt.Errorf("failed to scan node: %w", err)
	}

	if err := json.Unmarshal([]byte(threadsJSON), &node.ResonanceThreads); err != nil {
		return node, fmt.Errorf("failed to unmarshal resonance threads: %w", err)
	}
	if node.ResonanceThreads == nil {
		node.ResonanceThreads = []string{}
	}

	node.Timestamp, err = time.Parse(time.RFC3339Nano, capturedAt)
	if err != nil {
		return node, fmt.Errorf("failed to parse captured_at: %w", err)
	}

	node.Source = memory.Source(source)
	node.HarmonizationStatus = memory.Status(status)

	return node, nil
}

// rebind rewrites "?" placeholders into the dialect's style.
func (d *SQLDriver) rebind(query string) string {
	if d.Dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
