package memory

import (
	"slices"
	"time"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/spectral"
)

// Source is the provenance tag of a node.
type Source string

const (
	SourceMarley Source = "marley"
	SourceClaude Source = "claude"
	SourceHybrid Source = "hybrid"
)

// Status is the lifecycle flag of a node.
type Status string

const (
	StatusPending Status = "pending"
	StatusAligned Status = "aligned"
)

// DefaultFormat is used when the upstream record carries no format tag.
const DefaultFormat = "unknown"

// MemoryNode is a record of text content plus its derived structural
// metadata. Nodes are values: every pipeline stage returns a new node and
// never mutates the one it was given.
type MemoryNode struct {
	// ID is assigned by the upstream store and never generated locally.
	ID string `json:"id"`

	Content        string `json:"content"`
	MarkdownFormat string `json:"markdown_format"`

	// SpectralFrequency and ResonanceThreads are derived from Content alone
	// and stay zero until the node is aligned.
	SpectralFrequency float64  `json:"spectral_frequency"`
	ResonanceThreads  []string `json:"resonance_threads"`

	Timestamp           time.Time `json:"timestamp"`
	Source              Source    `json:"source"`
	HarmonizationStatus Status    `json:"harmonization_status"`
}

// NewNode creates a pending node captured at now. An empty format falls back
// to DefaultFormat.
func NewNode(id, content, format string, source Source, now time.Time) MemoryNode {
	if format == "" {
		format = DefaultFormat
	}

	return MemoryNode{
		ID:                  id,
		Content:             content,
		MarkdownFormat:      format,
		ResonanceThreads:    []string{},
		Timestamp:           now,
		Source:              source,
		HarmonizationStatus: StatusPending,
	}
}

// WithAnalysis returns a copy of n carrying the frequency and threads of a,
// marked as aligned.
func (n MemoryNode) WithAnalysis(a spectral.Analysis) MemoryNode {
	out := n
	out.SpectralFrequency = a.SpectralFrequency
	out.ResonanceThreads = slices.Clone(a.ResonanceThreads)
	if out.ResonanceThreads == nil {
		out.ResonanceThreads = []string{}
	}
	out.HarmonizationStatus = StatusAligned
	return out
}

// Clone returns a deep copy of n.
func (n MemoryNode) Clone() MemoryNode {
	out := n
	out.ResonanceThreads = slices.Clone(n.ResonanceThreads)
	return out
}

// IsAligned reports whether the node went through the aligner.
func (n MemoryNode) IsAligned() bool {
	return n.HarmonizationStatus == StatusAligned
}

// Valid reports whether s is a known provenance tag.
func (s Source) Valid() bool {
	switch s {
	case SourceMarley, SourceClaude, SourceHybrid:
		return true
	}
	return false
}

// Valid reports whether s is a known lifecycle flag.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAligned
}
