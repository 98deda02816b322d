// Package align ranks a batch of memory nodes by structural density and
// links nodes that share resonance threads.
package align

import (
	"cmp"
	"slices"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/memory"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/spectral"
)

// Align analyzes every node and returns aligned copies sorted by spectral
// frequency, highest first. Nodes with equal frequency keep their input
// order. The input slice is left untouched.
func Align(nodes []memory.MemoryNode) []memory.MemoryNode {
	aligned := make([]memory.MemoryNode, 0, len(nodes))
	for _, node := range nodes {
		aligned = append(aligned, node.WithAnalysis(spectral.Analyze(node.Content)))
	}

	SortByFrequency(aligned)
	return aligned
}

// SortByFrequency stable-sorts nodes in place by spectral frequency,
// highest first.
func SortByFrequency(nodes []memory.MemoryNode) {
	slices.SortStableFunc(nodes, func(a, b memory.MemoryNode) int {
		return cmp.Compare(b.SpectralFrequency, a.SpectralFrequency)
	})
}
