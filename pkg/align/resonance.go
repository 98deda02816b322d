package align

import (
	"slices"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/memory"
)

// ResonanceEntry describes how one node connects to the rest of a batch.
type ResonanceEntry struct {
	SpectralFrequency float64  `json:"spectral_frequency"`
	ResonanceThreads  []string `json:"resonance_threads"`

	// ConnectedNodes are the ids of the other nodes sharing at least one
	// thread with this node, sorted ascending.
	ConnectedNodes []string `json:"connected_nodes"`
}

// ResonanceMap builds the connection map of nodes keyed by node id.
func ResonanceMap(nodes []memory.MemoryNode) map[string]ResonanceEntry {
	// thread -> ids of nodes referencing it
	byThread := make(map[string][]string)
	for _, node := range nodes {
		for _, thread := range node.ResonanceThreads {
			byThread[thread] = append(byThread[thread], node.ID)
		}
	}

	result := make(map[string]ResonanceEntry, len(nodes))
	for _, node := range nodes {
		connected := make(map[string]struct{})
		for _, thread := range node.ResonanceThreads {
			for _, id := range byThread[thread] {
				if id != node.ID {
					connected[id] = struct{}{}
				}
			}
		}

		ids := make([]string, 0, len(connected))
		for id := range connected {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		threads := slices.Clone(node.ResonanceThreads)
		if threads == nil {
			threads = []string{}
		}

		result[node.ID] = ResonanceEntry{
			SpectralFrequency: node.SpectralFrequency,
			ResonanceThreads:  threads,
			ConnectedNodes:    ids,
		}
	}

	return result
}
