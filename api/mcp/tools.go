package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/align"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/spectral"
)

var (
	analyzeToolName    = "spectral_analyze"
	analyzeDescription = "Analyze the structure of markdown-like text. Counts heading, link and tag lines, computes the weighted spectral frequency and extracts the wiki-link targets and inline-link labels (resonance threads)."

	syncToolName    = "memory_sync"
	syncDescription = "Synchronize memory records from the tabular store: analyze and rank every record, cache the aligned nodes and write the analysis back. Returns the sync summary."

	harmonizeToolName    = "harmonize_content"
	harmonizeDescription = "Rewrite markdown content for a target note-taking format (default: obsidian) using the text generator, and analyze the result. On failure the original content is returned as fallback."

	resonanceToolName    = "resonance_map"
	resonanceDescription = "Return the resonance map of the cached memory nodes: for every node, its frequency, its threads and the ids of the other nodes sharing at least one thread."
)

// AnalyzeInput represents the input arguments for the spectral_analyze tool.
type AnalyzeInput struct {
	Text string `json:"text" jsonschema:"the markdown-like text to analyze"`
}

// SyncInput is the (empty) input of the memory_sync tool.
type SyncInput struct{}

// SyncOutput represents the output of the memory_sync tool.
type SyncOutput struct {
	SynchronizedNodes      int     `json:"synchronized_nodes"`
	TotalSpectralFrequency float64 `json:"total_spectral_frequency"`
	UniqueResonanceThreads int     `json:"unique_resonance_threads"`
	Timestamp              string  `json:"timestamp"`
}

// HarmonizeInput represents the input arguments for the harmonize_content tool.
type HarmonizeInput struct {
	Content      string `json:"content" jsonschema:"the markdown content to harmonize"`
	TargetFormat string `json:"target_format,omitempty" jsonschema:"target format such as obsidian, logseq or notion (default: obsidian)"`
}

// HarmonizeOutput flattens either harmonization outcome.
type HarmonizeOutput struct {
	OK                bool               `json:"ok"`
	OriginalContent   string             `json:"original_content,omitempty"`
	HarmonizedContent string             `json:"harmonized_content,omitempty"`
	TargetFormat      string             `json:"target_format,omitempty"`
	SpectralAnalysis  *spectral.Analysis `json:"spectral_analysis,omitempty"`
	Error             string             `json:"error,omitempty"`
	FallbackContent   string             `json:"fallback_content,omitempty"`
}

// ResonanceInput is the (empty) input of the resonance_map tool.
type ResonanceInput struct{}

// ResonanceOutput represents the output of the resonance_map tool.
type ResonanceOutput struct {
	ResonanceMap map[string]align.ResonanceEntry `json:"resonance_map"`
	Count        int                             `json:"count"`
}

func (s *Server) handleAnalyze(_ context.Context, _ *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, spectral.Analysis, error) {
	analysis := s.config.Bridge.Analyze(input.Text)

	s.config.Logger.Debug("MCP analyze request",
		zap.Int("line_count", analysis.LineCount),
		zap.Float64("spectral_frequency", analysis.SpectralFrequency),
	)

	return jsonResult(s.config.Logger, analysis), analysis, nil
}

func (s *Server) handleSync(ctx context.Context, _ *mcp.CallToolRequest, _ SyncInput) (*mcp.CallToolResult, SyncOutput, error) {
	summary, err := s.config.Bridge.Sync(ctx)
	if err != nil {
		s.config.Logger.Error("MCP sync failed", zap.Error(err))
		return toolError("Memory sync failed: %v", err), SyncOutput{}, nil
	}

	output := SyncOutput{
		SynchronizedNodes:      summary.SynchronizedNodes,
		TotalSpectralFrequency: summary.TotalSpectralFrequency,
		UniqueResonanceThreads: summary.UniqueResonanceThreads,
		Timestamp:              summary.Timestamp.Format(time.RFC3339Nano),
	}

	return jsonResult(s.config.Logger, output), output, nil
}

func (s *Server) handleHarmonize(ctx context.Context, _ *mcp.CallToolRequest, input HarmonizeInput) (*mcp.CallToolResult, HarmonizeOutput, error) {
	if input.Content == "" {
		return toolError("content is required"), HarmonizeOutput{}, nil
	}

	result := s.config.Bridge.Harmonize(ctx, input.Content, input.TargetFormat)

	if !result.OK() {
		output := HarmonizeOutput{
			Error:           result.Failure.Error,
			FallbackContent: result.Failure.FallbackContent,
		}
		res := jsonResult(s.config.Logger, output)
		res.IsError = true
		return res, output, nil
	}

	h := result.Harmonization
	analysis := h.SpectralAnalysis
	output := HarmonizeOutput{
		OK:                true,
		OriginalContent:   h.OriginalContent,
		HarmonizedContent: h.HarmonizedContent,
		TargetFormat:      h.TargetFormat,
		SpectralAnalysis:  &analysis,
	}

	return jsonResult(s.config.Logger, output), output, nil
}

func (s *Server) handleResonance(ctx context.Context, _ *mcp.CallToolRequest, _ ResonanceInput) (*mcp.CallToolResult, ResonanceOutput, error) {
	resonance, err := s.config.Bridge.ResonanceMap(ctx)
	if err != nil {
		s.config.Logger.Error("MCP resonance map failed", zap.Error(err))
		return toolError("Resonance map failed: %v", err), ResonanceOutput{ResonanceMap: map[string]align.ResonanceEntry{}}, nil
	}

	output := ResonanceOutput{
		ResonanceMap: resonance,
		Count:        len(resonance),
	}

	return jsonResult(s.config.Logger, output), output, nil
}
