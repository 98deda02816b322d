package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/align"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/memory"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/spectral"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SyncResponse wraps a successful sync summary.
type SyncResponse struct {
	Status string              `json:"status"`
	Data   *bridge.SyncSummary `json:"data"`
}

// AnalyzeRequest is the body of POST /api/spectral/analyze.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse wraps an analysis.
type AnalyzeResponse struct {
	SpectralAnalysis spectral.Analysis `json:"spectral_analysis"`
}

// HarmonizeRequest is the body of POST /api/memory/harmonize.
type HarmonizeRequest struct {
	Content      string `json:"content"`
	TargetFormat string `json:"target_format"`
}

// NodesResponse lists cached nodes, highest frequency first.
type NodesResponse struct {
	Nodes []memory.MemoryNode `json:"nodes"`
	Count int                 `json:"count"`
}

// ResonanceResponse wraps the resonance map.
type ResonanceResponse struct {
	ResonanceMap map[string]align.ResonanceEntry `json:"resonance_map"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSync runs (or joins) a memory sync.
func (s *Server) handleSync(c *fiber.Ctx) error {
	summary, err := s.bridge.Sync(c.UserContext())
	if err != nil {
		s.logger.Error("sync request failed", zap.Error(err))

		status := fiber.StatusBadGateway
		if errors.Is(err, bridge.ErrNoRecordStore) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(SyncResponse{Status: "success", Data: summary})
}

// handleAnalyze returns the structural analysis of the posted text.
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	return c.JSON(AnalyzeResponse{SpectralAnalysis: s.bridge.Analyze(req.Text)})
}

// handleListNodes returns the cached nodes.
func (s *Server) handleListNodes(c *fiber.Ctx) error {
	nodes, err := s.bridge.Nodes(c.UserContext())
	if err != nil {
		s.logger.Error("failed to list nodes", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list nodes"})
	}

	return c.JSON(NodesResponse{Nodes: nodes, Count: len(nodes)})
}

// handleResonance returns the resonance map of the cached nodes.
func (s *Server) handleResonance(c *fiber.Ctx) error {
	resonance, err := s.bridge.ResonanceMap(c.UserContext())
	if err != nil {
		s.logger.Error("failed to build resonance map", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to build resonance map"})
	}

	return c.JSON(ResonanceResponse{ResonanceMap: resonance})
}

// handleHarmonize harmonizes the posted content. Generator failures are
// reported in the body, not through the status code.
func (s *Server) handleHarmonize(c *fiber.Ctx) error {
	var req HarmonizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "content is required"})
	}

	return c.JSON(s.bridge.Harmonize(c.UserContext(), req.Content, req.TargetFormat))
}
