// Package mcp provides an MCP (Model Context Protocol) server exposing the
// memory bridge as tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/utils"
)

type Config struct {
	// Bridge serves analysis, sync and harmonization
	Bridge *bridge.Bridge

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured zap logger
	Logger *zap.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the memory tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "hiveswarm",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Bridge == nil {
			return nil, errors.New("bridge is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        analyzeToolName,
			Description: analyzeDescription,
		}, s.handleAnalyze)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        syncToolName,
			Description: syncDescription,
		}, s.handleSync)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        harmonizeToolName,
			Description: harmonizeDescription,
		}, s.handleHarmonize)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        resonanceToolName,
			Description: resonanceDescription,
		}, s.handleResonance)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// jsonResult serializes the structured output into a TextContent block as
// well, for clients that ignore structured content.
func jsonResult(logger *zap.Logger, out any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(out)
	if err != nil {
		logger.Error("failed to marshal tool output", zap.Error(err))
		return toolError("Failed to serialize results: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}
