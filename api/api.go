package api

import (
	"context"
	"errors"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/api/mcp"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
)

// Server is the API server for synchronizing and analyzing memory nodes.
type Server struct {
	config Config
	bridge *bridge.Bridge
	logger *zap.Logger
	app    *fiber.App

	// ctx bounds websocket work and is cancelled on Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new API server around b.
func NewServer(config Config, b *bridge.Bridge, logger *zap.Logger) (*Server, error) {
	if b == nil {
		return nil, errors.New("bridge is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config: config,
		bridge: b,
		logger: logger,
		app:    app,
		ctx:    ctx,
		cancel: cancel,
	}

	app.Get("/ping", s.handlePing)

	memoryRoutes := app.Group("/api/memory")
	memoryRoutes.Post("/sync", s.handleSync)
	memoryRoutes.Get("/nodes", s.handleListNodes)
	memoryRoutes.Get("/resonance", s.handleResonance)
	memoryRoutes.Post("/harmonize", s.handleHarmonize)

	app.Post("/api/spectral/analyze", s.handleAnalyze)

	app.Use("/ws", s.requireUpgrade)
	app.Get("/ws/memory-sync", websocket.New(s.handleWebsocket))

	if !config.DisableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Bridge: b,
			Logger: logger,
		})
		if err != nil {
			cancel()
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	s.cancel()
	return s.app.Shutdown()
}
