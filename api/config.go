// Package api provides the HTTP, websocket and MCP surface of the memory bridge.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "0.0.0.0:8080")
	ListenAddr string

	// DisableMCP skips mounting the MCP endpoint at /mcp
	DisableMCP bool
}
