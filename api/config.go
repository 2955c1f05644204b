// Package api provides the HTTP server fronting the oracle engine: the
// single-shot search endpoint, the streaming chat endpoint, and the MCP
// surface.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// StaticDir is an optional directory of frontend assets to serve at /.
	StaticDir string
}
