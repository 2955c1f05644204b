package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/api/mcp"
	"github.com/papercomputeco/verbatim/pkg/oracle"
)

// Server is the API server for querying the corpus oracle.
type Server struct {
	config Config
	engine *oracle.Engine
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server. The engine is injected so it can be
// shared with other surfaces (e.g., the MCP handler and CLI commands).
func NewServer(config Config, engine *oracle.Engine, logger *zap.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	s := &Server{
		config: config,
		engine: engine,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/api/search", s.handleSearch)
	app.Post("/api/chat", s.handleChat)
	app.Get("/api/history/:session", s.handleHistory)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Engine: engine,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	if config.StaticDir != "" {
		app.Static("/", config.StaticDir)
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
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
