package api

import (
	"context"
	"time"

	"github.com/CristiGvl/picoCPUFreq/internal/cpu"
	"github.com/CristiGvl/picoCPUFreq/internal/ledger"
	"github.com/CristiGvl/picoCPUFreq/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// handlerTimeout bounds a request that reads every core, possibly twice
const handlerTimeout = 30 * time.Second

// ReportLister lists previously written reports
type ReportLister interface {
	List(ctx context.Context, limit int) ([]ledger.Entry, error)
}

// Deps are the collaborators the API serves
type Deps struct {
	Sessions *session.Manager
	CPU      cpu.Reader
	Reports  ReportLister
}

// Server represents the API server
type Server struct {
	app       *fiber.App
	sessions  *session.Manager
	cpuReader cpu.Reader
	reports   ReportLister
}

// NewServer creates a new API server
func NewServer(deps Deps) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  120 * time.Second,
		ServerHeader: "picoCPUFreq",
		AppName:      "picoCPUFreq v1.0",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "*",
		MaxAge:       86400, // 24 hours
	}))

	server := &Server{
		app:       app,
		sessions:  deps.Sessions,
		cpuReader: deps.CPU,
		reports:   deps.Reports,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	// Profiling sessions
	api.Post("/sessions", s.beginSession)
	api.Get("/sessions", s.listSessions)
	api.Post("/sessions/:id/end", s.endSession)
	api.Delete("/sessions/:id", s.discardSession)

	// One-off reads
	api.Get("/snapshot", s.getSnapshot)
	api.Get("/cpu", s.getCPU)

	// Written reports
	api.Get("/reports", s.getReports)

	// Health check
	api.Get("/health", s.healthCheck)
}

// Start starts the API server
func (s *Server) Start(address string) error {
	return s.app.Listen(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
