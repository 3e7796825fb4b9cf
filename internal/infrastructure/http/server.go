package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/retailpos/pos-system/internal/infrastructure/http/handlers"
)

// Server owns the HTTP listener lifecycle for an already-routed echo instance.
type Server struct {
	echo *echo.Echo
	addr string
	log  zerolog.Logger
}

// NewServer registers the health checks on e and returns a Server listening
// on port. rdb may be nil when Redis is not configured.
func NewServer(e *echo.Echo, port string, client *mongo.Client, rdb *redis.Client, log zerolog.Logger) *Server {
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	// --- Health checks (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(client, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	return &Server{echo: e, addr: ":" + port, log: log}
}

// Start blocks serving requests until Shutdown is called. A clean shutdown
// returns nil.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("http server listening")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.echo.Shutdown(ctx)
}
