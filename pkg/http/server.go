package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"FinFold/pkg/http/middleware"
	applogger "FinFold/pkg/logger"
)

// Handler registers routes on the server's Echo instance.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// ServerOption configures Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	host            string
	port            int
	shutdownTimeout time.Duration
	cors            bool
	log             *applogger.Logger
}

// Server wraps an Echo HTTP server with the standard middleware chain.
type Server struct {
	echo *echo.Echo
	cfg  *serverConfig
}

// NewServer builds the HTTP server, wires middleware, registers handler
// routes, and exposes /metrics for Prometheus scraping.
func NewServer(handlers []Handler, opts ...ServerOption) *Server {
	cfg := &serverConfig{
		host:            "0.0.0.0",
		port:            8080,
		shutdownTimeout: 10 * time.Second,
		cors:            true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover(cfg.log))
	e.Use(middleware.RequestLogging(cfg.log))
	e.Use(middleware.Metrics())
	if cfg.cors {
		e.Use(middleware.CORS(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	for _, h := range handlers {
		if h != nil {
			h.RegisterRoutes(e)
		}
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{echo: e, cfg: cfg}
}

// Start begins serving in the background.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.host, s.cfg.port)

	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.cfg.log != nil {
				s.cfg.log.Error("http server stopped", applogger.Error(err))
			}
		}
	}()

	if s.cfg.log != nil {
		s.cfg.log.Info("http server listening", applogger.String("addr", addr))
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Echo exposes the underlying instance for route inspection in tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

// WithHost sets the bind host.
func WithHost(host string) ServerOption {
	return func(c *serverConfig) { c.host = host }
}

// WithPort sets the bind port.
func WithPort(port int) ServerOption {
	return func(c *serverConfig) { c.port = port }
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(c *serverConfig) { c.shutdownTimeout = d }
}

// WithCORS toggles the CORS middleware.
func WithCORS(enabled bool) ServerOption {
	return func(c *serverConfig) { c.cors = enabled }
}

// WithLogger attaches a structured logger to the middleware chain.
func WithLogger(l *applogger.Logger) ServerOption {
	return func(c *serverConfig) { c.log = l }
}
