package http

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gear6io/mtgapi/server/config"
	"github.com/gear6io/mtgapi/server/domain/card"
	"github.com/gear6io/mtgapi/server/metrics"
	"github.com/gear6io/mtgapi/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

const ComponentType = "http-server"

// CardSource is the upstream card provider.
type CardSource interface {
	GetCard(ctx context.Context, identifier, printing string) (*card.MTGIOCard, error)
	GetCardImage(ctx context.Context, c *card.Card) []byte
}

// CardCache is the local card store consulted before the upstream.
type CardCache interface {
	Retrieve(ctx context.Context, identifier, printing string) (*card.Card, bool)
	Store(ctx context.Context, c *card.Card) bool
}

// Server represents the HTTP protocol server
type Server struct {
	cfg      config.APIConfig
	app      *fiber.App
	cards    CardCache
	upstream CardSource
	metrics  *metrics.Registry
	logger   zerolog.Logger

	startTime time.Time
	wg        sync.WaitGroup
}

// NewServer creates a new HTTP server instance with every route mounted
func NewServer(cfg config.APIConfig, cards CardCache, upstream CardSource, m *metrics.Registry, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		cards:     cards,
		upstream:  upstream,
		metrics:   m,
		logger:    logger.With().Str("component", ComponentType).Logger(),
		startTime: time.Now(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "mtgapi " + cfg.Version,
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New())
	s.app.Use(requestid.New(requestid.Config{Generator: utils.GenerateULIDString}))
	s.app.Use(s.accessLog)

	api := s.app.Group(rootPath(cfg.RootPath))
	api.Get("/card/:identifier", s.handleCard)
	api.Get("/card/:identifier/image", s.handleCardImage)
	api.Get("/health", s.handleHealth)
	api.Get("/info", s.handleInfo)
	api.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	api.Get("/_trace/test", s.handleTraceProbe)
	api.Get("/feature-flags", s.handleFeatureFlags)

	return s
}

// App exposes the fiber application, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port)
	s.logger.Info().Str("address", addr).Str("root_path", rootPath(s.cfg.RootPath)).Msg("Starting HTTP server")

	listenErr := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.app.Listen(addr); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server error")
			listenErr <- err
		}
	}()

	// Surface immediate bind failures to the caller.
	select {
	case err := <-listenErr:
		return err
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info().Msg("HTTP server started successfully")
	return nil
}

func (s *Server) GetType() string {
	return ComponentType
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Stopping HTTP server")

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Error during HTTP server shutdown")
		return err
	}
	s.wg.Wait()

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// GetStatus returns server status
func (s *Server) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"address":   s.cfg.Address,
		"port":      s.cfg.Port,
		"root_path": rootPath(s.cfg.RootPath),
		"uptime":    time.Since(s.startTime).String(),
	}
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	elapsed := time.Since(start)

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	route := c.Route().Path
	s.metrics.ObserveRequest(c.Method(), route, fmt.Sprint(status), elapsed)

	event := s.logger.Info()
	if status >= fiber.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.
		Str("request_id", fmt.Sprint(c.Locals("requestid"))).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("latency", elapsed).
		Msg("HTTP request")
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	detail := "internal server error"
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
		detail = fe.Message
	} else {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("Unhandled request error")
	}
	return c.Status(code).JSON(fiber.Map{"detail": detail})
}

func rootPath(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return ""
	}
	return p
}
