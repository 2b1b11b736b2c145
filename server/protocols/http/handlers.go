package http

import (
	"runtime"
	"strings"
	"time"

	"github.com/gear6io/mtgapi/server/domain/card"
	"github.com/gear6io/mtgapi/server/upstream/mtgio"
	"github.com/gofiber/fiber/v2"
)

const maxPrintingLength = 10

// KnownIDExceptions lists identifiers the API refuses to serve.
var KnownIDExceptions = map[string]string{
	"1488": "Not present due to sensitivity issues",
}

func (s *Server) handleCard(c *fiber.Ctx) error {
	found, err := s.lookupCard(c)
	if err != nil {
		return err
	}
	return c.JSON(found)
}

func (s *Server) handleCardImage(c *fiber.Ctx) error {
	found, err := s.lookupCard(c)
	if err != nil {
		return err
	}

	image := s.upstream.GetCardImage(c.UserContext(), found)
	if image == nil {
		return fiber.NewError(fiber.StatusNotFound, "Card image is not available.")
	}
	c.Set(fiber.HeaderContentType, "image/webp")
	return c.Send(image)
}

// lookupCard resolves the request's card from the cache or the upstream,
// caching upstream results.
func (s *Server) lookupCard(c *fiber.Ctx) (*card.Card, error) {
	identifier := strings.TrimSpace(c.Params("identifier"))
	if identifier == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Card identifier must not be empty.")
	}

	printing := ""
	if c.Context().QueryArgs().Has("printing") {
		raw := c.Query("printing")
		if len(raw) < 1 || len(raw) > maxPrintingLength {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Printing must be between 1 and 10 characters.")
		}
		printing = strings.ToUpper(strings.TrimSpace(raw))
	}

	if reason, ok := KnownIDExceptions[identifier]; ok {
		s.logger.Warn().Str("identifier", identifier).Str("reason", reason).Msg("Card identifier is a known exception")
		return nil, fiber.NewError(fiber.StatusBadRequest, reason)
	}

	ctx := c.UserContext()
	if cached, ok := s.cards.Retrieve(ctx, identifier, printing); ok {
		if printing == "" || cached.SetCode() == printing {
			return cached, nil
		}
	}

	upstream, err := s.upstream.GetCard(ctx, identifier, printing)
	if err != nil {
		if status, detail, ok := mtgio.UpstreamStatus(err); ok {
			return nil, fiber.NewError(status, detail)
		}
		if mtgio.IsNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return nil, err
	}

	converted, err := card.FromMTGIOCard(upstream, s.logger)
	if err != nil {
		return nil, err
	}
	if printing != "" && converted.SetCode() != printing {
		return nil, fiber.NewError(fiber.StatusNotFound,
			"Card found but printing '"+converted.SetCode()+"' does not match requested '"+printing+"'.")
	}

	s.cards.Store(ctx, converted)
	return converted, nil
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"server":    "mtgapi-http",
	})
}

func (s *Server) handleInfo(c *fiber.Ctx) error {
	root := rootPath(s.cfg.RootPath)
	return c.JSON(fiber.Map{
		"server":     "mtgapi-http",
		"version":    s.cfg.Version,
		"go_version": runtime.Version(),
		"root_path":  root,
		"uptime":     time.Since(s.startTime).String(),
		"endpoints": []string{
			"GET " + root + "/card/:identifier - Card data by multiverse id or name",
			"GET " + root + "/card/:identifier/image - Card image",
			"GET " + root + "/health - Health check",
			"GET " + root + "/info - Server information",
			"GET " + root + "/metrics - Prometheus metrics",
		},
	})
}

func (s *Server) handleTraceProbe(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"detail": "tracing not implemented"})
}

func (s *Server) handleFeatureFlags(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
		"flags":  fiber.Map{},
		"detail": "feature flags not implemented",
	})
}
