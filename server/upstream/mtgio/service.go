// Package mtgio talks to the magicthegathering.io card API.
package mtgio

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/domain/card"
	"github.com/gear6io/mtgapi/server/upstream/httpclient"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	ComponentType = "mtgio"

	cardsEndpoint = "cards"
)

// Getter is the part of the HTTP client the service needs.
type Getter interface {
	Get(ctx context.Context, target string, opts ...httpclient.RequestOption) (*httpclient.Response, error)
}

// Service fetches cards and card images from the upstream API.
type Service struct {
	client      Getter
	version     string
	limitHeader string
	logger      zerolog.Logger
}

// New creates a service. version is the API path prefix, e.g. "v1".
func New(client Getter, version, limitHeader string, logger zerolog.Logger) *Service {
	return &Service{
		client:      client,
		version:     strings.Trim(version, "/"),
		limitHeader: limitHeader,
		logger:      logger.With().Str("component", ComponentType).Logger(),
	}
}

// GetCard looks a card up by multiverse id (all digits) or by name. A
// printing restricts name lookups to that set code.
func (s *Service) GetCard(ctx context.Context, identifier, printing string) (*card.MTGIOCard, error) {
	raw, err := s.GetRawCard(ctx, identifier, printing)
	if err != nil {
		return nil, err
	}

	c, err := card.FromPayload(raw)
	if err != nil {
		return nil, errors.Wrapf(MTGIOInvalidCardModel, err, "card %q failed validation", identifier).
			AddContext("identifier", identifier)
	}
	return c, nil
}

// GetRawCard returns the upstream card object without conversion.
func (s *Service) GetRawCard(ctx context.Context, identifier, printing string) (gjson.Result, error) {
	identifier = strings.TrimSpace(identifier)
	printing = strings.ToUpper(strings.TrimSpace(printing))
	if identifier == "" {
		return gjson.Result{}, errors.New(MTGIOCardNotFound, "card identifier is empty", nil)
	}

	byName := !isDigits(identifier)
	resp, err := s.client.Get(ctx, s.cardURL(identifier, printing, byName))
	if err != nil {
		return gjson.Result{}, errors.Wrapf(MTGIORequestFailed, err, "fetch card %q", identifier).
			AddContext("identifier", identifier)
	}
	s.logger.Debug().Int("remaining", s.RateLimitRemaining(resp)).Msg("Upstream rate limit")

	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, errors.Newf(MTGIOInvalidResponse, "response for %q is not valid JSON", identifier)
	}
	payload := gjson.ParseBytes(resp.Body)

	var found gjson.Result
	if byName {
		found = pickPrinting(payload.Get("cards"), printing)
	} else {
		found = payload.Get("card")
	}

	if !found.IsObject() || found.Get("name").String() == "" {
		return gjson.Result{}, notFound(identifier, printing)
	}

	s.logger.Info().Str("name", found.Get("name").String()).Msg("Found card on MTGIO API")
	return found, nil
}

// GetCardImage downloads the card image from its absolute URL. It returns nil
// when the card has no image or the download fails.
func (s *Service) GetCardImage(ctx context.Context, c *card.Card) []byte {
	if c == nil || c.ImageURL == nil || *c.ImageURL == "" {
		name := ""
		if c != nil {
			name = c.Name
		}
		s.logger.Warn().Str("card", name).Msg("Card has no image URL")
		return nil
	}

	resp, err := s.client.Get(ctx, *c.ImageURL, httpclient.WithOverrideBase())
	if err != nil {
		s.logger.Error().Err(err).Str("card", c.Name).Msg("Failed to fetch card image")
		return nil
	}
	return resp.Body
}

// RateLimitRemaining reads the remaining request budget from a response.
func (s *Service) RateLimitRemaining(resp *httpclient.Response) int {
	if resp == nil || s.limitHeader == "" {
		return 0
	}
	n, err := strconv.Atoi(resp.Header.Get(s.limitHeader))
	if err != nil {
		return 0
	}
	return n
}

// CheckRateLimit reports whether more requests may be sent.
func (s *Service) CheckRateLimit(resp *httpclient.Response) bool {
	return s.RateLimitRemaining(resp) > 0
}

func (s *Service) GetType() string { return ComponentType }

func (s *Service) Shutdown(context.Context) error { return nil }

func (s *Service) cardURL(identifier, printing string, byName bool) string {
	if !byName {
		return "/" + s.version + "/" + cardsEndpoint + "/" + identifier
	}

	name := identifier
	if isPlainName(name) {
		name = `"` + name + `"`
	}
	q := url.Values{"name": {name}}
	if printing != "" {
		q.Set("set", printing)
	}
	return "/" + s.version + "/" + cardsEndpoint + "?" + q.Encode()
}

// UpstreamStatus extracts the upstream HTTP status and its "error" message.
func UpstreamStatus(err error) (int, string, bool) {
	se, ok := httpclient.AsStatusError(err)
	if !ok {
		return 0, "", false
	}
	detail := gjson.GetBytes(se.Body, "error").String()
	if detail == "" {
		detail = http.StatusText(se.StatusCode)
	}
	return se.StatusCode, detail, true
}

func pickPrinting(cards gjson.Result, printing string) gjson.Result {
	for _, c := range cards.Array() {
		if printing == "" || strings.ToUpper(c.Get("set").String()) == printing {
			return c
		}
	}
	return gjson.Result{}
}

func notFound(identifier, printing string) error {
	if printing == "" {
		printing = "ANY"
	}
	return errors.Newf(MTGIOCardNotFound, "card %q with printing %q not found", identifier, printing).
		AddContext("identifier", identifier).
		AddContext("printing", printing)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isPlainName(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
