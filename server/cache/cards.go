// Package cache keeps upstream cards in the table cache so repeated lookups
// skip the upstream API.
package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/gear6io/mtgapi/server/domain/card"
	"github.com/gear6io/mtgapi/server/metrics"
	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/rs/zerolog"
)

const ComponentType = "card_cache"

// Tables is the storage the card cache needs. *storage.TableCache satisfies it.
type Tables interface {
	Register(ctx context.Context, def record.Definition) error
	Insert(ctx context.Context, rec record.Record) bool
	Select(ctx context.Context, def record.Definition, filters map[string]any) ([]*record.Row, error)
}

// Cards reads and writes cached cards.
type Cards struct {
	tables  Tables
	metrics *metrics.Registry
	logger  zerolog.Logger
}

// NewCards creates a card cache. m may be nil.
func NewCards(tables Tables, m *metrics.Registry, logger zerolog.Logger) *Cards {
	return &Cards{
		tables:  tables,
		metrics: m,
		logger:  logger.With().Str("component", ComponentType).Logger(),
	}
}

// Warm registers the card table ahead of the first request.
func (c *Cards) Warm(ctx context.Context) error {
	return c.tables.Register(ctx, card.Definition)
}

// Retrieve finds a cached card by multiverse id (all digits) or by name,
// restricted to printing when one is given. Storage failures count as a miss.
func (c *Cards) Retrieve(ctx context.Context, identifier, printing string) (*card.Card, bool) {
	filters, ok := lookupFilters(identifier, printing)
	if !ok {
		c.metrics.CacheMiss()
		return nil, false
	}

	if err := c.tables.Register(ctx, card.Definition); err != nil {
		c.logger.Error().Err(err).Msg("Failed to register card table")
		c.metrics.CacheMiss()
		return nil, false
	}

	rows, err := c.tables.Select(ctx, card.Definition, filters)
	if err != nil {
		c.logger.Error().Err(err).Str("identifier", identifier).Msg("Failed to retrieve cached card data")
		c.metrics.CacheMiss()
		return nil, false
	}
	if len(rows) == 0 {
		c.logger.Info().Str("identifier", identifier).Str("printing", printing).Msg("No data present in cache")
		c.metrics.CacheMiss()
		return nil, false
	}

	cached, err := card.FromRow(rows[0])
	if err != nil {
		c.logger.Error().Err(err).Str("identifier", identifier).Msg("Cached card could not be decoded")
		c.metrics.CacheMiss()
		return nil, false
	}

	c.metrics.CacheHit()
	return cached, true
}

// Store inserts a card. It reports whether the card was persisted.
func (c *Cards) Store(ctx context.Context, cd *card.Card) bool {
	if cd == nil {
		return false
	}
	ok := c.tables.Insert(ctx, cd)
	c.metrics.CacheStore(ok)
	if ok {
		c.logger.Debug().Str("card", cd.String()).Msg("Card cached")
	}
	return ok
}

func lookupFilters(identifier, printing string) (map[string]any, bool) {
	identifier = strings.TrimSpace(identifier)
	printing = strings.ToUpper(strings.TrimSpace(printing))
	if identifier == "" {
		return nil, false
	}

	filters := map[string]any{}
	if isDigits(identifier) {
		id, err := strconv.ParseInt(identifier, 10, 64)
		if err != nil {
			return nil, false
		}
		filters["multiverse_id"] = id
	} else {
		filters["name"] = identifier
	}
	if printing != "" {
		filters["set_name"] = printing
	}
	return filters, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
