package sqlstore

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

// queryLogger traces every statement bun executes.
type queryLogger struct {
	logger zerolog.Logger
}

var _ bun.QueryHook = (*queryLogger)(nil)

func (h *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	e := h.logger.Trace()
	if event.Err != nil {
		e = h.logger.Debug().Err(event.Err)
	}
	e.Str("operation", event.Operation()).
		Dur("duration", time.Since(event.StartTime)).
		Str("query", event.Query).
		Msg("SQL query")
}
