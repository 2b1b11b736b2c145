package storage

import (
	"context"

	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/gear6io/mtgapi/server/schema/table"
)

// Resource is the persistence backend the table cache writes through.
type Resource interface {
	// CreateTable creates the table if it does not exist yet.
	CreateTable(ctx context.Context, def *table.Definition) error
	// Begin opens a unit of work.
	Begin(ctx context.Context) (Session, error)
	// Connected reports whether the resource is ready for use.
	Connected() bool
}

// Session is a single transaction against a Resource.
type Session interface {
	InsertRow(ctx context.Context, def *table.Definition, row *record.Row) error
	// SelectRows returns rows whose columns equal every filter value. An
	// empty filter set selects everything.
	SelectRows(ctx context.Context, def *table.Definition, filters map[string]any) ([]*record.Row, error)
	Commit() error
	Rollback() error
}
