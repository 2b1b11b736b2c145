package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/gear6io/mtgapi/server/schema/table"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ComponentType defines the table cache component type identifier
const ComponentType = "table_cache"

// TableCache maps record types to tables that exist in the backing store.
// A table is synthesized and created at most once per record name; later
// calls reuse the cached definition.
type TableCache struct {
	resource Resource
	logger   zerolog.Logger

	mu     sync.RWMutex
	tables map[string]*table.Definition
	group  singleflight.Group
}

func NewTableCache(resource Resource, logger zerolog.Logger) *TableCache {
	return &TableCache{
		resource: resource,
		logger:   logger.With().Str("component", ComponentType).Logger(),
		tables:   make(map[string]*table.Definition),
	}
}

// Register makes sure the table for def exists. It is safe to call
// repeatedly and concurrently; a failed registration caches nothing.
func (c *TableCache) Register(ctx context.Context, def record.Definition) error {
	_, err := c.register(ctx, def)
	return err
}

func (c *TableCache) register(ctx context.Context, def record.Definition) (*table.Definition, error) {
	if c.resource == nil || !c.resource.Connected() {
		return nil, errors.New(StorageUninitializedResource, "persistence resource is not initialized", nil)
	}

	key := def.DefinitionName()
	if tbl, ok := c.lookup(key); ok {
		return tbl, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// another caller may have finished between lookup and Do
		if tbl, ok := c.lookup(key); ok {
			return tbl, nil
		}

		tbl, err := table.Synthesize(def, c.logger)
		if err != nil {
			return nil, err
		}

		if err := c.resource.CreateTable(ctx, tbl); err != nil {
			return nil, errors.New(StoragePersistenceFailed, "failed to create table", err).
				AddContext("table", tbl.Name)
		}

		c.mu.Lock()
		c.tables[key] = tbl
		c.mu.Unlock()

		c.logger.Info().
			Str("record", key).
			Str("table", tbl.Name).
			Strs("columns", tbl.ColumnNames()).
			Msg("Registered table")

		return tbl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*table.Definition), nil
}

func (c *TableCache) lookup(key string) (*table.Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tbl, ok := c.tables[key]
	return tbl, ok
}

// Insert persists rec in its own transaction, registering its table first
// if needed. Failures are logged and reported as false.
func (c *TableCache) Insert(ctx context.Context, rec record.Record) bool {
	tbl, err := c.register(ctx, rec)
	if err != nil {
		c.logger.Error().Err(err).Str("record", rec.DefinitionName()).Msg("Failed to register table for insert")
		return false
	}

	row := rowFor(tbl, rec.FieldValues())

	session, err := c.resource.Begin(ctx)
	if err != nil {
		c.logger.Error().Err(err).Str("table", tbl.Name).Msg("Failed to begin insert transaction")
		return false
	}

	if err := session.InsertRow(ctx, tbl, row); err != nil {
		c.rollback(session, tbl)
		c.logger.Error().Err(err).Str("table", tbl.Name).Msg("Failed to insert row")
		return false
	}

	if err := session.Commit(); err != nil {
		c.rollback(session, tbl)
		c.logger.Error().Err(err).Str("table", tbl.Name).Msg("Failed to commit insert")
		return false
	}

	return true
}

// Select returns every row of def's table whose columns equal all filter
// values. No match yields an empty slice.
func (c *TableCache) Select(ctx context.Context, def record.Definition, filters map[string]any) ([]*record.Row, error) {
	tbl, err := c.register(ctx, def)
	if err != nil {
		return nil, err
	}

	for column := range filters {
		if _, ok := tbl.Column(column); !ok {
			return nil, errors.Newf(StorageUnknownColumn, "table %s has no column %s", tbl.Name, column).
				AddContext("table", tbl.Name).
				AddContext("column", column)
		}
	}

	session, err := c.resource.Begin(ctx)
	if err != nil {
		return nil, errors.New(StoragePersistenceFailed, "failed to begin select transaction", err).
			AddContext("table", tbl.Name)
	}

	rows, err := session.SelectRows(ctx, tbl, filters)
	if err != nil {
		c.rollback(session, tbl)
		return nil, errors.New(StoragePersistenceFailed, "failed to select rows", err).
			AddContext("table", tbl.Name)
	}

	if err := session.Commit(); err != nil {
		return nil, errors.New(StoragePersistenceFailed, "failed to close select transaction", err).
			AddContext("table", tbl.Name)
	}

	if rows == nil {
		rows = []*record.Row{}
	}
	return rows, nil
}

// Table returns a copy of the cached definition registered under name.
func (c *TableCache) Table(name string) (*table.Definition, bool) {
	tbl, ok := c.lookup(name)
	if !ok {
		return nil, false
	}
	return tbl.Clone(), true
}

// Tables returns copies of all cached definitions ordered by table name.
func (c *TableCache) Tables() []*table.Definition {
	c.mu.RLock()
	tables := make([]*table.Definition, 0, len(c.tables))
	for _, tbl := range c.tables {
		tables = append(tables, tbl.Clone())
	}
	c.mu.RUnlock()

	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables
}

func (c *TableCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

func (c *TableCache) rollback(session Session, tbl *table.Definition) {
	if err := session.Rollback(); err != nil {
		c.logger.Warn().Err(err).Str("table", tbl.Name).Msg("Rollback failed")
	}
}

// rowFor lays values out in column order. Columns the record has no value
// for are nil, which lets the store assign a synthesized integer id.
func rowFor(tbl *table.Definition, values map[string]any) *record.Row {
	row := record.NewRow()
	for _, column := range tbl.Columns {
		row.Set(column.Name, values[column.Name])
	}
	return row
}
