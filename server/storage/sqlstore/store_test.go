package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/config"
	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/gear6io/mtgapi/server/schema/table"
	"github.com/gear6io/mtgapi/server/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	def    record.Static
	values map[string]any
}

func (r testRecord) DefinitionName() string          { return r.def.DefinitionName() }
func (r testRecord) DefinitionFields() []record.Field { return r.def.DefinitionFields() }
func (r testRecord) FieldValues() map[string]any      { return r.values }

var (
	itemDef = record.Define("Item",
		record.Typed("id", "int"),
		record.Typed("tags", "list<string>"),
		record.Typed("active", "bool"),
	)
	noteDef = record.Define("Note", record.Typed("text", "string"))
	eventDef = record.Define("Event",
		record.Typed("id", "string"),
		record.Typed("score", "float"),
		record.Typed("at", "timestamp"),
		record.Typed("payload", "bytes"),
		record.Typed("counts", "list<int>"),
		record.Typed("meta", "map<string,any>"),
		record.Typed("nested", "struct<name:string,level:int>"),
	)
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "nested", "cards.db")}
	store, err := Open(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Connect(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open(config.DatabaseConfig{}, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, SQLStoreOpenFailed))
	assert.True(t, errors.HasCode(err, config.ErrDatabaseDSNRequired))
}

func TestConnectLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := Open(config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "db.sqlite")}, zerolog.Nop())
	require.NoError(t, err)

	assert.False(t, store.Connected())
	assert.Nil(t, store.DB())
	_, err = store.Begin(ctx)
	assert.True(t, storage.IsUninitialized(err))
	assert.True(t, storage.IsUninitialized(store.Ping(ctx)))

	require.NoError(t, store.Connect(ctx))
	require.NoError(t, store.Connect(ctx))
	assert.True(t, store.Connected())
	assert.NoError(t, store.Ping(ctx))
	assert.Equal(t, ComponentType, store.GetType())

	require.NoError(t, store.Shutdown(ctx))
	assert.False(t, store.Connected())
	assert.NoError(t, store.Close())
}

func TestRoundTripThroughTableCache(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewTableCache(newTestStore(t), zerolog.Nop())

	ok := cache.Insert(ctx, testRecord{def: itemDef, values: map[string]any{
		"id":     42,
		"tags":   []string{"a", "b"},
		"active": true,
	}})
	require.True(t, ok)

	rows, err := cache.Select(ctx, itemDef, map[string]any{"id": 42})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"id", "tags", "active"}, rows[0].Columns())
	assert.Equal(t, []any{int64(42), []any{"a", "b"}, true}, rows[0].Values())

	rows, err = cache.Select(ctx, itemDef, map[string]any{"id": 99})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSelectFilters(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewTableCache(newTestStore(t), zerolog.Nop())

	for i, active := range []bool{true, false, true} {
		require.True(t, cache.Insert(ctx, testRecord{def: itemDef, values: map[string]any{
			"id":     i + 1,
			"active": active,
		}}))
	}

	rows, err := cache.Select(ctx, itemDef, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = cache.Select(ctx, itemDef, map[string]any{"active": true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	first, _ := rows[0].Get("id")
	assert.Equal(t, int64(1), first)

	rows, err = cache.Select(ctx, itemDef, map[string]any{"active": true, "id": 2})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = cache.Select(ctx, itemDef, map[string]any{"tags": nil})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = cache.Select(ctx, itemDef, map[string]any{"colour": "red"})
	assert.True(t, errors.HasCode(err, storage.StorageUnknownColumn))
}

func TestSynthesizedIDIsAssigned(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewTableCache(newTestStore(t), zerolog.Nop())

	require.True(t, cache.Insert(ctx, testRecord{def: noteDef, values: map[string]any{"text": "first"}}))
	require.True(t, cache.Insert(ctx, testRecord{def: noteDef, values: map[string]any{"text": "second"}}))

	rows, err := cache.Select(ctx, noteDef, map[string]any{"text": "second"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"text", "id"}, rows[0].Columns())
	id, _ := rows[0].Get("id")
	assert.Equal(t, int64(2), id)
}

func TestDuplicatePrimaryKeyFails(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewTableCache(newTestStore(t), zerolog.Nop())

	rec := testRecord{def: itemDef, values: map[string]any{"id": 7}}
	require.True(t, cache.Insert(ctx, rec))
	assert.False(t, cache.Insert(ctx, rec))

	rows, err := cache.Select(ctx, itemDef, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestTextPrimaryKeyRequiresValue(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewTableCache(newTestStore(t), zerolog.Nop())

	assert.False(t, cache.Insert(ctx, testRecord{def: eventDef, values: map[string]any{"score": 1.5}}))
}

func TestValueCodecRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewTableCache(newTestStore(t), zerolog.Nop())

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.True(t, cache.Insert(ctx, testRecord{def: eventDef, values: map[string]any{
		"id":      "evt-1",
		"score":   2.5,
		"at":      at,
		"payload": []byte{0x01, 0x02},
		"counts":  []int{1, 2, 3},
		"meta":    map[string]any{"source": "test", "weight": 0.5},
		"nested":  map[string]any{"name": "x", "level": 3},
	}}))

	rows, err := cache.Select(ctx, eventDef, map[string]any{"id": "evt-1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]

	score, _ := row.Get("score")
	assert.Equal(t, 2.5, score)

	got, _ := row.Get("at")
	require.IsType(t, time.Time{}, got)
	assert.True(t, at.Equal(got.(time.Time)))

	payload, _ := row.Get("payload")
	assert.Equal(t, []byte{0x01, 0x02}, payload)

	counts, _ := row.Get("counts")
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, counts)

	meta, _ := row.Get("meta")
	assert.Equal(t, map[string]any{"source": "test", "weight": 0.5}, meta)

	nested, _ := row.Get("nested")
	assert.Equal(t, map[string]any{"name": "x", "level": int64(3)}, nested)

	var decoded struct {
		ID     string  `json:"id"`
		Score  float64 `json:"score"`
		Counts []int   `json:"counts"`
		Nested struct {
			Name  string `json:"name"`
			Level int    `json:"level"`
		} `json:"nested"`
	}
	require.NoError(t, row.Decode(&decoded))
	assert.Equal(t, "evt-1", decoded.ID)
	assert.Equal(t, []int{1, 2, 3}, decoded.Counts)
	assert.Equal(t, 3, decoded.Nested.Level)
}

func TestCreateTableSQL(t *testing.T) {
	store := newTestStore(t)

	tbl, err := table.Synthesize(itemDef, zerolog.Nop())
	require.NoError(t, err)

	ddl, err := store.CreateTableSQL(tbl)
	require.NoError(t, err)
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "item" ("id" INTEGER PRIMARY KEY NOT NULL, "tags" JSON, "active" BOOLEAN)`,
		ddl)

	// idempotent against an existing table
	require.NoError(t, store.CreateTable(context.Background(), tbl))
	require.NoError(t, store.CreateTable(context.Background(), tbl))
}
