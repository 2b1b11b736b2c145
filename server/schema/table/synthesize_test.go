package table

import (
	"bytes"
	"testing"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/gear6io/mtgapi/server/schema/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeDeclaredID(t *testing.T) {
	def := record.Define("Card",
		record.Typed("id", "int"),
		record.Typed("name", "string"),
		record.Typed("tags", "list<string>"),
	)

	tbl, err := Synthesize(def, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "card", tbl.Name)
	assert.Equal(t, []string{"id", "name", "tags"}, tbl.ColumnNames())
	assert.Equal(t, ColumnDefinition{Name: "id", Type: types.Integer, PrimaryKey: true}, tbl.Columns[0])
	assert.Equal(t, ColumnDefinition{Name: "name", Type: types.Text, Nullable: true}, tbl.Columns[1])
	assert.Equal(t, ColumnDefinition{Name: "tags", Type: types.Array, ElementType: types.Text, Nullable: true}, tbl.Columns[2])
}

func TestSynthesizeAppendsID(t *testing.T) {
	def := record.Define("Note", record.Typed("text", "string"))

	tbl, err := Synthesize(def, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "note", tbl.Name)
	require.Len(t, tbl.Columns, 2)
	assert.Equal(t, ColumnDefinition{Name: "text", Type: types.Text, Nullable: true}, tbl.Columns[0])
	assert.Equal(t, ColumnDefinition{Name: "id", Type: types.Integer, PrimaryKey: true}, tbl.Columns[1])
	assert.Equal(t, "id", tbl.PrimaryKey().Name)
}

func TestSynthesizeNonIntegerIDKeepsType(t *testing.T) {
	def := record.Define("Printing", record.Typed("id", "string"), record.Typed("set", "string"))

	tbl, err := Synthesize(def, zerolog.Nop())
	require.NoError(t, err)

	pk := tbl.PrimaryKey()
	assert.Equal(t, "id", pk.Name)
	assert.Equal(t, types.Text, pk.Type)
	assert.False(t, pk.Nullable)
}

func TestSynthesizeDuplicateFieldLastWins(t *testing.T) {
	def := record.Define("Dup",
		record.Typed("id", "string"),
		record.Typed("name", "string"),
		record.Typed("id", "int"),
		record.Typed("name", "list<string>"),
	)

	tbl, err := Synthesize(def, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, tbl.ColumnNames())
	assert.Equal(t, ColumnDefinition{Name: "id", Type: types.Integer, PrimaryKey: true}, tbl.Columns[0])
	assert.Equal(t, ColumnDefinition{Name: "name", Type: types.Array, ElementType: types.Text, Nullable: true}, tbl.Columns[1])

	primaryKeys := 0
	for _, col := range tbl.Columns {
		if col.PrimaryKey {
			primaryKeys++
		}
	}
	assert.Equal(t, 1, primaryKeys)
}

func TestSynthesizeOptionalID(t *testing.T) {
	def := record.Define("Thing", record.Typed("id", "optional<int>"))

	tbl, err := Synthesize(def, zerolog.Nop())
	require.NoError(t, err)

	require.Len(t, tbl.Columns, 1)
	assert.Equal(t, types.Integer, tbl.Columns[0].Type)
	assert.True(t, tbl.Columns[0].PrimaryKey)
	assert.False(t, tbl.Columns[0].Nullable)
}

func TestSynthesizeSkipsUntypedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	def := record.Define("Mixed",
		record.Typed("name", "string"),
		record.Untyped("mystery"),
		record.Typed("meta", "map<string,string>"),
	)

	tbl, err := Synthesize(def, logger)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "meta", "id"}, tbl.ColumnNames())
	meta, ok := tbl.Column("meta")
	require.True(t, ok)
	assert.Equal(t, types.Structured, meta.Type)
	_, ok = tbl.Column("mystery")
	assert.False(t, ok)

	assert.Contains(t, buf.String(), "mystery")
}

func TestSynthesizeEmptyDefinition(t *testing.T) {
	_, err := Synthesize(record.Define("Empty"), zerolog.Nop())
	require.Error(t, err)
	assert.True(t, IsEmptyDefinition(err))

	_, err = Synthesize(record.Define("Untyped", record.Untyped("a"), record.Untyped("b")), zerolog.Nop())
	require.Error(t, err)
	assert.True(t, IsEmptyDefinition(err))
}

func TestSynthesizeMissingName(t *testing.T) {
	_, err := Synthesize(record.Define(" ", record.Typed("a", "int")), zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, SchemaMissingName))
}

func TestDefinitionHelpers(t *testing.T) {
	def := &Definition{
		Name: "t",
		Columns: []ColumnDefinition{
			{Name: "id", Type: types.Integer, PrimaryKey: true},
			{Name: "tags", Type: types.Array, ElementType: types.Integer, Nullable: true},
		},
	}

	assert.Equal(t, "id integer primary key not null", def.Columns[0].String())
	assert.Equal(t, "tags array<integer>", def.Columns[1].String())

	clone := def.Clone()
	clone.Columns[0].Name = "changed"
	assert.Equal(t, "id", def.Columns[0].Name)

	assert.Nil(t, (*Definition)(nil).Clone())
	assert.Equal(t, ColumnDefinition{}, (&Definition{}).PrimaryKey())
}
