package table

import (
	"strings"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/gear6io/mtgapi/server/schema/types"
	"github.com/rs/zerolog"
)

// Synthesize builds the table definition for a record type.
//
// Fields without type information are skipped. A field name declared twice
// keeps the first position and the last declaration. If no field is called "id",
// an integer id column is appended; whichever id column the table ends up
// with becomes the non-nullable primary key.
func Synthesize(def record.Definition, logger zerolog.Logger) (*Definition, error) {
	name := def.DefinitionName()
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(SchemaMissingName, "record definition has no name", nil)
	}

	fields := def.DefinitionFields()
	if len(fields) == 0 {
		return nil, errors.Newf(SchemaEmptyDefinition, "record %s declares no fields", name).
			AddContext("record", name)
	}

	table := &Definition{
		Name:    strings.ToLower(name),
		Columns: make([]ColumnDefinition, 0, len(fields)+1),
	}

	hasID := false
	position := make(map[string]int, len(fields))
	for _, field := range fields {
		if field.Type == nil {
			logger.Warn().
				Str("record", name).
				Str("field", field.Name).
				Msg("Skipping field without type information")
			continue
		}

		tag, elem := types.Resolve(field.Type)
		column := ColumnDefinition{
			Name:        field.Name,
			Type:        tag,
			ElementType: elem,
			Nullable:    true,
		}
		if field.Name == IDColumn {
			column.PrimaryKey = true
			column.Nullable = false
			hasID = true
		}
		if i, seen := position[field.Name]; seen {
			logger.Warn().
				Str("record", name).
				Str("field", field.Name).
				Msg("Duplicate field replaces earlier declaration")
			table.Columns[i] = column
			continue
		}
		position[field.Name] = len(table.Columns)
		table.Columns = append(table.Columns, column)
	}

	if len(table.Columns) == 0 {
		return nil, errors.Newf(SchemaEmptyDefinition, "record %s has no typed fields", name).
			AddContext("record", name)
	}

	if !hasID {
		table.Columns = append(table.Columns, ColumnDefinition{
			Name:       IDColumn,
			Type:       types.Integer,
			PrimaryKey: true,
		})
	}

	logger.Debug().
		Str("table", table.Name).
		Int("columns", len(table.Columns)).
		Msg("Synthesized table definition")

	return table, nil
}
