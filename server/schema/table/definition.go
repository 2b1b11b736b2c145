package table

import (
	"fmt"
	"strings"

	"github.com/gear6io/mtgapi/server/schema/types"
)

// IDColumn is the primary key column every table ends up with.
const IDColumn = "id"

// ColumnDefinition describes one column of a synthesized table.
type ColumnDefinition struct {
	Name        string
	Type        types.Tag
	ElementType types.Tag // only set when Type is types.Array
	PrimaryKey  bool
	Nullable    bool
}

func (c ColumnDefinition) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", c.Name, types.Format(c.Type, c.ElementType))
	if c.PrimaryKey {
		b.WriteString(" primary key")
	}
	if !c.Nullable {
		b.WriteString(" not null")
	}
	return b.String()
}

// Definition is the data-only description of a synthesized table.
type Definition struct {
	Name    string
	Columns []ColumnDefinition
}

// Column looks a column up by name.
func (d *Definition) Column(name string) (ColumnDefinition, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDefinition{}, false
}

// PrimaryKey returns the primary key column.
func (d *Definition) PrimaryKey() ColumnDefinition {
	for _, c := range d.Columns {
		if c.PrimaryKey {
			return c
		}
	}
	return ColumnDefinition{}
}

func (d *Definition) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Clone returns a deep copy so cached definitions cannot be mutated by callers.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	columns := make([]ColumnDefinition, len(d.Columns))
	copy(columns, d.Columns)
	return &Definition{Name: d.Name, Columns: columns}
}
