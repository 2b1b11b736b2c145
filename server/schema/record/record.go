// Package record describes the shape of the values the cache stores.
//
// A record type declares its fields once through Definition; the table
// synthesizer turns that declaration into a table and rows come back as Row
// values that can be decoded into the original type.
package record

import "github.com/gear6io/mtgapi/server/schema/types"

// Field is one declared field. A nil Type means the declaration carries no
// type information and the field cannot become a column.
type Field struct {
	Name string
	Type types.Expr
}

// Definition is implemented by every storable record type.
type Definition interface {
	DefinitionName() string
	DefinitionFields() []Field
}

// Record is a Definition that can also hand over its current values, keyed by
// field name.
type Record interface {
	Definition
	FieldValues() map[string]any
}

// Typed builds a Field from the textual type syntax. It panics on a malformed
// type, so it belongs in package-level declarations.
func Typed(name, expr string) Field {
	return Field{Name: name, Type: types.MustParse(expr)}
}

// Untyped declares a field with no type information.
func Untyped(name string) Field {
	return Field{Name: name}
}

// Static is a Definition assembled from a fixed field list.
type Static struct {
	name   string
	fields []Field
}

func Define(name string, fields ...Field) Static {
	copied := make([]Field, len(fields))
	copy(copied, fields)
	return Static{name: name, fields: copied}
}

func (s Static) DefinitionName() string { return s.name }

func (s Static) DefinitionFields() []Field {
	fields := make([]Field, len(s.fields))
	copy(fields, s.fields)
	return fields
}
