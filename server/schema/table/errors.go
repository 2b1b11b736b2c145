package table

import "github.com/gear6io/mtgapi/pkg/errors"

var (
	// SchemaEmptyDefinition is returned when a record declares no usable fields.
	SchemaEmptyDefinition = errors.MustNewCode("schema.empty_definition")
	SchemaMissingName     = errors.MustNewCode("schema.missing_name")
)

// IsEmptyDefinition reports whether err is an empty-definition failure.
func IsEmptyDefinition(err error) bool {
	return errors.HasCode(err, SchemaEmptyDefinition)
}
