package types

import "github.com/gear6io/mtgapi/pkg/errors"

var (
	TypesInvalidExpression = errors.MustNewCode("types.invalid_expression")
	TypesUnbalanced        = errors.MustNewCode("types.unbalanced_brackets")
)
