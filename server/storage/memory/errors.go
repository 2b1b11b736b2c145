package memory

import "github.com/gear6io/mtgapi/pkg/errors"

// Error codes for memory storage package
var (
	ErrTableNotFound     = errors.MustNewCode("memory.table_not_found")
	ErrDuplicateKey      = errors.MustNewCode("memory.duplicate_key")
	ErrInvalidValue      = errors.MustNewCode("memory.invalid_value")
	ErrUnknownColumn     = errors.MustNewCode("memory.unknown_column")
	ErrTransactionClosed = errors.MustNewCode("memory.transaction_closed")
)
