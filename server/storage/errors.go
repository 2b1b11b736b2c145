package storage

import "github.com/gear6io/mtgapi/pkg/errors"

// Storage-specific error codes
var (
	StorageUninitializedResource = errors.MustNewCode("storage.uninitialized_resource")
	StoragePersistenceFailed     = errors.MustNewCode("storage.persistence_failed")
	StorageUnknownColumn         = errors.MustNewCode("storage.unknown_column")
)

// IsUninitialized reports whether err came from a missing or disconnected
// persistence resource.
func IsUninitialized(err error) bool {
	return errors.HasCode(err, StorageUninitializedResource)
}
