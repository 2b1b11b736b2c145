package sqlstore

import "github.com/gear6io/mtgapi/pkg/errors"

// Package-specific error codes for the SQL resource
var (
	SQLStoreOpenFailed        = errors.MustNewCode("sqlstore.open_failed")
	SQLStoreCreateTableFailed = errors.MustNewCode("sqlstore.create_table_failed")
	SQLStoreTransactionFailed = errors.MustNewCode("sqlstore.transaction_failed")
	SQLStoreInsertFailed      = errors.MustNewCode("sqlstore.insert_failed")
	SQLStoreSelectFailed      = errors.MustNewCode("sqlstore.select_failed")
	SQLStoreEncodeFailed      = errors.MustNewCode("sqlstore.encode_failed")
	SQLStoreDecodeFailed      = errors.MustNewCode("sqlstore.decode_failed")
	SQLStoreCloseFailed       = errors.MustNewCode("sqlstore.close_failed")
)
