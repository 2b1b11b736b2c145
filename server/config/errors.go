package config

import "github.com/gear6io/mtgapi/pkg/errors"

// Config-specific error codes
var (
	ErrConfigFileReadFailed     = errors.MustNewCode("config.file_read_failed")
	ErrConfigFileParseFailed    = errors.MustNewCode("config.file_parse_failed")
	ErrConfigValidationFailed   = errors.MustNewCode("config.validation_failed")
	ErrConfigFileMarshalFailed  = errors.MustNewCode("config.file_marshal_failed")
	ErrConfigFileWriteFailed    = errors.MustNewCode("config.file_write_failed")
	ErrConfigEnvInvalid         = errors.MustNewCode("config.env_invalid")
	ErrAPIValidationFailed      = errors.MustNewCode("config.api_validation_failed")
	ErrDatabaseValidationFailed = errors.MustNewCode("config.database_validation_failed")
	ErrMTGIOValidationFailed    = errors.MustNewCode("config.mtgio_validation_failed")
	ErrProxyValidationFailed    = errors.MustNewCode("config.proxy_validation_failed")
	ErrInvalidPort              = errors.MustNewCode("config.invalid_port")
	ErrRootPathInvalid          = errors.MustNewCode("config.root_path_invalid")
	ErrDatabaseDSNRequired      = errors.MustNewCode("config.database_dsn_required")
	ErrDatabasePoolInvalid      = errors.MustNewCode("config.database_pool_invalid")
	ErrMTGIOBaseURLRequired     = errors.MustNewCode("config.mtgio_base_url_required")
	ErrMTGIOBaseURLInvalid      = errors.MustNewCode("config.mtgio_base_url_invalid")
	ErrMTGIORetriesInvalid      = errors.MustNewCode("config.mtgio_retries_invalid")
	ErrMTGIOWaitInvalid         = errors.MustNewCode("config.mtgio_wait_invalid")
	ErrMTGIOTimeoutInvalid      = errors.MustNewCode("config.mtgio_timeout_invalid")
	ErrProxyURLInvalid          = errors.MustNewCode("config.proxy_url_invalid")

	// Logging-specific error codes
	ErrLogDirectoryCreationFailed = errors.MustNewCode("config.log_directory_creation_failed")
	ErrLogFileOpenFailed          = errors.MustNewCode("config.log_file_open_failed")
	ErrLogRotationFailed          = errors.MustNewCode("config.log_rotation_failed")
	ErrLogBackupReadFailed        = errors.MustNewCode("config.log_backup_read_failed")
	ErrLogBackupRemoveFailed      = errors.MustNewCode("config.log_backup_remove_failed")
	ErrLogFileWriterSetupFailed   = errors.MustNewCode("config.log_file_writer_setup_failed")
)
