//go:build purego

// Pure Go SQLite driver, selected with: go build -tags purego
package sqlstore

import (
	_ "modernc.org/sqlite"
)

const (
	driverName    = "sqlite"
	driverType    = "purego"
	driverPackage = "modernc.org/sqlite"
)
