//go:build !purego

// Default SQLite driver: mattn/go-sqlite3 (requires CGO_ENABLED=1).
package sqlstore

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverName    = "sqlite3"
	driverType    = "cgo"
	driverPackage = "github.com/mattn/go-sqlite3"
)
