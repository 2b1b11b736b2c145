// Package sqlstore is the SQLite-backed persistence resource for the table
// cache, built on bun.
package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/config"
	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/gear6io/mtgapi/server/schema/table"
	"github.com/gear6io/mtgapi/server/storage"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// ComponentType defines the SQL store component type identifier
const ComponentType = "sqlstore"

// Store implements storage.Resource over a bun-wrapped SQLite database.
type Store struct {
	cfg    config.DatabaseConfig
	logger zerolog.Logger

	mu sync.RWMutex
	db *bun.DB
}

var _ storage.Resource = (*Store)(nil)

// Open prepares a store for cfg. Nothing is opened until Connect.
func Open(cfg config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(SQLStoreOpenFailed, "invalid database configuration", err)
	}

	return &Store{
		cfg:    cfg,
		logger: logger.With().Str("component", ComponentType).Logger(),
	}, nil
}

// NewFromDB wraps an already opened database handle. The store is connected
// immediately.
func NewFromDB(sqldb *sql.DB, logger zerolog.Logger) *Store {
	s := &Store{logger: logger.With().Str("component", ComponentType).Logger()}
	s.db = s.wrap(sqldb)
	return s
}

func (s *Store) wrap(sqldb *sql.DB) *bun.DB {
	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.AddQueryHook(&queryLogger{logger: s.logger})
	return db
}

// Connect opens the database and verifies it answers. Calling Connect on a
// connected store is a no-op.
func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if err := ensureDirectory(s.cfg.DSN); err != nil {
		return errors.New(SQLStoreOpenFailed, "failed to create database directory", err).AddContext("dsn", s.cfg.DSN)
	}

	driver := s.cfg.Driver
	if driver == "" {
		driver = driverName
	}

	sqldb, err := sql.Open(driver, s.cfg.DSN)
	if err != nil {
		return errors.New(SQLStoreOpenFailed, "failed to open SQLite database", err).AddContext("dsn", s.cfg.DSN)
	}

	// every :memory: connection is its own database
	maxConns := s.cfg.MaxOpenConns
	if strings.Contains(s.cfg.DSN, ":memory:") || maxConns == 0 {
		maxConns = 1
	}
	sqldb.SetMaxOpenConns(maxConns)

	db := s.wrap(sqldb)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.New(SQLStoreOpenFailed, "failed to reach SQLite database", err).AddContext("dsn", s.cfg.DSN)
	}

	s.db = db
	s.logger.Info().
		Str("driver", driver).
		Str("driver_type", driverType).
		Str("driver_package", driverPackage).
		Str("dsn", s.cfg.DSN).
		Msg("Connected to database")

	return nil
}

func ensureDirectory(dsn string) error {
	if dsn == "" || strings.Contains(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	path := dsn
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return os.MkdirAll(filepath.Dir(path), 0755)
}

func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db != nil
}

func (s *Store) Ping(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// DB exposes the underlying bun handle, nil before Connect.
func (s *Store) DB() *bun.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return errors.New(SQLStoreCloseFailed, "failed to close database", err)
	}
	return nil
}

// GetType returns the component type identifier
func (s *Store) GetType() string {
	return ComponentType
}

// Shutdown closes the database
func (s *Store) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down SQL store")
	return s.Close()
}

func (s *Store) handle() (*bun.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New(storage.StorageUninitializedResource, "database is not connected", nil)
	}
	return s.db, nil
}

// CreateTable issues CREATE TABLE IF NOT EXISTS for def.
func (s *Store) CreateTable(ctx context.Context, def *table.Definition) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	query, args := createTableQuery(def)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return errors.New(SQLStoreCreateTableFailed, "failed to create table", err).AddContext("table", def.Name)
	}

	s.logger.Debug().Str("table", def.Name).Msg("Ensured table exists")
	return nil
}

// CreateTableSQL renders the DDL statement for def.
func (s *Store) CreateTableSQL(def *table.Definition) (string, error) {
	db, err := s.handle()
	if err != nil {
		return "", err
	}
	query, args := createTableQuery(def)
	return db.Formatter().FormatQuery(query, args...), nil
}

func createTableQuery(def *table.Definition) (string, []interface{}) {
	var b strings.Builder
	args := make([]interface{}, 0, len(def.Columns)+1)

	b.WriteString("CREATE TABLE IF NOT EXISTS ? (")
	args = append(args, bun.Ident(def.Name))

	for i, col := range def.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("? ")
		b.WriteString(columnType(col.Type))
		args = append(args, bun.Ident(col.Name))

		if col.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
		if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString(")")

	return b.String(), args
}

// Begin opens a transaction.
func (s *Store) Begin(ctx context.Context) (storage.Session, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.New(SQLStoreTransactionFailed, "failed to begin transaction", err)
	}
	return &session{tx: tx}, nil
}

type session struct {
	tx bun.Tx
}

func (s *session) InsertRow(ctx context.Context, def *table.Definition, row *record.Row) error {
	values := make(map[string]interface{}, row.Len())
	for _, col := range def.Columns {
		v, ok := row.Get(col.Name)
		if !ok {
			continue
		}
		// leave the key out so SQLite assigns the rowid
		if v == nil && col.PrimaryKey {
			continue
		}

		encoded, err := encodeValue(col, v)
		if err != nil {
			return err
		}
		values[col.Name] = encoded
	}

	var err error
	if len(values) == 0 {
		_, err = s.tx.ExecContext(ctx, "INSERT INTO ? DEFAULT VALUES", bun.Ident(def.Name))
	} else {
		_, err = s.tx.NewInsert().
			Model(&values).
			TableExpr("?", bun.Ident(def.Name)).
			Exec(ctx)
	}
	if err != nil {
		return errors.New(SQLStoreInsertFailed, "failed to insert row", err).AddContext("table", def.Name)
	}
	return nil
}

func (s *session) SelectRows(ctx context.Context, def *table.Definition, filters map[string]any) ([]*record.Row, error) {
	q := s.tx.NewSelect().TableExpr("?", bun.Ident(def.Name))
	for _, col := range def.Columns {
		q = q.ColumnExpr("?", bun.Ident(col.Name))
	}

	columns := make([]string, 0, len(filters))
	for name := range filters {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	for _, name := range columns {
		col, ok := def.Column(name)
		if !ok {
			return nil, errors.Newf(storage.StorageUnknownColumn, "table %s has no column %s", def.Name, name)
		}

		if filters[name] == nil {
			q = q.Where("? IS NULL", bun.Ident(name))
			continue
		}
		encoded, err := encodeValue(col, filters[name])
		if err != nil {
			return nil, err
		}
		q = q.Where("? = ?", bun.Ident(name), encoded)
	}

	if pk := def.PrimaryKey(); pk.Name != "" {
		q = q.OrderExpr("? ASC", bun.Ident(pk.Name))
	}

	rs, err := q.Rows(ctx)
	if err != nil {
		return nil, errors.New(SQLStoreSelectFailed, "failed to select rows", err).AddContext("table", def.Name)
	}
	defer rs.Close()

	names, err := rs.Columns()
	if err != nil {
		return nil, errors.New(SQLStoreSelectFailed, "failed to read result columns", err).AddContext("table", def.Name)
	}

	// Scanning into *any makes database/sql clone []byte values; the driver
	// may reuse its buffer once Next is called again.
	rows := make([]*record.Row, 0)
	for rs.Next() {
		raw := make([]any, len(names))
		dest := make([]any, len(names))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rs.Scan(dest...); err != nil {
			return nil, errors.New(SQLStoreSelectFailed, "failed to scan row", err).AddContext("table", def.Name)
		}

		byName := make(map[string]any, len(names))
		for i, name := range names {
			byName[name] = raw[i]
		}

		row := record.NewRow()
		for _, col := range def.Columns {
			v, err := decodeValue(col, byName[col.Name])
			if err != nil {
				return nil, err
			}
			row.Set(col.Name, v)
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, errors.New(SQLStoreSelectFailed, "failed to iterate rows", err).AddContext("table", def.Name)
	}
	return rows, nil
}

func (s *session) Commit() error {
	if err := s.tx.Commit(); err != nil {
		return errors.New(SQLStoreTransactionFailed, "failed to commit transaction", err)
	}
	return nil
}

// Rollback is a no-op on a transaction that already finished.
func (s *session) Rollback() error {
	if err := s.tx.Rollback(); err != nil && !stderrors.Is(err, sql.ErrTxDone) {
		return errors.New(SQLStoreTransactionFailed, "failed to roll back transaction", err)
	}
	return nil
}
