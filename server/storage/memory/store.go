// Package memory is an in-process storage.Resource. Tables live in maps and
// vanish on shutdown; it backs the table cache when database.driver is
// "memory" and in tests that do not need SQLite.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/gear6io/mtgapi/server/schema/table"
	"github.com/gear6io/mtgapi/server/schema/types"
	"github.com/gear6io/mtgapi/server/storage"
	"github.com/rs/zerolog"
)

const (
	ComponentType = "memory"
	DriverName    = "memory"
)

// tableData holds the committed rows of one table
type tableData struct {
	def   *table.Definition
	rows  []*record.Row
	keys  map[any]struct{}
	maxID int64
}

// Store implements storage.Resource in memory
type Store struct {
	logger zerolog.Logger

	mu        sync.RWMutex
	connected bool
	tables    map[string]*tableData
}

var _ storage.Resource = (*Store)(nil)

// New creates a disconnected store
func New(logger zerolog.Logger) *Store {
	return &Store{
		logger: logger.With().Str("component", ComponentType).Logger(),
		tables: make(map[string]*tableData),
	}
}

// Connect marks the store ready
func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Store) GetType() string {
	return ComponentType
}

// Shutdown drops every table
func (s *Store) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info().Int("tables", len(s.tables)).Msg("Shutting down memory store")
	s.connected = false
	s.tables = make(map[string]*tableData)
	return nil
}

// CreateTable creates def's table unless it already exists
func (s *Store) CreateTable(ctx context.Context, def *table.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return errors.New(storage.StorageUninitializedResource, "memory store is not connected", nil)
	}
	if _, exists := s.tables[def.Name]; exists {
		return nil
	}

	s.tables[def.Name] = &tableData{
		def:  def.Clone(),
		rows: make([]*record.Row, 0),
		keys: make(map[any]struct{}),
	}
	s.logger.Debug().Str("table", def.Name).Msg("Created table")
	return nil
}

// Begin starts a session. Inserts stay private to the session until Commit.
func (s *Store) Begin(ctx context.Context) (storage.Session, error) {
	if !s.Connected() {
		return nil, errors.New(storage.StorageUninitializedResource, "memory store is not connected", nil)
	}
	return &session{store: s, pending: make(map[string][]*record.Row)}, nil
}

// Rows returns the number of committed rows in a table
func (s *Store) Rows(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tables[name]; ok {
		return len(t.rows)
	}
	return 0
}

type session struct {
	store   *Store
	pending map[string][]*record.Row
	done    bool
}

func (s *session) InsertRow(ctx context.Context, def *table.Definition, row *record.Row) error {
	if s.done {
		return errors.New(ErrTransactionClosed, "session already finished", nil)
	}
	if _, err := s.store.table(def.Name); err != nil {
		return err
	}

	stored, err := normalizeRow(def, row)
	if err != nil {
		return err
	}
	s.pending[def.Name] = append(s.pending[def.Name], stored)
	return nil
}

func (s *session) SelectRows(ctx context.Context, def *table.Definition, filters map[string]any) ([]*record.Row, error) {
	if s.done {
		return nil, errors.New(ErrTransactionClosed, "session already finished", nil)
	}

	want := make(map[string]any, len(filters))
	for name, value := range filters {
		col, ok := def.Column(name)
		if !ok {
			return nil, errors.Newf(ErrUnknownColumn, "table %s has no column %s", def.Name, name)
		}
		v, err := normalize(col, value)
		if err != nil {
			return nil, err
		}
		want[name] = v
	}

	s.store.mu.RLock()
	t, ok := s.store.tables[def.Name]
	if !ok {
		s.store.mu.RUnlock()
		return nil, errors.Newf(ErrTableNotFound, "table %s does not exist", def.Name)
	}
	candidates := append(append([]*record.Row{}, t.rows...), s.pending[def.Name]...)
	s.store.mu.RUnlock()

	pk := def.PrimaryKey().Name
	result := make([]*record.Row, 0)
	for _, row := range candidates {
		if matches(row, want) {
			result = append(result, project(def, row))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return less(result[i].Value(pk), result[j].Value(pk))
	})
	return result, nil
}

// Commit applies pending inserts atomically. A duplicate key rejects the
// whole session.
func (s *session) Commit() error {
	if s.done {
		return errors.New(ErrTransactionClosed, "session already finished", nil)
	}
	s.done = true

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	type staged struct {
		t   *tableData
		row *record.Row
		key any
	}
	var plan []staged
	nextIDs := make(map[string]int64)
	seen := make(map[string]map[any]struct{})

	for name, rows := range s.pending {
		t, ok := s.store.tables[name]
		if !ok {
			return errors.Newf(ErrTableNotFound, "table %s does not exist", name)
		}
		pk := t.def.PrimaryKey()
		nextIDs[name] = t.maxID
		seen[name] = make(map[any]struct{})

		for _, row := range rows {
			key := row.Value(pk.Name)
			if key == nil {
				if pk.Type != types.Integer {
					return errors.Newf(ErrInvalidValue, "table %s: primary key %s is required", name, pk.Name)
				}
				nextIDs[name]++
				key = nextIDs[name]
				row.Set(pk.Name, key)
			} else if id, ok := key.(int64); ok && id > nextIDs[name] {
				nextIDs[name] = id
			}

			key = keyOf(key)
			if _, dup := t.keys[key]; dup {
				return errors.Newf(ErrDuplicateKey, "table %s: duplicate key %v", name, key)
			}
			if _, dup := seen[name][key]; dup {
				return errors.Newf(ErrDuplicateKey, "table %s: duplicate key %v", name, key)
			}
			seen[name][key] = struct{}{}
			plan = append(plan, staged{t: t, row: row, key: key})
		}
	}

	for _, p := range plan {
		p.t.rows = append(p.t.rows, p.row)
		p.t.keys[p.key] = struct{}{}
	}
	for name, id := range nextIDs {
		s.store.tables[name].maxID = id
	}
	s.pending = nil
	return nil
}

// Rollback discards pending inserts. It is a no-op once the session finished.
func (s *session) Rollback() error {
	s.done = true
	s.pending = nil
	return nil
}

func (s *Store) table(name string) (*tableData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, errors.Newf(ErrTableNotFound, "table %s does not exist", name)
	}
	return t, nil
}

func normalizeRow(def *table.Definition, row *record.Row) (*record.Row, error) {
	for _, name := range row.Columns() {
		if _, ok := def.Column(name); !ok {
			return nil, errors.Newf(ErrUnknownColumn, "table %s has no column %s", def.Name, name)
		}
	}

	out := record.NewRow()
	for _, col := range def.Columns {
		v, err := normalize(col, row.Value(col.Name))
		if err != nil {
			return nil, err
		}
		if v == nil && !col.Nullable && !col.PrimaryKey {
			return nil, errors.Newf(ErrInvalidValue, "column %s.%s is not nullable", def.Name, col.Name)
		}
		out.Set(col.Name, v)
	}
	return out, nil
}

// project copies a stored row so callers cannot mutate the table
func project(def *table.Definition, row *record.Row) *record.Row {
	out := record.NewRow()
	for _, col := range def.Columns {
		v := row.Value(col.Name)
		if b, ok := v.([]byte); ok {
			v = append([]byte(nil), b...)
		} else if col.Type == types.Array || col.Type == types.Structured {
			v = deepCopy(v)
		}
		out.Set(col.Name, v)
	}
	return out
}

func matches(row *record.Row, want map[string]any) bool {
	for name, v := range want {
		if !reflect.DeepEqual(row.Value(name), v) {
			return false
		}
	}
	return true
}

// normalize converts v to the representation stored for col, the same shapes
// the SQL store hands back: int64, float64, string, bool, time.Time, []byte
// and generic JSON values for arrays and structured columns.
func normalize(col table.ColumnDefinition, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
		v = rv.Interface()
	}

	invalid := func() error {
		return errors.Newf(ErrInvalidValue, "column %s expects %s, got %T", col.Name, types.Format(col.Type, col.ElementType), v)
	}

	switch col.Type {
	case types.Integer:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int64(rv.Uint()), nil
		}
	case types.Float:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		}
	case types.Text:
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	case types.Boolean:
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	case types.Timestamp:
		if t, ok := v.(time.Time); ok {
			return t.UTC(), nil
		}
	case types.Binary:
		if b, ok := v.([]byte); ok {
			return append([]byte(nil), b...), nil
		}
	default:
		return toGeneric(v)
	}
	return nil, invalid()
}

// toGeneric round-trips v through JSON so stored values share no memory with
// the caller and numbers come back as int64 or float64.
func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.New(ErrInvalidValue, "value is not JSON encodable", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, errors.New(ErrInvalidValue, "value is not JSON decodable", err)
	}
	return numbers(out), nil
}

func numbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i := range x {
			x[i] = numbers(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = numbers(x[k])
		}
		return x
	default:
		return v
	}
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepCopy(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k := range x {
			out[k] = deepCopy(x[k])
		}
		return out
	default:
		return v
	}
}

// keyOf makes a primary key usable as a map key
func keyOf(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	if v != nil && !reflect.TypeOf(v).Comparable() {
		return fmt.Sprint(v)
	}
	return v
}

// less orders primary keys; nil sorts last
func less(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return false
	case int64:
		if y, ok := b.(int64); ok {
			return x < y
		}
	case float64:
		if y, ok := b.(float64); ok {
			return x < y
		}
	case string:
		if y, ok := b.(string); ok {
			return x < y
		}
	}
	if b == nil {
		return true
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
