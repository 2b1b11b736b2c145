package storage

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/gear6io/mtgapi/server/schema/table"
)

// memoryResource is an in-memory Resource for exercising the table cache.
type memoryResource struct {
	connected   bool
	createDelay time.Duration
	createErr   error
	insertErr   error
	selectErr   error
	commitErr   error
	beginErr    error

	creates   atomic.Int32
	rollbacks atomic.Int32

	mu     sync.Mutex
	tables map[string][]*record.Row
	nextID int64
}

func newMemoryResource() *memoryResource {
	return &memoryResource{connected: true, tables: make(map[string][]*record.Row)}
}

func (m *memoryResource) Connected() bool { return m.connected }

func (m *memoryResource) CreateTable(ctx context.Context, def *table.Definition) error {
	m.creates.Add(1)
	if m.createDelay > 0 {
		time.Sleep(m.createDelay)
	}
	if m.createErr != nil {
		return m.createErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[def.Name]; !ok {
		m.tables[def.Name] = nil
	}
	return nil
}

func (m *memoryResource) Begin(ctx context.Context) (Session, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return &memorySession{resource: m}, nil
}

func (m *memoryResource) rowCount(tableName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[tableName])
}

type pendingRow struct {
	table string
	row   *record.Row
}

type memorySession struct {
	resource *memoryResource
	pending  []pendingRow
}

func (s *memorySession) InsertRow(ctx context.Context, def *table.Definition, row *record.Row) error {
	if s.resource.insertErr != nil {
		return s.resource.insertErr
	}
	s.pending = append(s.pending, pendingRow{table: def.Name, row: row})
	return nil
}

func (s *memorySession) SelectRows(ctx context.Context, def *table.Definition, filters map[string]any) ([]*record.Row, error) {
	if s.resource.selectErr != nil {
		return nil, s.resource.selectErr
	}

	s.resource.mu.Lock()
	defer s.resource.mu.Unlock()

	rows, ok := s.resource.tables[def.Name]
	if !ok {
		return nil, fmt.Errorf("no such table: %s", def.Name)
	}

	var matched []*record.Row
	for _, row := range rows {
		if matches(row, filters) {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func matches(row *record.Row, filters map[string]any) bool {
	for column, want := range filters {
		got, _ := row.Get(column)
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func (s *memorySession) Commit() error {
	if s.resource.commitErr != nil {
		return s.resource.commitErr
	}

	s.resource.mu.Lock()
	defer s.resource.mu.Unlock()
	for _, p := range s.pending {
		if v, _ := p.row.Get(table.IDColumn); v == nil {
			s.resource.nextID++
			p.row.Set(table.IDColumn, s.resource.nextID)
		}
		s.resource.tables[p.table] = append(s.resource.tables[p.table], p.row)
	}
	s.pending = nil
	return nil
}

func (s *memorySession) Rollback() error {
	s.resource.rollbacks.Add(1)
	s.pending = nil
	return nil
}
