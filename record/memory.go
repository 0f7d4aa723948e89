package record

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nementium/agentcore/fault"
)

// MemoryStore is a concurrency safe in-memory Store for tests and local
// development. Filters match on the stringified column value, mirroring the
// eq. semantics of the REST store.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]Record
	nextID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]Record), nextID: 1}
}

func matches(row Record, filters map[string]string) bool {
	for column, want := range filters {
		got, ok := row[column]
		if !ok || got == nil {
			return false
		}
		if stringify(got) != want {
			return false
		}
	}
	return true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Select returns copies of all matching rows.
func (s *MemoryStore) Select(_ context.Context, table, columns string, filters map[string]string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, row := range s.tables[table] {
		if matches(row, filters) {
			out = append(out, project(row, columns))
		}
	}
	return out, nil
}

// SelectOne returns the first matching row or fault.NotFound.
func (s *MemoryStore) SelectOne(ctx context.Context, table, columns string, filters map[string]string) (Record, error) {
	rows, err := s.Select(ctx, table, columns, filters)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fault.New(fault.NotFound, "no %s row matches the filter", table)
	}
	return rows[0], nil
}

// Insert stores a copy of the row, assigning an id when none is present.
func (s *MemoryStore) Insert(_ context.Context, table string, row Record) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyRecord(row)
	if _, ok := stored["id"]; !ok {
		stored["id"] = float64(s.nextID)
		s.nextID++
	}
	s.tables[table] = append(s.tables[table], stored)
	return []Record{copyRecord(stored)}, nil
}

// Update patches every matching row in place.
func (s *MemoryStore) Update(_ context.Context, table string, patch Record, filters map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.tables[table] {
		if matches(row, filters) {
			for k, v := range patch {
				row[k] = v
			}
		}
	}
	return nil
}

func project(row Record, columns string) Record {
	out := copyRecord(row)
	if columns == "" || columns == "*" {
		return out
	}
	keep := make(map[string]bool)
	for _, c := range strings.Split(columns, ",") {
		keep[strings.TrimSpace(c)] = true
	}
	for k := range out {
		if !keep[k] {
			delete(out, k)
		}
	}
	return out
}

func copyRecord(row Record) Record {
	out := make(Record, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
