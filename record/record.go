// Package record provides access to the hosted record store, a PostgREST
// style HTTP API. Rows travel as loosely typed maps; the packages that own a
// table decode them into their own structs.
package record

import (
	"context"
	"encoding/json"
)

// Record is one row of a table.
type Record map[string]any

// Str returns the string value of a column, or "" when absent or not a
// string.
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int64 returns the integer value of a column. JSON decoding yields float64
// for numbers, so both forms are accepted.
func (r Record) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// Bool returns the boolean value of a column, or false when absent.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Map returns a nested object column, or nil.
func (r Record) Map(key string) map[string]any {
	m, _ := r[key].(map[string]any)
	return m
}

// Store is the minimal record store surface the module needs. Filters are
// column -> value equality matches.
type Store interface {
	// Select returns all rows matching the filters. columns is a comma
	// separated projection; "*" selects everything.
	Select(ctx context.Context, table, columns string, filters map[string]string) ([]Record, error)
	// SelectOne returns the first matching row or a NotFound fault.
	SelectOne(ctx context.Context, table, columns string, filters map[string]string) (Record, error)
	// Insert writes a new row and returns the stored representation.
	Insert(ctx context.Context, table string, row Record) ([]Record, error)
	// Update patches all rows matching the filters.
	Update(ctx context.Context, table string, patch Record, filters map[string]string) error
}
