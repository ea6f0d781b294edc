package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type row = map[string]interface{}

type table struct {
	order []string
	rows  map[string]row
}

// Memory keeps tables in process. Values are normalized through JSON so rows
// look the same as they would coming back from the REST backend.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]*table
	unique map[string][][]string
}

// DefaultUniqueKeys mirrors the unique indexes created by AutoMigrate.
var DefaultUniqueKeys = map[string][][]string{
	"salons":            {{"slug"}},
	"users":             {{"email"}},
	"clients":           {{"salon_id", "phone"}},
	"message_templates": {{"salon_id", "type"}},
}

func NewMemory() *Memory {
	m := &Memory{
		tables: map[string]*table{},
		unique: map[string][][]string{},
	}
	for t, keys := range DefaultUniqueKeys {
		m.unique[t] = keys
	}
	return m
}

// Unique declares an extra unique key on a table.
func (m *Memory) Unique(tableName string, columns ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unique[tableName] = append(m.unique[tableName], columns)
}

func (m *Memory) table(name string) *table {
	t, ok := m.tables[name]
	if !ok {
		t = &table{rows: map[string]row{}}
		m.tables[name] = t
	}
	return t
}

func (m *Memory) Select(ctx context.Context, q Query, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := m.match(q)
	if err != nil {
		return err
	}
	return decode(rows, dest)
}

func (m *Memory) Get(ctx context.Context, q Query, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := m.match(q)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return decode(rows[0], dest)
}

func (m *Memory) Insert(ctx context.Context, tableName string, values map[string]interface{}) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	id, raw := assignID(values)
	r, err := normalize(raw)
	if err != nil {
		return uuid.Nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(tableName)
	key := id.String()
	if _, exists := t.rows[key]; exists {
		return uuid.Nil, fmt.Errorf("%w: %s id %s", ErrConflict, tableName, key)
	}
	if err := m.checkUnique(tableName, t, key, r); err != nil {
		return uuid.Nil, err
	}
	t.rows[key] = r
	t.order = append(t.order, key)
	return id, nil
}

func (m *Memory) Update(ctx context.Context, tableName string, id uuid.UUID, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, err := normalize(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(tableName)
	key := id.String()
	current, ok := t.rows[key]
	if !ok {
		return ErrNotFound
	}
	next := make(row, len(current)+len(patch))
	for k, v := range current {
		next[k] = v
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		next[k] = v
	}
	if err := m.checkUnique(tableName, t, key, next); err != nil {
		return err
	}
	t.rows[key] = next
	return nil
}

func (m *Memory) Delete(ctx context.Context, tableName string, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.table(tableName)
	key := id.String()
	if _, ok := t.rows[key]; !ok {
		return nil
	}
	delete(t.rows, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports how many rows a table holds.
func (m *Memory) Len(tableName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tables[tableName]; ok {
		return len(t.rows)
	}
	return 0
}

func (m *Memory) match(q Query) ([]row, error) {
	filters := make([]Filter, len(q.Filters))
	for i, f := range q.Filters {
		v, err := normalizeValue(f.Value)
		if err != nil {
			return nil, err
		}
		filters[i] = Filter{Column: f.Column, Value: v}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[q.Table]
	if !ok {
		return nil, nil
	}

	var out []row
	for _, key := range t.order {
		r := t.rows[key]
		if !matches(r, filters) {
			continue
		}
		res := make(row, len(r)+len(q.Joins))
		for k, v := range r {
			res[k] = v
		}
		for _, j := range q.Joins {
			res[j.As] = nil
			ref, ok := m.tables[j.Table]
			if !ok {
				continue
			}
			if joined, ok := ref.rows[fmt.Sprint(r[j.LocalKey])]; ok {
				res[j.As] = joined[j.Column]
			}
		}
		out = append(out, res)
	}

	if len(q.Order) > 0 {
		sort.SliceStable(out, func(a, b int) bool {
			for _, col := range q.Order {
				if c := compare(out[a][col], out[b][col]); c != 0 {
					return c < 0
				}
			}
			return false
		})
	}
	return out, nil
}

func (m *Memory) checkUnique(tableName string, t *table, self string, candidate row) error {
	for _, cols := range m.unique[tableName] {
		for key, existing := range t.rows {
			if key == self {
				continue
			}
			same := true
			for _, c := range cols {
				if candidate[c] == nil || !reflect.DeepEqual(candidate[c], existing[c]) {
					same = false
					break
				}
			}
			if same {
				return fmt.Errorf("%w: %s (%s)", ErrConflict, tableName, strings.Join(cols, ", "))
			}
		}
	}
	return nil
}

func matches(r row, filters []Filter) bool {
	for _, f := range filters {
		if !reflect.DeepEqual(r[f.Column], f.Value) {
			return false
		}
	}
	return true
}

func compare(a, b interface{}) int {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	// nulls sort last
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func normalize(values map[string]interface{}) (row, error) {
	b, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	var r row
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return r, nil
}

func normalizeValue(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	return out, nil
}

func decode(v interface{}, dest interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}
