// Package gateway is the remote data gateway: table-oriented reads and writes
// against the authoritative relational store.
package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotConfigured is returned when no endpoint or credentials are set.
	ErrNotConfigured = errors.New("data gateway not configured")
	// ErrNotFound is returned by Get and Update when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("record conflicts with an existing row")
)

// Join pulls one column of a referenced row into the result under As.
// The referenced row is matched by its id against LocalKey.
type Join struct {
	Table    string
	LocalKey string
	Column   string
	As       string
}

type Filter struct {
	Column string
	Value  interface{}
}

// Query describes a read. Filters are ANDed equality predicates on the main
// table; Order lists main-table columns, ascending.
type Query struct {
	Table   string
	Joins   []Join
	Filters []Filter
	Order   []string
}

// joinGroup collects the joined columns that share one referenced row.
type joinGroup struct {
	Table    string
	LocalKey string
	Columns  []Join
}

func (q Query) groupedJoins() []joinGroup {
	var groups []joinGroup
	index := map[string]int{}
	for _, j := range q.Joins {
		key := j.Table + "." + j.LocalKey
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, joinGroup{Table: j.Table, LocalKey: j.LocalKey})
		}
		groups[i].Columns = append(groups[i].Columns, j)
	}
	return groups
}

func From(table string) Query {
	return Query{Table: table}
}

func (q Query) Join(table, localKey, column, as string) Query {
	q.Joins = append(append([]Join(nil), q.Joins...), Join{Table: table, LocalKey: localKey, Column: column, As: as})
	return q
}

func (q Query) Eq(column string, value interface{}) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Value: value})
	return q
}

func (q Query) OrderBy(columns ...string) Query {
	q.Order = append(append([]string(nil), q.Order...), columns...)
	return q
}

// Gateway is implemented by every data backend.
//
// Select fills dest (a pointer to a slice) with all matching rows. Get fills
// dest (a pointer to a struct) with the first match or returns ErrNotFound.
// Insert assigns an id when values carries none and returns it. Update
// returns ErrNotFound when id matches nothing; Delete of a missing id is not
// an error.
type Gateway interface {
	Select(ctx context.Context, q Query, dest interface{}) error
	Get(ctx context.Context, q Query, dest interface{}) error
	Insert(ctx context.Context, table string, values map[string]interface{}) (uuid.UUID, error)
	Update(ctx context.Context, table string, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, table string, id uuid.UUID) error
}

// Unconfigured is used when no backend is configured. Every call fails with
// ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Select(context.Context, Query, interface{}) error {
	return ErrNotConfigured
}

func (Unconfigured) Get(context.Context, Query, interface{}) error {
	return ErrNotConfigured
}

func (Unconfigured) Insert(context.Context, string, map[string]interface{}) (uuid.UUID, error) {
	return uuid.Nil, ErrNotConfigured
}

func (Unconfigured) Update(context.Context, string, uuid.UUID, map[string]interface{}) error {
	return ErrNotConfigured
}

func (Unconfigured) Delete(context.Context, string, uuid.UUID) error {
	return ErrNotConfigured
}

// assignID returns the id carried by values, generating one when absent.
func assignID(values map[string]interface{}) (uuid.UUID, map[string]interface{}) {
	out := make(map[string]interface{}, len(values)+1)
	for k, v := range values {
		out[k] = v
	}
	switch v := out["id"].(type) {
	case uuid.UUID:
		if v != uuid.Nil {
			return v, out
		}
	case string:
		if id, err := uuid.Parse(v); err == nil {
			out["id"] = id
			return id, out
		}
	}
	id := uuid.New()
	out["id"] = id
	return id, out
}
