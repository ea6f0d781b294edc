package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gorm talks to Postgres directly. The *gorm.DB should be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) build(ctx context.Context, q Query) *gorm.DB {
	tx := g.db.WithContext(ctx).Table(q.Table)
	if len(q.Joins) > 0 {
		cols := []string{q.Table + ".*"}
		for i, jg := range q.groupedJoins() {
			alias := fmt.Sprintf("j%d", i)
			tx = tx.Joins(fmt.Sprintf("LEFT JOIN %s AS %s ON %s.id = %s.%s", jg.Table, alias, alias, q.Table, jg.LocalKey))
			for _, j := range jg.Columns {
				cols = append(cols, fmt.Sprintf("%s.%s AS %s", alias, j.Column, j.As))
			}
		}
		tx = tx.Select(strings.Join(cols, ", "))
	}
	for _, f := range q.Filters {
		tx = tx.Where(fmt.Sprintf("%s.%s = ?", q.Table, f.Column), f.Value)
	}
	for _, o := range q.Order {
		tx = tx.Order(q.Table + "." + o)
	}
	return tx
}

func (g *Gorm) Select(ctx context.Context, q Query, dest interface{}) error {
	return translate(g.build(ctx, q).Find(dest).Error)
}

func (g *Gorm) Get(ctx context.Context, q Query, dest interface{}) error {
	return translate(g.build(ctx, q).Take(dest).Error)
}

func (g *Gorm) Insert(ctx context.Context, table string, values map[string]interface{}) (uuid.UUID, error) {
	id, row := assignID(values)
	if err := g.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		return uuid.Nil, translate(err)
	}
	return id, nil
}

func (g *Gorm) Update(ctx context.Context, table string, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := g.db.WithContext(ctx).Table(table).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) Delete(ctx context.Context, table string, id uuid.UUID) error {
	return translate(g.db.WithContext(ctx).Table(table).Where("id = ?", id).Delete(map[string]interface{}{}).Error)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
