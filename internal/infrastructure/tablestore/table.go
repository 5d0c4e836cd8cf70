// Package tablestore is a generic table client over gorm: select, insert,
// update and delete with filter predicates, plus a transaction carried in
// the context.
package tablestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrMissingFilter is returned by Update and Delete without predicates
var ErrMissingFilter = errors.New("tablestore: update and delete require at least one filter")

// Order is a sort key
type Order struct {
	Column string
	Desc   bool
}

// Query carries optional select modifiers
type Query struct {
	Preload []string
	OrderBy []Order
	Limit   int
	Offset  int
}

// Table is a typed accessor for the table of model T
type Table[T any] struct {
	db *gorm.DB
}

// NewTable creates a table accessor
func NewTable[T any](db *gorm.DB) *Table[T] {
	return &Table[T]{db: db}
}

// Conn returns the connection to use for ctx, joining a transaction if
// one is in flight.
func (t *Table[T]) Conn(ctx context.Context) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx.WithContext(ctx)
	}
	return t.db.WithContext(ctx)
}

func (t *Table[T]) scoped(ctx context.Context, filters []Filter) (*gorm.DB, error) {
	var model T
	return applyFilters(t.Conn(ctx).Model(&model), filters)
}

// Select returns every row matching all filters
func (t *Table[T]) Select(ctx context.Context, q Query, filters ...Filter) ([]T, error) {
	db, err := t.scoped(ctx, filters)
	if err != nil {
		return nil, err
	}
	db, err = q.apply(db)
	if err != nil {
		return nil, err
	}

	var rows []T
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", t.name(), err)
	}
	return rows, nil
}

// First returns the first matching row, or nil when none matches
func (t *Table[T]) First(ctx context.Context, q Query, filters ...Filter) (*T, error) {
	db, err := t.scoped(ctx, filters)
	if err != nil {
		return nil, err
	}
	db, err = q.apply(db)
	if err != nil {
		return nil, err
	}

	var row T
	err = db.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", t.name(), err)
	}
	return &row, nil
}

// Count returns the number of matching rows
func (t *Table[T]) Count(ctx context.Context, filters ...Filter) (int64, error) {
	db, err := t.scoped(ctx, filters)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.name(), err)
	}
	return n, nil
}

type sumRow struct {
	Total decimal.Decimal
}

// Sum adds up a numeric column over the matching rows. No rows sum to zero.
func (t *Table[T]) Sum(ctx context.Context, column string, filters ...Filter) (decimal.Decimal, error) {
	if !columnPattern.MatchString(column) {
		return decimal.Zero, fmt.Errorf("tablestore: invalid column %q", column)
	}
	db, err := t.scoped(ctx, filters)
	if err != nil {
		return decimal.Zero, err
	}
	var row sumRow
	if err := db.Select("COALESCE(SUM(" + column + "), 0) AS total").Find(&row).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s.%s: %w", t.name(), column, err)
	}
	return row.Total, nil
}

// Insert creates the rows. Generated ids and timestamps are written back.
func (t *Table[T]) Insert(ctx context.Context, rows ...*T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := t.Conn(ctx).Create(rows).Error; err != nil {
		return fmt.Errorf("failed to insert %s: %w", t.name(), err)
	}
	return nil
}

// Save updates every column of row by primary key
func (t *Table[T]) Save(ctx context.Context, row *T) error {
	if err := t.Conn(ctx).Save(row).Error; err != nil {
		return fmt.Errorf("failed to save %s: %w", t.name(), err)
	}
	return nil
}

// Update applies patch to the matching rows and returns how many changed.
// Patch values may be gorm expressions.
func (t *Table[T]) Update(ctx context.Context, patch map[string]any, filters ...Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, ErrMissingFilter
	}
	db, err := t.scoped(ctx, filters)
	if err != nil {
		return 0, err
	}
	res := db.Updates(patch)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update %s: %w", t.name(), res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the matching rows (soft delete when T has DeletedAt)
func (t *Table[T]) Delete(ctx context.Context, filters ...Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, ErrMissingFilter
	}
	conn := t.Conn(ctx)
	db, err := applyFilters(conn, filters)
	if err != nil {
		return 0, err
	}
	var model T
	res := db.Delete(&model)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", t.name(), res.Error)
	}
	return res.RowsAffected, nil
}

func (t *Table[T]) name() string {
	var model T
	if tn, ok := any(&model).(interface{ TableName() string }); ok {
		return tn.TableName()
	}
	return fmt.Sprintf("%T", model)
}

func (q Query) apply(db *gorm.DB) (*gorm.DB, error) {
	for _, p := range q.Preload {
		db = db.Preload(p)
	}
	for _, o := range q.OrderBy {
		if !columnPattern.MatchString(o.Column) {
			return nil, fmt.Errorf("tablestore: invalid sort column %q", o.Column)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		db = db.Order(o.Column + " " + dir)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	return db, nil
}
