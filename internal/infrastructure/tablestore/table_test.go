package tablestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type widget struct {
	ID    uint
	Name  string
	Stock int
}

func (widget) TableName() string { return "widgets" }

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func selectSQL(t *testing.T, db *gorm.DB, filters ...Filter) string {
	t.Helper()
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		q, err := applyFilters(tx.Model(&widget{}), filters)
		require.NoError(t, err)
		var rows []widget
		return q.Find(&rows)
	})
}

func TestFiltersBuildWhereClause(t *testing.T) {
	db := dryRunDB(t)

	tests := map[string]struct {
		filters []Filter
		want    []string
	}{
		"equality and range": {
			filters: []Filter{Eq("name", "Shampoo"), Gte("stock", 3)},
			want:    []string{`FROM "widgets"`, `name = 'Shampoo'`, `stock >= 3`},
		},
		"ilike wraps the term": {
			filters: []Filter{ILike("name", "sham")},
			want:    []string{`name ILIKE '%sham%' ESCAPE '\'`},
		},
		"ilike escapes wildcards in the term": {
			filters: []Filter{ILike("name", `50%_off\`)},
			want:    []string{`name ILIKE '%50\%\_off\\%' ESCAPE '\'`},
		},
		"any is ORed": {
			filters: []Filter{Any(ILike("name", "a"), ILike("phone_number", "a"))},
			want:    []string{`(name ILIKE '%a%' ESCAPE '\' OR phone_number ILIKE '%a%' ESCAPE '\')`},
		},
		"is null": {
			filters: []Filter{IsNull("deleted_at")},
			want:    []string{`deleted_at IS NULL`},
		},
		"in list": {
			filters: []Filter{In("id", []uint{1, 2})},
			want:    []string{`id IN (1,2)`},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			sql := selectSQL(t, db, tc.filters...)
			for _, w := range tc.want {
				assert.Contains(t, sql, w)
			}
		})
	}
}

func TestILikeEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%plain%", ILike("name", "plain").Value)
	assert.Equal(t, `%100\%%`, ILike("name", "100%").Value)
	assert.Equal(t, `%a\_b%`, ILike("name", "a_b").Value)
	assert.Equal(t, `%c:\\d%`, ILike("name", `c:\d`).Value)
}

func TestSumBuildsCoalescedAggregate(t *testing.T) {
	db := dryRunDB(t)
	var statements []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		statements = append(statements, tx.Dialector.Explain(tx.Statement.SQL.String(), tx.Statement.Vars...))
	}))

	total, err := NewTable[widget](db).Sum(context.Background(), "stock", Gt("stock", 0))
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "COALESCE(SUM(stock), 0) AS total")
	assert.Contains(t, statements[0], "stock > 0")

	_, err = NewTable[widget](db).Sum(context.Background(), "stock) FROM secrets --")
	assert.Error(t, err)
}

func TestFiltersRejectUnsafeColumns(t *testing.T) {
	_, err := applyFilters(dryRunDB(t), []Filter{Eq("name; DROP TABLE widgets", 1)})
	assert.Error(t, err)

	_, err = applyFilters(dryRunDB(t), []Filter{{Column: "name", Op: "LIKE", Value: "x"}})
	assert.Error(t, err)
}

func TestUpdateAndDeleteRequireFilters(t *testing.T) {
	table := NewTable[widget](dryRunDB(t))

	_, err := table.Update(context.Background(), map[string]any{"stock": 0})
	assert.ErrorIs(t, err, ErrMissingFilter)

	_, err = table.Delete(context.Background())
	assert.ErrorIs(t, err, ErrMissingFilter)
}

func TestQueryRejectsUnsafeSort(t *testing.T) {
	table := NewTable[widget](dryRunDB(t))
	_, err := table.Select(context.Background(), Query{OrderBy: []Order{{Column: "name desc; --"}}})
	assert.Error(t, err)
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	db := dryRunDB(t)
	ctx := context.WithValue(context.Background(), txKey{}, db)

	called := false
	err := NewTransactor(nil).WithinTransaction(ctx, func(inner context.Context) error {
		called = true
		assert.Same(t, db, txFromContext(inner))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
