package tablestore

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// Op is a comparison operator of a filter predicate
type Op string

const (
	OpEq     Op = "="
	OpNeq    Op = "<>"
	OpGt     Op = ">"
	OpGte    Op = ">="
	OpLt     Op = "<"
	OpLte    Op = "<="
	OpIn     Op = "IN"
	OpILike  Op = "ILIKE"
	OpIsNull Op = "IS NULL"
)

// Filter is a single column predicate. Filters passed together are ANDed;
// Any groups filters with OR.
type Filter struct {
	Column string
	Op     Op
	Value  any
	anyOf  []Filter
}

func Eq(column string, v any) Filter { return Filter{Column: column, Op: OpEq, Value: v} }
func Neq(column string, v any) Filter { return Filter{Column: column, Op: OpNeq, Value: v} }
func Gt(column string, v any) Filter { return Filter{Column: column, Op: OpGt, Value: v} }
func Gte(column string, v any) Filter { return Filter{Column: column, Op: OpGte, Value: v} }
func Lt(column string, v any) Filter { return Filter{Column: column, Op: OpLt, Value: v} }
func Lte(column string, v any) Filter { return Filter{Column: column, Op: OpLte, Value: v} }
func In(column string, v any) Filter { return Filter{Column: column, Op: OpIn, Value: v} }
func IsNull(column string) Filter { return Filter{Column: column, Op: OpIsNull} }

// ILike matches rows whose column contains term, case-insensitively.
// Wildcards in term are matched literally.
func ILike(column, term string) Filter {
	return Filter{Column: column, Op: OpILike, Value: "%" + likeEscaper.Replace(term) + "%"}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Any matches when at least one of the filters matches
func Any(filters ...Filter) Filter {
	return Filter{anyOf: filters}
}

var columnPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

func (f Filter) clause() (string, []any, error) {
	if len(f.anyOf) > 0 {
		parts := make([]string, 0, len(f.anyOf))
		var args []any
		for _, sub := range f.anyOf {
			sql, subArgs, err := sub.clause()
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			args = append(args, subArgs...)
		}
		return "(" + strings.Join(parts, " OR ") + ")", args, nil
	}

	if !columnPattern.MatchString(f.Column) {
		return "", nil, fmt.Errorf("tablestore: invalid column %q", f.Column)
	}
	switch f.Op {
	case OpIsNull:
		return f.Column + " IS NULL", nil, nil
	case OpIn:
		return f.Column + " IN ?", []any{f.Value}, nil
	case OpILike:
		return f.Column + ` ILIKE ? ESCAPE '\'`, []any{f.Value}, nil
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		return fmt.Sprintf("%s %s ?", f.Column, f.Op), []any{f.Value}, nil
	default:
		return "", nil, fmt.Errorf("tablestore: unsupported operator %q", f.Op)
	}
}

func applyFilters(db *gorm.DB, filters []Filter) (*gorm.DB, error) {
	for _, f := range filters {
		sql, args, err := f.clause()
		if err != nil {
			return nil, err
		}
		db = db.Where(sql, args...)
	}
	return db, nil
}
