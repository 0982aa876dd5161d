package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"granaia/internal/core"
)

// Column mapping per table. Core predicates name fields; only this
// package knows the schema.
var (
	userColumns = map[core.Field]string{
		core.FieldName:         "name",
		core.FieldPhone:        "phone",
		core.FieldPremiumUntil: "premium_until",
	}

	recordColumns = map[core.Field]string{
		core.FieldUserID:   "usuario",
		core.FieldCategory: "categoria",
		core.FieldDate:     "data",
		core.FieldAmount:   "valor_cents",
	}
)

// buildWhere translates a predicate into a WHERE clause and its
// arguments. An empty predicate yields an empty clause. Conditions are
// joined with AND; there is no OR composition at the predicate level,
// null handling is folded into the operators that need it.
func buildWhere(columns map[core.Field]string, p core.Predicate) (string, []any, error) {
	conds := p.Conditions()
	if len(conds) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))

	for _, c := range conds {
		col, ok := columns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter field %q", c.Field)
		}

		switch c.Op {
		case core.OpEq:
			clauses = append(clauses, col+" = ?")
			args = append(args, bindValue(c.Value))
		case core.OpContains:
			s, ok := c.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("contains filter on %q needs a string", c.Field)
			}
			clauses = append(clauses, "LOWER("+col+") LIKE ?")
			args = append(args, "%"+strings.ToLower(s)+"%")
		case core.OpGTE:
			clauses = append(clauses, col+" >= ?")
			args = append(args, bindValue(c.Value))
		case core.OpLTE:
			clauses = append(clauses, col+" <= ?")
			args = append(args, bindValue(c.Value))
		case core.OpAfter:
			clauses = append(clauses, "("+col+" IS NOT NULL AND "+col+" > ?)")
			args = append(args, bindValue(c.Value))
		case core.OpNotAfterOrNull:
			clauses = append(clauses, "("+col+" IS NULL OR "+col+" <= ?)")
			args = append(args, bindValue(c.Value))
		case core.OpNotAfterNotNull:
			clauses = append(clauses, "("+col+" IS NOT NULL AND "+col+" <= ?)")
			args = append(args, bindValue(c.Value))
		default:
			return "", nil, fmt.Errorf("unknown filter op %d", c.Op)
		}
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// bindValue converts predicate values into their storage encoding.
// Timestamps are fixed-width RFC3339 UTC strings so text comparison
// matches chronological order; UUIDs are their canonical string form.
func bindValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return fmtTime(val)
	case uuid.UUID:
		return val.String()
	default:
		return v
	}
}

// Fixed fractional width keeps lexicographic and chronological order
// identical for stored timestamps.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}
