package core

import (
	"time"

	"github.com/google/uuid"
)

// Field names an entity attribute a condition applies to. The store
// maps fields to columns; core stays free of SQL.
type Field string

const (
	FieldName         Field = "name"
	FieldPhone        Field = "phone"
	FieldPremiumUntil Field = "premium_until"
	FieldUserID       Field = "usuario"
	FieldCategory     Field = "categoria"
	FieldDate         Field = "data"
	FieldAmount       Field = "valor"
)

// Op is a comparison operator.
type Op int

const (
	// OpEq matches the exact value.
	OpEq Op = iota
	// OpContains matches a case-insensitive substring.
	OpContains
	// OpGTE and OpLTE are inclusive range bounds.
	OpGTE
	OpLTE
	// OpAfter matches timestamps strictly after the value.
	OpAfter
	// OpNotAfterOrNull matches timestamps at or before the value, or
	// absent ones. Used for premium_active=false.
	OpNotAfterOrNull
	// OpNotAfterNotNull matches timestamps that exist and are at or
	// before the value. Used for premium_expired=true.
	OpNotAfterNotNull
)

// Condition is one field comparison.
type Condition struct {
	Field Field
	Op    Op
	Value any
}

// Predicate is a conjunction of conditions. An empty predicate matches
// everything. Predicates are immutable once built.
type Predicate struct {
	conds []Condition
}

// And builds a predicate from the given conditions.
func And(conds ...Condition) Predicate {
	return Predicate{conds: conds}
}

// Conditions returns the condition list in build order.
func (p Predicate) Conditions() []Condition { return p.conds }

// Empty reports whether the predicate has no conditions.
func (p Predicate) Empty() bool { return len(p.conds) == 0 }

// UserFilter holds the optional user listing filters. Nil pointers
// contribute no condition.
type UserFilter struct {
	Name           *string
	Phone          *string
	PremiumActive  *bool
	PremiumExpired *bool
}

// Predicate reduces the present filters into a conjunction. Premium
// comparisons are made against now, so callers inject the clock value.
// Supplying premium_active=true together with premium_expired=true is
// legal: the resulting intersection is empty.
func (f UserFilter) Predicate(now time.Time) Predicate {
	var conds []Condition

	if f.Name != nil && *f.Name != "" {
		conds = append(conds, Condition{FieldName, OpContains, *f.Name})
	}
	if f.Phone != nil && *f.Phone != "" {
		conds = append(conds, Condition{FieldPhone, OpContains, *f.Phone})
	}
	if f.PremiumActive != nil {
		if *f.PremiumActive {
			conds = append(conds, Condition{FieldPremiumUntil, OpAfter, now})
		} else {
			conds = append(conds, Condition{FieldPremiumUntil, OpNotAfterOrNull, now})
		}
	}
	if f.PremiumExpired != nil && *f.PremiumExpired {
		conds = append(conds, Condition{FieldPremiumUntil, OpNotAfterNotNull, now})
	}

	return And(conds...)
}

// RecordFilter holds the optional expense/income listing filters.
// Range bounds are inclusive and independently optional. Amounts are
// cents, matching Money.
type RecordFilter struct {
	UserID         *uuid.UUID
	Category       *string
	DateFrom       *time.Time
	DateTo         *time.Time
	AmountMinCents *int64
	AmountMaxCents *int64
}

// Predicate reduces the present filters into a conjunction.
func (f RecordFilter) Predicate() Predicate {
	var conds []Condition

	if f.UserID != nil {
		conds = append(conds, Condition{FieldUserID, OpEq, *f.UserID})
	}
	if f.Category != nil && *f.Category != "" {
		conds = append(conds, Condition{FieldCategory, OpContains, *f.Category})
	}
	if f.DateFrom != nil {
		conds = append(conds, Condition{FieldDate, OpGTE, *f.DateFrom})
	}
	if f.DateTo != nil {
		conds = append(conds, Condition{FieldDate, OpLTE, *f.DateTo})
	}
	if f.AmountMinCents != nil {
		conds = append(conds, Condition{FieldAmount, OpGTE, *f.AmountMinCents})
	}
	if f.AmountMaxCents != nil {
		conds = append(conds, Condition{FieldAmount, OpLTE, *f.AmountMaxCents})
	}

	return And(conds...)
}
