package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func strPtr(s string) *string    { return &s }
func boolPtr(b bool) *bool       { return &b }
func int64Ptr(n int64) *int64    { return &n }
func timePtr(t time.Time) *time.Time { return &t }

func TestUserFilterPredicate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty filter matches everything", func(t *testing.T) {
		p := UserFilter{}.Predicate(now)
		if !p.Empty() {
			t.Fatalf("expected empty predicate, got %d conditions", len(p.Conditions()))
		}
	})

	t.Run("each present filter contributes one condition", func(t *testing.T) {
		f := UserFilter{
			Name:          strPtr("ana"),
			Phone:         strPtr("555"),
			PremiumActive: boolPtr(true),
		}
		conds := f.Predicate(now).Conditions()
		if len(conds) != 3 {
			t.Fatalf("expected 3 conditions, got %d", len(conds))
		}
		if conds[0].Field != FieldName || conds[0].Op != OpContains {
			t.Fatalf("unexpected first condition: %+v", conds[0])
		}
		if conds[2].Field != FieldPremiumUntil || conds[2].Op != OpAfter {
			t.Fatalf("unexpected premium condition: %+v", conds[2])
		}
	})

	t.Run("premium_active false uses null-tolerant bound", func(t *testing.T) {
		f := UserFilter{PremiumActive: boolPtr(false)}
		conds := f.Predicate(now).Conditions()
		if len(conds) != 1 || conds[0].Op != OpNotAfterOrNull {
			t.Fatalf("unexpected conditions: %+v", conds)
		}
	})

	t.Run("premium_expired true requires a timestamp", func(t *testing.T) {
		f := UserFilter{PremiumExpired: boolPtr(true)}
		conds := f.Predicate(now).Conditions()
		if len(conds) != 1 || conds[0].Op != OpNotAfterNotNull {
			t.Fatalf("unexpected conditions: %+v", conds)
		}
	})

	t.Run("premium_expired false contributes nothing", func(t *testing.T) {
		f := UserFilter{PremiumExpired: boolPtr(false)}
		if !f.Predicate(now).Empty() {
			t.Fatal("expected no conditions")
		}
	})

	t.Run("active and expired together is legal", func(t *testing.T) {
		f := UserFilter{PremiumActive: boolPtr(true), PremiumExpired: boolPtr(true)}
		conds := f.Predicate(now).Conditions()
		if len(conds) != 2 {
			t.Fatalf("expected 2 conditions, got %d", len(conds))
		}
		// OpAfter and OpNotAfterNotNull against the same instant
		// intersect to the empty set; the store returns zero rows.
		if conds[0].Op != OpAfter || conds[1].Op != OpNotAfterNotNull {
			t.Fatalf("unexpected ops: %+v", conds)
		}
	})
}

func TestRecordFilterPredicate(t *testing.T) {
	uid := uuid.New()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("all filters combine with AND", func(t *testing.T) {
		f := RecordFilter{
			UserID:         &uid,
			Category:       strPtr("Alim"),
			DateFrom:       &from,
			DateTo:         &to,
			AmountMinCents: int64Ptr(100),
			AmountMaxCents: int64Ptr(5000),
		}
		conds := f.Predicate().Conditions()
		if len(conds) != 6 {
			t.Fatalf("expected 6 conditions, got %d", len(conds))
		}
		wantOps := []Op{OpEq, OpContains, OpGTE, OpLTE, OpGTE, OpLTE}
		for i, c := range conds {
			if c.Op != wantOps[i] {
				t.Fatalf("condition %d: expected op %v, got %v", i, wantOps[i], c.Op)
			}
		}
	})

	t.Run("either range bound may stand alone", func(t *testing.T) {
		f := RecordFilter{DateTo: &to}
		conds := f.Predicate().Conditions()
		if len(conds) != 1 || conds[0].Field != FieldDate || conds[0].Op != OpLTE {
			t.Fatalf("unexpected conditions: %+v", conds)
		}
	})

	t.Run("empty filter matches everything", func(t *testing.T) {
		if !(RecordFilter{}).Predicate().Empty() {
			t.Fatal("expected empty predicate")
		}
	})
}
