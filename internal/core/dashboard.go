package core

import "time"

// CategorySummary is the per-category slice of a dashboard.
type CategorySummary struct {
	Category string
	Total    Money
	Count    int64
}

// Dashboard is an aggregated summary over a user-scoped, optionally
// date-bounded set of records. The per-category totals partition the
// grand total: summing them reproduces Total and Count exactly.
type Dashboard struct {
	Total       Money
	Count       int64
	ByCategory  []CategorySummary
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}
