package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"granaia/internal/core"
)

func seedUser(t *testing.T, users *UserService) core.User {
	t.Helper()
	u, err := users.Create(context.Background(), core.User{
		Name:      "Ana",
		RemoteJID: "svc@s.whatsapp.net",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestExpenseServiceCreateValidates(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewExpenseService(repo, nil)
	owner := seedUser(t, NewUserService(repo, nil))

	cases := []struct {
		name    string
		expense core.Expense
		field   string
	}{
		{
			name: "zero amount",
			expense: core.Expense{
				UserID: owner.ID, Description: "x", Category: core.ExpenseFood, Date: time.Now(),
			},
			field: "valor",
		},
		{
			name: "unknown category",
			expense: core.Expense{
				UserID: owner.ID, Description: "x", Amount: core.Money{Cents: 100},
				Category: core.ExpenseCategory("Viagem"), Date: time.Now(),
			},
			field: "categoria",
		},
		{
			name: "missing description",
			expense: core.Expense{
				UserID: owner.ID, Amount: core.Money{Cents: 100},
				Category: core.ExpenseFood, Date: time.Now(),
			},
			field: "descricao",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.expense)
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
			}
		})
	}
}

func TestExpenseServiceUpdatePartial(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewExpenseService(repo, nil)
	owner := seedUser(t, NewUserService(repo, nil))
	ctx := context.Background()

	created, err := svc.Create(ctx, core.Expense{
		UserID:      owner.ID,
		Description: "mercado",
		Amount:      core.Money{Cents: 5000},
		Category:    core.ExpenseFood,
		Date:        time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cents := int64(7500)
	got, err := svc.Update(ctx, created.ID, RecordUpdate{AmountCents: &cents})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Amount.Cents != 7500 {
		t.Fatalf("amount not updated: %d", got.Amount.Cents)
	}
	if got.Description != "mercado" || got.Category != core.ExpenseFood {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	bad := "Viagem"
	if _, err := svc.Update(ctx, created.ID, RecordUpdate{Category: &bad}); err == nil {
		t.Fatal("expected validation error for unknown category")
	}
}

func TestExpenseServiceDashboardPeriod(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewExpenseService(repo, nil)
	owner := seedUser(t, NewUserService(repo, nil))
	ctx := context.Background()

	_, err := svc.Create(ctx, core.Expense{
		UserID:      owner.ID,
		Description: "mercado",
		Amount:      core.Money{Cents: 3000},
		Category:    core.ExpenseFood,
		Date:        time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	dash, err := svc.Dashboard(ctx, core.RecordFilter{UserID: &owner.ID, DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.Total.Cents != 3000 || dash.Count != 1 {
		t.Fatalf("unexpected aggregate: %+v", dash)
	}
	// The queried period is echoed back for the response payload
	if dash.PeriodStart == nil || !dash.PeriodStart.Equal(from) {
		t.Fatalf("period start not echoed: %v", dash.PeriodStart)
	}
	if dash.PeriodEnd == nil || !dash.PeriodEnd.Equal(to) {
		t.Fatalf("period end not echoed: %v", dash.PeriodEnd)
	}
}

func TestIncomeServiceCategoryDomain(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewIncomeService(repo, nil)
	owner := seedUser(t, NewUserService(repo, nil))
	ctx := context.Background()

	// Expense categories do not leak into the income domain
	_, err := svc.Create(ctx, core.Income{
		UserID:      owner.ID,
		Description: "extra",
		Amount:      core.Money{Cents: 10000},
		Category:    core.IncomeCategory(core.ExpenseTransport),
		Date:        time.Now(),
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	created, err := svc.Create(ctx, core.Income{
		UserID:      owner.ID,
		Description: "freela",
		Amount:      core.Money{Cents: 80000},
		Category:    core.IncomeFreelance,
		Date:        time.Now(),
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete income: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
