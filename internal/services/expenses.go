package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"granaia/internal/amqp"
	"granaia/internal/core"
	applog "granaia/internal/log"
	"granaia/internal/storage"
)

// ExpenseService manages expense records. Mutations publish a record
// event after the write succeeds; a publish failure is logged and
// never fails the request, the row is already durable.
type ExpenseService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.Repository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{storage: storage, amqpClient: amqpClient}
}

// RecordUpdate lists the fields a PUT may change on a financial
// record. Nil leaves the stored value untouched.
type RecordUpdate struct {
	Description *string
	AmountCents *int64
	Category    *string
	Date        *time.Time
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, amqp.NewRecordEvent(core.KindExpense, amqp.ActionCreated, created.ID, created.UserID))

	fields := applog.NewFields().
		WithRecord(string(core.KindExpense), created.ID.String(), created.UserID.String(), created.Amount.Cents, string(created.Category)).
		WithOperation(applog.OpCreate).
		WithComponent(applog.ComponentExpense)
	slog.InfoContext(ctx, "Expense recorded", fields.ToSlice()...)

	return created, nil
}

func (s *ExpenseService) Get(ctx context.Context, id uuid.UUID) (core.Expense, error) {
	return s.storage.GetExpense(ctx, id)
}

func (s *ExpenseService) List(ctx context.Context, f core.RecordFilter, page core.Page) ([]core.Expense, core.PageMeta, error) {
	expenses, total, err := s.storage.ListExpenses(ctx, f.Predicate(), page)
	if err != nil {
		return nil, core.PageMeta{}, err
	}
	return expenses, core.NewPageMeta(page, total), nil
}

func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, upd RecordUpdate) (core.Expense, error) {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.AmountCents != nil {
		e.Amount = core.Money{Cents: *upd.AmountCents}
	}
	if upd.Category != nil {
		e.Category = core.ExpenseCategory(*upd.Category)
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated, err := s.storage.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, amqp.NewRecordEvent(core.KindExpense, amqp.ActionUpdated, updated.ID, updated.UserID))
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewRecordEvent(core.KindExpense, amqp.ActionDeleted, e.ID, e.UserID))
	return nil
}

// Dashboard aggregates expenses for the filter's scope and period.
func (s *ExpenseService) Dashboard(ctx context.Context, f core.RecordFilter) (core.Dashboard, error) {
	dash, err := s.storage.Dashboard(ctx, core.KindExpense, f.Predicate())
	if err != nil {
		return core.Dashboard{}, err
	}
	dash.PeriodStart = f.DateFrom
	dash.PeriodEnd = f.DateTo
	return dash, nil
}

func (s *ExpenseService) publish(ctx context.Context, event *amqp.RecordEvent) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishRecordEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"error", err, "kind", string(event.Kind), "action", string(event.Action), "id", event.ID)
	}
}
