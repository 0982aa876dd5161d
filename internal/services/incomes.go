package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"granaia/internal/amqp"
	"granaia/internal/core"
	applog "granaia/internal/log"
	"granaia/internal/storage"
)

// IncomeService manages income records, mirroring ExpenseService.
type IncomeService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewIncomeService(storage *storage.Repository, amqpClient *amqp.Client) *IncomeService {
	return &IncomeService{storage: storage, amqpClient: amqpClient}
}

func (s *IncomeService) Create(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	created, err := s.storage.CreateIncome(ctx, in)
	if err != nil {
		return core.Income{}, err
	}
	s.publish(ctx, amqp.NewRecordEvent(core.KindIncome, amqp.ActionCreated, created.ID, created.UserID))

	fields := applog.NewFields().
		WithRecord(string(core.KindIncome), created.ID.String(), created.UserID.String(), created.Amount.Cents, string(created.Category)).
		WithOperation(applog.OpCreate).
		WithComponent(applog.ComponentIncome)
	slog.InfoContext(ctx, "Income recorded", fields.ToSlice()...)

	return created, nil
}

func (s *IncomeService) Get(ctx context.Context, id uuid.UUID) (core.Income, error) {
	return s.storage.GetIncome(ctx, id)
}

func (s *IncomeService) List(ctx context.Context, f core.RecordFilter, page core.Page) ([]core.Income, core.PageMeta, error) {
	incomes, total, err := s.storage.ListIncomes(ctx, f.Predicate(), page)
	if err != nil {
		return nil, core.PageMeta{}, err
	}
	return incomes, core.NewPageMeta(page, total), nil
}

func (s *IncomeService) Update(ctx context.Context, id uuid.UUID, upd RecordUpdate) (core.Income, error) {
	in, err := s.storage.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, err
	}
	if upd.Description != nil {
		in.Description = *upd.Description
	}
	if upd.AmountCents != nil {
		in.Amount = core.Money{Cents: *upd.AmountCents}
	}
	if upd.Category != nil {
		in.Category = core.IncomeCategory(*upd.Category)
	}
	if upd.Date != nil {
		in.Date = *upd.Date
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	updated, err := s.storage.UpdateIncome(ctx, in)
	if err != nil {
		return core.Income{}, err
	}
	s.publish(ctx, amqp.NewRecordEvent(core.KindIncome, amqp.ActionUpdated, updated.ID, updated.UserID))
	return updated, nil
}

func (s *IncomeService) Delete(ctx context.Context, id uuid.UUID) error {
	in, err := s.storage.GetIncome(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteIncome(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewRecordEvent(core.KindIncome, amqp.ActionDeleted, in.ID, in.UserID))
	return nil
}

// Dashboard aggregates income records for the filter's scope and period.
func (s *IncomeService) Dashboard(ctx context.Context, f core.RecordFilter) (core.Dashboard, error) {
	dash, err := s.storage.Dashboard(ctx, core.KindIncome, f.Predicate())
	if err != nil {
		return core.Dashboard{}, err
	}
	dash.PeriodStart = f.DateFrom
	dash.PeriodEnd = f.DateTo
	return dash, nil
}

func (s *IncomeService) publish(ctx context.Context, event *amqp.RecordEvent) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishRecordEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"error", err, "kind", string(event.Kind), "action", string(event.Action), "id", event.ID)
	}
}
