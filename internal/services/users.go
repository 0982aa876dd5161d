// Package services orchestrates storage access and event publication
// for the HTTP layer. One logical store operation per request; no
// retries, failures propagate to the caller.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"granaia/internal/core"
	"granaia/internal/storage"
)

// UserService manages user accounts.
type UserService struct {
	storage *storage.Repository
	clock   core.Clock
}

func NewUserService(storage *storage.Repository, clock core.Clock) *UserService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &UserService{storage: storage, clock: clock}
}

// UserUpdate lists the fields a PUT may change. Nil leaves the stored
// value untouched.
type UserUpdate struct {
	Name        *string
	Phone       *string
	LastMessage *string
}

// PremiumUpdate sets a new premium expiration and, optionally, plan.
// The expiration is required: a billing mutation that could silently
// drop it would wipe active subscriptions.
type PremiumUpdate struct {
	PremiumUntil *time.Time
	PlanType     *core.PlanType
}

func (s *UserService) Create(ctx context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	return s.storage.CreateUser(ctx, u)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (core.User, error) {
	return s.storage.GetUser(ctx, id)
}

func (s *UserService) GetByRemoteJID(ctx context.Context, remoteJID string) (core.User, error) {
	return s.storage.GetUserByRemoteJID(ctx, remoteJID)
}

// List returns one page of users matching the filter plus pagination
// metadata computed from the total match count.
func (s *UserService) List(ctx context.Context, f core.UserFilter, page core.Page) ([]core.User, core.PageMeta, error) {
	users, total, err := s.storage.ListUsers(ctx, f.Predicate(s.clock.Now()), page)
	if err != nil {
		return nil, core.PageMeta{}, err
	}
	return users, core.NewPageMeta(page, total), nil
}

// Update applies the supplied fields only.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, upd UserUpdate) (core.User, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.LastMessage != nil {
		u.LastMessage = *upd.LastMessage
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	return s.storage.UpdateUser(ctx, u)
}

// UpdatePremium is the billing-flow mutation: expiration and plan tag.
func (s *UserService) UpdatePremium(ctx context.Context, id uuid.UUID, upd PremiumUpdate) (core.User, error) {
	if upd.PremiumUntil == nil {
		return core.User{}, core.NewValidationError("premium_until", errors.New("required"))
	}
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	u.PremiumUntil = upd.PremiumUntil
	if upd.PlanType != nil {
		u.PlanType = *upd.PlanType
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	return s.storage.UpdateUser(ctx, u)
}

// UpdateLastMessage records the most recent inbound message text.
func (s *UserService) UpdateLastMessage(ctx context.Context, id uuid.UUID, lastMessage string) (core.User, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	u.LastMessage = lastMessage
	return s.storage.UpdateUser(ctx, u)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.storage.DeleteUser(ctx, id)
}
